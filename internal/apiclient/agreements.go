package apiclient

import (
	"context"
	"fmt"

	"dmadmin/pkg/types"
)

type agreementResponse struct {
	Agreement *types.Agreement `json:"agreement"`
}

func (r *agreementResponse) agreement(agreementID int) (*types.Agreement, error) {
	if r.Agreement == nil {
		return nil, fmt.Errorf("agreement %d: %w", agreementID, types.ErrNotFound)
	}
	return r.Agreement, nil
}

func (c *Client) GetFrameworkAgreement(ctx context.Context, agreementID int) (*types.Agreement, error) {
	var resp agreementResponse
	if err := c.get(ctx, fmt.Sprintf("/agreements/%d", agreementID), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch agreement %d: %w", agreementID, err)
	}
	return resp.agreement(agreementID)
}

func (c *Client) UpdateFrameworkAgreement(ctx context.Context, agreementID int, update types.AgreementUpdate, updatedBy string) (*types.Agreement, error) {
	body := struct {
		updateEnvelope
		Agreement types.AgreementUpdate `json:"agreement"`
	}{
		updateEnvelope: updateEnvelope{UpdatedBy: updatedBy},
		Agreement:      update,
	}

	var resp agreementResponse
	if err := c.post(ctx, fmt.Sprintf("/agreements/%d", agreementID), body, &resp); err != nil {
		return nil, fmt.Errorf("failed to update agreement %d: %w", agreementID, err)
	}
	return resp.agreement(agreementID)
}

func (c *Client) PutAgreementOnHold(ctx context.Context, agreementID int, updatedBy string) (*types.Agreement, error) {
	body := updateEnvelope{UpdatedBy: updatedBy}

	var resp agreementResponse
	if err := c.post(ctx, fmt.Sprintf("/agreements/%d/on-hold", agreementID), body, &resp); err != nil {
		return nil, fmt.Errorf("failed to put agreement %d on hold: %w", agreementID, err)
	}
	return resp.agreement(agreementID)
}

func (c *Client) ApproveAgreementForCountersignature(ctx context.Context, agreementID int, updatedBy, userID string) (*types.Agreement, error) {
	body := struct {
		updateEnvelope
		Agreement struct {
			UserID string `json:"userId"`
		} `json:"agreement"`
	}{
		updateEnvelope: updateEnvelope{UpdatedBy: updatedBy},
	}
	body.Agreement.UserID = userID

	var resp agreementResponse
	if err := c.post(ctx, fmt.Sprintf("/agreements/%d/approve", agreementID), body, &resp); err != nil {
		return nil, fmt.Errorf("failed to approve agreement %d: %w", agreementID, err)
	}
	return resp.agreement(agreementID)
}

func (c *Client) CreateAuditEvent(ctx context.Context, event types.AuditEvent) error {
	body := struct {
		AuditEvents types.AuditEvent `json:"auditEvents"`
	}{
		AuditEvents: event,
	}

	if err := c.post(ctx, "/audit-events", body, nil); err != nil {
		return fmt.Errorf("failed to create %s audit event: %w", event.Type, err)
	}
	return nil
}
