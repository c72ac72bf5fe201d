package apiclient

import (
	"context"
	"fmt"
	"net/url"

	"dmadmin/pkg/types"
)

func (c *Client) GetFramework(ctx context.Context, frameworkSlug string) (*types.Framework, error) {
	var resp struct {
		Frameworks *types.Framework `json:"frameworks"`
	}

	err := c.get(ctx, "/frameworks/"+frameworkSlug, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch framework %s: %w", frameworkSlug, err)
	}

	if resp.Frameworks == nil {
		return nil, fmt.Errorf("framework %s: %w", frameworkSlug, types.ErrNotFound)
	}

	return resp.Frameworks, nil
}

func (c *Client) GetSupplierFrameworkInfo(ctx context.Context, supplierID int, frameworkSlug string) (*types.SupplierFramework, error) {
	var resp struct {
		FrameworkInterest *types.SupplierFramework `json:"frameworkInterest"`
	}

	err := c.get(ctx, fmt.Sprintf("/suppliers/%d/frameworks/%s", supplierID, frameworkSlug), nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch framework interest for supplier %d on %s: %w", supplierID, frameworkSlug, err)
	}

	if resp.FrameworkInterest == nil {
		return nil, fmt.Errorf("framework interest for supplier %d on %s: %w", supplierID, frameworkSlug, types.ErrNotFound)
	}

	return resp.FrameworkInterest, nil
}

// GetSupplierDeclaration returns an error matching types.ErrNotFound when
// the supplier has not started a declaration.
func (c *Client) GetSupplierDeclaration(ctx context.Context, supplierID int, frameworkSlug string) (types.Declaration, error) {
	var resp struct {
		Declaration types.Declaration `json:"declaration"`
	}

	err := c.get(ctx, fmt.Sprintf("/suppliers/%d/frameworks/%s/declaration", supplierID, frameworkSlug), nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch declaration for supplier %d on %s: %w", supplierID, frameworkSlug, err)
	}

	if resp.Declaration == nil {
		resp.Declaration = types.Declaration{}
	}

	return resp.Declaration, nil
}

func (c *Client) SetSupplierDeclaration(ctx context.Context, supplierID int, frameworkSlug string, declaration types.Declaration, updatedBy string) error {
	body := struct {
		updateEnvelope
		Declaration types.Declaration `json:"declaration"`
	}{
		updateEnvelope: updateEnvelope{UpdatedBy: updatedBy},
		Declaration:    declaration,
	}

	err := c.put(ctx, fmt.Sprintf("/suppliers/%d/frameworks/%s/declaration", supplierID, frameworkSlug), body, nil)
	if err != nil {
		return fmt.Errorf("failed to save declaration for supplier %d on %s: %w", supplierID, frameworkSlug, err)
	}

	return nil
}

// FindFrameworkSuppliers lists supplier framework interests for the
// agreement review queue. An empty status matches every agreement status.
func (c *Client) FindFrameworkSuppliers(ctx context.Context, frameworkSlug string, agreementReturned bool, status string) ([]*types.SupplierFramework, error) {
	query := url.Values{}
	if agreementReturned {
		query.Set("agreement_returned", "true")
	}
	if status != "" {
		query.Set("status", status)
	}

	var resp struct {
		SupplierFrameworks []*types.SupplierFramework `json:"supplierFrameworks"`
	}

	err := c.get(ctx, fmt.Sprintf("/frameworks/%s/suppliers", frameworkSlug), query, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers on %s: %w", frameworkSlug, err)
	}

	return resp.SupplierFrameworks, nil
}
