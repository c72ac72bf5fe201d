package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"dmadmin/pkg/types"
)

func (c *Client) FindUsers(ctx context.Context, supplierID int) ([]*types.User, error) {
	query := url.Values{}
	query.Set("supplier_id", strconv.Itoa(supplierID))

	var resp struct {
		Users []*types.User `json:"users"`
	}

	if err := c.get(ctx, "/users", query, &resp); err != nil {
		return nil, fmt.Errorf("failed to find users for supplier %d: %w", supplierID, err)
	}

	return resp.Users, nil
}

// UserByEmail returns nil without an error when no user has the address.
func (c *Client) UserByEmail(ctx context.Context, emailAddress string) (*types.User, error) {
	query := url.Values{}
	query.Set("email_address", emailAddress)

	var resp struct {
		Users *types.User `json:"users"`
	}

	err := c.get(ctx, "/users", query, &resp)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}

	return resp.Users, nil
}

func (c *Client) UpdateUser(ctx context.Context, userID int, update types.UserUpdate, updatedBy string) (*types.User, error) {
	body := struct {
		updateEnvelope
		Users types.UserUpdate `json:"users"`
	}{
		updateEnvelope: updateEnvelope{UpdatedBy: updatedBy},
		Users:          update,
	}

	var resp struct {
		Users *types.User `json:"users"`
	}

	if err := c.post(ctx, fmt.Sprintf("/users/%d", userID), body, &resp); err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
	}

	if resp.Users == nil {
		return nil, fmt.Errorf("user %d: %w", userID, types.ErrNotFound)
	}

	return resp.Users, nil
}
