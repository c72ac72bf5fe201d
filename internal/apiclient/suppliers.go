package apiclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"dmadmin/pkg/types"
)

func (c *Client) GetSupplier(ctx context.Context, supplierID int) (*types.Supplier, error) {
	var resp struct {
		Suppliers *types.Supplier `json:"suppliers"`
	}

	err := c.get(ctx, fmt.Sprintf("/suppliers/%d", supplierID), nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplier %d: %w", supplierID, err)
	}

	if resp.Suppliers == nil {
		return nil, fmt.Errorf("supplier %d: %w", supplierID, types.ErrNotFound)
	}

	return resp.Suppliers, nil
}

func (c *Client) FindSuppliers(ctx context.Context, prefix, dunsNumber string) ([]*types.Supplier, error) {
	query := url.Values{}
	if prefix != "" {
		query.Set("prefix", prefix)
	}
	if dunsNumber != "" {
		query.Set("duns_number", dunsNumber)
	}

	var resp struct {
		Suppliers []*types.Supplier `json:"suppliers"`
	}

	if err := c.get(ctx, "/suppliers", query, &resp); err != nil {
		return nil, fmt.Errorf("failed to find suppliers: %w", err)
	}

	return resp.Suppliers, nil
}

func (c *Client) UpdateSupplier(ctx context.Context, supplierID int, update types.SupplierUpdate, updatedBy string) error {
	body := struct {
		updateEnvelope
		Suppliers types.SupplierUpdate `json:"suppliers"`
	}{
		updateEnvelope: updateEnvelope{UpdatedBy: updatedBy},
		Suppliers:      update,
	}

	if err := c.post(ctx, fmt.Sprintf("/suppliers/%d", supplierID), body, nil); err != nil {
		return fmt.Errorf("failed to update supplier %d: %w", supplierID, err)
	}

	return nil
}

// FindServices follows the Data API's pagination links and returns every
// service the supplier has on the framework.
func (c *Client) FindServices(ctx context.Context, supplierID int, frameworkSlug string) ([]*types.Service, error) {
	query := url.Values{}
	query.Set("supplier_id", strconv.Itoa(supplierID))
	if frameworkSlug != "" {
		query.Set("framework", frameworkSlug)
	}

	next := "/services?" + query.Encode()
	services := make([]*types.Service, 0)

	for next != "" {
		var resp struct {
			Services []*types.Service `json:"services"`
			Links    struct {
				Next string `json:"next"`
			} `json:"links"`
		}

		if err := c.get(ctx, next, nil, &resp); err != nil {
			return nil, fmt.Errorf("failed to find services for supplier %d: %w", supplierID, err)
		}

		services = append(services, resp.Services...)
		next = resp.Links.Next
	}

	return services, nil
}
