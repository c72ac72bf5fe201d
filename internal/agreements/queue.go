package agreements

import (
	"context"
	"fmt"

	"dmadmin/pkg/types"
)

// Next returns the returned agreement that follows supplierID in the review
// queue for the framework, optionally limited to one agreement status. It
// returns nil when the queue is exhausted.
func (m *Manager) Next(ctx context.Context, frameworkSlug string, supplierID int, status string) (*types.SupplierFramework, error) {
	queue, err := m.api.FindFrameworkSuppliers(ctx, frameworkSlug, true, status)
	if err != nil {
		return nil, fmt.Errorf("failed to load agreement queue for %s: %w", frameworkSlug, err)
	}

	for i, sf := range queue {
		if sf.SupplierID != supplierID {
			continue
		}
		if i+1 < len(queue) {
			return queue[i+1], nil
		}
		return nil, nil
	}

	// The current supplier left the filtered queue, e.g. after approval.
	for _, sf := range queue {
		if sf.SupplierID > supplierID {
			return sf, nil
		}
	}

	return nil, nil
}
