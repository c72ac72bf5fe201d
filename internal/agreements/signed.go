package agreements

import (
	"context"
	"fmt"
	"sort"

	"dmadmin/internal/documents"
	"dmadmin/pkg/types"
)

type SignedView struct {
	Supplier          *types.Supplier
	Framework         *types.Framework
	SupplierFramework *types.SupplierFramework
	// Lots the supplier applied for, ordered by slug
	Lots              []types.Lot
	URL               string
	Extension         string
}

// Signed returns the supplier's returned framework agreement together with
// a download URL on the assets host.
func (m *Manager) Signed(ctx context.Context, supplierID int, frameworkSlug string) (*SignedView, error) {
	supplier, err := m.api.GetSupplier(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplier %d: %w", supplierID, err)
	}

	framework, err := m.api.GetFramework(ctx, frameworkSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch framework %s: %w", frameworkSlug, err)
	}
	if !framework.HasAgreement() {
		return nil, fmt.Errorf("framework %s has no agreement: %w", frameworkSlug, types.ErrNotFound)
	}

	sf, err := m.api.GetSupplierFrameworkInfo(ctx, supplierID, frameworkSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplier %d framework %s: %w", supplierID, frameworkSlug, err)
	}
	if !sf.AgreementReturned {
		return nil, fmt.Errorf("supplier %d has not returned the %s agreement: %w", supplierID, frameworkSlug, types.ErrNotFound)
	}

	services, err := m.api.FindServices(ctx, supplierID, frameworkSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch services for supplier %d: %w", supplierID, err)
	}

	url, err := m.signedURL(ctx, sf.AgreementPath)
	if err != nil {
		return nil, err
	}

	return &SignedView{
		Supplier:          supplier,
		Framework:         framework,
		SupplierFramework: sf,
		Lots:              appliedLots(services),
		URL:               url,
		Extension:         documents.Extension(sf.AgreementPath),
	}, nil
}

func appliedLots(services []*types.Service) []types.Lot {
	seen := make(map[string]bool, len(services))
	lots := make([]types.Lot, 0, len(services))
	for _, service := range services {
		if seen[service.LotSlug] {
			continue
		}
		seen[service.LotSlug] = true
		lots = append(lots, types.Lot{Slug: service.LotSlug, Name: service.LotName})
	}

	sort.Slice(lots, func(i, j int) bool {
		return lots[i].Slug < lots[j].Slug
	})

	return lots
}

// DocumentURL returns a download URL for a named document in the supplier's
// agreements folder. Suppliers without a declaration have no documents.
func (m *Manager) DocumentURL(ctx context.Context, supplierID int, frameworkSlug, documentName string) (string, error) {
	sf, err := m.api.GetSupplierFrameworkInfo(ctx, supplierID, frameworkSlug)
	if err != nil {
		return "", fmt.Errorf("failed to fetch supplier %d framework %s: %w", supplierID, frameworkSlug, err)
	}
	if len(sf.Declaration) == 0 {
		return "", fmt.Errorf("supplier %d has no %s declaration: %w", supplierID, frameworkSlug, types.ErrNotFound)
	}

	path := documents.DocumentPath(frameworkSlug, supplierID, documents.CategoryAgreements, documentName)
	return m.signedURL(ctx, path)
}

// AgreementURL resolves the document name from the stored agreement path,
// for agreements returned before per-document downloads.
func (m *Manager) AgreementURL(ctx context.Context, supplierID int, frameworkSlug string) (string, error) {
	sf, err := m.api.GetSupplierFrameworkInfo(ctx, supplierID, frameworkSlug)
	if err != nil {
		return "", fmt.Errorf("failed to fetch supplier %d framework %s: %w", supplierID, frameworkSlug, err)
	}
	if sf.AgreementPath == "" {
		return "", fmt.Errorf("supplier %d has no %s agreement: %w", supplierID, frameworkSlug, types.ErrNotFound)
	}

	return m.DocumentURL(ctx, supplierID, frameworkSlug, documents.DocumentName(sf.AgreementPath))
}

func (m *Manager) signedURL(ctx context.Context, path string) (string, error) {
	url, err := m.bucket.SignedURL(ctx, path, m.urlExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s: %w", path, err)
	}
	if url == "" {
		return "", fmt.Errorf("document %s: %w", path, types.ErrNotFound)
	}

	if m.assetsURL == "" {
		return url, nil
	}

	return documents.RewriteHost(url, m.assetsURL)
}
