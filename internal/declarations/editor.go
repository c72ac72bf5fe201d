package declarations

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"dmadmin/pkg/types"

	"github.com/sirupsen/logrus"
)

type API interface {
	GetSupplier(ctx context.Context, supplierID int) (*types.Supplier, error)
	GetFramework(ctx context.Context, frameworkSlug string) (*types.Framework, error)
	GetSupplierDeclaration(ctx context.Context, supplierID int, frameworkSlug string) (types.Declaration, error)
	SetSupplierDeclaration(ctx context.Context, supplierID int, frameworkSlug string, declaration types.Declaration, updatedBy string) error
}

// Editor edits supplier declarations one manifest section at a time.
type Editor struct {
	api     API
	catalog *Catalog
	logger  *logrus.Logger
}

func NewEditor(logger *logrus.Logger, api API, catalog *Catalog) *Editor {
	return &Editor{api: api, catalog: catalog, logger: logger}
}

// Frameworks lists the framework slugs that have a declaration manifest.
func (e *Editor) Frameworks() []string {
	return e.catalog.Frameworks()
}

type View struct {
	Supplier    *types.Supplier
	Framework   *types.Framework
	Declaration types.Declaration
	Manifest    *Manifest
	// Section is set when a single section was requested
	Section *Section
}

// Load fetches a supplier's declaration for a framework whose declarations
// are editable. A supplier without a declaration gets an empty one.
func (e *Editor) Load(ctx context.Context, supplierID int, frameworkSlug string) (*View, error) {
	supplier, err := e.api.GetSupplier(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplier %d: %w", supplierID, err)
	}

	framework, err := e.api.GetFramework(ctx, frameworkSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch framework %s: %w", frameworkSlug, err)
	}
	if !framework.DeclarationsEditable() {
		return nil, fmt.Errorf("declarations for %s framework are closed: %w", framework.Status, types.ErrForbidden)
	}

	declaration, err := e.api.GetSupplierDeclaration(ctx, supplierID, frameworkSlug)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		declaration = types.Declaration{}
	}

	manifest, err := e.catalog.Manifest(frameworkSlug)
	if err != nil {
		return nil, err
	}

	return &View{
		Supplier:    supplier,
		Framework:   framework,
		Declaration: declaration,
		Manifest:    manifest,
	}, nil
}

func (e *Editor) Section(ctx context.Context, supplierID int, frameworkSlug, sectionSlug string) (*View, error) {
	view, err := e.Load(ctx, supplierID, frameworkSlug)
	if err != nil {
		return nil, err
	}

	section, ok := view.Manifest.Section(sectionSlug)
	if !ok {
		return nil, fmt.Errorf("declaration section %s: %w", sectionSlug, types.ErrNotFound)
	}
	view.Section = section

	return view, nil
}

// ApplySection saves the posted answers for one section. The declaration is
// written back in full, and only when an answer changed. It reports whether
// a write happened.
func (e *Editor) ApplySection(ctx context.Context, supplierID int, frameworkSlug, sectionSlug string, form url.Values, actor types.Actor) (bool, error) {
	view, err := e.Section(ctx, supplierID, frameworkSlug, sectionSlug)
	if err != nil {
		return false, err
	}

	updated, changed := ApplySection(view.Declaration, view.Section, form)
	if !changed {
		return false, nil
	}

	err = e.api.SetSupplierDeclaration(ctx, supplierID, frameworkSlug, updated, actor.Email)
	if err != nil {
		return false, fmt.Errorf("failed to save declaration section %s: %w", sectionSlug, err)
	}

	e.logger.WithFields(logrus.Fields{
		"supplier_id": supplierID,
		"framework":   frameworkSlug,
		"section":     sectionSlug,
		"actor":       actor.Email,
	}).Info("declaration section updated")

	return true, nil
}
