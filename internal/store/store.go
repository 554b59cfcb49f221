// Package store persists companies and enriched contacts behind one
// interface with SQLite and Postgres drivers.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sourcing-cli/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = eris.New("store: not found")

// Store defines the persistence interface for the sourcing and enrichment
// pipelines.
type Store interface {
	// Companies
	CreateCompany(ctx context.Context, company *model.Company) error
	GetCompany(ctx context.Context, id string) (*model.Company, error)
	ListCompanies(ctx context.Context, limit, offset int) ([]model.Company, error)

	// Contacts. GetPrincipalOwner returns (nil, nil) when the company has
	// no principal-owner contact yet.
	GetPrincipalOwner(ctx context.Context, companyID string) (*model.Contact, error)
	CreateContact(ctx context.Context, contact *model.Contact) error
	UpdateContact(ctx context.Context, contact *model.Contact) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
