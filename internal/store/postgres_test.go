package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sourcing-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_CreateCompany(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	co := &model.Company{Name: "Bright Smile Dental", Location: "Austin, TX", Source: "NPPES"}
	mock.ExpectExec(`INSERT INTO companies`).
		WithArgs(pgxmock.AnyArg(), "Bright Smile Dental", "Austin, TX", "", "NPPES").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.CreateCompany(context.Background(), co))
	assert.NotEmpty(t, co.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCompany_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, name, location, website, source FROM companies WHERE id = \$1`).
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetCompany(context.Background(), "missing-id")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListCompanies(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"id", "name", "location", "website", "source"}).
		AddRow("c1", "Alpha Clinic", "Austin, TX", "", "NPPES").
		AddRow("c2", "Beta Clinic", "Dallas, TX", "https://beta.example.com", "Google Places")
	mock.ExpectQuery(`SELECT id, name, location, website, source FROM companies ORDER BY created_at DESC`).
		WithArgs(50, 0).
		WillReturnRows(rows)

	companies, err := s.ListCompanies(context.Background(), 50, 0)
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "Alpha Clinic", companies[0].Name)
	assert.Equal(t, "Google Places", companies[1].Source)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetPrincipalOwner(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	enrichedAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"id", "company_id", "name", "title", "email", "phone", "linkedin_url", "facebook_url",
		"is_principal_owner", "enrichment_status", "enrichment_source", "enrichment_data", "enriched_at",
	}).AddRow(
		"ct1", "c1", "Jane Harper", "Owner", "jane@example.com", "", "", "",
		true, "completed", "web_research", []byte(`{"enrichment_version":2}`), &enrichedAt,
	)
	mock.ExpectQuery(`FROM contacts WHERE company_id = \$1 AND is_principal_owner = true`).
		WithArgs("c1").
		WillReturnRows(rows)

	contact, err := s.GetPrincipalOwner(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, contact)
	assert.Equal(t, "Jane Harper", contact.Name)
	assert.Equal(t, model.EnrichmentCompleted, contact.EnrichmentStatus)
	assert.Equal(t, map[string]any{"enrichment_version": float64(2)}, contact.EnrichmentData)
	require.NotNil(t, contact.EnrichedAt)
	assert.Equal(t, enrichedAt, *contact.EnrichedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetPrincipalOwner_Missing(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM contacts WHERE company_id = \$1 AND is_principal_owner = true`).
		WithArgs("c1").
		WillReturnError(pgx.ErrNoRows)

	contact, err := s.GetPrincipalOwner(context.Background(), "c1")
	require.NoError(t, err)
	assert.Nil(t, contact)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateContact_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE contacts SET`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "missing-id").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateContact(context.Background(), &model.Contact{ID: "missing-id"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
