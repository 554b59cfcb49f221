package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/sourcing-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL,
	location   TEXT NOT NULL DEFAULT '',
	website    TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS contacts (
	id                 TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_id         TEXT NOT NULL REFERENCES companies(id),
	name               TEXT NOT NULL DEFAULT '',
	title              TEXT NOT NULL DEFAULT '',
	email              TEXT NOT NULL DEFAULT '',
	phone              TEXT NOT NULL DEFAULT '',
	linkedin_url       TEXT NOT NULL DEFAULT '',
	facebook_url       TEXT NOT NULL DEFAULT '',
	is_principal_owner BOOLEAN NOT NULL DEFAULT false,
	enrichment_status  TEXT NOT NULL DEFAULT 'not_started',
	enrichment_source  TEXT NOT NULL DEFAULT '',
	enrichment_data    JSONB,
	enriched_at        TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_contacts_company_id ON contacts(company_id);
CREATE INDEX IF NOT EXISTS idx_contacts_principal ON contacts(company_id, is_principal_owner);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateCompany(ctx context.Context, company *model.Company) error {
	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO companies (id, name, location, website, source) VALUES ($1, $2, $3, $4, $5)`,
		company.ID, company.Name, company.Location, company.Website, company.Source,
	)
	return eris.Wrap(err, "postgres: insert company")
}

func (s *PostgresStore) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, location, website, source FROM companies WHERE id = $1`, id)

	var co model.Company
	err := row.Scan(&co.ID, &co.Name, &co.Location, &co.Website, &co.Source)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get company %s", id)
	}
	return &co, nil
}

func (s *PostgresStore) ListCompanies(ctx context.Context, limit, offset int) ([]model.Company, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, location, website, source FROM companies ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()

	var out []model.Company
	for rows.Next() {
		var co model.Company
		if err := rows.Scan(&co.ID, &co.Name, &co.Location, &co.Website, &co.Source); err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		out = append(out, co)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list companies")
}

func (s *PostgresStore) GetPrincipalOwner(ctx context.Context, companyID string) (*model.Contact, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, company_id, name, title, email, phone, linkedin_url, facebook_url,
		        is_principal_owner, enrichment_status, enrichment_source, enrichment_data, enriched_at
		 FROM contacts WHERE company_id = $1 AND is_principal_owner = true LIMIT 1`, companyID)

	contact, err := scanPostgresContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get principal owner for %s", companyID)
	}
	return contact, nil
}

func (s *PostgresStore) CreateContact(ctx context.Context, contact *model.Contact) error {
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	dataJSON, err := marshalEnrichmentData(contact.EnrichmentData)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO contacts (id, company_id, name, title, email, phone, linkedin_url, facebook_url,
		                       is_principal_owner, enrichment_status, enrichment_source, enrichment_data, enriched_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		contact.ID, contact.CompanyID, contact.Name, contact.Title, contact.Email, contact.Phone,
		contact.LinkedInURL, contact.FacebookURL, contact.IsPrincipalOwner,
		string(contact.EnrichmentStatus), contact.EnrichmentSource, dataJSON, contact.EnrichedAt,
	)
	return eris.Wrap(err, "postgres: insert contact")
}

func (s *PostgresStore) UpdateContact(ctx context.Context, contact *model.Contact) error {
	dataJSON, err := marshalEnrichmentData(contact.EnrichmentData)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE contacts SET name = $1, title = $2, email = $3, phone = $4, linkedin_url = $5, facebook_url = $6,
		        is_principal_owner = $7, enrichment_status = $8, enrichment_source = $9, enrichment_data = $10, enriched_at = $11
		 WHERE id = $12`,
		contact.Name, contact.Title, contact.Email, contact.Phone, contact.LinkedInURL, contact.FacebookURL,
		contact.IsPrincipalOwner, string(contact.EnrichmentStatus), contact.EnrichmentSource,
		dataJSON, contact.EnrichedAt, contact.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update contact %s", contact.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: contact %s", contact.ID)
	}
	return nil
}

func scanPostgresContact(row pgx.Row) (*model.Contact, error) {
	var (
		c        model.Contact
		status   string
		dataJSON []byte
	)
	err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Title, &c.Email, &c.Phone,
		&c.LinkedInURL, &c.FacebookURL, &c.IsPrincipalOwner, &status, &c.EnrichmentSource,
		&dataJSON, &c.EnrichedAt)
	if err != nil {
		return nil, err
	}
	c.EnrichmentStatus = model.EnrichmentStatus(status)
	if len(dataJSON) > 0 {
		if err := json.Unmarshal(dataJSON, &c.EnrichmentData); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal enrichment data")
		}
	}
	return &c, nil
}
