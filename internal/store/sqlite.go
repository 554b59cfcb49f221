package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/sourcing-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	location   TEXT NOT NULL DEFAULT '',
	website    TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS contacts (
	id                 TEXT PRIMARY KEY,
	company_id         TEXT NOT NULL REFERENCES companies(id),
	name               TEXT NOT NULL DEFAULT '',
	title              TEXT NOT NULL DEFAULT '',
	email              TEXT NOT NULL DEFAULT '',
	phone              TEXT NOT NULL DEFAULT '',
	linkedin_url       TEXT NOT NULL DEFAULT '',
	facebook_url       TEXT NOT NULL DEFAULT '',
	is_principal_owner INTEGER NOT NULL DEFAULT 0,
	enrichment_status  TEXT NOT NULL DEFAULT 'not_started',
	enrichment_source  TEXT NOT NULL DEFAULT '',
	enrichment_data    TEXT,
	enriched_at        DATETIME
);

CREATE INDEX IF NOT EXISTS idx_contacts_company_id ON contacts(company_id);
CREATE INDEX IF NOT EXISTS idx_contacts_principal ON contacts(company_id, is_principal_owner);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateCompany(ctx context.Context, company *model.Company) error {
	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO companies (id, name, location, website, source) VALUES (?, ?, ?, ?, ?)`,
		company.ID, company.Name, company.Location, company.Website, company.Source,
	)
	return eris.Wrap(err, "sqlite: insert company")
}

func (s *SQLiteStore) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, location, website, source FROM companies WHERE id = ?`, id)

	var co model.Company
	err := row.Scan(&co.ID, &co.Name, &co.Location, &co.Website, &co.Source)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get company %s", id)
	}
	return &co, nil
}

func (s *SQLiteStore) ListCompanies(ctx context.Context, limit, offset int) ([]model.Company, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, location, website, source FROM companies ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close()

	var out []model.Company
	for rows.Next() {
		var co model.Company
		if err := rows.Scan(&co.ID, &co.Name, &co.Location, &co.Website, &co.Source); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company")
		}
		out = append(out, co)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list companies")
}

func (s *SQLiteStore) GetPrincipalOwner(ctx context.Context, companyID string) (*model.Contact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company_id, name, title, email, phone, linkedin_url, facebook_url,
		        is_principal_owner, enrichment_status, enrichment_source, enrichment_data, enriched_at
		 FROM contacts WHERE company_id = ? AND is_principal_owner = 1 LIMIT 1`, companyID)

	contact, err := scanSQLiteContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get principal owner for %s", companyID)
	}
	return contact, nil
}

func (s *SQLiteStore) CreateContact(ctx context.Context, contact *model.Contact) error {
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	dataJSON, err := marshalEnrichmentData(contact.EnrichmentData)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contacts (id, company_id, name, title, email, phone, linkedin_url, facebook_url,
		                       is_principal_owner, enrichment_status, enrichment_source, enrichment_data, enriched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		contact.ID, contact.CompanyID, contact.Name, contact.Title, contact.Email, contact.Phone,
		contact.LinkedInURL, contact.FacebookURL, boolToInt(contact.IsPrincipalOwner),
		string(contact.EnrichmentStatus), contact.EnrichmentSource, dataJSON, contact.EnrichedAt,
	)
	return eris.Wrap(err, "sqlite: insert contact")
}

func (s *SQLiteStore) UpdateContact(ctx context.Context, contact *model.Contact) error {
	dataJSON, err := marshalEnrichmentData(contact.EnrichmentData)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET name = ?, title = ?, email = ?, phone = ?, linkedin_url = ?, facebook_url = ?,
		        is_principal_owner = ?, enrichment_status = ?, enrichment_source = ?, enrichment_data = ?, enriched_at = ?
		 WHERE id = ?`,
		contact.Name, contact.Title, contact.Email, contact.Phone, contact.LinkedInURL, contact.FacebookURL,
		boolToInt(contact.IsPrincipalOwner), string(contact.EnrichmentStatus), contact.EnrichmentSource,
		dataJSON, contact.EnrichedAt, contact.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update contact %s", contact.ID)
	}
	return checkRowsAffected(res, "contact", contact.ID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteContact(row rowScanner) (*model.Contact, error) {
	var (
		c          model.Contact
		principal  int
		status     string
		dataJSON   sql.NullString
		enrichedAt sql.NullTime
	)
	err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Title, &c.Email, &c.Phone,
		&c.LinkedInURL, &c.FacebookURL, &principal, &status, &c.EnrichmentSource,
		&dataJSON, &enrichedAt)
	if err != nil {
		return nil, err
	}
	c.IsPrincipalOwner = principal != 0
	c.EnrichmentStatus = model.EnrichmentStatus(status)
	if dataJSON.Valid && dataJSON.String != "" {
		if err := json.Unmarshal([]byte(dataJSON.String), &c.EnrichmentData); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal enrichment data")
		}
	}
	if enrichedAt.Valid {
		t := enrichedAt.Time
		c.EnrichedAt = &t
	}
	return &c, nil
}

func marshalEnrichmentData(data map[string]any) (*string, error) {
	if data == nil {
		return nil, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal enrichment data")
	}
	s := string(b)
	return &s, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: rows affected for %s %s", kind, id)
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: %s %s", kind, id)
	}
	return nil
}
