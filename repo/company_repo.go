package repo

import (
	"context"
	"fmt"

	"github.com/Skryldev/jobly-api/db"
	"github.com/Skryldev/jobly-api/models"
	"github.com/Skryldev/jobly-api/sqlbuild"
)

// ─────────────────────────────────────────────────────────────────────────────
// CompanyRepository interface
// ─────────────────────────────────────────────────────────────────────────────

// CompanyRepository is the persistence contract for companies.
type CompanyRepository interface {
	Create(ctx context.Context, params models.CreateCompanyParams) (*models.Company, error)
	FindAll(ctx context.Context) ([]*models.Company, error)
	FindFiltered(ctx context.Context, filter sqlbuild.Filter) ([]*models.Company, error)
	Get(ctx context.Context, handle string) (*models.Company, error)
	Update(ctx context.Context, handle string, fields sqlbuild.Fields) (*models.Company, error)
	Remove(ctx context.Context, handle string) error
}

type companyRepo struct {
	q db.Querier
}

// NewCompanyRepository returns a CompanyRepository backed by q, which may be a
// *db.DB or a *db.Tx.
func NewCompanyRepository(q db.Querier) CompanyRepository {
	return &companyRepo{q: q}
}

// ─────────────────────────────────────────────────────────────────────────────
// SQL
// ─────────────────────────────────────────────────────────────────────────────

const companyColumns = `handle, name, description, num_employees, logo_url`

const (
	sqlCompanyExists = `
		SELECT handle
		FROM   companies
		WHERE  handle = $1`

	sqlInsertCompany = `
		INSERT INTO companies (handle, name, description, num_employees, logo_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + companyColumns

	sqlSelectCompanies = `
		SELECT ` + companyColumns + `
		FROM   companies`

	sqlGetCompany = sqlSelectCompanies + `
		WHERE  handle = $1`

	sqlDeleteCompany = `
		DELETE FROM companies
		WHERE  handle = $1
		RETURNING handle`
)

// ─────────────────────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────────────────────

// Create inserts a company. An existing handle is reported as
// ErrAlreadyExists, whether found by the pre-check or by the primary key.
func (r *companyRepo) Create(ctx context.Context, p models.CreateCompanyParams) (*models.Company, error) {
	const op = "company.create"

	var existing string
	err := r.q.QueryRow(ctx, sqlCompanyExists, p.Handle).Scan(&existing)
	switch {
	case err == nil:
		return nil, alreadyExists(op, p.Handle, "duplicate company: "+p.Handle, nil)
	case !db.IsNotFound(err):
		return nil, classify(op, "company", p.Handle, err)
	}

	row := r.q.QueryRow(ctx, sqlInsertCompany, p.Handle, p.Name, p.Description, p.NumEmployees, p.LogoURL)
	c, err := scanCompany(row)
	if err != nil {
		return nil, classify(op, "company", p.Handle, err)
	}
	return c, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// FindAll / FindFiltered
// ─────────────────────────────────────────────────────────────────────────────

// FindAll lists every company ordered by name.
func (r *companyRepo) FindAll(ctx context.Context) ([]*models.Company, error) {
	return r.list(ctx, "company.findAll", sqlSelectCompanies+`
		ORDER  BY name`)
}

// FindFiltered lists the companies matching filter, ordered by name. An empty
// filter behaves like FindAll.
func (r *companyRepo) FindFiltered(ctx context.Context, filter sqlbuild.Filter) ([]*models.Company, error) {
	if len(filter) == 0 {
		return r.FindAll(ctx)
	}
	where, err := sqlbuild.Predicate(filter, CompanyFilters)
	if err != nil {
		return nil, err
	}
	query := sqlSelectCompanies + `
		WHERE  ` + where.SQL + `
		ORDER  BY name`
	return r.list(ctx, "company.findFiltered", query, where.Args...)
}

func (r *companyRepo) list(ctx context.Context, op, query string, args ...any) ([]*models.Company, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(op, "company", "", err)
	}
	defer rows.Close()

	companies := make([]*models.Company, 0)
	for rows.Next() {
		c := &models.Company{}
		if err := rows.Scan(&c.Handle, &c.Name, &c.Description, &c.NumEmployees, &c.LogoURL); err != nil {
			return nil, classify(op, "company", "", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, "company", "", err)
	}
	return companies, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Get
// ─────────────────────────────────────────────────────────────────────────────

// Get returns the company with the given handle or ErrNotFound.
func (r *companyRepo) Get(ctx context.Context, handle string) (*models.Company, error) {
	c, err := scanCompany(r.q.QueryRow(ctx, sqlGetCompany, handle))
	if err != nil {
		return nil, classify("company.get", "company", handle, err)
	}
	return c, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Update
// ─────────────────────────────────────────────────────────────────────────────

// Update applies a partial update and returns the stored result. Only name,
// description, numEmployees and logoUrl may change.
func (r *companyRepo) Update(ctx context.Context, handle string, fields sqlbuild.Fields) (*models.Company, error) {
	const op = "company.update"

	if err := checkUpdatable(fields, companyUpdatable); err != nil {
		return nil, err
	}
	set, err := sqlbuild.PartialUpdate(fields, companyAliases)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE companies
		SET    %s
		WHERE  handle = $%d
		RETURNING %s`, set.SQL, set.Next(), companyColumns)

	c, err := scanCompany(r.q.QueryRow(ctx, query, append(set.Args, handle)...))
	if err != nil {
		if db.IsDuplicateKey(err) {
			return nil, alreadyExists(op, handle, "company name already taken: "+fields["name"].String(), err)
		}
		return nil, classify(op, "company", handle, err)
	}
	return c, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Remove
// ─────────────────────────────────────────────────────────────────────────────

// Remove deletes a company; its jobs go with it. Returns ErrNotFound when no
// company has the handle.
func (r *companyRepo) Remove(ctx context.Context, handle string) error {
	var deleted string
	if err := r.q.QueryRow(ctx, sqlDeleteCompany, handle).Scan(&deleted); err != nil {
		return classify("company.remove", "company", handle, err)
	}
	return nil
}

func scanCompany(row *db.Row) (*models.Company, error) {
	c := &models.Company{}
	if err := row.Scan(&c.Handle, &c.Name, &c.Description, &c.NumEmployees, &c.LogoURL); err != nil {
		return nil, err
	}
	return c, nil
}

var _ CompanyRepository = (*companyRepo)(nil)
