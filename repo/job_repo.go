package repo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Skryldev/jobly-api/db"
	"github.com/Skryldev/jobly-api/models"
	"github.com/Skryldev/jobly-api/sqlbuild"
)

// JobRepository is the persistence contract for job postings.
type JobRepository interface {
	Create(ctx context.Context, params models.CreateJobParams) (*models.Job, error)
	FindAll(ctx context.Context) ([]*models.Job, error)
	FindFiltered(ctx context.Context, filter sqlbuild.Filter) ([]*models.Job, error)
	Get(ctx context.Context, id int64) (*models.Job, error)
	ListByCompany(ctx context.Context, handle string) ([]*models.Job, error)
	Update(ctx context.Context, id int64, fields sqlbuild.Fields) (*models.Job, error)
	Remove(ctx context.Context, id int64) error
}

type jobRepo struct {
	q db.Querier
}

// NewJobRepository returns a JobRepository backed by q.
func NewJobRepository(q db.Querier) JobRepository {
	return &jobRepo{q: q}
}

const jobColumns = `id, title, salary, equity, company_handle`

const (
	sqlJobExists = `
		SELECT id
		FROM   jobs
		WHERE  title = $1 AND company_handle = $2`

	sqlInsertJob = `
		INSERT INTO jobs (title, salary, equity, company_handle)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + jobColumns

	sqlSelectJobs = `
		SELECT ` + jobColumns + `
		FROM   jobs`

	sqlGetJob = sqlSelectJobs + `
		WHERE  id = $1`

	sqlJobsByCompany = sqlSelectJobs + `
		WHERE  company_handle = $1
		ORDER  BY id`

	sqlDeleteJob = `
		DELETE FROM jobs
		WHERE  id = $1
		RETURNING id`
)

// Create posts a job. A second job with the same title at the same company
// is ErrAlreadyExists; an unknown company is a validation error on
// companyHandle.
func (r *jobRepo) Create(ctx context.Context, p models.CreateJobParams) (*models.Job, error) {
	const op = "job.create"
	key := p.Title + "@" + p.CompanyHandle
	dupMsg := fmt.Sprintf("job already exists: %s with %s", p.Title, p.CompanyHandle)

	var existing int64
	err := r.q.QueryRow(ctx, sqlJobExists, p.Title, p.CompanyHandle).Scan(&existing)
	switch {
	case err == nil:
		return nil, alreadyExists(op, key, dupMsg, nil)
	case !db.IsNotFound(err):
		return nil, classify(op, "job", key, err)
	}

	j, err := scanJob(r.q.QueryRow(ctx, sqlInsertJob, p.Title, p.Salary, p.Equity, p.CompanyHandle))
	switch {
	case err == nil:
		return j, nil
	case db.IsDuplicateKey(err):
		return nil, alreadyExists(op, key, dupMsg, err)
	case db.IsForeignKeyViolation(err):
		return nil, sqlbuild.Invalid("companyHandle", "company does not exist: %s", p.CompanyHandle)
	}
	return nil, classify(op, "job", key, err)
}

// FindAll lists every job ordered by id.
func (r *jobRepo) FindAll(ctx context.Context) ([]*models.Job, error) {
	return r.list(ctx, "job.findAll", sqlSelectJobs+`
		ORDER  BY id`)
}

// FindFiltered lists the jobs matching filter ordered by id. An empty filter
// behaves like FindAll.
func (r *jobRepo) FindFiltered(ctx context.Context, filter sqlbuild.Filter) ([]*models.Job, error) {
	if len(filter) == 0 {
		return r.FindAll(ctx)
	}
	where, err := sqlbuild.Predicate(filter, JobFilters)
	if err != nil {
		return nil, err
	}
	query := sqlSelectJobs + `
		WHERE  ` + where.SQL + `
		ORDER  BY id`
	return r.list(ctx, "job.findFiltered", query, where.Args...)
}

// ListByCompany returns the jobs posted by one company. A company without
// jobs, or an unknown handle, yields an empty list.
func (r *jobRepo) ListByCompany(ctx context.Context, handle string) ([]*models.Job, error) {
	return r.list(ctx, "job.listByCompany", sqlJobsByCompany, handle)
}

func (r *jobRepo) list(ctx context.Context, op, query string, args ...any) ([]*models.Job, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(op, "job", "", err)
	}
	defer rows.Close()

	jobs := make([]*models.Job, 0)
	for rows.Next() {
		j := &models.Job{}
		if err := rows.Scan(&j.ID, &j.Title, &j.Salary, &j.Equity, &j.CompanyHandle); err != nil {
			return nil, classify(op, "job", "", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, "job", "", err)
	}
	return jobs, nil
}

// Get returns the job with the given id or ErrNotFound.
func (r *jobRepo) Get(ctx context.Context, id int64) (*models.Job, error) {
	j, err := scanJob(r.q.QueryRow(ctx, sqlGetJob, id))
	if err != nil {
		return nil, classify("job.get", "job", strconv.FormatInt(id, 10), err)
	}
	return j, nil
}

// Update applies a partial update to title, salary and equity.
func (r *jobRepo) Update(ctx context.Context, id int64, fields sqlbuild.Fields) (*models.Job, error) {
	if err := checkUpdatable(fields, jobUpdatable); err != nil {
		return nil, err
	}
	set, err := sqlbuild.PartialUpdate(fields, jobAliases)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE jobs
		SET    %s
		WHERE  id = $%d
		RETURNING %s`, set.SQL, set.Next(), jobColumns)

	j, err := scanJob(r.q.QueryRow(ctx, query, append(set.Args, id)...))
	if err != nil {
		key := strconv.FormatInt(id, 10)
		if db.IsDuplicateKey(err) {
			return nil, alreadyExists("job.update", key, "job already exists with that title", err)
		}
		return nil, classify("job.update", "job", key, err)
	}
	return j, nil
}

// Remove deletes a job. Returns ErrNotFound when no job has the id.
func (r *jobRepo) Remove(ctx context.Context, id int64) error {
	var deleted int64
	if err := r.q.QueryRow(ctx, sqlDeleteJob, id).Scan(&deleted); err != nil {
		return classify("job.remove", "job", strconv.FormatInt(id, 10), err)
	}
	return nil
}

func scanJob(row *db.Row) (*models.Job, error) {
	j := &models.Job{}
	if err := row.Scan(&j.ID, &j.Title, &j.Salary, &j.Equity, &j.CompanyHandle); err != nil {
		return nil, err
	}
	return j, nil
}

var _ JobRepository = (*jobRepo)(nil)
