package repo

import (
	"context"

	"github.com/Skryldev/jobly-api/db"
	"github.com/Skryldev/jobly-api/models"
)

// Store groups the repositories over one database and runs reads that span
// both tables in a single transaction.
type Store struct {
	db        *db.DB
	companies CompanyRepository
	jobs      JobRepository
}

func NewStore(d *db.DB) *Store {
	return &Store{
		db:        d,
		companies: NewCompanyRepository(d),
		jobs:      NewJobRepository(d),
	}
}

func (s *Store) Companies() CompanyRepository { return s.companies }
func (s *Store) Jobs() JobRepository          { return s.jobs }

// Ping checks the underlying connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.Ping(ctx) }

// CompanyDetail returns the company and its jobs, ordered by id, read in one
// read-only transaction. A company without jobs has an empty, non-nil list.
func (s *Store) CompanyDetail(ctx context.Context, handle string) (*models.CompanyDetail, error) {
	var out *models.CompanyDetail
	err := s.db.ExecTx(ctx, func(tx *db.Tx) error {
		c, err := NewCompanyRepository(tx).Get(ctx, handle)
		if err != nil {
			return err
		}
		jobs, err := NewJobRepository(tx).ListByCompany(ctx, handle)
		if err != nil {
			return err
		}
		out = &models.CompanyDetail{Company: c, Jobs: jobs}
		return nil
	}, db.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	return out, nil
}
