package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/jobly-api/models"
	"github.com/Skryldev/jobly-api/repo"
	"github.com/Skryldev/jobly-api/sqlbuild"
)

func titles(js []*models.Job) []string {
	out := make([]string, len(js))
	for i, j := range js {
		out[i] = j.Title
	}
	return out
}

func TestJobRepo_Create(t *testing.T) {
	d := newTestDB(t)
	_, jobs := seed(t, d)

	j, err := jobs.Create(context.Background(), models.CreateJobParams{
		Title: "New", Salary: ptr(int64(50)), Equity: ptr(0.5), CompanyHandle: "c3",
	})
	require.NoError(t, err)
	assert.NotZero(t, j.ID)
	assert.Equal(t, "New", j.Title)
	assert.Equal(t, int64(50), *j.Salary)
	assert.InDelta(t, 0.5, *j.Equity, 1e-9)
	assert.Equal(t, "c3", j.CompanyHandle)
}

func TestJobRepo_Create_Duplicate(t *testing.T) {
	_, jobs := seed(t, newTestDB(t))

	_, err := jobs.Create(context.Background(), models.CreateJobParams{Title: "J1", CompanyHandle: "c1"})
	require.Error(t, err)
	assert.True(t, repo.IsAlreadyExists(err))

	var re *repo.Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "job already exists: J1 with c1", re.Message())

	// Same title at another company is fine.
	_, err = jobs.Create(context.Background(), models.CreateJobParams{Title: "J1", CompanyHandle: "c2"})
	assert.NoError(t, err)
}

func TestJobRepo_Create_UnknownCompany(t *testing.T) {
	_, jobs := seed(t, newTestDB(t))

	_, err := jobs.Create(context.Background(), models.CreateJobParams{Title: "Ghost", CompanyHandle: "nope"})
	require.Error(t, err)
	assert.True(t, repo.IsValidation(err))

	var ve *sqlbuild.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "companyHandle", ve.Field)
}

func TestJobRepo_FindAll_OrderedByID(t *testing.T) {
	_, jobs := seed(t, newTestDB(t))

	all, err := jobs.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"J1", "J2", "J3", "Senior j4"}, titles(all))
	assert.Nil(t, all[3].Salary)
	assert.Nil(t, all[3].Equity)
}

func TestJobRepo_FindFiltered(t *testing.T) {
	_, jobs := seed(t, newTestDB(t))
	ctx := context.Background()

	cases := []struct {
		name   string
		filter sqlbuild.Filter
		want   []string
	}{
		{"empty", sqlbuild.Filter{}, []string{"J1", "J2", "J3", "Senior j4"}},
		{"title substring any case", filter("title", "J4"), []string{"Senior j4"}},
		{"minSalary inclusive", filter("minSalary", 200), []string{"J2", "J3"}},
		{"hasEquity true", filter("hasEquity", true), []string{"J1", "J2"}},
		{"hasEquity false adds nothing", filter("hasEquity", false), []string{"J1", "J2", "J3", "Senior j4"}},
		{"hasEquity from text", filter("hasEquity", "true"), []string{"J1", "J2"}},
		{"all three", filter("title", "j", "minSalary", 150, "hasEquity", true), []string{"J2"}},
		{"fractional minSalary rounds up", filter("minSalary", 199.5), []string{"J2", "J3"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := jobs.FindFiltered(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, titles(got))
		})
	}

	_, err := jobs.FindFiltered(ctx, filter("minEmployees", 1))
	assert.True(t, repo.IsValidation(err), "company keys are not job filters")

	_, err = jobs.FindFiltered(ctx, filter("minSalary", 1e300))
	assert.True(t, repo.IsValidation(err), "bound beyond the column range")
}

func TestJobRepo_ListByCompany(t *testing.T) {
	_, jobs := seed(t, newTestDB(t))
	ctx := context.Background()

	c1, err := jobs.ListByCompany(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"J1", "J2", "J3"}, titles(c1))

	none, err := jobs.ListByCompany(ctx, "c3")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestJobRepo_GetUpdateRemove(t *testing.T) {
	_, jobs := seed(t, newTestDB(t))
	ctx := context.Background()

	all, err := jobs.FindAll(ctx)
	require.NoError(t, err)
	id := all[0].ID

	got, err := jobs.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "J1", got.Title)

	updated, err := jobs.Update(ctx, id, fields("title", "Lead", "salary", 500, "equity", nil))
	require.NoError(t, err)
	assert.Equal(t, "Lead", updated.Title)
	assert.Equal(t, int64(500), *updated.Salary)
	assert.Nil(t, updated.Equity)
	assert.Equal(t, "c1", updated.CompanyHandle)

	_, err = jobs.Update(ctx, id, fields("companyHandle", "c2"))
	assert.True(t, repo.IsValidation(err), "company is fixed")

	_, err = jobs.Update(ctx, id, fields("title", "J2"))
	assert.True(t, repo.IsAlreadyExists(err))

	_, err = jobs.Update(ctx, id, fields("equity", 1.5))
	assert.True(t, repo.IsValidation(err), "equity above 1")

	_, err = jobs.Update(ctx, 0, fields("title", "x"))
	assert.True(t, repo.IsNotFound(err))

	require.NoError(t, jobs.Remove(ctx, id))
	_, err = jobs.Get(ctx, id)
	assert.True(t, repo.IsNotFound(err))
	assert.True(t, repo.IsNotFound(jobs.Remove(ctx, id)))
}
