package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/jobly-api/models"
	"github.com/Skryldev/jobly-api/sqlbuild"
	"github.com/Skryldev/jobly-api/validation"
)

func ptr[T any](v T) *T { return &v }

func fields(t *testing.T, err error) []string {
	t.Helper()
	var verr *validation.RequestValidationError
	require.True(t, errors.As(err, &verr), "got %T: %v", err, err)
	out := make([]string, len(verr.Errors))
	for i, fe := range verr.Errors {
		out[i] = fe.Field
	}
	return out
}

func TestValidateStruct_Company(t *testing.T) {
	valid := models.CreateCompanyParams{
		Handle:       "acme-co",
		Name:         "Acme",
		Description:  "Anvils",
		NumEmployees: ptr(10),
		LogoURL:      ptr("https://acme.example/logo.png"),
	}
	assert.NoError(t, validation.ValidateStruct(valid))

	tests := []struct {
		name  string
		mod   func(p *models.CreateCompanyParams)
		field string
	}{
		{"missing handle", func(p *models.CreateCompanyParams) { p.Handle = "" }, "handle"},
		{"upper-case handle", func(p *models.CreateCompanyParams) { p.Handle = "Acme" }, "handle"},
		{"handle with space", func(p *models.CreateCompanyParams) { p.Handle = "a b" }, "handle"},
		{"long handle", func(p *models.CreateCompanyParams) { p.Handle = "abcdefghijklmnopqrstuvwxyz" }, "handle"},
		{"missing name", func(p *models.CreateCompanyParams) { p.Name = "" }, "name"},
		{"missing description", func(p *models.CreateCompanyParams) { p.Description = "" }, "description"},
		{"negative employees", func(p *models.CreateCompanyParams) { p.NumEmployees = ptr(-1) }, "numEmployees"},
		{"bad logo", func(p *models.CreateCompanyParams) { p.LogoURL = ptr("not a url") }, "logoUrl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mod(&p)
			err := validation.ValidateStruct(p)
			require.Error(t, err)
			assert.Equal(t, []string{tt.field}, fields(t, err))
			assert.True(t, errors.Is(err, sqlbuild.ErrInvalid))
		})
	}
}

func TestValidateStruct_JobMessages(t *testing.T) {
	err := validation.ValidateStruct(models.CreateJobParams{
		Title:         "",
		Salary:        ptr(int64(-5)),
		Equity:        ptr(1.5),
		CompanyHandle: "c1",
	})
	require.Error(t, err)

	var verr *validation.RequestValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{
		"title is required",
		"salary must be at least 0",
		"equity must be at most 1",
	}, verr.Messages())
}

func TestValidatePatch_Accepts(t *testing.T) {
	err := validation.ValidatePatch(sqlbuild.Fields{
		"name":         sqlbuild.Text("New"),
		"numEmployees": sqlbuild.Null(),
		"logoUrl":      sqlbuild.Text("http://new.example/x.png"),
	}, validation.CompanyPatch)
	assert.NoError(t, err)

	err = validation.ValidatePatch(sqlbuild.Fields{
		"salary": sqlbuild.Int(1000),
		"equity": sqlbuild.Number(0.25),
	}, validation.JobPatch)
	assert.NoError(t, err)
}

func TestValidatePatch_EmptyIsLeftToRepository(t *testing.T) {
	assert.NoError(t, validation.ValidatePatch(sqlbuild.Fields{}, validation.CompanyPatch))
}

func TestValidatePatch_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		patch sqlbuild.Fields
		rules validation.PatchRules
		want  []string
	}{
		{"immutable handle", sqlbuild.Fields{"handle": sqlbuild.Text("x")}, validation.CompanyPatch, []string{"handle"}},
		{"unknown field", sqlbuild.Fields{"bogus": sqlbuild.Int(1)}, validation.JobPatch, []string{"bogus"}},
		{"job id", sqlbuild.Fields{"id": sqlbuild.Int(9)}, validation.JobPatch, []string{"id"}},
		{"null name", sqlbuild.Fields{"name": sqlbuild.Null()}, validation.CompanyPatch, []string{"name"}},
		{"empty title", sqlbuild.Fields{"title": sqlbuild.Text("")}, validation.JobPatch, []string{"title"}},
		{"employees as text", sqlbuild.Fields{"numEmployees": sqlbuild.Text("10")}, validation.CompanyPatch, []string{"numEmployees"}},
		{"fractional employees", sqlbuild.Fields{"numEmployees": sqlbuild.Number(1.5)}, validation.CompanyPatch, []string{"numEmployees"}},
		{"negative salary", sqlbuild.Fields{"salary": sqlbuild.Int(-1)}, validation.JobPatch, []string{"salary"}},
		{"equity above one", sqlbuild.Fields{"equity": sqlbuild.Number(1.2)}, validation.JobPatch, []string{"equity"}},
		{"bad url", sqlbuild.Fields{"logoUrl": sqlbuild.Text("nope")}, validation.CompanyPatch, []string{"logoUrl"}},
		{
			"several sorted by field",
			sqlbuild.Fields{"title": sqlbuild.Bool(true), "equity": sqlbuild.Number(-1), "companyHandle": sqlbuild.Text("c2")},
			validation.JobPatch,
			[]string{"companyHandle", "equity", "title"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidatePatch(tt.patch, tt.rules)
			require.Error(t, err)
			assert.Equal(t, tt.want, fields(t, err))
		})
	}
}

func TestRequestValidationError_Error(t *testing.T) {
	err := validation.ValidatePatch(sqlbuild.Fields{"handle": sqlbuild.Text("x")}, validation.CompanyPatch)
	require.Error(t, err)
	assert.Equal(t, "handle is not an updatable field", err.Error())
}
