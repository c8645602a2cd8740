package repo

import "github.com/Skryldev/jobly-api/sqlbuild"

// CompanyFilters is the search whitelist for GET /companies.
var CompanyFilters = sqlbuild.FilterSchema{
	Keys: []sqlbuild.FilterKey{
		{Name: "name", Column: "name", Type: sqlbuild.TypeText, Op: sqlbuild.OpContainsFold},
		{Name: "minEmployees", Column: "num_employees", Type: sqlbuild.TypeNumeric, Op: sqlbuild.OpGT, Integer: true},
		{Name: "maxEmployees", Column: "num_employees", Type: sqlbuild.TypeNumeric, Op: sqlbuild.OpLT, Integer: true},
	},
	Ranges: []sqlbuild.Range{{Min: "minEmployees", Max: "maxEmployees"}},
}

// JobFilters is the search whitelist for GET /jobs.
var JobFilters = sqlbuild.FilterSchema{
	Keys: []sqlbuild.FilterKey{
		{Name: "title", Column: "title", Type: sqlbuild.TypeText, Op: sqlbuild.OpContainsFold},
		{Name: "minSalary", Column: "salary", Type: sqlbuild.TypeNumeric, Op: sqlbuild.OpGTE, Integer: true},
		{Name: "hasEquity", Column: "equity", Type: sqlbuild.TypeFlag, Op: sqlbuild.OpPositive},
	},
}

var (
	companyAliases = sqlbuild.Aliases{"numEmployees": "num_employees", "logoUrl": "logo_url"}
	jobAliases     = sqlbuild.Aliases{"companyHandle": "company_handle"}
)

// Fields a partial update may touch. Keys and the owning company are fixed
// at creation.
var (
	companyUpdatable = map[string]bool{"name": true, "description": true, "numEmployees": true, "logoUrl": true}
	jobUpdatable     = map[string]bool{"title": true, "salary": true, "equity": true}
)

// checkUpdatable rejects fields outside allowed, naming the first offender in
// sorted order.
func checkUpdatable(fields sqlbuild.Fields, allowed map[string]bool) error {
	for _, k := range fields.Keys() {
		if !allowed[k] {
			return sqlbuild.Invalid(k, "field cannot be updated")
		}
	}
	return nil
}
