package models

// Job represents a row in the "jobs" table.
type Job struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Salary        *int64   `json:"salary"`
	Equity        *float64 `json:"equity"`
	CompanyHandle string   `json:"companyHandle"`
}

// CreateJobParams holds the fields accepted when posting a job. A title is
// unique per company.
type CreateJobParams struct {
	Title         string   `json:"title" validate:"required,min=1"`
	Salary        *int64   `json:"salary" validate:"omitempty,min=0"`
	Equity        *float64 `json:"equity" validate:"omitempty,min=0,max=1"`
	CompanyHandle string   `json:"companyHandle" validate:"required,max=25,handle"`
}
