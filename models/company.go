package models

// Company represents a row in the "companies" table.
type Company struct {
	Handle       string  `json:"handle"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	NumEmployees *int    `json:"numEmployees"`
	LogoURL      *string `json:"logoUrl"`
}

// CompanyDetail is a company together with the jobs it has posted.
type CompanyDetail struct {
	*Company
	Jobs []*Job `json:"jobs"`
}

// CreateCompanyParams holds the fields accepted when creating a company.
// Handles are lower-case slugs; they are the primary key and never change.
type CreateCompanyParams struct {
	Handle       string  `json:"handle" validate:"required,max=25,handle"`
	Name         string  `json:"name" validate:"required,min=1"`
	Description  string  `json:"description" validate:"required"`
	NumEmployees *int    `json:"numEmployees" validate:"omitempty,min=0"`
	LogoURL      *string `json:"logoUrl" validate:"omitempty,url"`
}
