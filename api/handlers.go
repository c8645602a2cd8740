package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Skryldev/jobly-api/logging"
	"github.com/Skryldev/jobly-api/models"
	"github.com/Skryldev/jobly-api/repo"
	"github.com/Skryldev/jobly-api/validation"
)

// Store is what the handlers need from the persistence layer. *repo.Store
// implements it.
type Store interface {
	Companies() repo.CompanyRepository
	Jobs() repo.JobRepository
	CompanyDetail(ctx context.Context, handle string) (*models.CompanyDetail, error)
	Ping(ctx context.Context) error
}

// Handler serves the company and job resources.
type Handler struct {
	store     Store
	companies repo.CompanyRepository
	jobs      repo.JobRepository
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store, companies: store.Companies(), jobs: store.Jobs()}
}

// ─────────────────────────────────────────────────────────────────────────────
// Health
// ─────────────────────────────────────────────────────────────────────────────

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("api: health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "up"})
}

// ─────────────────────────────────────────────────────────────────────────────
// Companies
// ─────────────────────────────────────────────────────────────────────────────

func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var p models.CreateCompanyParams
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validation.ValidateStruct(p); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.companies.Create(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Str("handle", c.Handle).Msg("company created")
	writeJSON(w, http.StatusCreated, map[string]any{"company": c})
}

// ListCompanies serves GET /companies. Without query parameters every
// company is returned; otherwise name, minEmployees and maxEmployees narrow
// the result.
func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	filter, err := queryFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var companies []*models.Company
	if len(filter) == 0 {
		companies, err = h.companies.FindAll(r.Context())
	} else {
		companies, err = h.companies.FindFiltered(r.Context(), filter)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if companies == nil {
		companies = []*models.Company{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": companies})
}

// GetCompany returns the company together with its jobs.
func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	detail, err := h.store.CompanyDetail(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if detail.Jobs == nil {
		detail.Jobs = []*models.Job{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"company": detail})
}

func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	fields, err := decodePatch(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := validation.ValidatePatch(fields, validation.CompanyPatch); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.companies.Update(r.Context(), chi.URLParam(r, "handle"), fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"company": c})
}

func (h *Handler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	if err := h.companies.Remove(r.Context(), handle); err != nil {
		writeError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Str("handle", handle).Msg("company deleted")
	writeJSON(w, http.StatusOK, map[string]any{"deleted": handle})
}

// ─────────────────────────────────────────────────────────────────────────────
// Jobs
// ─────────────────────────────────────────────────────────────────────────────

func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var p models.CreateJobParams
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validation.ValidateStruct(p); err != nil {
		writeError(w, r, err)
		return
	}

	j, err := h.jobs.Create(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Int64("job_id", j.ID).Str("handle", j.CompanyHandle).Msg("job created")
	writeJSON(w, http.StatusCreated, map[string]any{"job": j})
}

// ListJobs serves GET /jobs, filtered by title, minSalary and hasEquity.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	filter, err := queryFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var jobs []*models.Job
	if len(filter) == 0 {
		jobs, err = h.jobs.FindAll(r.Context())
	} else {
		jobs, err = h.jobs.FindFiltered(r.Context(), filter)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []*models.Job{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseJobID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	j, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": j})
}

func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseJobID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	fields, err := decodePatch(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := validation.ValidatePatch(fields, validation.JobPatch); err != nil {
		writeError(w, r, err)
		return
	}

	j, err := h.jobs.Update(r.Context(), id, fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": j})
}

func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseJobID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.jobs.Remove(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Int64("job_id", id).Msg("job deleted")
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}
