package handlers

import (
	"net/http"

	"brokerage/src/models"
	"brokerage/src/schemas"
	"brokerage/src/services"
)

func (h *Handler) GetAllCompanies(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	pagination, err := schemas.ParsePagination(r.URL.Query())
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	companies, err := h.CompanyService.ListCompanies(ctx, pagination.Page())
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, companies, http.StatusOK)
}

func (h *Handler) GetCompanyByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	id, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	company, err := h.CompanyService.GetCompany(ctx, id)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, company, http.StatusOK)
}

func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var body schemas.CreateCompanyRequest
	if err := h.decode(r, &body); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	if err := schemas.Validate(body); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	foundation, err := schemas.ParseDate(body.FoundationDate)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	company, err := h.CompanyService.CreateCompany(ctx, models.Company{
		Name:           body.Name,
		Profile:        body.Profile,
		FoundationDate: foundation,
	})
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, company, http.StatusCreated)
}

func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	id, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	var body schemas.UpdateCompanyRequest
	if err := h.decode(r, &body); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	if err := schemas.Validate(body); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	foundation, err := schemas.ParseDate(body.FoundationDate)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	company, err := h.CompanyService.UpdateCompany(ctx, id, services.CompanyUpdate{
		Name:           body.Name,
		Profile:        body.Profile,
		FoundationDate: foundation,
	})
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, company, http.StatusOK)
}
