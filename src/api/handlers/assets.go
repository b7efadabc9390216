package handlers

import (
	"net/http"
	"strconv"

	"brokerage/src/repositories"
	"brokerage/src/schemas"
	"brokerage/src/services"
	"brokerage/src/utils"
)

// GetAllAssets lists the catalog, optionally only one company's assets.
func (h *Handler) GetAllAssets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	pagination, err := schemas.ParsePagination(r.URL.Query())
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	var filter repositories.AssetFilter
	if raw := r.URL.Query().Get("company_id"); raw != "" {
		if filter.CompanyID, err = strconv.ParseInt(raw, 10, 64); err != nil || filter.CompanyID <= 0 {
			h.HandleErrors(w, r, utils.BadRequest("invalid company_id"))
			return
		}
	}

	assets, err := h.CatalogService.ListAssets(ctx, filter, pagination.Page())
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, assets, http.StatusOK)
}

func (h *Handler) SearchAssets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	pagination, err := schemas.ParsePagination(r.URL.Query())
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	assets, err := h.CatalogService.SearchAssets(ctx, r.URL.Query().Get("q"), pagination.Page())
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, assets, http.StatusOK)
}

func (h *Handler) GetAssetByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	id, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	asset, err := h.CatalogService.GetAsset(ctx, id)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, asset, http.StatusOK)
}

func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var body schemas.CreateAssetRequest
	if err := h.decode(r, &body); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	if err := schemas.Validate(body); err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	asset, err := h.CatalogService.CreateAsset(ctx, services.NewAsset{
		CompanyID:      body.CompanyID,
		Ticker:         body.Ticker,
		Name:           body.Name,
		Description:    body.Description,
		Price:          body.Price,
		AvailableCount: body.AvailableCount,
	})
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, asset, http.StatusCreated)
}

func (h *Handler) UpdateAssetPrice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	id, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	var body schemas.UpdatePriceRequest
	if err := h.decode(r, &body); err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	asset, err := h.CatalogService.UpdatePrice(ctx, id, body.Price)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, asset, http.StatusOK)
}
