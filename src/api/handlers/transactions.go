package handlers

import (
	"net/http"
	"strconv"

	"brokerage/src/repositories"
	"brokerage/src/schemas"
	"brokerage/src/utils"
)

// GetAllTransactions lists the transaction log. Non-admins must pass their own
// user_id.
func (h *Handler) GetAllTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	current, err := h.currentUser(r)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	pagination, err := schemas.ParsePagination(r.URL.Query())
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	var filter repositories.TransactionFilter
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		if filter.UserID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			h.HandleErrors(w, r, utils.BadRequest("invalid user_id"))
			return
		}
	}
	if raw := r.URL.Query().Get("asset_id"); raw != "" {
		if filter.AssetID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			h.HandleErrors(w, r, utils.BadRequest("invalid asset_id"))
			return
		}
	}

	transactions, err := h.TransactionService.ListTransactions(ctx, current.Viewer(), filter, pagination.Page())
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, transactions, http.StatusOK)
}

func (h *Handler) GetTransactionByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	current, err := h.currentUser(r)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	transaction, err := h.TransactionService.GetTransaction(ctx, current.Viewer(), id)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, transaction, http.StatusOK)
}
