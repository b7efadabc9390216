package handlers

import (
	"net/http"

	"brokerage/src/schemas"
)

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	current, err := h.currentUser(r)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	// Reload so the balance is not the one read during authentication.
	user, err := h.AccountService.GetUser(ctx, current.User.ID)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, schemas.NewUserResponse(user, current.Role), http.StatusOK)
}

func (h *Handler) GetMyHoldings(w http.ResponseWriter, r *http.Request) {
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

	holdings, err := h.AccountService.GetHoldings(ctx, current.User.ID, pagination.Page())
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, holdings, http.StatusOK)
}

func (h *Handler) GetMyTransactions(w http.ResponseWriter, r *http.Request) {
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

	transactions, err := h.AccountService.GetTransactions(ctx, current.User.ID, pagination.Page())
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, transactions, http.StatusOK)
}
