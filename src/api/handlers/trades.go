package handlers

import (
	"net/http"
	"strings"

	"brokerage/src/models"
	"brokerage/src/schemas"
	"brokerage/src/services"
	"brokerage/src/utils"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	maxIdempotencyKeyLen = 255
)

func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, models.TransactionBuy)
}

func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, models.TransactionSell)
}

func (h *Handler) trade(w http.ResponseWriter, r *http.Request, kind models.TransactionKind) {
	ctx, cancel := h.context(r)
	defer cancel()

	current, err := h.currentUser(r)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	var body schemas.TradeRequest
	if err := h.decode(r, &body); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	if err := schemas.Validate(body); err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLen {
		h.HandleErrors(w, r, utils.BadRequest("Idempotency-Key is too long"))
		return
	}

	req := services.TradeRequest{
		UserID:         current.User.ID,
		AssetID:        body.AssetID,
		Amount:         body.Amount,
		IdempotencyKey: key,
	}
	var transaction *models.Transaction
	if kind == models.TransactionBuy {
		transaction, err = h.TradeService.ExecuteBuy(ctx, req)
	} else {
		transaction, err = h.TradeService.ExecuteSell(ctx, req)
	}
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, transaction, http.StatusCreated)
}

func (h *Handler) TopUpBalance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	current, err := h.currentUser(r)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	var body schemas.TopUpRequest
	if err := h.decode(r, &body); err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	user, err := h.TradeService.TopUp(ctx, current.User.ID, body.Amount)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, schemas.NewUserResponse(user, current.Role), http.StatusOK)
}
