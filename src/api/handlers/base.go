package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"brokerage/src/api/middleware"
	"brokerage/src/services"
	"brokerage/src/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	TradeService       services.TradeServiceI
	CatalogService     services.CatalogServiceI
	CompanyService     services.CompanyServiceI
	AccountService     services.AccountServiceI
	TransactionService services.TransactionServiceI
	RequestTimeout     time.Duration
}

func NewHandler(
	tradeService services.TradeServiceI,
	catalogService services.CatalogServiceI,
	companyService services.CompanyServiceI,
	accountService services.AccountServiceI,
	transactionService services.TransactionServiceI,
	requestTimeout time.Duration,
) *Handler {
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}
	return &Handler{
		TradeService:       tradeService,
		CatalogService:     catalogService,
		CompanyService:     companyService,
		AccountService:     accountService,
		TransactionService: transactionService,
		RequestTimeout:     requestTimeout,
	}
}

func (h *Handler) context(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.RequestTimeout)
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

// HandleErrors writes err as {"error": message} with the status of its kind.
func (h *Handler) HandleErrors(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *utils.HTTPError
	if errors.Is(err, context.DeadlineExceeded) {
		h.respond(w, r, map[string]string{"error": "Request timed out"}, http.StatusGatewayTimeout)
	} else if errors.As(err, &httpErr) {
		h.respond(w, r, map[string]string{"error": httpErr.Message}, httpErr.Code)
	} else if mapped := domainError(err); mapped != nil {
		errors.As(mapped, &httpErr)
		h.respond(w, r, map[string]string{"error": httpErr.Message}, httpErr.Code)
	} else if err != nil {
		utils.LoggerFromContext(r.Context()).WithError(err).Error("unhandled error")
		h.respond(w, r, map[string]string{"error": "Internal Server Error"}, http.StatusInternalServerError)
	} else {
		h.respond(w, r, map[string]string{"error": "Unhandled error"}, http.StatusInternalServerError)
	}
}

// errorStatuses maps service errors to response codes. The message is the
// sentinel's own text, so responses stay stable per kind.
var errorStatuses = []struct {
	target error
	code   int
}{
	{services.ErrUserNotFound, http.StatusNotFound},
	{services.ErrAssetNotFound, http.StatusNotFound},
	{services.ErrTransactionNotFound, http.StatusNotFound},
	{services.ErrCompanyNotFound, http.StatusNotFound},
	{services.ErrAssetNotAvailable, http.StatusConflict},
	{services.ErrIdempotencyConflict, http.StatusConflict},
	{services.ErrTickerTaken, http.StatusConflict},
	{services.ErrCompanyExists, http.StatusConflict},
	{services.ErrInsufficientFunds, http.StatusPaymentRequired},
	{services.ErrInsufficientHoldings, http.StatusBadRequest},
	{services.ErrInvalidAmount, http.StatusBadRequest},
	{services.ErrInvalidCompany, http.StatusBadRequest},
	{services.ErrForbidden, http.StatusForbidden},
	{services.ErrStorage, http.StatusServiceUnavailable},
	{context.Canceled, http.StatusServiceUnavailable},
}

func domainError(err error) error {
	for _, e := range errorStatuses {
		if !errors.Is(err, e.target) {
			continue
		}
		message := e.target.Error()
		switch e.target {
		case services.ErrInvalidAmount, services.ErrInvalidCompany:
			// Keeps the reason, e.g. "invalid amount: value must be greater than zero".
			message = err.Error()
		case context.Canceled:
			message = services.ErrStorage.Error()
		}
		return utils.NewHTTPError(e.code, message)
	}
	return nil
}

func (h *Handler) decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return utils.BadRequest("invalid request body")
	}
	return nil
}

func (h *Handler) currentUser(r *http.Request) (middleware.CurrentUser, error) {
	current, ok := middleware.CurrentUserFromContext(r.Context())
	if !ok {
		return middleware.CurrentUser{}, utils.Unauthorized("authentication required")
	}
	return current, nil
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, utils.BadRequest("invalid " + name)
	}
	return id, nil
}
