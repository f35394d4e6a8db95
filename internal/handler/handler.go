// Package handler exposes the checkout use cases over HTTP. It is thin
// I/O glue: request decoding, delegation to the checkout service, and the
// mapping of domain rejections onto status codes. Amounts travel as
// integers in minor currency units.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/hexshop/internal/domain/checkout"
	"github.com/xenking/hexshop/internal/domain/customer"
	"github.com/xenking/hexshop/internal/domain/money"
	"github.com/xenking/hexshop/internal/domain/order"
)

// Config carries the preview defaults used when the request omits the
// discount query parameters.
type Config struct {
	DiscountThresholdPence int64
	DiscountPercent        int64
}

// Handler holds the dependencies shared by all endpoints.
type Handler struct {
	cfg       Config
	checkout  *checkout.Service
	customers customer.Repository
	orders    order.Repository
}

// New constructs a Handler with the required dependencies.
func New(cfg Config, checkoutSvc *checkout.Service, customers customer.Repository, orders order.Repository) *Handler {
	return &Handler{
		cfg:       cfg,
		checkout:  checkoutSvc,
		customers: customers,
		orders:    orders,
	}
}

// Register attaches all routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /customers", h.CreateCustomer)
	mux.HandleFunc("POST /orders", h.StartOrder)
	mux.HandleFunc("POST /orders/{id}/items", h.AddItem)
	mux.HandleFunc("GET /orders/{id}/preview", h.PreviewTotal)
	mux.HandleFunc("POST /orders/{id}/submit", h.SubmitOrder)
	mux.HandleFunc("GET /orders/{id}", h.GetOrder)
}

// errorResponse is the JSON body for all error replies.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeDomainError maps a domain rejection onto an HTTP status: unknown
// ids are 404, every other rule violation is a 400. Anything that is not
// a domain rejection is a 500 and gets logged.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, order.ErrNotFound), errors.Is(err, customer.ErrNotFound):
		status = http.StatusNotFound
	case isDomainRejection(err):
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Code:    http.StatusInternalServerError,
			Message: "internal error",
		})
		return
	}
	writeJSON(w, status, errorResponse{Code: status, Message: err.Error()})
}

func isDomainRejection(err error) bool {
	for _, sentinel := range []error{
		order.ErrEmptyProductID,
		order.ErrAlreadySubmitted,
		order.ErrEmptyOrder,
		customer.ErrInvalidEmail,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return isMoneyRejection(err)
}

func isMoneyRejection(err error) bool {
	for _, sentinel := range []error{
		money.ErrNegativeAmount,
		money.ErrMissingCurrency,
		money.ErrCurrencyMismatch,
		money.ErrInvalidQuantity,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}
