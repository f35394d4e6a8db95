package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/hexshop/internal/domain/money"
	"github.com/xenking/hexshop/internal/domain/order"
)

type startOrderRequest struct {
	CustomerID     string `json:"customer_id"`
	ProductID      string `json:"product_id"`
	UnitPricePence int64  `json:"unit_price_pence"`
	Quantity       int64  `json:"quantity"`
	Currency       string `json:"currency,omitempty"`
}

type startOrderResponse struct {
	OrderID string `json:"order_id"`
}

type addItemRequest struct {
	ProductID      string `json:"product_id"`
	UnitPricePence int64  `json:"unit_price_pence"`
	Quantity       int64  `json:"quantity"`
	Currency       string `json:"currency,omitempty"`
}

type totalResponse struct {
	TotalPence int64  `json:"total_pence"`
	Currency   string `json:"currency"`
	Formatted  string `json:"formatted"`
}

type previewResponse struct {
	DiscountedTotalPence int64  `json:"discounted_total_pence"`
	Currency             string `json:"currency"`
	Formatted            string `json:"formatted"`
}

type orderItemView struct {
	ProductID      string `json:"product_id"`
	UnitPricePence int64  `json:"unit_price_pence"`
	Currency       string `json:"currency"`
	Quantity       int64  `json:"quantity"`
}

type orderView struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Submitted  bool            `json:"submitted"`
	Items      []orderItemView `json:"items"`
	TotalPence *int64          `json:"total_pence,omitempty"`
	Formatted  string          `json:"formatted,omitempty"`
}

// StartOrder creates a new order for an existing customer with its first
// item and returns the order id.
func (h *Handler) StartOrder(w http.ResponseWriter, r *http.Request) {
	var req startOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		writeBadRequest(w, "invalid customer id")
		return
	}
	cust, err := h.customers.Get(r.Context(), customerID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	price, err := priceFromRequest(req.UnitPricePence, req.Currency)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	orderID, err := h.checkout.StartOrderWithItem(r.Context(), cust, req.ProductID, price, req.Quantity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, startOrderResponse{OrderID: orderID.String()})
}

// AddItem appends a line item to an open order.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	price, err := priceFromRequest(req.UnitPricePence, req.Currency)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := h.checkout.AddItem(r.Context(), orderID, req.ProductID, price, req.Quantity); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// PreviewTotal returns the order total with the threshold discount
// applied. Nothing is persisted.
func (h *Handler) PreviewTotal(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	threshold, err := queryInt64(r, "threshold_pence", h.cfg.DiscountThresholdPence)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	percent, err := queryInt64(r, "discount_pct", h.cfg.DiscountPercent)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	total, err := h.checkout.PreviewTotalWithDiscount(r.Context(), orderID, percent, threshold)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, previewResponse{
		DiscountedTotalPence: total.Amount(),
		Currency:             total.Currency(),
		Formatted:            total.String(),
	})
}

// SubmitOrder finalizes the order and returns its total.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	total, err := h.checkout.Submit(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, totalResponse{
		TotalPence: total.Amount(),
		Currency:   total.Currency(),
		Formatted:  total.String(),
	})
}

// GetOrder returns the full order view.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	o, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	items := o.Items()
	view := orderView{
		ID:         o.ID().String(),
		CustomerID: o.CustomerID().String(),
		Submitted:  o.Submitted(),
		Items:      make([]orderItemView, len(items)),
	}
	for i, item := range items {
		view.Items[i] = orderItemView{
			ProductID:      item.ProductID().String(),
			UnitPricePence: item.UnitPrice().Amount(),
			Currency:       item.UnitPrice().Currency(),
			Quantity:       item.Quantity(),
		}
	}

	// A mixed-currency order has no single total; the view simply omits it.
	if total, err := o.Total(); err == nil {
		amount := total.Amount()
		view.TotalPence = &amount
		view.Formatted = total.String()
	}

	writeJSON(w, http.StatusOK, view)
}

func priceFromRequest(pence int64, currency string) (money.Money, error) {
	if currency == "" {
		currency = money.DefaultCurrency
	}
	return money.New(pence, currency)
}

func orderIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Code:    http.StatusNotFound,
			Message: order.ErrNotFound.Error(),
		})
		return uuid.Nil, false
	}
	return id, true
}

func queryInt64(r *http.Request, name string, fallback int64) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "query parameter %s", name)
	}
	return v, nil
}
