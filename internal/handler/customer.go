package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/hexshop/internal/domain/customer"
)

type createCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type createCustomerResponse struct {
	CustomerID string `json:"customer_id"`
}

// CreateCustomer registers a new customer and returns its id.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	c, err := customer.New(req.Name, req.Email)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := h.customers.Save(r.Context(), c); err != nil {
		writeDomainError(w, r, errors.Wrap(err, "save customer"))
		return
	}

	writeJSON(w, http.StatusCreated, createCustomerResponse{CustomerID: c.ID.String()})
}
