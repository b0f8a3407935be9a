package handler

import (
	"log/slog"
	"math"
	"net/http"

	"github.com/rahat/chatterpoint/internal/apperror"
	"github.com/rahat/chatterpoint/internal/payment"
)

// PaymentHandler creates payment intents for the checkout flow.
type PaymentHandler struct {
	provider payment.Provider
	logger   *slog.Logger
}

func NewPaymentHandler(provider payment.Provider, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{provider: provider, logger: logger}
}

// CreateIntent handles POST /create-payment-intent with body {"price": ...}.
// The price is in whole currency units and is converted to cents for the
// provider.
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Price float64 `json:"price"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if in.Price <= 0 {
		writeError(w, h.logger, r, apperror.ValidationFailed("price", "Price must be positive"))
		return
	}

	amount := int64(math.Round(in.Price * 100))
	clientSecret, err := h.provider.CreateIntent(r.Context(), amount, "usd")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"clientSecret": clientSecret})
}
