package checkout

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

// QuoteRequest is the body accepted by Handler.Quote. Negative prices and
// quantities pass validation here and are rejected per line by pricing.
type QuoteRequest struct {
	Items  []QuoteLine `json:"items" validate:"max=500,dive"`
	Member bool        `json:"member"`
	Coupon bool        `json:"coupon"`
}

// QuoteLine is one requested cart line.
type QuoteLine struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Price    float64 `json:"price"`
	Qty      int     `json:"qty"`
	Category string  `json:"category" validate:"omitempty,max=64"`
}

type rejectedLine struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type quoteResponse struct {
	ID        string          `json:"id"`
	Items     int             `json:"items"`
	Summary   pricing.Summary `json:"summary"`
	Display   string          `json:"display"`
	Rejected  []rejectedLine  `json:"rejected"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Handler exposes the quote service over HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// NewHandler returns a handler with a default validator.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, Validate: defaultValidate}
}

// Quote prices the posted cart.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	var payload QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.WriteError(w, common.BadRequest("invalid payload", err))
		return
	}
	if err := h.validator().Struct(payload); err != nil {
		common.WriteError(w, &common.AppError{
			Code:       "BAD_REQUEST",
			Message:    "invalid quote request",
			HTTPStatus: http.StatusBadRequest,
			Err:        err,
			Details:    validationDetails(err),
		})
		return
	}

	lines := make([]Line, 0, len(payload.Items))
	for _, it := range payload.Items {
		lines = append(lines, Line{Name: it.Name, Price: it.Price, Qty: it.Qty, Category: it.Category})
	}
	coupon := pricing.CouponNone
	if payload.Coupon {
		coupon = pricing.CouponApplied
	}

	receipt, err := h.Svc.Quote(r.Context(), lines, payload.Member, coupon)
	switch {
	case IsNegativeTotal(err):
		common.JSONError(w, http.StatusUnprocessableEntity, "NEGATIVE_TOTAL", MsgNegativeTotal, map[string]any{"id": receipt.ID.String()})
		return
	case errors.Is(err, pricing.ErrCalculation):
		common.JSONError(w, http.StatusInternalServerError, "CALCULATION_ERROR", Message(receipt, err), nil)
		return
	case err != nil:
		common.WriteError(w, err)
		return
	}

	rejected := make([]rejectedLine, 0, len(receipt.Rejected))
	for _, le := range receipt.Rejected {
		rejected = append(rejected, rejectedLine{Name: le.Name, Message: le.Error()})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": quoteResponse{
		ID:        receipt.ID.String(),
		Items:     receipt.Items,
		Summary:   receipt.Summary,
		Display:   FormatAmount(receipt.Summary.Total),
		Rejected:  rejected,
		CreatedAt: receipt.CreatedAt,
	}})
}

var defaultValidate = validator.New(validator.WithRequiredStructEnabled())

func (h *Handler) validator() *validator.Validate {
	if h.Validate == nil {
		return defaultValidate
	}
	return h.Validate
}

func validationDetails(err error) []map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]map[string]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, map[string]string{"field": fe.Namespace(), "rule": fe.Tag()})
	}
	return out
}
