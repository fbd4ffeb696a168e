package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/toko-checkout/internal/obs"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

// Line is a requested cart line before validation.
type Line struct {
	Name     string
	Price    float64
	Qty      int
	Category string
}

// LineError records a line that could not be added to the cart.
type LineError struct {
	Name string
	Err  error
}

func (e LineError) Error() string {
	var argErr *pricing.ArgumentError
	if errors.As(e.Err, &argErr) {
		return fmt.Sprintf("Error adding item '%s': %s", e.Name, argErr.Msg)
	}
	return fmt.Sprintf("Error adding item '%s': %v", e.Name, e.Err)
}

func (e LineError) Unwrap() error { return e.Err }

// Receipt is the outcome of pricing one cart.
type Receipt struct {
	ID        uuid.UUID
	Summary   pricing.Summary
	Items     int
	Rejected  []LineError
	CreatedAt time.Time
}

// Service prices carts built from request lines. Every call builds its own
// cart, so a Service may be shared between goroutines.
type Service struct {
	Logger zerolog.Logger
	// Rules overrides pricing.DefaultRules when non-zero.
	Rules pricing.Rules
	Now   func() time.Time

	price func(c *pricing.Cart, isMember bool, coupon pricing.Coupon) pricing.Summary
}

// Quote builds a cart from lines and prices it. Lines failing item validation
// are skipped and reported on the receipt. A negative total yields the
// receipt together with pricing.ErrNegativeTotal; unexpected failures are
// wrapped in pricing.ErrCalculation.
func (s *Service) Quote(ctx context.Context, lines []Line, isMember bool, coupon pricing.Coupon) (receipt Receipt, err error) {
	ctx, span := otel.Tracer("checkout.Service").Start(ctx, "checkout.quote")
	defer span.End()

	result := "error"
	defer func() {
		span.SetAttributes(
			attribute.Int("checkout.lines", len(lines)),
			attribute.Int("checkout.rejected", len(receipt.Rejected)),
			attribute.Bool("checkout.member", isMember),
			attribute.Bool("checkout.coupon", coupon.Applies()),
			attribute.String("checkout.result", result),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
		}
		if obs.QuoteTotal != nil {
			obs.QuoteTotal.WithLabelValues(strconv.FormatBool(isMember), strconv.FormatBool(coupon.Applies()), result).Inc()
		}
	}()

	rules := s.rules()
	cart, err := pricing.NewCartWithRules(rules)
	if err != nil {
		return Receipt{}, fmt.Errorf("build cart: %w", err)
	}

	logger := s.Logger.With().Ctx(ctx).Logger()
	receipt = Receipt{ID: uuid.New(), CreatedAt: s.now()}
	for _, line := range lines {
		item, itemErr := pricing.NewItem(line.Name, line.Price, line.Qty)
		if itemErr != nil {
			receipt.Rejected = append(receipt.Rejected, LineError{Name: line.Name, Err: itemErr})
			if obs.QuoteRejectedLines != nil {
				obs.QuoteRejectedLines.Inc()
			}
			logger.Warn().Err(itemErr).Str("item", line.Name).Msg("reject cart line")
			continue
		}
		if line.Category != "" {
			item.SetCategory(line.Category)
		}
		cart.AddItem(item)
	}
	receipt.Items = cart.Len()

	summary, err := s.priceSafely(cart, isMember, coupon)
	if err != nil {
		result = "calculation_error"
		logger.Error().Err(err).Str("quote_id", receipt.ID.String()).Msg("price cart")
		return receipt, err
	}
	receipt.Summary = summary
	if obs.QuoteAmount != nil {
		obs.QuoteAmount.Observe(summary.Total)
	}

	if summary.Total < 0 {
		result = "negative_total"
		logger.Warn().Float64("total", summary.Total).Str("quote_id", receipt.ID.String()).Msg("negative cart total")
		return receipt, fmt.Errorf("%w: %.2f", pricing.ErrNegativeTotal, summary.Total)
	}

	result = "ok"
	logger.Debug().
		Str("quote_id", receipt.ID.String()).
		Int("items", receipt.Items).
		Float64("subtotal", summary.Subtotal).
		Float64("total", summary.Total).
		Msg("cart priced")
	return receipt, nil
}

func (s *Service) priceSafely(cart *pricing.Cart, isMember bool, coupon pricing.Coupon) (summary pricing.Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", pricing.ErrCalculation, r)
		}
	}()
	price := s.price
	if price == nil {
		price = func(c *pricing.Cart, isMember bool, coupon pricing.Coupon) pricing.Summary {
			return c.Quote(isMember, coupon)
		}
	}
	summary = price(cart, isMember, coupon)
	if math.IsNaN(summary.Total) || math.IsInf(summary.Total, 0) {
		return pricing.Summary{}, fmt.Errorf("%w: total is not a finite number", pricing.ErrCalculation)
	}
	return summary, nil
}

func (s *Service) rules() pricing.Rules {
	if s.Rules == (pricing.Rules{}) {
		return pricing.DefaultRules()
	}
	return s.Rules
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// IsNegativeTotal reports whether err flags a total below zero.
func IsNegativeTotal(err error) bool {
	return errors.Is(err, pricing.ErrNegativeTotal)
}
