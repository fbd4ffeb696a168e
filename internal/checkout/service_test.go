package checkout

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-checkout/internal/obs"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

func demoLines() []Line {
	return []Line{
		{Name: "Apple", Price: 1.5, Qty: 10},
		{Name: "Banana", Price: 0.5, Qty: 5},
		{Name: "Laptop", Price: 1000.0, Qty: 1, Category: pricing.CategoryElectronics},
	}
}

func TestQuoteDemoCart(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := &Service{Now: func() time.Time { return fixed }}

	receipt, err := svc.Quote(context.Background(), demoLines(), true, pricing.ParseCoupon("YES"))
	require.NoError(t, err)
	require.Equal(t, 3, receipt.Items)
	require.Empty(t, receipt.Rejected)
	require.Equal(t, fixed, receipt.CreatedAt)
	require.NotEqual(t, uuid.Nil, receipt.ID)
	require.InDelta(t, 1017.5, receipt.Summary.Subtotal, 1e-9)
	require.InDelta(t, 878.18175, receipt.Summary.Total, 1e-9)
	require.Equal(t, "The total price is: $878.18", Message(receipt, err))
}

func TestQuoteSkipsInvalidLines(t *testing.T) {
	var logs bytes.Buffer
	svc := &Service{Logger: obs.NewLoggerTo(&logs, "json", "warn")}
	lines := append([]Line{{Name: "Broken", Price: -1, Qty: 1}}, demoLines()...)
	lines = append(lines, Line{Name: "Ghost", Price: 3, Qty: -2})

	receipt, err := svc.Quote(context.Background(), lines, true, pricing.CouponApplied)
	require.NoError(t, err)
	require.Equal(t, 3, receipt.Items)
	require.Len(t, receipt.Rejected, 2)
	require.Equal(t, "Error adding item 'Broken': price and quantity must be non-negative", receipt.Rejected[0].Error())
	require.Equal(t, "Ghost", receipt.Rejected[1].Name)
	require.ErrorIs(t, receipt.Rejected[1], pricing.ErrInvalidArgument)
	require.InDelta(t, 878.18175, receipt.Summary.Total, 1e-9)
	require.Contains(t, logs.String(), "reject cart line")
}

func TestQuoteCategoryDoesNotChangeFee(t *testing.T) {
	svc := &Service{}
	receipt, err := svc.Quote(context.Background(), []Line{{Name: "TV", Price: 50, Qty: 2, Category: pricing.CategoryElectronics}}, false, pricing.CouponNone)
	require.NoError(t, err)
	require.InDelta(t, 100.0, receipt.Summary.Subtotal, 1e-9)
}

func TestQuoteNegativeTotal(t *testing.T) {
	rules := pricing.DefaultRules()
	rules.BigSpenderThreshold = 0
	svc := &Service{Rules: rules}

	receipt, err := svc.Quote(context.Background(), []Line{{Name: "Gum", Price: 0.01, Qty: 1}}, false, pricing.CouponApplied)
	require.ErrorIs(t, err, pricing.ErrNegativeTotal)
	require.True(t, IsNegativeTotal(err))
	require.Less(t, receipt.Summary.Total, 0.0)
	require.Equal(t, MsgNegativeTotal, Message(receipt, err))
}

func TestQuoteInvalidRules(t *testing.T) {
	rules := pricing.DefaultRules()
	rules.CouponDiscountRate = 2
	svc := &Service{Rules: rules}

	_, err := svc.Quote(context.Background(), demoLines(), true, pricing.CouponApplied)
	require.ErrorIs(t, err, pricing.ErrInvalidArgument)
}

func TestQuoteRecoversCalculationPanic(t *testing.T) {
	svc := &Service{price: func(*pricing.Cart, bool, pricing.Coupon) pricing.Summary {
		panic("boom")
	}}

	receipt, err := svc.Quote(context.Background(), demoLines(), true, pricing.CouponApplied)
	require.ErrorIs(t, err, pricing.ErrCalculation)
	require.Equal(t, 3, receipt.Items)
	require.Equal(t, "An error occurred during calculation: calculation error: boom", Message(receipt, err))
}

func TestQuoteRejectsNonFiniteTotal(t *testing.T) {
	svc := &Service{}
	_, err := svc.Quote(context.Background(), []Line{{Name: "Huge", Price: math.MaxFloat64, Qty: 4}}, false, pricing.CouponNone)
	require.ErrorIs(t, err, pricing.ErrCalculation)
}

func TestQuoteRecordsMetrics(t *testing.T) {
	obs.MustRegisterDomainMetrics("checkout_test", prometheus.NewRegistry())
	ok := obs.QuoteTotal.WithLabelValues("true", "true", "ok")
	before := testutil.ToFloat64(ok)
	rejectedBefore := testutil.ToFloat64(obs.QuoteRejectedLines)

	svc := &Service{}
	lines := append(demoLines(), Line{Name: "Broken", Price: -1, Qty: 1})
	_, err := svc.Quote(context.Background(), lines, true, pricing.CouponApplied)
	require.NoError(t, err)

	require.Equal(t, before+1, testutil.ToFloat64(ok))
	require.Equal(t, rejectedBefore+1, testutil.ToFloat64(obs.QuoteRejectedLines))
}

func TestQuoteIsRepeatable(t *testing.T) {
	svc := &Service{}
	first, err := svc.Quote(context.Background(), demoLines(), true, pricing.CouponApplied)
	require.NoError(t, err)
	second, err := svc.Quote(context.Background(), demoLines(), true, pricing.CouponApplied)
	require.NoError(t, err)
	require.Equal(t, first.Summary, second.Summary)
	require.NotEqual(t, first.ID, second.ID)
}

func TestFormatTotal(t *testing.T) {
	require.Equal(t, "The total price is: $878.18", FormatTotal(878.18175))
	require.Equal(t, "The total price is: $0.00", FormatTotal(0))
	require.Equal(t, "The total price is: $2.50", FormatTotal(2.5))
}

func TestFormatAmountRoundsBinaryValue(t *testing.T) {
	cases := map[float64]string{
		878.18175: "878.18",
		1033.155:  "1033.15",
		2.675:     "2.67",
		1.005:     "1.00",
		0.125:     "0.12",
		0.375:     "0.38",
		-3.5:      "-3.50",
	}
	for in, want := range cases {
		require.Equal(t, want, FormatAmount(in), "amount %v", in)
	}
}

func TestMessageWithPlainError(t *testing.T) {
	require.Equal(t, "An error occurred during calculation: oops", Message(Receipt{}, errors.New("oops")))
}
