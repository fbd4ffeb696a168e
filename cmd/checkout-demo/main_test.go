package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-checkout/internal/pricing"
)

func TestRunPrintsDemoTotal(t *testing.T) {
	var out bytes.Buffer
	run(context.Background(), &out, zerolog.Nop(), pricing.DefaultRules(), sampleItems, true, "YES")
	require.Equal(t, "The total price is: $878.18\n", out.String())
}

func TestRunReportsRejectedItems(t *testing.T) {
	items := append([]sampleItem{{"Broken", -2, 1}}, sampleItems...)

	var out bytes.Buffer
	run(context.Background(), &out, zerolog.Nop(), pricing.DefaultRules(), items, true, "YES")
	require.Equal(t,
		"Error adding item 'Broken': price and quantity must be non-negative\n"+
			"The total price is: $878.18\n",
		out.String())
}

func TestRunCouponTokenIsExact(t *testing.T) {
	var out bytes.Buffer
	run(context.Background(), &out, zerolog.Nop(), pricing.DefaultRules(), sampleItems, true, "yes")
	require.Equal(t, "The total price is: $1033.15\n", out.String())
}

func TestRunReportsNegativeTotal(t *testing.T) {
	rules := pricing.DefaultRules()
	rules.BigSpenderThreshold = 0

	var out bytes.Buffer
	run(context.Background(), &out, zerolog.Nop(), rules, []sampleItem{{"Gum", 0.01, 1}}, false, "YES")
	require.Equal(t, "Error in calculation!\n", out.String())
}
