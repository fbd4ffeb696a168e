// Command checkout-demo prices a sample cart and prints the payable total.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-checkout/internal/checkout"
	"github.com/noah-isme/toko-checkout/internal/config"
	"github.com/noah-isme/toko-checkout/internal/obs"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

type sampleItem struct {
	name  string
	price float64
	qty   int
}

var sampleItems = []sampleItem{
	{"Apple", 1.5, 10},
	{"Banana", 0.5, 5},
	{"Laptop", 1000.0, 1},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	level := cfg.LogLevel
	if _, ok := os.LookupEnv("OBS_LOG_LEVEL"); !ok {
		level = "warn"
	}
	logger := obs.NewLoggerTo(os.Stderr, cfg.LogFormat, level).With().Str("env", cfg.AppEnv).Logger()

	rules := pricing.DefaultRules()
	rules.Currency = cfg.CurrencyCode
	run(context.Background(), os.Stdout, logger, rules, sampleItems, true, "YES")
}

func run(ctx context.Context, out io.Writer, logger zerolog.Logger, rules pricing.Rules, items []sampleItem, isMember bool, hasCoupon string) {
	lines := make([]checkout.Line, 0, len(items))
	for _, it := range items {
		line := checkout.Line{Name: it.name, Price: it.price, Qty: it.qty}
		if strings.ToLower(it.name) == "laptop" {
			line.Category = pricing.CategoryElectronics
		}
		lines = append(lines, line)
	}

	svc := &checkout.Service{Logger: logger, Rules: rules}
	receipt, err := svc.Quote(ctx, lines, isMember, pricing.ParseCoupon(hasCoupon))
	for _, rejected := range receipt.Rejected {
		fmt.Fprintln(out, rejected.Error())
	}
	fmt.Fprintln(out, checkout.Message(receipt, err))
}
