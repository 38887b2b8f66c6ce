package payments

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/pokedeck/storefront/payments"

// checkoutMetrics agrupa os instrumentos do checkout
type checkoutMetrics struct {
	completed metric.Int64Counter
	failed    metric.Int64Counter
	amount    metric.Float64Histogram
}

func newCheckoutMetrics() *checkoutMetrics {
	meter := otel.Meter(meterName)

	completed, err := meter.Int64Counter("checkout.completed",
		metric.WithDescription("Captured orders persisted"))
	if err != nil {
		log.Printf("⚠️  Failed to create checkout.completed counter: %v", err)
	}
	failed, err := meter.Int64Counter("checkout.failed",
		metric.WithDescription("Capture attempts rolled back"))
	if err != nil {
		log.Printf("⚠️  Failed to create checkout.failed counter: %v", err)
	}
	amount, err := meter.Float64Histogram("checkout.amount",
		metric.WithDescription("Captured order totals"),
		metric.WithUnit("{currency}"))
	if err != nil {
		log.Printf("⚠️  Failed to create checkout.amount histogram: %v", err)
	}

	return &checkoutMetrics{completed: completed, failed: failed, amount: amount}
}

func (m *checkoutMetrics) recordCompleted(ctx context.Context, order *Order) {
	currency := attribute.String("currency", order.Currency)
	if m.completed != nil {
		m.completed.Add(ctx, 1, metric.WithAttributes(currency))
	}
	if m.amount != nil {
		m.amount.Record(ctx, order.Total.InexactFloat64(), metric.WithAttributes(currency))
	}
}

func (m *checkoutMetrics) recordFailed(ctx context.Context, stage string) {
	if m.failed != nil {
		m.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
	}
}
