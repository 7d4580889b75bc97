package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	WebhookEventsTotal        metric.Int64Counter
	WebhookEventDuration      metric.Float64Histogram
	ChatMessagesTotal         metric.Int64Counter
	RecommendationCacheHits   metric.Int64Counter
	RecommendationCacheMisses metric.Int64Counter
	ProviderRequestDuration   metric.Float64Histogram
	DbQueryDurationSeconds    metric.Float64Histogram
	DbQueryErrorsTotal        metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments only once.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("GuestConcierge")
		var err error
		m := &AppMetrics{}

		m.WebhookEventsTotal, err = meter.Int64Counter(
			"webhook_events_total",
			metric.WithDescription("Total number of booking webhook events processed"),
			metric.WithUnit("{event}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create webhook_events_total: %v", err)
		}

		m.WebhookEventDuration, err = meter.Float64Histogram(
			"webhook_event_duration_seconds",
			metric.WithDescription("Duration of booking webhook event processing in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create webhook_event_duration_seconds: %v", err)
		}

		m.ChatMessagesTotal, err = meter.Int64Counter(
			"chat_messages_total",
			metric.WithDescription("Total number of chat messages handled"),
			metric.WithUnit("{message}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create chat_messages_total: %v", err)
		}

		m.RecommendationCacheHits, err = meter.Int64Counter(
			"recommendation_cache_hits_total",
			metric.WithDescription("Total number of recommendation cache hits"),
			metric.WithUnit("{hit}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create recommendation_cache_hits_total: %v", err)
		}

		m.RecommendationCacheMisses, err = meter.Int64Counter(
			"recommendation_cache_misses_total",
			metric.WithDescription("Total number of recommendation cache misses"),
			metric.WithUnit("{miss}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create recommendation_cache_misses_total: %v", err)
		}

		m.ProviderRequestDuration, err = meter.Float64Histogram(
			"provider_request_duration_seconds",
			metric.WithDescription("Duration of outbound provider requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create provider_request_duration_seconds: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
