package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

var (
	// Global logger instance
	Logger *zap.Logger

	// Metrics
	messagesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_processed_total",
			Help: "Total number of pipeline messages processed",
		},
		[]string{"status"},
	)

	floodMutesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flood_mutes_total",
			Help: "Total number of users muted for flooding",
		},
	)

	broadcastDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_deliveries_total",
			Help: "Broadcast message deliveries by outcome",
		},
		[]string{"outcome"},
	)

	messageProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "message_processing_duration_seconds",
			Help:    "Time spent processing messages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
)

func Init(ctx context.Context, addr string) error {
	// Initialize logger
	var err error
	Logger, err = zap.NewProduction()
	if err != nil {
		return err
	}

	// Register metrics
	prometheus.MustRegister(messagesProcessedTotal)
	prometheus.MustRegister(floodMutesTotal)
	prometheus.MustRegister(broadcastDeliveriesTotal)
	prometheus.MustRegister(messageProcessingDuration)

	// Setup OpenTelemetry (simplified setup)
	tp := trace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	// Start Prometheus metrics endpoint
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.WithError(err).Error("metrics server failed")
			Logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	return nil
}

// RecordMessageProcessed records one pipeline pass with its final status.
func RecordMessageProcessed(status string) {
	messagesProcessedTotal.WithLabelValues(status).Inc()
}

// RecordFloodMute records a flood mute being issued.
func RecordFloodMute() {
	floodMutesTotal.Inc()
}

// RecordBroadcastDelivery records a single broadcast send outcome.
func RecordBroadcastDelivery(outcome string) {
	broadcastDeliveriesTotal.WithLabelValues(outcome).Inc()
}

// StartMessageProcessing returns a function that records the elapsed
// processing time under the pipeline's final status.
func StartMessageProcessing() func(status string) {
	start := time.Now()
	return func(status string) {
		messageProcessingDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}
}
