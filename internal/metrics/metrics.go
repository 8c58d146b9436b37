// Package metrics exposes prometheus collectors for the bot.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	wordLookupTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordbot_word_lookup_total",
			Help: "Total number of word lookups",
		},
		[]string{"cache_hit"},
	)

	dictionaryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordbot_dictionary_requests_total",
			Help: "Total number of dictionary provider requests",
		},
		[]string{"status"},
	)

	dictionaryRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wordbot_dictionary_request_duration_seconds",
			Help:    "Dictionary provider request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	sessionActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordbot_session_actions_total",
			Help: "Total number of review and test actions",
		},
		[]string{"command", "mode"},
	)

	remindersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordbot_reminders_total",
			Help: "Total number of reminder deliveries",
		},
		[]string{"status"},
	)
)

// RecordWordLookup records a word lookup and whether it was served from the store.
func RecordWordLookup(cacheHit bool) {
	wordLookupTotal.WithLabelValues(boolLabel(cacheHit)).Inc()
}

// RecordDictionaryRequest records one provider call. status is one of
// "success", "not_found" or "error".
func RecordDictionaryRequest(status string, duration time.Duration) {
	dictionaryRequestsTotal.WithLabelValues(status).Inc()
	dictionaryRequestDuration.Observe(duration.Seconds())
}

// RecordSessionAction records a handled review/test step.
func RecordSessionAction(command, mode string) {
	sessionActionsTotal.WithLabelValues(command, mode).Inc()
}

// RecordReminder records one reminder delivery attempt.
func RecordReminder(delivered bool) {
	status := "success"
	if !delivered {
		status = "error"
	}
	remindersTotal.WithLabelValues(status).Inc()
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
