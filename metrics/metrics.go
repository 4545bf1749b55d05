package metrics

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/sagar-qa007/cypress-repeat-pro/types"
)

const (
	MetricsNamespace = "cypress_repeat"
)

var (
	Debug                bool = true
	validStatuses             = []types.RunStatus{types.RunStatusOK, types.RunStatusFailed}
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "attempts_total",
		Help:      "Count of completed attempts",
	}, []string{
		"run_id",
		"status",
	})

	attemptTests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "attempt_tests_total",
		Help:      "Tests executed across attempts",
	}, []string{
		"run_id",
	})

	attemptPassed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "attempt_tests_passed",
		Help:      "Passing tests across attempts",
	}, []string{
		"run_id",
	})

	attemptFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "attempt_tests_failed",
		Help:      "Failing tests across attempts",
	}, []string{
		"run_id",
	})

	attemptSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "attempt_tests_skipped",
		Help:      "Skipped tests across attempts",
	}, []string{
		"run_id",
	})

	attemptDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "attempt_duration_seconds",
		Help:      "Engine time spent in each attempt",
	}, []string{
		"run_id",
		"attempt",
	})

	orchestrationResult = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "orchestration_result",
		Help:      "Final outcome of the orchestration",
	}, []string{
		"run_id",
		"result",
	})

	orchestrationAttempts = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "orchestration_attempts",
		Help:      "Attempts that produced a result",
	}, []string{
		"run_id",
	})

	orchestrationDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "orchestration_duration_seconds",
		Help:      "Wall time of the whole orchestration",
	}, []string{
		"run_id",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug().
			Str("m", "errors_total").
			Str("error", error).
			Msg("metric inc")
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordAttempt records one completed attempt's counters.
func RecordAttempt(runID string, attempt int, status types.RunStatus, stats types.RunStats) {
	if !isValidStatus(status) {
		log.Error().Str("status", string(status)).Msg("RecordAttempt - invalid status")
		return
	}
	if Debug {
		log.Debug().
			Str("m", "attempts_total").
			Str("run_id", runID).
			Int("attempt", attempt).
			Str("status", string(status)).
			Msg("metric inc")
	}
	attemptsTotal.WithLabelValues(runID, string(status)).Inc()
	attemptTests.WithLabelValues(runID).Add(float64(stats.Total))
	attemptPassed.WithLabelValues(runID).Add(float64(stats.Passed))
	attemptFailed.WithLabelValues(runID).Add(float64(stats.Failed))
	attemptSkipped.WithLabelValues(runID).Add(float64(stats.Skipped))
	attemptDuration.WithLabelValues(runID, strconv.Itoa(attempt)).Set(stats.Duration.Seconds())
}

// RecordOrchestration records the final outcome of a whole run sequence.
func RecordOrchestration(
	runID string,
	result string,
	completed int,
	duration time.Duration,
) {
	orchestrationResult.WithLabelValues(runID, result).Set(1)
	orchestrationAttempts.WithLabelValues(runID).Set(float64(completed))
	orchestrationDuration.WithLabelValues(runID).Set(duration.Seconds())
}

func isValidStatus(status types.RunStatus) bool {
	return slices.Contains(validStatuses, status)
}
