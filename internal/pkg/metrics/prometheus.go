package metrics

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/Kargones/authgate/internal/pkg/urlutil"
)

const namespace = "authgate"

// PrometheusCollector реализует Collector с собственным registry:
// глобальный prometheus.DefaultRegisterer не используется.
type PrometheusCollector struct {
	config   Config
	registry *prometheus.Registry
	instance string

	logEntries        *prometheus.CounterVec
	telemetryFailures *prometheus.CounterVec
	authDuration      *prometheus.HistogramVec
	authTotal         *prometheus.CounterVec
}

// authBuckets: от ответа валидации (миллисекунды) до bcrypt с медленной БД.
var authBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// NewPrometheusCollector создаёт коллектор с метриками
// authgate_log_entries_total{severity}, authgate_telemetry_failures_total{channel},
// authgate_auth_action_duration_seconds{action,outcome} и
// authgate_auth_actions_total{action,outcome}, плюс go_* и process_*.
func NewPrometheusCollector(config Config) (*PrometheusCollector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &PrometheusCollector{
		config:   config,
		registry: prometheus.NewRegistry(),
		instance: resolveInstance(config.InstanceLabel),
		logEntries: counterVec("log_entries_total",
			"Total number of log entries that passed the severity filter", "severity"),
		telemetryFailures: counterVec("telemetry_failures_total",
			"Total number of failed deliveries to a telemetry channel", "channel"),
		authDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "auth_action_duration_seconds",
			Help:      "Duration of sign-in and sign-up actions in seconds",
			Buckets:   authBuckets,
		}, []string{"action", "outcome"}),
		authTotal: counterVec("auth_actions_total",
			"Total number of sign-in and sign-up actions by outcome", "action", "outcome"),
	}

	// Register, а не MustRegister: конфликт имён возвращается ошибкой.
	for _, m := range []prometheus.Collector{
		c.logEntries, c.telemetryFailures, c.authDuration, c.authTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := c.registry.Register(m); err != nil {
			return nil, fmt.Errorf("metrics: register: %w", err)
		}
	}
	return c, nil
}

func counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, labels)
}

// resolveInstance: значение instance label для Pushgateway, по умолчанию hostname.
func resolveInstance(label string) string {
	if label != "" {
		return label
	}
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "unknown"
}

// maxLabelLength ограничивает длину значения label.
const maxLabelLength = 128

// sanitizeLabel заменяет управляющие символы на '_' (они ломают text format)
// и обрезает значение до maxLabelLength рун.
func sanitizeLabel(value string) string {
	clean := strings.Map(func(r rune) rune {
		if r < 0x20 {
			return '_'
		}
		return r
	}, value)

	if runes := []rune(clean); len(runes) > maxLabelLength {
		return string(runes[:maxLabelLength])
	}
	return clean
}

// ObserveEntry реализует logging.Observer.
func (c *PrometheusCollector) ObserveEntry(level string) {
	c.logEntries.WithLabelValues(sanitizeLabel(level)).Inc()
}

// RecordTelemetryFailure увеличивает счётчик сбоев канала.
func (c *PrometheusCollector) RecordTelemetryFailure(channel string) {
	c.telemetryFailures.WithLabelValues(sanitizeLabel(channel)).Inc()
}

// RecordAuthAttempt обновляет histogram длительности и счётчик исходов.
func (c *PrometheusCollector) RecordAuthAttempt(action, outcome string, duration time.Duration) {
	action = sanitizeLabel(action)
	outcome = sanitizeLabel(outcome)
	c.authDuration.WithLabelValues(action, outcome).Observe(duration.Seconds())
	c.authTotal.WithLabelValues(action, outcome).Inc()
}

// Handler возвращает promhttp handler для registry коллектора.
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Push отправляет registry в Pushgateway с группировкой по instance.
// Без PushgatewayURL ничего не делает.
func (c *PrometheusCollector) Push(ctx context.Context) error {
	if c.config.PushgatewayURL == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	err := push.New(c.config.PushgatewayURL, c.config.JobName).
		Gatherer(c.registry).
		Grouping("instance", c.instance).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push в %s: %s", urlutil.MaskURL(c.config.PushgatewayURL),
			urlutil.MaskURLsInText(err.Error(), c.config.PushgatewayURL))
	}
	return nil
}

// Instance возвращает значение instance label.
func (c *PrometheusCollector) Instance() string {
	return c.instance
}

// Registry возвращает registry коллектора (для тестов).
func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}
