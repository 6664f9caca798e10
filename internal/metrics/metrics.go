package metrics

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"code", "method", "path"},
	)
	httpRequestsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current Number of HTTP requests being processed.",
		},
	)

	cartMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Cart mutations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
	checkoutTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_transitions_total",
			Help: "Checkout state transitions.",
		},
		[]string{"from", "to"},
	)
	orderSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_submissions_total",
			Help: "Order submissions by payment method and outcome.",
		},
		[]string{"payment_method", "outcome"},
	)
	authEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_auth_events_total",
			Help: "Login, signup and logout events by outcome.",
		},
		[]string{"event", "outcome"},
	)
	backendCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_backend_calls_total",
			Help: "Calls to the remote backend by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
	liveStorefronts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_live_sessions",
			Help: "Browsing sessions currently held in memory.",
		},
	)
)

func init() {
	if err := prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		slog.Debug("ProcessCollector registration skipped (likely already registered)",
			slog.String("error", err.Error()))
	}

	if err := prometheus.Register(collectors.NewGoCollector()); err != nil {
		slog.Debug("GoCollector registration skipped (likely already registered)",
			slog.String("error", err.Error()))
	}
}

func Outcome(err error) string {
	if err != nil {
		return "failure"
	}

	return "success"
}

func RecordCartMutation(operation string, err error) {
	cartMutationsTotal.WithLabelValues(operation, Outcome(err)).Inc()
}

func RecordCheckoutTransition(from, to string) {
	checkoutTransitionsTotal.WithLabelValues(from, to).Inc()
}

func RecordOrderSubmission(paymentMethod string, err error) {
	orderSubmissionsTotal.WithLabelValues(paymentMethod, Outcome(err)).Inc()
}

func RecordAuthEvent(event string, err error) {
	authEventsTotal.WithLabelValues(event, Outcome(err)).Inc()
}

// RecordBackendCall matches backend.CallObserver.
func RecordBackendCall(operation, outcome string) {
	backendCallsTotal.WithLabelValues(operation, outcome).Inc()
}

func SetLiveStorefronts(n int) {
	liveStorefronts.Set(float64(n))
}

// wrapper around http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware must wrap the ServeMux directly: the route pattern is read from
// the request after the mux has matched it.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()

		rw := newResponseWriter(w)

		defer func() {
			pathPattern := r.Pattern
			if pathPattern == "" {
				pathPattern = "unmatched"
			}

			statusCodeStr := strconv.Itoa(rw.statusCode)

			httpRequestsTotal.WithLabelValues(statusCodeStr, r.Method, pathPattern).Inc()
			httpRequestsDuration.WithLabelValues(r.Method, pathPattern).Observe(time.Since(start).Seconds())
			httpRequestsInFlight.Dec()
		}()

		next.ServeHTTP(rw, r)
	})
}

// http.Handler for the Prometheus /metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
