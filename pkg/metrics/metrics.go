package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Orders persisted after a successful gateway order creation
	OrdersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "store_orders_created_total",
		Help: "Total number of orders created",
	})

	// Payment verification attempts by outcome (paid, invalid_signature, not_found, conflict, error)
	PaymentVerifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_payment_verifications_total",
		Help: "Payment signature verifications by result",
	}, []string{"result"})

	// Latency of calls to the payment gateway
	GatewayLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_gateway_request_duration_seconds",
		Help:    "Latency of payment gateway requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	CartMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_cart_mutations_total",
		Help: "Cart mutations by operation",
	}, []string{"operation"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_http_request_duration_seconds",
		Help:    "Latency of HTTP handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func Init() {
	prometheus.MustRegister(
		OrdersCreated,
		PaymentVerifications,
		GatewayLatency,
		CartMutations,
		HTTPRequestDuration,
	)
}
