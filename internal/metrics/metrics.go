package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// チェックアウトと決済検証の結果カウンタ
type Metrics struct {
	CheckoutTotal      *prometheus.CounterVec
	PaymentVerifyTotal *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	checkout := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Name:      "checkout_total",
		Help:      "Total number of completed checkouts.",
	}, []string{"payment_method"})

	verify := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Name:      "payment_verify_total",
		Help:      "Total number of payment verification attempts.",
	}, []string{"status"})

	reg.MustRegister(checkout, verify)
	return &Metrics{CheckoutTotal: checkout, PaymentVerifyTotal: verify}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
