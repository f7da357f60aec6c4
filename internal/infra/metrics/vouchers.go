package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		vouchersIssuedTotal,
		voucherRedemptionsTotal,
		voucherBatchSize,
		vouchersByState,
	)
}

var (
	vouchersIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vouchers_issued_total",
			Help: "Vouchers issued, labeled by result.",
		},
		[]string{"result"}, // 'ok', 'validation', 'persistence'
	)

	voucherRedemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voucher_redemptions_total",
			Help: "Redemption attempts, labeled by outcome kind.",
		},
		[]string{"result"}, // 'ok', 'already_used', 'expired', 'not_found', ...
	)

	voucherBatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "voucher_batch_size",
			Help:    "Requested quantity of bulk voucher generations.",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000},
		},
	)

	vouchersByState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vouchers_by_state",
			Help: "Stored vouchers by state, refreshed periodically.",
		},
		[]string{"state"}, // 'active', 'used', 'expired'
	)
)

func IncVoucherIssued(result string, n int) {
	vouchersIssuedTotal.WithLabelValues(norm(result)).Add(float64(n))
}

func IncRedemption(result string) {
	voucherRedemptionsTotal.WithLabelValues(norm(result)).Inc()
}

func ObserveBatch(quantity int) {
	voucherBatchSize.Observe(float64(quantity))
}

func SetVoucherStates(active, used, expired int) {
	vouchersByState.WithLabelValues("active").Set(float64(active))
	vouchersByState.WithLabelValues("used").Set(float64(used))
	vouchersByState.WithLabelValues("expired").Set(float64(expired))
}
