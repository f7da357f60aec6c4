package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(buildInfo, adminRequestsTotal, backgroundJobsTotal) }

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ubot_build_info",
			Help: "Always 1; labels carry version, commit and store driver.",
		},
		[]string{"version", "commit", "driver"},
	)

	adminRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Calls to admin endpoints by authorization outcome.",
		},
		[]string{"endpoint", "status"}, // status: 'authorized', 'unauthorized'
	)

	backgroundJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "background_jobs_total",
			Help: "Background job submissions and completions.",
		},
		[]string{"job", "result"}, // result: 'queued', 'rejected', 'ok', or an error kind
	)
)

func SetBuildInfo(version, commit, driver string) {
	buildInfo.Reset()
	buildInfo.WithLabelValues(version, commit, norm(driver)).Set(1)
}

func IncAdminRequest(endpoint, status string) {
	adminRequestsTotal.WithLabelValues(norm(endpoint), norm(status)).Inc()
}

func IncBackgroundJob(job, result string) {
	backgroundJobsTotal.WithLabelValues(norm(job), norm(result)).Inc()
}
