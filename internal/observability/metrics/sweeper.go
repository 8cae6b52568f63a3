package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SweeperMetrics exposes counters for the billing sweep and its jobs.
type SweeperMetrics struct {
	jobRuns     *prometheus.CounterVec
	jobErrors   *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec

	sweepSkipped     prometheus.Counter
	chargesCreated   prometheus.Counter
	lateFeesAssessed prometheus.Counter
	autopayExecuted  prometheus.Counter
	remindersSent    prometheus.Counter
}

var (
	sweeperOnce     sync.Once
	sweeperInstance *SweeperMetrics
)

func Sweeper() *SweeperMetrics {
	sweeperOnce.Do(func() {
		sweeperInstance = &SweeperMetrics{
			jobRuns: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "rentledger_sweep_job_runs_total",
				Help: "Number of sweep job executions per job name.",
			}, []string{"job"}),
			jobErrors: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "rentledger_sweep_job_errors_total",
				Help: "Number of sweep job failures per job name.",
			}, []string{"job"}),
			jobDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "rentledger_sweep_job_duration_seconds",
				Help:    "Sweep job wall time per job name.",
				Buckets: prometheus.DefBuckets,
			}, []string{"job"}),
			sweepSkipped: promauto.NewCounter(prometheus.CounterOpts{
				Name: "rentledger_sweep_skipped_total",
				Help: "Sweeps skipped because another sweep ran too recently or is still running.",
			}),
			chargesCreated: promauto.NewCounter(prometheus.CounterOpts{
				Name: "rentledger_rent_charges_created_total",
				Help: "Monthly rent charge entries inserted.",
			}),
			lateFeesAssessed: promauto.NewCounter(prometheus.CounterOpts{
				Name: "rentledger_late_fees_assessed_total",
				Help: "Late fee entries inserted.",
			}),
			autopayExecuted: promauto.NewCounter(prometheus.CounterOpts{
				Name: "rentledger_autopay_payments_total",
				Help: "Unattended rent payments executed.",
			}),
			remindersSent: promauto.NewCounter(prometheus.CounterOpts{
				Name: "rentledger_autopay_reminders_total",
				Help: "Autopay reminders dispatched.",
			}),
		}
	})
	return sweeperInstance
}

func (m *SweeperMetrics) IncJobRun(job string) {
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *SweeperMetrics) IncJobError(job string) {
	m.jobErrors.WithLabelValues(job).Inc()
}

func (m *SweeperMetrics) ObserveJobDuration(job string, d time.Duration) {
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *SweeperMetrics) IncSweepSkipped()    { m.sweepSkipped.Inc() }
func (m *SweeperMetrics) IncChargeCreated()   { m.chargesCreated.Inc() }
func (m *SweeperMetrics) IncLateFeeAssessed() { m.lateFeesAssessed.Inc() }
func (m *SweeperMetrics) IncAutopayExecuted() { m.autopayExecuted.Inc() }
func (m *SweeperMetrics) IncReminderSent()    { m.remindersSent.Inc() }
