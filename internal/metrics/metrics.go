// Package metrics holds the collector's Prometheus instrumentation.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solacq_poll_cycles_total",
		Help: "Total number of completed poll cycles",
	})

	FetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solacq_fetch_errors_total",
		Help: "Total number of failed source fetches",
	}, []string{"source"})

	MalformedInverters = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solacq_malformed_inverters_total",
		Help: "Total number of inverters dropped for malformed data",
	})

	StoreErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solacq_store_errors_total",
		Help: "Total number of failed snapshot writes",
	})

	PowerSum = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "solacq_power_sum_watts",
		Help: "Installation-wide AC power of the last cycle",
	})

	YieldDaySum = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "solacq_yield_day_sum_kwh",
		Help: "Installation-wide day yield of the last cycle",
	})

	MeterPowerIn = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "solacq_meter_power_in_watts",
		Help: "Instantaneous meter power of the last cycle",
	})

	LastCycleTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "solacq_last_cycle_timestamp_seconds",
		Help: "Unix time of the last completed poll cycle",
	})
)

// Register registers all collector metrics on the given registerer.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		CyclesTotal,
		FetchErrors,
		MalformedInverters,
		StoreErrors,
		PowerSum,
		YieldDaySum,
		MeterPowerIn,
		LastCycleTime,
	)
}
