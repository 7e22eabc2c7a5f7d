package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the registry and the counters the rental engine reports to.
// Invoice triggers: "seed" (contract creation), "catchup", "manual".
type Metrics struct {
	Registry *prometheus.Registry

	InvoicesGenerated *prometheus.CounterVec
	PaymentsRecorded  prometheus.Counter
	OutOfStock        prometheus.Counter
	ActiveContracts   prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,
		InvoicesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plantdesk",
			Name:      "rental_invoices_generated_total",
			Help:      "Invoices appended to rental contracts, by trigger.",
		}, []string{"trigger"}),
		PaymentsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "plantdesk",
			Name:      "rental_payments_recorded_total",
			Help:      "Payments recorded against rental contracts.",
		}),
		OutOfStock: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "plantdesk",
			Name:      "rental_out_of_stock_total",
			Help:      "Rental creations rejected because the machine had no stock.",
		}),
		ActiveContracts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "plantdesk",
			Name:      "rental_active_contracts",
			Help:      "Active rental contracts at last sweep.",
		}),
	}

	reg.MustRegister(m.InvoicesGenerated, m.PaymentsRecorded, m.OutOfStock, m.ActiveContracts)
	return m
}
