package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mentorly_bookings_total",
		Help: "Booking attempts by outcome.",
	}, []string{"outcome"})

	SlotConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mentorly_slot_cas_conflicts_total",
		Help: "Slot compare-and-swap writes that lost to a concurrent writer.",
	})

	SlotsMaterializedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mentorly_slots_materialized_total",
		Help: "Slots written by the materializer, by mode.",
	}, []string{"mode"})

	PaymentIntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mentorly_payment_intents_total",
		Help: "Payment intent requests by result.",
	}, []string{"result"})

	ReconciliationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mentorly_reconciliations_total",
		Help: "Settlement notifications by reconciliation result.",
	}, []string{"result"})

	ExternalCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mentorly_external_call_seconds",
		Help:    "Latency of calls to the payment gateway and meeting provider.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "op", "status"})
)
