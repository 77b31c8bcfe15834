// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// TxAttempts counts every WATCH/EXEC attempt, labelled by operation.
var TxAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wordcats",
	Subsystem: "txn",
	Name:      "attempts_total",
	Help:      "Optimistic transaction attempts by operation.",
}, []string{"op"})

// TxConflicts counts attempts whose EXEC was aborted by a concurrent write.
var TxConflicts = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wordcats",
	Subsystem: "txn",
	Name:      "conflicts_total",
	Help:      "Attempts aborted because the watched sequence key changed.",
}, []string{"op"})

// TxExhausted counts operations that hit their retry ceiling.
var TxExhausted = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wordcats",
	Subsystem: "txn",
	Name:      "exhausted_total",
	Help:      "Operations that gave up after their retry ceiling.",
}, []string{"op"})

// TxCommits counts committed transactions, labelled by operation.
var TxCommits = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wordcats",
	Subsystem: "txn",
	Name:      "commits_total",
	Help:      "Committed transactions by operation.",
}, []string{"op"})

// JanitorPasses counts janitor passes, labelled by result.
var JanitorPasses = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wordcats",
	Subsystem: "janitor",
	Name:      "passes_total",
	Help:      "Janitor passes by result.",
}, []string{"result"})

// JanitorAnonymized counts accounts anonymized by the janitor.
var JanitorAnonymized = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "wordcats",
	Subsystem: "janitor",
	Name:      "anonymized_accounts_total",
	Help:      "Accounts removed from the host platform and anonymized.",
})

// AdvisoryFailures counts failed best-effort platform calls, labelled by call.
var AdvisoryFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wordcats",
	Subsystem: "platform",
	Name:      "advisory_failures_total",
	Help:      "Best-effort host platform calls that failed.",
}, []string{"call"})

// MustRegister registers every collector with reg.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		TxAttempts,
		TxConflicts,
		TxExhausted,
		TxCommits,
		JanitorPasses,
		JanitorAnonymized,
		AdvisoryFailures,
	)
}
