// Package metrics defines the prometheus instrumentation points shared
// across the codec and configuration subsystems: packet-parse failures,
// schema validation outcomes, delta fan-out, and writer fragmentation.
//
// When adding a new metric, these are the helpful values to track:
//   - things coming into or going out of the system: packets, messages,
//     config loads, delta callbacks.
//   - the success or error status of any of the above.
//   - the distribution of processing latency or size.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PacketsParsedTotal counts packets the reader attempted to parse, by
	// whether parsing succeeded ("ok") or a parse error aborted it.
	PacketsParsedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oonf_packets_parsed_total",
			Help: "RFC 5444 packets parsed by the reader, labeled by outcome.",
		}, []string{"outcome"})

	// PacketDispositionTotal counts the highest-priority consumer
	// disposition observed per packet (okay, drop_tlv, drop_msg_but_
	// forward, drop_message, drop_packet).
	PacketDispositionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oonf_packet_disposition_total",
			Help: "Consumer dispositions observed while dispatching parsed packets.",
		}, []string{"disposition"})

	// BlockConstraintFailuresTotal counts TLV-block dispatches where a
	// mandatory entry went unmatched, forcing BlockCallbackFailedConstraints
	// instead of BlockCallback.
	BlockConstraintFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oonf_block_constraint_failures_total",
			Help: "TLV-block dispatches that failed a mandatory-entry constraint, by scope.",
		}, []string{"scope"})

	// MessageSizeHistogram tracks assembled message sizes in bytes, before
	// they are copied into a per-interface packet buffer.
	MessageSizeHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "oonf_writer_message_size_bytes",
			Help:    "Size distribution of messages built by the writer, in bytes.",
			Buckets: prometheus.ExponentialBuckets(16, 2, 12),
		},
	)

	// PacketsFlushedTotal counts packets the writer has sent through
	// SendPacket, by interface.
	PacketsFlushedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oonf_writer_packets_flushed_total",
			Help: "Packets flushed to the interface send callback.",
		}, []string{"interface"})

	// FragmentationEventsTotal counts mid-packet flushes forced by a
	// message that would have overflowed the current packet buffer.
	FragmentationEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oonf_writer_fragmentation_total",
			Help: "Packets flushed early because the next message would exceed the interface MTU.",
		}, []string{"interface"})

	// ConfigLoadTotal counts configuration loads by format and outcome
	// ("ok" or an error).
	ConfigLoadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oonf_config_load_total",
			Help: "Configuration file loads, by format and outcome.",
		}, []string{"format", "outcome"})

	// ValidationFailuresTotal counts named sections that failed
	// cfgschema.Validate, by section type.
	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oonf_schema_validation_failures_total",
			Help: "Schema validation failures, by section type.",
		}, []string{"section_type"})

	// DeltaHandlerInvocationsTotal counts cfgdelta callback invocations,
	// by section type.
	DeltaHandlerInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oonf_delta_handler_invocations_total",
			Help: "Delta handler invocations, by section type.",
		}, []string{"section_type"})

	// DeltaEntriesChangedHistogram tracks how many entries changed per
	// delta handler invocation, useful for spotting a schema section that
	// churns on every reload for unrelated reasons.
	DeltaEntriesChangedHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "oonf_delta_entries_changed",
			Help:    "Number of entries flagged changed per delta handler invocation.",
			Buckets: prometheus.LinearBuckets(0, 1, 16),
		},
	)
)
