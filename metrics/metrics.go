// Package metrics defines the instrumentation contract used by the engine.
package metrics

import "time"

// Recorder receives engine events and operation latencies.
type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}

// Event counter names recorded by the engine.
const (
	EventSnapshotFetched  = "snapshot_fetched"
	EventMergeApplied     = "merge_applied"
	EventMergeRejected    = "merge_rejected"
	EventFrameDropped     = "frame_dropped"
	EventReconnect        = "reconnect"
	EventChannelDegraded  = "channel_degraded"
	EventSessionExpired   = "session_expired"
	EventWalletSubmission = "wallet_submission"
)
