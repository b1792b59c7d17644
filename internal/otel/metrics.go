package otel

import "go.opentelemetry.io/otel/metric"

// Metrics holds the instruments the update pipeline and action bus report
// through. These exist to answer the questions that matter for a
// sync layer under load: is update intake keeping up, is the bus backing
// up, and is the dispatcher's per-update work staying cheap.
type Metrics struct {
	UpdatesReceived  metric.Int64Counter
	UpdateApplyTime  metric.Float64Histogram
	ActionsSent      metric.Int64Counter
	ActionBusDepth   metric.Int64UpDownCounter
	ChatsResynced    metric.Int64Counter
	PlaybackStarts   metric.Int64Counter
	PlaybackFailures metric.Int64Counter
}

// NewMetrics creates all metric instruments from the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.UpdatesReceived, err = meter.Int64Counter("tgt.updates.received",
		metric.WithDescription("Telegram updates received from the native client"),
	)
	if err != nil {
		return nil, err
	}

	m.UpdateApplyTime, err = meter.Float64Histogram("tgt.updates.apply_duration",
		metric.WithDescription("Time to apply one update to the domain cache"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.ActionsSent, err = meter.Int64Counter("tgt.actionbus.sent",
		metric.WithDescription("Actions sent on the UI/auth/Telegram action bus"),
	)
	if err != nil {
		return nil, err
	}

	m.ActionBusDepth, err = meter.Int64UpDownCounter("tgt.actionbus.depth",
		metric.WithDescription("Current number of queued, unconsumed actions"),
	)
	if err != nil {
		return nil, err
	}

	m.ChatsResynced, err = meter.Int64Counter("tgt.housekeeping.resyncs",
		metric.WithDescription("Dialog list resyncs performed by the housekeeping scheduler"),
	)
	if err != nil {
		return nil, err
	}

	m.PlaybackStarts, err = meter.Int64Counter("tgt.playback.starts",
		metric.WithDescription("Voice message playback sessions started"),
	)
	if err != nil {
		return nil, err
	}

	m.PlaybackFailures, err = meter.Int64Counter("tgt.playback.failures",
		metric.WithDescription("Voice message playback sessions that failed to start"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}
