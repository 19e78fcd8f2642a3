// Package alert fans newly ingested thermal-failure events out to
// notification sinks (Slack webhook, Redpanda topic). Delivery is
// best-effort: sink failures are logged and never affect ingestion.
package alert

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tyee-ai/gpu-thermal/internal/config"
	"github.com/tyee-ai/gpu-thermal/internal/httpx"
	"github.com/tyee-ai/gpu-thermal/internal/models"
)

// Sink delivers one failure event to a destination.
type Sink interface {
	Name() string
	Notify(ctx context.Context, ev models.ThermalEvent) error
}

// Fanout dispatches each failure event to every configured sink.
// It implements ingest.FailureNotifier.
type Fanout struct {
	sinks []Sink
}

// NewFanout builds the enabled sinks from configuration. It returns
// (nil, nil) when no sink is configured so callers can pass a plain nil
// notifier to the ingester.
func NewFanout(cfg config.Alerts, client *httpx.Client) (*Fanout, error) {
	var sinks []Sink

	if cfg.SlackWebhookURL != "" {
		sinks = append(sinks, NewSlackSink(client, cfg.SlackWebhookURL, cfg.SlackChannel))
	}
	if cfg.Brokers != "" {
		pub, err := NewStreamSink(strings.Split(cfg.Brokers, ","), cfg.Topic)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, pub)
	}

	if len(sinks) == 0 {
		return nil, nil
	}
	return &Fanout{sinks: sinks}, nil
}

// FailureInserted delivers ev to every sink, logging per-sink failures.
func (f *Fanout) FailureInserted(ctx context.Context, ev models.ThermalEvent) {
	for _, sink := range f.sinks {
		if err := sink.Notify(ctx, ev); err != nil {
			slog.Error("alert delivery failed",
				"sink", sink.Name(),
				"node", ev.Node,
				"gpu_id", ev.GPUID,
				"error", err,
			)
			continue
		}
		slog.Info("alert delivered",
			"sink", sink.Name(),
			"node", ev.Node,
			"gpu_id", ev.GPUID,
		)
	}
}

// Close releases sink resources (broker connections).
func (f *Fanout) Close() {
	for _, sink := range f.sinks {
		if c, ok := sink.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
