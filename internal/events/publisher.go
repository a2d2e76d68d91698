// Package events publishes pipeline progress to Redis pub/sub so external
// consumers (dashboards, SSE gateways) can follow a run. Publishing is
// best-effort and never fails the pipeline; with no Redis client configured
// every call is a no-op.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Channel is the pub/sub channel all pipeline events go to.
const Channel = "EVENT_PIPELINE"

// Event types.
const (
	TypeStageAdvanced = "EVENT_STAGE_ADVANCED"
	TypeBatchProgress = "EVENT_BATCH_PROGRESS"
	TypeRunComplete   = "EVENT_RUN_COMPLETE"
	TypeRunFailed     = "EVENT_RUN_FAILED"
)

// Event is the wire format published to Channel.
type Event struct {
	Type      string    `json:"type"`
	Stage     string    `json:"stage,omitempty"`
	Processed int64     `json:"processed,omitempty"`
	Total     int64     `json:"total,omitempty"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher emits pipeline events. The zero-value-like nil-client form is
// valid and silently drops everything.
type Publisher struct {
	rdb *redis.Client
}

// NewPublisher returns a Publisher; rdb may be nil to disable publishing.
func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// StageAdvanced reports that the run reached a new stage.
func (p *Publisher) StageAdvanced(ctx context.Context, stage string) {
	p.publish(ctx, Event{Type: TypeStageAdvanced, Stage: stage})
}

// BatchProgress reports rows processed so far within a batched stage.
func (p *Publisher) BatchProgress(ctx context.Context, stage string, processed, total int64) {
	p.publish(ctx, Event{Type: TypeBatchProgress, Stage: stage, Processed: processed, Total: total})
}

// RunComplete reports a fully committed run.
func (p *Publisher) RunComplete(ctx context.Context) {
	p.publish(ctx, Event{Type: TypeRunComplete})
}

// RunFailed reports an aborted run with the failing stage and cause.
func (p *Publisher) RunFailed(ctx context.Context, stage string, cause error) {
	p.publish(ctx, Event{Type: TypeRunFailed, Stage: stage, Error: cause.Error()})
}

func (p *Publisher) publish(ctx context.Context, e Event) {
	if p == nil || p.rdb == nil {
		return
	}
	e.At = time.Now().UTC()
	payload, _ := json.Marshal(e)
	// Non-fatal: a dropped event must never abort a run.
	if err := p.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		slog.Warn("publish pipeline event failed", "type", e.Type, "err", err)
	}
}
