package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lucsky/cuid"
	"github.com/pickbetter/labelscan/internal/models"
)

// Emitter assigns ids, serializes events and hands them to a sink
// under a fixed topic.
type Emitter struct {
	sink  Sink
	topic string
}

func NewEmitter(sink Sink, topic string) *Emitter {
	if topic == "" {
		topic = "scan_events"
	}
	return &Emitter{sink: sink, topic: topic}
}

func (e *Emitter) Emit(ctx context.Context, ev models.ScanEvent) error {
	if ev.ID == "" {
		ev.ID = cuid.New()
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to serialize %s event: %w", ev.Type, err)
	}
	return e.sink.WriteMessage(e.topic, msg)
}

func (e *Emitter) Close() error {
	return e.sink.Close()
}
