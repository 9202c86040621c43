package pipeline

import (
	"sync"

	"jobscout/pkg/models"
)

// EventSink receives progress events from a run. Implementations must
// not retain the event's plan past the call unless they treat it as
// read-only; the pipeline only hands out snapshots.
type EventSink func(event models.ProgressEvent)

// NopSink discards all events
func NopSink(models.ProgressEvent) {}

// ChannelSink forwards events to a channel, dropping them if the
// consumer stops reading
func ChannelSink(ch chan<- models.ProgressEvent) EventSink {
	return func(event models.ProgressEvent) {
		select {
		case ch <- event:
		default:
		}
	}
}

// emitter serializes event delivery and enforces the stream contract:
// events leave in causal order and nothing follows a terminal event.
type emitter struct {
	sink EventSink

	mu   sync.Mutex
	done bool
}

func newEmitter(sink EventSink) *emitter {
	if sink == nil {
		sink = NopSink
	}
	return &emitter{sink: sink}
}

func (e *emitter) emit(event models.ProgressEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done {
		return
	}
	if event.Terminal() {
		e.done = true
	}
	e.sink(event)
}
