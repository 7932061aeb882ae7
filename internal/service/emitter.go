// Package service orchestrates the wagering engine with the durable stores,
// the activity cache, and the event bus. The engine is the authority on
// every business rule; services record its decisions and fan them out.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wagerpool/wagerpool/internal/domain"
)

// Emitter journals core events and publishes them on the bus. Journal and
// bus failures are logged, never propagated: the state change has already
// been serialized by the engine, and observability must not undo it.
type Emitter struct {
	journal domain.JournalStore
	bus     domain.EventBus
	logger  *slog.Logger
}

// NewEmitter creates an Emitter. journal and bus may be nil (e.g. in tests);
// nil sinks are skipped.
func NewEmitter(journal domain.JournalStore, bus domain.EventBus, logger *slog.Logger) *Emitter {
	return &Emitter{journal: journal, bus: bus, logger: logger}
}

// Emit records one event in the journal, the durable stream, and the live
// pub/sub channel for its type.
func (e *Emitter) Emit(ctx context.Context, typ domain.EventType, payload any) {
	ev := domain.Event{
		ID:        uuid.NewString(),
		Type:      typ,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}

	if e.journal != nil {
		if err := e.journal.Append(ctx, ev); err != nil {
			e.logger.ErrorContext(ctx, "emitter: journal append failed",
				slog.String("event", string(typ)),
				slog.String("error", err.Error()),
			)
		}
	}

	if e.bus == nil {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		e.logger.ErrorContext(ctx, "emitter: marshal event failed",
			slog.String("event", string(typ)),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := e.bus.Publish(ctx, typ.Channel(), data); err != nil {
		e.logger.WarnContext(ctx, "emitter: publish failed",
			slog.String("event", string(typ)),
			slog.String("channel", typ.Channel()),
			slog.String("error", err.Error()),
		)
	}
	if err := e.bus.StreamAppend(ctx, domain.JournalStream, data); err != nil {
		e.logger.WarnContext(ctx, "emitter: stream append failed",
			slog.String("event", string(typ)),
			slog.String("error", err.Error()),
		)
	}
}
