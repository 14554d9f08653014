package replay

import (
	"context"
	"time"

	"github.com/luarena/luarena/internal/arena/event"
)

// Player re-emits a stored game's batches at a fixed cadence, feeding
// the same consumers a live game would.
type Player struct {
	history []event.StepEvents
}

// NewPlayer wraps a loaded history for playback.
func NewPlayer(history []event.StepEvents) *Player {
	return &Player{history: history}
}

// Play emits every batch on out, pausing delay between ticks. The
// channel is closed when playback finishes or the context is
// cancelled.
func (p *Player) Play(ctx context.Context, delay time.Duration, out chan<- event.StepEvents) error {
	defer close(out)
	for _, batch := range p.history {
		if ctx.Err() != nil {
			return nil
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil
			}
		}
		select {
		case out <- batch.Clone():
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}
