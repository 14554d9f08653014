package arena

import (
	"context"
	"log"
	"time"

	"github.com/luarena/luarena/internal/arena/event"
)

// Run drives the configured number of rounds, emitting each tick's
// batch on out. The channel is closed when the game ends, which
// consumers must treat as "game over", not an error. Cancellation is
// cooperative: the context is polled at tick boundaries only, so an
// in-flight tick always completes.
func (g *Game) Run(ctx context.Context, rounds uint32, delay time.Duration, out chan<- event.StepEvents) error {
	if out != nil {
		defer close(out)
	}
	for round := uint32(1); round <= rounds; round++ {
		if ctx.Err() != nil {
			log.Printf("game cancelled before round %d", round)
			return nil
		}
		if err := g.runRound(ctx, round, delay, out); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) runRound(ctx context.Context, round uint32, delay time.Duration, out chan<- event.StepEvents) error {
	g.initRound(round)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if delay > 0 {
			time.Sleep(delay)
		}
		if err := g.step(out); err != nil {
			return err
		}
		switch g.roundState.Outcome {
		case Won:
			log.Printf("round %d won by %s", round, g.slots[g.roundState.Winner].meta.DisplayName())
			return nil
		case Drawn:
			log.Printf("round %d drawn", round)
			return nil
		}
	}
}

// step runs one full tick: open the batch, record the round-end check
// and the vision, transition, and attack stages, fold the batch into
// authoritative state, dispatch per-character projections, and emit
// the batch outward.
func (g *Game) step(out chan<- event.StepEvents) error {
	g.events.InitTick(g.tick)
	g.checkRoundEnd()
	g.runVision()
	g.transitionCharacters()
	g.createAttacks()
	g.transitionAttacks()

	batch := g.events.Current()
	g.advance(batch.Events)
	if err := g.dispatch(batch.Events); err != nil {
		return err
	}
	if out != nil {
		out <- batch.Clone()
	}
	return nil
}
