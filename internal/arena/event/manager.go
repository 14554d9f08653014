package event

// Mode controls whether the manager keeps past tick batches.
type Mode int

const (
	// Remember keeps every past batch so a replay can be written at
	// game end.
	Remember Mode = iota
	// Forget drops each batch after its tick to bound memory in live
	// or headless play.
	Forget
)

// Manager accumulates one tick's events into an ordered batch. It is
// owned by the game loop and constructed per game run; stages record
// into it and must never assume any ordering beyond stage-call order.
type Manager struct {
	mode    Mode
	current StepEvents
	history []StepEvents
}

// NewManager returns a manager in the given mode with an empty batch.
func NewManager(mode Mode) *Manager {
	return &Manager{mode: mode}
}

// InitRound archives the previous batch (Remember mode only) and seeds
// the new one with a RoundStarted event.
func (m *Manager) InitRound(round uint32, spawns []Spawn) {
	m.archive()
	m.current = StepEvents{Events: []GameEvent{RoundStarted{Round: round, Spawns: spawns}}}
}

// InitTick archives the previous batch and reseeds with a TickAdvanced
// event. Tick 0 appends instead, because RoundStarted and the round's
// first tick must share a batch.
func (m *Manager) InitTick(tick uint32) {
	if tick == 0 {
		m.Record(TickAdvanced{Tick: tick})
		return
	}
	m.archive()
	m.current = StepEvents{Events: []GameEvent{TickAdvanced{Tick: tick}}}
}

// Record appends an event to the currently open batch.
func (m *Manager) Record(ev GameEvent) {
	m.current.Events = append(m.current.Events, ev)
}

// Current exposes the open batch to downstream consumers.
func (m *Manager) Current() StepEvents {
	return m.current
}

// History returns every batch produced so far, including the current
// one. In Forget mode only the current batch is available.
func (m *Manager) History() []StepEvents {
	out := make([]StepEvents, 0, len(m.history)+1)
	out = append(out, m.history...)
	if len(m.current.Events) > 0 {
		out = append(out, m.current.Clone())
	}
	return out
}

func (m *Manager) archive() {
	if m.mode != Remember || len(m.current.Events) == 0 {
		return
	}
	m.history = append(m.history, m.current.Clone())
}
