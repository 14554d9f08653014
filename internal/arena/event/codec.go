package event

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// envelope is the wire form of a single event: a type tag plus the
// event struct encoded as the payload.
type envelope struct {
	Type    Type            `cbor:"type"`
	Payload cbor.RawMessage `cbor:"payload"`
}

// MarshalStepEvents encodes one tick batch as CBOR for the recording
// store.
func MarshalStepEvents(s StepEvents) ([]byte, error) {
	envelopes := make([]envelope, 0, len(s.Events))
	for _, ev := range s.Events {
		payload, err := cbor.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", ev.EventType(), err)
		}
		envelopes = append(envelopes, envelope{Type: ev.EventType(), Payload: payload})
	}
	data, err := cbor.Marshal(envelopes)
	if err != nil {
		return nil, fmt.Errorf("encode step events: %w", err)
	}
	return data, nil
}

// UnmarshalStepEvents decodes a CBOR tick batch written by
// MarshalStepEvents.
func UnmarshalStepEvents(data []byte) (StepEvents, error) {
	var envelopes []envelope
	if err := cbor.Unmarshal(data, &envelopes); err != nil {
		return StepEvents{}, fmt.Errorf("decode step events: %w", err)
	}
	batch := StepEvents{Events: make([]GameEvent, 0, len(envelopes))}
	for _, env := range envelopes {
		ev, err := decodeEvent(env.Type, env.Payload)
		if err != nil {
			return StepEvents{}, err
		}
		batch.Events = append(batch.Events, ev)
	}
	return batch, nil
}

func decodeEvent(t Type, payload cbor.RawMessage) (GameEvent, error) {
	var ev GameEvent
	var err error
	switch t {
	case TypeTickAdvanced:
		ev, err = decodeAs[TickAdvanced](payload)
	case TypeRoundStarted:
		ev, err = decodeAs[RoundStarted](payload)
	case TypeRoundEnded:
		ev, err = decodeAs[RoundEnded](payload)
	case TypeCharacterTurned:
		ev, err = decodeAs[CharacterTurned](payload)
	case TypeCharacterHeadTurned:
		ev, err = decodeAs[CharacterHeadTurned](payload)
	case TypeCharacterArmsTurned:
		ev, err = decodeAs[CharacterArmsTurned](payload)
	case TypeCharacterPositionUpdated:
		ev, err = decodeAs[CharacterPositionUpdated](payload)
	case TypeCharacterHit:
		ev, err = decodeAs[CharacterHit](payload)
	case TypeCharacterDied:
		ev, err = decodeAs[CharacterDied](payload)
	case TypeAttackCreated:
		ev, err = decodeAs[AttackCreated](payload)
	case TypeAttackAdvanced:
		ev, err = decodeAs[AttackAdvanced](payload)
	case TypeAttackMissed:
		ev, err = decodeAs[AttackMissed](payload)
	default:
		return nil, fmt.Errorf("unknown event type %q", t)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return ev, nil
}

func decodeAs[T GameEvent](payload cbor.RawMessage) (GameEvent, error) {
	var ev T
	if err := cbor.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// MarshalJSON renders the batch as a list of {type, payload} objects
// for live-stream consumers.
func (s StepEvents) MarshalJSON() ([]byte, error) {
	type jsonEnvelope struct {
		Type    Type      `json:"type"`
		Payload GameEvent `json:"payload"`
	}
	envelopes := make([]jsonEnvelope, 0, len(s.Events))
	for _, ev := range s.Events {
		envelopes = append(envelopes, jsonEnvelope{Type: ev.EventType(), Payload: ev})
	}
	return json.Marshal(envelopes)
}
