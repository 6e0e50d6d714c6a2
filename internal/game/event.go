package game

import (
	"encoding/json"
	"time"
)

// EventType classifies event log entries
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeLevelLoad
	EventTypeClick
	EventTypeCircleHit
	EventTypeRoundEnd
	EventTypePause
	EventTypeResume
	EventTypeGameReset
	EventTypeCheat
)

// EventVersion is bumped when payload shapes change
const EventVersion uint8 = 1

// Event is one entry in the event log
type Event struct {
	Version   uint8           `json:"version"`
	Type      EventType       `json:"type"`
	Timestamp int64           `json:"timestamp"` // Unix nano
	Sequence  uint64          `json:"sequence"`
	TickNum   uint64          `json:"tickNum"`
	Source    string          `json:"source,omitempty"` // input origin, used for rate limiting
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (t EventType) String() string {
	switch t {
	case EventTypeLevelLoad:
		return "level_load"
	case EventTypeClick:
		return "click"
	case EventTypeCircleHit:
		return "circle_hit"
	case EventTypeRoundEnd:
		return "round_end"
	case EventTypePause:
		return "pause"
	case EventTypeResume:
		return "resume"
	case EventTypeGameReset:
		return "game_reset"
	case EventTypeCheat:
		return "cheat"
	default:
		return "unknown"
	}
}

// MarshalText writes the type by name so the log stays readable.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// LevelLoadPayload is emitted whenever circles are respawned.
type LevelLoadPayload struct {
	Level      int `json:"level"`
	TargetNum  int `json:"targetNum"`
	NumCircles int `json:"numCircles"`
}

// ClickPayload records a click and whether it changed anything.
type ClickPayload struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	State   string  `json:"state"` // state before the click
	Applied bool    `json:"applied"`
}

// CircleHitPayload records one circle starting to explode.
type CircleHitPayload struct {
	Level      int     `json:"level"`
	Index      int     `json:"index"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Trigger    string  `json:"trigger"`
	RoundScore int     `json:"roundScore"`
}

// RoundEndPayload records a finished round.
type RoundEndPayload struct {
	Level      int  `json:"level"`
	RoundScore int  `json:"roundScore"`
	TargetNum  int  `json:"targetNum"`
	TotalScore int  `json:"totalScore"`
	Passed     bool `json:"passed"`
}

// ScorePayload carries the total score for reset and cheat events.
type ScorePayload struct {
	TotalScore int `json:"totalScore"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) json.RawMessage {
	if payload == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, source string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		Source:    source,
		Payload:   EncodePayload(payload),
	}
}
