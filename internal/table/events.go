package table

import (
	"sync"

	"github.com/lox/holdem-rooms/poker"
)

// EventType names a room notification on the wire.
type EventType string

const (
	EventTypeUpdatePlayers EventType = "updatePlayers"
	EventTypeGameStarted   EventType = "gameStarted"
	EventTypePlayerAction  EventType = "playerAction"
	EventTypePhaseChanged  EventType = "phaseChanged"
	EventTypeShowdown      EventType = "showdown"
)

func (et EventType) String() string {
	return string(et)
}

// Event is a notification published after a successful transition. Every
// event encodes to a JSON object with a "type" field.
type Event interface {
	EventType() EventType
}

// Topic returns the sink topic for a room.
func Topic(roomID string) string {
	return "room_" + roomID
}

// UpdatePlayersEvent is published when the seating changes.
type UpdatePlayersEvent struct {
	Type    EventType `json:"type"`
	Players []Seat    `json:"players"`
}

func (e UpdatePlayersEvent) EventType() EventType { return EventTypeUpdatePlayers }

// NewUpdatePlayersEvent snapshots the seats of a room.
func NewUpdatePlayersEvent(seats []Seat) UpdatePlayersEvent {
	return UpdatePlayersEvent{Type: EventTypeUpdatePlayers, Players: snapshotSeats(seats)}
}

// GameStartedEvent is published once hole cards have been dealt.
type GameStartedEvent struct {
	Type           EventType    `json:"type"`
	Players        []Seat       `json:"players"`
	CommunityCards []poker.Card `json:"community_cards"`
	Pot            int          `json:"pot"`
	CurrentTurn    string       `json:"current_turn"`
}

func (e GameStartedEvent) EventType() EventType { return EventTypeGameStarted }

// NewGameStartedEvent snapshots a freshly dealt hand. currentTurn is the
// player whose turn it is.
func NewGameStartedEvent(seats []Seat, pot int, currentTurn string) GameStartedEvent {
	return GameStartedEvent{
		Type:           EventTypeGameStarted,
		Players:        snapshotSeats(seats),
		CommunityCards: []poker.Card{},
		Pot:            pot,
		CurrentTurn:    currentTurn,
	}
}

// PlayerActionEvent is published after an action that did not end the hand.
type PlayerActionEvent struct {
	Type         EventType `json:"type"`
	Pot          int       `json:"pot"`
	Players      []Seat    `json:"players"`
	CurrentTurn  string    `json:"current_turn"`
	CurrentPhase Phase     `json:"current_phase"`
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }

func NewPlayerActionEvent(seats []Seat, pot int, currentTurn string, phase Phase) PlayerActionEvent {
	return PlayerActionEvent{
		Type:         EventTypePlayerAction,
		Pot:          pot,
		Players:      snapshotSeats(seats),
		CurrentTurn:  currentTurn,
		CurrentPhase: phase,
	}
}

// PhaseChangedEvent is published when community cards are dealt.
type PhaseChangedEvent struct {
	Type           EventType    `json:"type"`
	CommunityCards []poker.Card `json:"community_cards"`
	CurrentPhase   Phase        `json:"current_phase"`
	CurrentTurn    string       `json:"current_turn"`
}

func (e PhaseChangedEvent) EventType() EventType { return EventTypePhaseChanged }

func NewPhaseChangedEvent(community []poker.Card, phase Phase, currentTurn string) PhaseChangedEvent {
	return PhaseChangedEvent{
		Type:           EventTypePhaseChanged,
		CommunityCards: append([]poker.Card{}, community...),
		CurrentPhase:   phase,
		CurrentTurn:    currentTurn,
	}
}

// ShowdownEvent is published when a hand is resolved.
type ShowdownEvent struct {
	Type   EventType `json:"type"`
	Winner Seat      `json:"winner"`
	Hand   string    `json:"hand"`
}

func (e ShowdownEvent) EventType() EventType { return EventTypeShowdown }

func NewShowdownEvent(winner Seat, hand string) ShowdownEvent {
	return ShowdownEvent{Type: EventTypeShowdown, Winner: winner.Clone(), Hand: hand}
}

func snapshotSeats(seats []Seat) []Seat {
	out := cloneSeats(seats)
	if out == nil {
		out = []Seat{}
	}
	return out
}

// EventSink receives room notifications. Publish must not block the caller
// for long and has no way to report failure.
type EventSink interface {
	Publish(topic string, event Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(topic string, event Event)

func (f SinkFunc) Publish(topic string, event Event) { f(topic, event) }

// MultiSink fans every event out to each sink in order.
type MultiSink []EventSink

func (m MultiSink) Publish(topic string, event Event) {
	for _, s := range m {
		s.Publish(topic, event)
	}
}

// Discard is a sink that drops every event.
var Discard EventSink = SinkFunc(func(string, Event) {})

// Published is an event captured by Recorder.
type Published struct {
	Topic string
	Event Event
}

// Recorder is an EventSink that keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Published
}

func (r *Recorder) Publish(topic string, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Published{Topic: topic, Event: event})
}

// Events returns the captured events in publish order.
func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.events...)
}

// Types returns the type of each captured event in publish order.
func (r *Recorder) Types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]EventType, len(r.events))
	for i, p := range r.events {
		types[i] = p.Event.EventType()
	}
	return types
}

// Reset discards the captured events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
