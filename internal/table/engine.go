package table

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem-rooms/internal/ids"
	"github.com/lox/holdem-rooms/internal/randutil"
	"github.com/lox/holdem-rooms/poker"
)

// DefaultMaxPlayers is used when a room is created without a seat limit.
const DefaultMaxPlayers = 6

// Engine runs rooms and hands on top of a Store. Mutating operations on the
// same room are serialized; different rooms proceed in parallel.
type Engine struct {
	store  Store
	sink   EventSink
	logger *log.Logger
	clock  quartz.Clock
	ids    *ids.Generator

	rngMu sync.Mutex
	rng   *rand.Rand

	startingChips     int
	defaultMaxPlayers int

	locks *roomLocks
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for record timestamps.
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithRand sets the generator used to shuffle decks.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithIDs sets the id generator for new rooms, games and players.
func WithIDs(g *ids.Generator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithStartingChips sets the bank given to new players.
func WithStartingChips(chips int) Option {
	return func(e *Engine) { e.startingChips = chips }
}

// WithDefaultMaxPlayers sets the seat limit for rooms created without one.
func WithDefaultMaxPlayers(n int) Option {
	return func(e *Engine) { e.defaultMaxPlayers = n }
}

// NewEngine returns an engine persisting to store and publishing to sink.
func NewEngine(store Store, sink EventSink, logger *log.Logger, opts ...Option) *Engine {
	if sink == nil {
		sink = Discard
	}
	e := &Engine{
		store:             store,
		sink:              sink,
		logger:            logger.WithPrefix("engine"),
		clock:             quartz.NewReal(),
		ids:               ids.NewGenerator(nil),
		startingChips:     DefaultStartingChips,
		defaultMaxPlayers: DefaultMaxPlayers,
		locks:             newRoomLocks(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng, _ = randutil.Seeded(nil)
	}
	return e
}

// CreateRoom opens an empty room. A maxPlayers of zero uses the engine
// default.
func (e *Engine) CreateRoom(ctx context.Context, name string, maxPlayers int) (*Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ruleError(KindInvalidArgument, "Room name is required", nil)
	}
	if maxPlayers == 0 {
		maxPlayers = e.defaultMaxPlayers
	}
	if maxPlayers < 2 || maxPlayers > MaxSeats {
		return nil, ruleError(KindInvalidArgument,
			fmt.Sprintf("max_players must be between 2 and %d", MaxSeats),
			map[string]any{"max_players": maxPlayers})
	}

	id, err := e.ids.New()
	if err != nil {
		return nil, err
	}
	now := e.clock.Now()
	room := &Room{
		ID:         id,
		Name:       name,
		MaxPlayers: maxPlayers,
		Seats:      []Seat{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.store.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("save room: %w", err)
	}
	e.logger.Info("Room created", "room", id, "name", name, "max_players", maxPlayers)
	return room.Clone(), nil
}

// Room returns a room by id.
func (e *Engine) Room(ctx context.Context, id string) (*Room, error) {
	return e.store.LoadRoom(ctx, id)
}

// Rooms lists every room.
func (e *Engine) Rooms(ctx context.Context) ([]*Room, error) {
	return e.store.ListRooms(ctx)
}

// Game returns the most recent game played in a room.
func (e *Engine) Game(ctx context.Context, roomID string) (*Game, error) {
	return e.store.LoadGame(ctx, roomID)
}

// State returns a room together with its latest game, which is nil before
// the first hand.
func (e *Engine) State(ctx context.Context, roomID string) (*State, error) {
	room, game, err := e.load(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return &State{Room: room, Game: game}, nil
}

// DeleteRoom removes a room and its games.
func (e *Engine) DeleteRoom(ctx context.Context, id string) error {
	unlock := e.locks.lock(id)
	defer unlock()

	if _, err := e.store.LoadRoom(ctx, id); err != nil {
		return err
	}
	if err := e.store.DeleteRoom(ctx, id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	e.logger.Info("Room deleted", "room", id)
	return nil
}

// CreatePlayer registers a player with the starting bank.
func (e *Engine) CreatePlayer(ctx context.Context, name string) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ruleError(KindInvalidArgument, "Player name is required", nil)
	}
	id, err := e.ids.New()
	if err != nil {
		return nil, err
	}
	p := &Player{ID: id, Name: name, Chips: e.startingChips, CreatedAt: e.clock.Now()}
	if err := e.store.SavePlayer(ctx, p); err != nil {
		return nil, fmt.Errorf("save player: %w", err)
	}
	e.logger.Debug("Player created", "player", id, "name", name)
	return p, nil
}

// Player returns a player by id.
func (e *Engine) Player(ctx context.Context, id string) (*Player, error) {
	return e.store.LoadPlayer(ctx, id)
}

// DeletePlayer removes a player record. Seats already taken are unaffected.
func (e *Engine) DeletePlayer(ctx context.Context, id string) error {
	if _, err := e.store.LoadPlayer(ctx, id); err != nil {
		return err
	}
	if err := e.store.DeletePlayer(ctx, id); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return nil
}

// Join seats a player at the end of the room's seat order with a copy of
// their chip bank.
func (e *Engine) Join(ctx context.Context, roomID, playerID string) (*Room, error) {
	unlock := e.locks.lock(roomID)
	defer unlock()

	room, err := e.store.LoadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	player, err := e.store.LoadPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	t := &transition{room: room}
	if err := t.join(player); err != nil {
		return nil, e.refuse("join", roomID, playerID, err)
	}
	if err := e.commit(ctx, t); err != nil {
		return nil, err
	}
	e.logger.Info("Player joined", "room", roomID, "player", playerID, "seats", len(room.Seats))
	return room.Clone(), nil
}

// Leave removes a player's seat. Leaving a room one is not seated in
// succeeds without changes.
func (e *Engine) Leave(ctx context.Context, roomID, playerID string) (*Room, error) {
	unlock := e.locks.lock(roomID)
	defer unlock()

	room, err := e.store.LoadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	t := &transition{room: room}
	if err := t.leave(playerID); err != nil {
		return nil, e.refuse("leave", roomID, playerID, err)
	}
	if err := e.commit(ctx, t); err != nil {
		return nil, err
	}
	e.logger.Info("Player left", "room", roomID, "player", playerID, "seats", len(room.Seats))
	return room.Clone(), nil
}

// StartHand shuffles a fresh deck, deals hole cards and binds a new game to
// the room.
func (e *Engine) StartHand(ctx context.Context, roomID string) (*State, error) {
	unlock := e.locks.lock(roomID)
	defer unlock()

	room, current, err := e.load(ctx, roomID)
	if err != nil {
		return nil, err
	}

	id, err := e.ids.New()
	if err != nil {
		return nil, err
	}
	now := e.clock.Now()
	game := &Game{
		ID:             id,
		Phase:          PreFlop,
		CurrentTurn:    1,
		CommunityCards: []poker.Card{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	t := &transition{room: room, game: current}
	if err := t.start(game, e.newDeck()); err != nil {
		return nil, e.refuse("start", roomID, "", err)
	}
	if err := e.commit(ctx, t); err != nil {
		return nil, err
	}
	e.logger.Info("Hand started", "room", roomID, "game", game.ID, "players", len(room.Seats))
	return t.state(), nil
}

// Act applies a player's action. amount is only used by Raise.
func (e *Engine) Act(ctx context.Context, roomID, playerID string, action Action, amount int) (*State, error) {
	unlock := e.locks.lock(roomID)
	defer unlock()

	room, game, err := e.load(ctx, roomID)
	if err != nil {
		return nil, err
	}

	t := &transition{room: room, game: game}
	if err := t.act(playerID, action, amount); err != nil {
		return nil, e.refuse("act", roomID, playerID, err)
	}
	if err := e.commit(ctx, t); err != nil {
		return nil, err
	}
	e.logger.Debug("Player acted", "room", roomID, "player", playerID,
		"action", action, "amount", amount, "pot", game.Pot, "phase", game.Phase)
	return t.state(), nil
}

// AdvancePhase deals the next street, or resolves the showdown after the
// river.
func (e *Engine) AdvancePhase(ctx context.Context, roomID string) (*State, error) {
	unlock := e.locks.lock(roomID)
	defer unlock()

	room, game, err := e.load(ctx, roomID)
	if err != nil {
		return nil, err
	}

	t := &transition{room: room, game: game}
	if err := t.advancePhase(); err != nil {
		return nil, e.refuse("advance", roomID, "", err)
	}
	if err := e.commit(ctx, t); err != nil {
		return nil, err
	}
	e.logger.Debug("Phase advanced", "room", roomID, "phase", game.Phase)
	return t.state(), nil
}

// Showdown resolves the current hand immediately.
func (e *Engine) Showdown(ctx context.Context, roomID string) (*State, error) {
	unlock := e.locks.lock(roomID)
	defer unlock()

	room, game, err := e.load(ctx, roomID)
	if err != nil {
		return nil, err
	}

	t := &transition{room: room, game: game}
	if err := t.showdown(); err != nil {
		return nil, e.refuse("showdown", roomID, "", err)
	}
	if err := e.commit(ctx, t); err != nil {
		return nil, err
	}
	return t.state(), nil
}

// load reads a room and its latest game. A room that never hosted a hand
// has a nil game.
func (e *Engine) load(ctx context.Context, roomID string) (*Room, *Game, error) {
	room, err := e.store.LoadRoom(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	game, err := e.store.LoadGame(ctx, roomID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, nil, fmt.Errorf("load game: %w", err)
	}
	return room, game, nil
}

// commit saves the working copies and publishes the collected events.
func (e *Engine) commit(ctx context.Context, t *transition) error {
	now := e.clock.Now()
	t.room.UpdatedAt = now

	if t.game != nil {
		t.game.UpdatedAt = now
		if err := e.store.SaveHand(ctx, t.room, t.game); err != nil {
			return fmt.Errorf("save hand: %w", err)
		}
	} else if err := e.store.SaveRoom(ctx, t.room); err != nil {
		return fmt.Errorf("save room: %w", err)
	}

	topic := Topic(t.room.ID)
	for _, ev := range t.events {
		e.sink.Publish(topic, ev)
	}
	if t.game != nil && t.game.Finished() && !t.room.ActiveGame {
		e.logger.Info("Hand finished", "room", t.room.ID, "game", t.game.ID,
			"winner", t.game.Winner.PlayerID, "hand", t.game.WinnerHand, "pot", t.game.PotAwarded)
	}
	return nil
}

func (e *Engine) refuse(op, roomID, playerID string, err error) error {
	if kind := KindOf(err); kind != "" {
		e.logger.Debug("Operation refused", "op", op, "room", roomID, "player", playerID, "kind", kind, "error", err)
	}
	return err
}

func (e *Engine) newDeck() *poker.Deck {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return poker.NewDeck(e.rng)
}
