package store

import (
	"context"
	"sort"
	"sync"

	"github.com/lox/holdem-rooms/internal/table"
)

// Memory keeps every record in process memory. Values are copied on the
// way in and out so callers never share state with the store.
type Memory struct {
	mu      sync.RWMutex
	rooms   map[string]*table.Room
	games   map[string]*table.Game
	history map[string][]string // room id -> game ids, oldest first
	players map[string]*table.Player
}

var _ table.Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		rooms:   make(map[string]*table.Room),
		games:   make(map[string]*table.Game),
		history: make(map[string][]string),
		players: make(map[string]*table.Player),
	}
}

func (m *Memory) LoadRoom(_ context.Context, id string) (*table.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, table.NotFound("room", id)
	}
	return r.Clone(), nil
}

func (m *Memory) ListRooms(_ context.Context) ([]*table.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*table.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r.Clone())
	}
	sortRooms(out)
	return out, nil
}

func (m *Memory) SaveRoom(_ context.Context, room *table.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.ID] = room.Clone()
	return nil
}

func (m *Memory) DeleteRoom(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return table.NotFound("room", id)
	}
	for _, gid := range m.history[id] {
		delete(m.games, gid)
	}
	delete(m.history, id)
	delete(m.rooms, id)
	return nil
}

func (m *Memory) LoadGame(_ context.Context, roomID string) (*table.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.history[roomID]
	if len(ids) == 0 {
		return nil, table.NotFound("game", roomID)
	}
	return m.games[ids[len(ids)-1]].Clone(), nil
}

func (m *Memory) SaveGame(_ context.Context, game *table.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putGame(game)
	return nil
}

func (m *Memory) SaveHand(_ context.Context, room *table.Room, game *table.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.ID] = room.Clone()
	m.putGame(game)
	return nil
}

func (m *Memory) putGame(game *table.Game) {
	if _, ok := m.games[game.ID]; !ok {
		m.history[game.RoomID] = append(m.history[game.RoomID], game.ID)
	}
	m.games[game.ID] = game.Clone()
}

func (m *Memory) LoadPlayer(_ context.Context, id string) (*table.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[id]
	if !ok {
		return nil, table.NotFound("player", id)
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) SavePlayer(_ context.Context, player *table.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *player
	m.players[player.ID] = &cp
	return nil
}

func (m *Memory) DeletePlayer(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[id]; !ok {
		return table.NotFound("player", id)
	}
	delete(m.players, id)
	return nil
}

func (m *Memory) Close() error { return nil }

func sortRooms(rooms []*table.Room) {
	sort.Slice(rooms, func(i, j int) bool {
		if !rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
		}
		return rooms[i].ID < rooms[j].ID
	})
}
