package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-rooms/internal/fileutil"
	"github.com/lox/holdem-rooms/internal/table"
	"github.com/lox/holdem-rooms/poker"
)

// File keeps one JSON document per room, holding the room, its deck and
// its games, plus one document per player:
//
//	<dir>/rooms/<room id>.json
//	<dir>/players/<player id>.json
//
// Every write replaces a whole document atomically, so a room and its game
// are always saved together.
type File struct {
	dir    string
	logger *log.Logger
	mu     sync.Mutex
}

var _ table.Store = (*File)(nil)

type roomDocument struct {
	Room  *table.Room   `json:"room"`
	Deck  *poker.Deck   `json:"deck,omitempty"`
	Games []*table.Game `json:"games"`
}

// OpenFile uses dir as the root of a file store, creating it if needed.
func OpenFile(dir string, logger *log.Logger) (*File, error) {
	for _, sub := range []string{"rooms", "players"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	logger = logger.WithPrefix("store")
	logger.Info("File store ready", "dir", dir)
	return &File{dir: dir, logger: logger}, nil
}

func (f *File) roomPath(id string) string {
	return filepath.Join(f.dir, "rooms", id+".json")
}

func (f *File) playerPath(id string) string {
	return filepath.Join(f.dir, "players", id+".json")
}

// validID keeps ids from escaping the store directory.
func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\.`)
}

func (f *File) readRoom(id string) (*roomDocument, error) {
	if !validID(id) {
		return nil, table.NotFound("room", id)
	}
	var doc roomDocument
	if err := fileutil.ReadJSON(f.roomPath(id), &doc); err != nil {
		if errors.Is(err, fileutil.ErrNotExist) {
			return nil, table.NotFound("room", id)
		}
		return nil, err
	}
	if doc.Room == nil {
		return nil, fmt.Errorf("room document %s has no room", id)
	}
	doc.Room.Deck = doc.Deck
	return &doc, nil
}

func (f *File) writeRoom(doc *roomDocument) error {
	doc.Deck = doc.Room.Deck
	return fileutil.WriteJSONAtomic(f.roomPath(doc.Room.ID), doc)
}

func (f *File) LoadRoom(_ context.Context, id string) (*table.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.readRoom(id)
	if err != nil {
		return nil, err
	}
	return doc.Room, nil
}

func (f *File) ListRooms(_ context.Context) ([]*table.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := os.ReadDir(filepath.Join(f.dir, "rooms"))
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	rooms := make([]*table.Room, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		doc, err := f.readRoom(strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, doc.Room)
	}
	sortRooms(rooms)
	return rooms, nil
}

func (f *File) SaveRoom(_ context.Context, room *table.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !validID(room.ID) {
		return fmt.Errorf("invalid room id %q", room.ID)
	}
	doc, err := f.readRoom(room.ID)
	if err != nil && !errors.Is(err, table.ErrNotFound) {
		return err
	}
	if doc == nil {
		doc = &roomDocument{Games: []*table.Game{}}
	}
	doc.Room = room
	return f.writeRoom(doc)
}

func (f *File) DeleteRoom(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.readRoom(id); err != nil {
		return err
	}
	if err := os.Remove(f.roomPath(id)); err != nil {
		return fmt.Errorf("delete room %s: %w", id, err)
	}
	return nil
}

func (f *File) LoadGame(_ context.Context, roomID string) (*table.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.readRoom(roomID)
	if errors.Is(err, table.ErrNotFound) || (err == nil && len(doc.Games) == 0) {
		return nil, table.NotFound("game", roomID)
	}
	if err != nil {
		return nil, err
	}
	return doc.Games[len(doc.Games)-1], nil
}

func (f *File) SaveGame(_ context.Context, game *table.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.readRoom(game.RoomID)
	if err != nil {
		return fmt.Errorf("save game %s: %w", game.ID, err)
	}
	doc.putGame(game)
	return f.writeRoom(doc)
}

func (f *File) SaveHand(_ context.Context, room *table.Room, game *table.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.readRoom(room.ID)
	if err != nil && !errors.Is(err, table.ErrNotFound) {
		return err
	}
	if doc == nil {
		doc = &roomDocument{}
	}
	doc.Room = room
	doc.putGame(game)
	return f.writeRoom(doc)
}

func (d *roomDocument) putGame(game *table.Game) {
	for i, g := range d.Games {
		if g.ID == game.ID {
			d.Games[i] = game
			return
		}
	}
	d.Games = append(d.Games, game)
}

func (f *File) LoadPlayer(_ context.Context, id string) (*table.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !validID(id) {
		return nil, table.NotFound("player", id)
	}
	var p table.Player
	if err := fileutil.ReadJSON(f.playerPath(id), &p); err != nil {
		if errors.Is(err, fileutil.ErrNotExist) {
			return nil, table.NotFound("player", id)
		}
		return nil, err
	}
	return &p, nil
}

func (f *File) SavePlayer(_ context.Context, player *table.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !validID(player.ID) {
		return fmt.Errorf("invalid player id %q", player.ID)
	}
	return fileutil.WriteJSONAtomic(f.playerPath(player.ID), player)
}

func (f *File) DeletePlayer(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !validID(id) {
		return table.NotFound("player", id)
	}
	err := os.Remove(f.playerPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return table.NotFound("player", id)
	}
	if err != nil {
		return fmt.Errorf("delete player %s: %w", id, err)
	}
	return nil
}

func (f *File) Close() error { return nil }
