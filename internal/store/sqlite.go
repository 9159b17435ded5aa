package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/lox/holdem-rooms/internal/table"
	"github.com/lox/holdem-rooms/poker"
)

var schema = `CREATE TABLE IF NOT EXISTS players (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  chips INTEGER NOT NULL DEFAULT 1000,
  created_at TIMESTAMP NOT NULL,

  CONSTRAINT non_empty_player CHECK (TRIM(name) <> '')
);

CREATE TABLE IF NOT EXISTS rooms (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  max_players INTEGER NOT NULL,
  current_players TEXT NOT NULL DEFAULT '[]',
  active_game BOOLEAN NOT NULL DEFAULT false,
  current_player_turn TEXT NOT NULL DEFAULT '',
  deck TEXT,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS games (
  id TEXT PRIMARY KEY,
  room_id TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
  current_phase TEXT NOT NULL DEFAULT 'pre-flop',
  current_turn INTEGER NOT NULL DEFAULT 1,
  community_cards TEXT NOT NULL DEFAULT '[]',
  pot INTEGER NOT NULL DEFAULT 0,
  winner_player TEXT,
  winner_hand TEXT NOT NULL DEFAULT '',
  pot_awarded INTEGER NOT NULL DEFAULT 0,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS games_room_id ON games(room_id);`

// SQLite stores records in a SQLite database. Seats, decks and cards are
// kept as JSON text columns.
type SQLite struct {
	db     *sqlx.DB
	logger *log.Logger
}

var _ table.Store = (*SQLite)(nil)

// OpenSQLite connects to the database at dsn and applies the schema. Use
// ":memory:" for a throwaway database.
func OpenSQLite(dsn string, logger *log.Logger) (*SQLite, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite %s: %w", dsn, err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	logger = logger.WithPrefix("store")
	logger.Info("Database ready", "driver", "sqlite", "dsn", dsn)
	return &SQLite{db: db, logger: logger}, nil
}

type roomRow struct {
	ID                string         `db:"id"`
	Name              string         `db:"name"`
	MaxPlayers        int            `db:"max_players"`
	Seats             string         `db:"current_players"`
	ActiveGame        bool           `db:"active_game"`
	CurrentPlayerTurn string         `db:"current_player_turn"`
	Deck              sql.NullString `db:"deck"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

type gameRow struct {
	ID             string         `db:"id"`
	RoomID         string         `db:"room_id"`
	Phase          string         `db:"current_phase"`
	CurrentTurn    int            `db:"current_turn"`
	CommunityCards string         `db:"community_cards"`
	Pot            int            `db:"pot"`
	Winner         sql.NullString `db:"winner_player"`
	WinnerHand     string         `db:"winner_hand"`
	PotAwarded     int            `db:"pot_awarded"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func toRoomRow(r *table.Room) (roomRow, error) {
	seats := r.Seats
	if seats == nil {
		seats = []table.Seat{}
	}
	seatJSON, err := json.Marshal(seats)
	if err != nil {
		return roomRow{}, fmt.Errorf("encode seats: %w", err)
	}
	row := roomRow{
		ID:                r.ID,
		Name:              r.Name,
		MaxPlayers:        r.MaxPlayers,
		Seats:             string(seatJSON),
		ActiveGame:        r.ActiveGame,
		CurrentPlayerTurn: r.CurrentPlayerTurn,
		CreatedAt:         r.CreatedAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
	}
	if r.Deck != nil {
		deckJSON, err := json.Marshal(r.Deck)
		if err != nil {
			return roomRow{}, fmt.Errorf("encode deck: %w", err)
		}
		row.Deck = sql.NullString{String: string(deckJSON), Valid: true}
	}
	return row, nil
}

func (row roomRow) room() (*table.Room, error) {
	r := &table.Room{
		ID:                row.ID,
		Name:              row.Name,
		MaxPlayers:        row.MaxPlayers,
		ActiveGame:        row.ActiveGame,
		CurrentPlayerTurn: row.CurrentPlayerTurn,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(row.Seats), &r.Seats); err != nil {
		return nil, fmt.Errorf("decode seats of room %s: %w", row.ID, err)
	}
	if row.Deck.Valid {
		r.Deck = &poker.Deck{}
		if err := json.Unmarshal([]byte(row.Deck.String), r.Deck); err != nil {
			return nil, fmt.Errorf("decode deck of room %s: %w", row.ID, err)
		}
	}
	return r, nil
}

func toGameRow(g *table.Game) (gameRow, error) {
	cards := g.CommunityCards
	if cards == nil {
		cards = []poker.Card{}
	}
	cardJSON, err := json.Marshal(cards)
	if err != nil {
		return gameRow{}, fmt.Errorf("encode community cards: %w", err)
	}
	row := gameRow{
		ID:             g.ID,
		RoomID:         g.RoomID,
		Phase:          string(g.Phase),
		CurrentTurn:    g.CurrentTurn,
		CommunityCards: string(cardJSON),
		Pot:            g.Pot,
		WinnerHand:     g.WinnerHand,
		PotAwarded:     g.PotAwarded,
		CreatedAt:      g.CreatedAt.UTC(),
		UpdatedAt:      g.UpdatedAt.UTC(),
	}
	if g.Winner != nil {
		winnerJSON, err := json.Marshal(g.Winner)
		if err != nil {
			return gameRow{}, fmt.Errorf("encode winner: %w", err)
		}
		row.Winner = sql.NullString{String: string(winnerJSON), Valid: true}
	}
	return row, nil
}

func (row gameRow) game() (*table.Game, error) {
	g := &table.Game{
		ID:          row.ID,
		RoomID:      row.RoomID,
		Phase:       table.Phase(row.Phase),
		CurrentTurn: row.CurrentTurn,
		Pot:         row.Pot,
		WinnerHand:  row.WinnerHand,
		PotAwarded:  row.PotAwarded,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(row.CommunityCards), &g.CommunityCards); err != nil {
		return nil, fmt.Errorf("decode community cards of game %s: %w", row.ID, err)
	}
	if row.Winner.Valid {
		g.Winner = &table.Seat{}
		if err := json.Unmarshal([]byte(row.Winner.String), g.Winner); err != nil {
			return nil, fmt.Errorf("decode winner of game %s: %w", row.ID, err)
		}
	}
	return g, nil
}

const upsertRoomSQL = `INSERT INTO rooms (id, name, max_players, current_players, active_game, current_player_turn, deck, created_at, updated_at)
VALUES (:id, :name, :max_players, :current_players, :active_game, :current_player_turn, :deck, :created_at, :updated_at)
ON CONFLICT(id) DO UPDATE SET
  name = excluded.name,
  max_players = excluded.max_players,
  current_players = excluded.current_players,
  active_game = excluded.active_game,
  current_player_turn = excluded.current_player_turn,
  deck = excluded.deck,
  updated_at = excluded.updated_at;`

const upsertGameSQL = `INSERT INTO games (id, room_id, current_phase, current_turn, community_cards, pot, winner_player, winner_hand, pot_awarded, created_at, updated_at)
VALUES (:id, :room_id, :current_phase, :current_turn, :community_cards, :pot, :winner_player, :winner_hand, :pot_awarded, :created_at, :updated_at)
ON CONFLICT(id) DO UPDATE SET
  current_phase = excluded.current_phase,
  current_turn = excluded.current_turn,
  community_cards = excluded.community_cards,
  pot = excluded.pot,
  winner_player = excluded.winner_player,
  winner_hand = excluded.winner_hand,
  pot_awarded = excluded.pot_awarded,
  updated_at = excluded.updated_at;`

const upsertPlayerSQL = `INSERT INTO players (id, name, chips, created_at)
VALUES (:id, :name, :chips, :created_at)
ON CONFLICT(id) DO UPDATE SET
  name = excluded.name,
  chips = excluded.chips;`

func (s *SQLite) LoadRoom(ctx context.Context, id string) (*table.Room, error) {
	var row roomRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM rooms WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, table.NotFound("room", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load room %s: %w", id, err)
	}
	return row.room()
}

func (s *SQLite) ListRooms(ctx context.Context) ([]*table.Room, error) {
	var rows []roomRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM rooms ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	out := make([]*table.Room, 0, len(rows))
	for _, row := range rows {
		r, err := row.room()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *SQLite) SaveRoom(ctx context.Context, room *table.Room) error {
	row, err := toRoomRow(room)
	if err != nil {
		return err
	}
	if _, err := s.db.NamedExecContext(ctx, upsertRoomSQL, row); err != nil {
		return fmt.Errorf("save room %s: %w", room.ID, err)
	}
	return nil
}

func (s *SQLite) DeleteRoom(ctx context.Context, id string) error {
	return s.inTx(ctx, "delete room", func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM games WHERE room_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return table.NotFound("room", id)
		}
		return nil
	})
}

func (s *SQLite) LoadGame(ctx context.Context, roomID string) (*table.Game, error) {
	var row gameRow
	err := s.db.GetContext(ctx, &row,
		`SELECT * FROM games WHERE room_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, table.NotFound("game", roomID)
	}
	if err != nil {
		return nil, fmt.Errorf("load game for room %s: %w", roomID, err)
	}
	return row.game()
}

func (s *SQLite) SaveGame(ctx context.Context, game *table.Game) error {
	row, err := toGameRow(game)
	if err != nil {
		return err
	}
	if _, err := s.db.NamedExecContext(ctx, upsertGameSQL, row); err != nil {
		return fmt.Errorf("save game %s: %w", game.ID, err)
	}
	return nil
}

func (s *SQLite) SaveHand(ctx context.Context, room *table.Room, game *table.Game) error {
	rr, err := toRoomRow(room)
	if err != nil {
		return err
	}
	gr, err := toGameRow(game)
	if err != nil {
		return err
	}
	return s.inTx(ctx, "save hand", func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, upsertRoomSQL, rr); err != nil {
			return err
		}
		_, err := tx.NamedExecContext(ctx, upsertGameSQL, gr)
		return err
	})
}

func (s *SQLite) LoadPlayer(ctx context.Context, id string) (*table.Player, error) {
	var p table.Player
	err := s.db.GetContext(ctx, &p, `SELECT id, name, chips, created_at FROM players WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, table.NotFound("player", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load player %s: %w", id, err)
	}
	return &p, nil
}

func (s *SQLite) SavePlayer(ctx context.Context, player *table.Player) error {
	p := *player
	p.CreatedAt = p.CreatedAt.UTC()
	if _, err := s.db.NamedExecContext(ctx, upsertPlayerSQL, p); err != nil {
		return fmt.Errorf("save player %s: %w", player.ID, err)
	}
	return nil
}

func (s *SQLite) DeletePlayer(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete player %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return table.NotFound("player", id)
	}
	return nil
}

func (s *SQLite) Close() error {
	s.logger.Info("Closing database connection")
	return s.db.Close()
}

// inTx runs fn in a transaction, rolling back when it fails. Errors from
// the table package pass through unwrapped.
func (s *SQLite) inTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("Rollback failed", "op", op, "error", rbErr)
		}
		if table.KindOf(err) != "" {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}
