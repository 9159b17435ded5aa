package store

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/lox/holdem-rooms/internal/table"
	"github.com/lox/holdem-rooms/poker"
)

type StoreSuite struct {
	suite.Suite
	open  func(t *testing.T) table.Store
	store table.Store
	ctx   context.Context
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.open(s.T())
}

func (s *StoreSuite) TearDownTest() {
	s.NoError(s.store.Close())
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &StoreSuite{open: func(*testing.T) table.Store { return NewMemory() }})
}

func TestSQLiteStore(t *testing.T) {
	suite.Run(t, &StoreSuite{open: func(t *testing.T) table.Store {
		st, err := OpenSQLite(":memory:", log.New(io.Discard))
		require.NoError(t, err)
		return st
	}})
}

func TestFileStore(t *testing.T) {
	suite.Run(t, &StoreSuite{open: func(t *testing.T) table.Store {
		st, err := OpenFile(t.TempDir(), log.New(io.Discard))
		require.NoError(t, err)
		return st
	}})
}

var epoch = time.Date(2025, 3, 14, 15, 9, 26, 535000000, time.UTC)

func sampleRoom(id string, created time.Time) *table.Room {
	return &table.Room{
		ID:         id,
		Name:       "room " + id,
		MaxPlayers: 6,
		Seats: []table.Seat{
			{PlayerID: "p1", Name: "alice", Chips: 998, CurrentBet: 2, Hand: poker.MustParseCards("As", "Kd"), Finished: true},
			{PlayerID: "p2", Name: "bob", Chips: 1000, Hand: poker.MustParseCards("7h", "7c")},
		},
		ActiveGame:        true,
		CurrentPlayerTurn: "p2",
		Deck:              poker.DeckOf(poker.MustParseCards("2c", "3c", "4c", "5c")...),
		CreatedAt:         created,
		UpdatedAt:         created,
	}
}

func sampleGame(id, roomID string, created time.Time) *table.Game {
	return &table.Game{
		ID:             id,
		RoomID:         roomID,
		Phase:          table.Flop,
		CurrentTurn:    3,
		CommunityCards: poker.MustParseCards("Qs", "Js", "Ts"),
		Pot:            4,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

// requireSameRoom compares rooms with timestamps checked by instant.
func (s *StoreSuite) requireSameRoom(want, got *table.Room) {
	s.T().Helper()
	s.True(want.CreatedAt.Equal(got.CreatedAt), "created_at %s != %s", want.CreatedAt, got.CreatedAt)
	s.True(want.UpdatedAt.Equal(got.UpdatedAt), "updated_at %s != %s", want.UpdatedAt, got.UpdatedAt)
	w, g := want.Clone(), got.Clone()
	w.CreatedAt, w.UpdatedAt, g.CreatedAt, g.UpdatedAt = time.Time{}, time.Time{}, time.Time{}, time.Time{}
	s.Equal(w, g)
}

func (s *StoreSuite) requireSameGame(want, got *table.Game) {
	s.T().Helper()
	s.True(want.CreatedAt.Equal(got.CreatedAt))
	w, g := want.Clone(), got.Clone()
	w.CreatedAt, w.UpdatedAt, g.CreatedAt, g.UpdatedAt = time.Time{}, time.Time{}, time.Time{}, time.Time{}
	s.Equal(w, g)
}

func (s *StoreSuite) TestRoomRoundTrip() {
	room := sampleRoom("r1", epoch)
	s.Require().NoError(s.store.SaveRoom(s.ctx, room))

	got, err := s.store.LoadRoom(s.ctx, "r1")
	s.Require().NoError(err)
	s.requireSameRoom(room, got)
	s.Equal(4, got.Deck.Remaining())

	room.Name = "renamed"
	room.Deck = nil
	room.ActiveGame = false
	s.Require().NoError(s.store.SaveRoom(s.ctx, room))

	got, err = s.store.LoadRoom(s.ctx, "r1")
	s.Require().NoError(err)
	s.Equal("renamed", got.Name)
	s.Nil(got.Deck)
	s.False(got.ActiveGame)
}

func (s *StoreSuite) TestLoadedRoomIsACopy() {
	s.Require().NoError(s.store.SaveRoom(s.ctx, sampleRoom("r1", epoch)))

	got, err := s.store.LoadRoom(s.ctx, "r1")
	s.Require().NoError(err)
	got.Seats[0].Chips = 0
	_, _ = got.Deck.Draw()

	again, err := s.store.LoadRoom(s.ctx, "r1")
	s.Require().NoError(err)
	s.Equal(998, again.Seats[0].Chips)
	s.Equal(4, again.Deck.Remaining())
}

func (s *StoreSuite) TestMissingRecords() {
	_, err := s.store.LoadRoom(s.ctx, "nope")
	s.ErrorIs(err, table.ErrNotFound)

	_, err = s.store.LoadGame(s.ctx, "nope")
	s.ErrorIs(err, table.ErrNotFound)

	_, err = s.store.LoadPlayer(s.ctx, "nope")
	s.ErrorIs(err, table.ErrNotFound)

	s.ErrorIs(s.store.DeleteRoom(s.ctx, "nope"), table.ErrNotFound)
	s.ErrorIs(s.store.DeletePlayer(s.ctx, "nope"), table.ErrNotFound)
}

func (s *StoreSuite) TestListRoomsOrderedByCreation() {
	s.Require().NoError(s.store.SaveRoom(s.ctx, sampleRoom("b", epoch.Add(time.Minute))))
	s.Require().NoError(s.store.SaveRoom(s.ctx, sampleRoom("a", epoch.Add(2*time.Minute))))
	s.Require().NoError(s.store.SaveRoom(s.ctx, sampleRoom("c", epoch)))

	rooms, err := s.store.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 3)
	s.Equal([]string{"c", "b", "a"}, []string{rooms[0].ID, rooms[1].ID, rooms[2].ID})
}

func (s *StoreSuite) TestSaveHandAndLatestGame() {
	room := sampleRoom("r1", epoch)
	first := sampleGame("g1", "r1", epoch)
	s.Require().NoError(s.store.SaveHand(s.ctx, room, first))

	got, err := s.store.LoadGame(s.ctx, "r1")
	s.Require().NoError(err)
	s.requireSameGame(first, got)

	loadedRoom, err := s.store.LoadRoom(s.ctx, "r1")
	s.Require().NoError(err)
	s.requireSameRoom(room, loadedRoom)

	winner := room.Seats[0]
	first.Winner = &winner
	first.WinnerHand = "flush"
	first.PotAwarded = first.Pot
	first.Pot = 0
	s.Require().NoError(s.store.SaveGame(s.ctx, first))

	second := sampleGame("g2", "r1", epoch.Add(time.Minute))
	second.Phase = table.PreFlop
	s.Require().NoError(s.store.SaveHand(s.ctx, room, second))

	got, err = s.store.LoadGame(s.ctx, "r1")
	s.Require().NoError(err)
	s.Equal("g2", got.ID)
	s.Equal(table.PreFlop, got.Phase)
	s.Nil(got.Winner)
}

func (s *StoreSuite) TestWinnerRoundTrip() {
	room := sampleRoom("r1", epoch)
	game := sampleGame("g1", "r1", epoch)
	winner := room.Seats[1]
	game.Winner = &winner
	game.WinnerHand = "pair"
	s.Require().NoError(s.store.SaveHand(s.ctx, room, game))

	got, err := s.store.LoadGame(s.ctx, "r1")
	s.Require().NoError(err)
	s.Require().NotNil(got.Winner)
	s.Equal("p2", got.Winner.PlayerID)
	s.Equal(poker.MustParseCards("7h", "7c"), got.Winner.Hand)
	s.Equal("pair", got.WinnerHand)
}

func (s *StoreSuite) TestDeleteRoomRemovesGames() {
	s.Require().NoError(s.store.SaveHand(s.ctx, sampleRoom("r1", epoch), sampleGame("g1", "r1", epoch)))
	s.Require().NoError(s.store.DeleteRoom(s.ctx, "r1"))

	_, err := s.store.LoadRoom(s.ctx, "r1")
	s.ErrorIs(err, table.ErrNotFound)
	_, err = s.store.LoadGame(s.ctx, "r1")
	s.ErrorIs(err, table.ErrNotFound)
}

func (s *StoreSuite) TestPlayers() {
	p := &table.Player{ID: "p1", Name: "alice", Chips: 1000, CreatedAt: epoch}
	s.Require().NoError(s.store.SavePlayer(s.ctx, p))

	got, err := s.store.LoadPlayer(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal("alice", got.Name)
	s.Equal(1000, got.Chips)
	s.True(epoch.Equal(got.CreatedAt))

	p.Chips = 250
	s.Require().NoError(s.store.SavePlayer(s.ctx, p))
	got, err = s.store.LoadPlayer(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(250, got.Chips)

	s.Require().NoError(s.store.DeletePlayer(s.ctx, "p1"))
	_, err = s.store.LoadPlayer(s.ctx, "p1")
	s.ErrorIs(err, table.ErrNotFound)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	logger := log.New(io.Discard)

	st, err := Open(DriverMemory, "", logger)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, st)

	st, err = Open(DriverFile, t.TempDir(), logger)
	require.NoError(t, err)
	assert.IsType(t, &File{}, st)

	_, err = Open("postgres", "", logger)
	assert.Error(t, err)
}

func TestFileStoreRejectsPathIDs(t *testing.T) {
	t.Parallel()

	st, err := OpenFile(t.TempDir(), log.New(io.Discard))
	require.NoError(t, err)

	_, err = st.LoadRoom(context.Background(), "../etc/passwd")
	assert.ErrorIs(t, err, table.ErrNotFound)
}
