package table

import "context"

// Store persists rooms, games and players. Loads return copies the caller
// may mutate, and unknown ids fail with an error matching ErrNotFound.
type Store interface {
	LoadRoom(ctx context.Context, id string) (*Room, error)
	ListRooms(ctx context.Context) ([]*Room, error)
	SaveRoom(ctx context.Context, room *Room) error
	// DeleteRoom removes the room and every game bound to it.
	DeleteRoom(ctx context.Context, id string) error

	// LoadGame returns the most recent game bound to roomID.
	LoadGame(ctx context.Context, roomID string) (*Game, error)
	SaveGame(ctx context.Context, game *Game) error
	// SaveHand writes room and game in one atomic step.
	SaveHand(ctx context.Context, room *Room, game *Game) error

	LoadPlayer(ctx context.Context, id string) (*Player, error)
	SavePlayer(ctx context.Context, player *Player) error
	DeletePlayer(ctx context.Context, id string) error

	Close() error
}
