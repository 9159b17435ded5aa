package display

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-rooms/internal/table"
	"github.com/lox/holdem-rooms/poker"
)

func init() {
	SetColor(false)
}

func TestCards(t *testing.T) {
	assert.Equal(t, "A♠ 10♥", Cards(poker.MustParseCards("As", "Th")))
	assert.Equal(t, "-", Cards(nil))
	assert.Equal(t, "Royal Flush (rank 10)", Category(poker.RoyalFlush))
}

func TestSeats(t *testing.T) {
	out := Seats([]table.Seat{
		{PlayerID: "p1", Name: "alice", Chips: 998, CurrentBet: 2, Hand: poker.MustParseCards("Kd", "Kc")},
		{PlayerID: "p2", Name: "bob", Chips: 1000, Folded: true},
	}, "p1")
	assert.Contains(t, out, "▶ alice chips=998 bet=2 K♦ K♣")
	assert.Contains(t, out, "bob chips=1000 bet=0 - folded")
}

func encode(t *testing.T, ev table.Event) []byte {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	return data
}

func TestEvent(t *testing.T) {
	seats := []table.Seat{{PlayerID: "p1", Name: "alice", Chips: 1004}}

	tests := []struct {
		name  string
		event table.Event
		want  []string
	}{
		{"update players", table.NewUpdatePlayersEvent(seats), []string{"updatePlayers", "1 seated", "alice"}},
		{"game started", table.NewGameStartedEvent(seats, 0, "p1"), []string{"gameStarted", "pot 0", "▶ alice"}},
		{"player action", table.NewPlayerActionEvent(seats, 4, "p1", table.Flop), []string{"playerAction", "flop pot 4"}},
		{"phase changed", table.NewPhaseChangedEvent(poker.MustParseCards("2c", "3d", "4h"), table.Flop, "p1"), []string{"phaseChanged", "flop board 2♣ 3♦ 4♥"}},
		{"showdown", table.NewShowdownEvent(seats[0], "full_house"), []string{"showdown", "alice wins with Full House, chips=1004"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Event(encode(t, tt.event))
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestEventUnknownAndInvalid(t *testing.T) {
	out, err := Event([]byte(`{"type":"chat","text":"hi"}`))
	require.NoError(t, err)
	assert.Contains(t, out, `"text":"hi"`)

	_, err = Event([]byte(`not json`))
	assert.Error(t, err)
}
