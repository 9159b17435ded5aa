package server

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/lox/holdem-rooms/internal/table"
	"github.com/lox/holdem-rooms/poker"
)

// CreateRoomRequest is the body of POST /rooms.
type CreateRoomRequest struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"max_players"`
}

// SeatRequest is the body of join and leave.
type SeatRequest struct {
	PlayerID string `json:"player_id"`
}

// ActionRequest is the body of POST /rooms/{id}/action.
type ActionRequest struct {
	PlayerID     string `json:"player_id"`
	PlayerAction string `json:"player_action"`
	Amount       int    `json:"amount"`
}

// CreatePlayerRequest is the body of POST /players.
type CreatePlayerRequest struct {
	Name string `json:"name"`
}

// RoomResponse wraps a room after a seating change.
type RoomResponse struct {
	Message string      `json:"message"`
	Room    *table.Room `json:"room"`
}

// InitialState is the table as a hand begins.
type InitialState struct {
	GameID            string       `json:"game_id"`
	Players           []table.Seat `json:"players"`
	CommunityCards    []poker.Card `json:"community_cards"`
	Pot               int          `json:"pot"`
	CurrentPlayerTurn string       `json:"current_player_turn"`
}

// StartResponse is returned by POST /rooms/{id}/start.
type StartResponse struct {
	Message      string       `json:"message"`
	InitialState InitialState `json:"initial_state"`
}

// GameState summarises a game after an action.
type GameState struct {
	CurrentTurn       int         `json:"current_turn"`
	Pot               int         `json:"pot"`
	CurrentPhase      table.Phase `json:"current_phase"`
	CurrentPlayerTurn string      `json:"current_player_turn,omitempty"`
	Winner            *Winner     `json:"winner,omitempty"`
}

// ActionResponse is returned by POST /rooms/{id}/action.
type ActionResponse struct {
	Message   string    `json:"message"`
	GameState GameState `json:"game_state"`
}

// PhaseResponse is returned by POST /rooms/{id}/next_phase.
type PhaseResponse struct {
	Phase          table.Phase  `json:"phase"`
	CommunityCards []poker.Card `json:"community_cards"`
	Winner         *Winner      `json:"winner,omitempty"`
}

// Winner names the player who took the pot.
type Winner struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Hand     string `json:"hand"`
}

// EndResponse is returned by POST /rooms/{id}/end.
type EndResponse struct {
	Winner Winner `json:"winner"`
	Pot    int    `json:"pot"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.engine.Rooms(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rooms == nil {
		rooms = []*table.Room{}
	}
	s.writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := decode(r, &req); err != nil {
		s.writeBadRequest(w, err)
		return
	}
	room, err := s.engine.CreateRoom(r.Context(), req.Name, req.MaxPlayers)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, room)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	state, err := s.engine.State(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteRoom(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, MessageResponse{Message: "Room deleted successfully"})
}

func (s *Server) seatRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req SeatRequest
	if err := decode(r, &req); err != nil {
		s.writeBadRequest(w, err)
		return "", false
	}
	if strings.TrimSpace(req.PlayerID) == "" {
		s.writeError(w, r, missingParam("player_id"))
		return "", false
	}
	return req.PlayerID, true
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	playerID, ok := s.seatRequest(w, r)
	if !ok {
		return
	}
	room, err := s.engine.Join(r.Context(), mux.Vars(r)["id"], playerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, RoomResponse{Message: "Player joined successfully", Room: room})
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	playerID, ok := s.seatRequest(w, r)
	if !ok {
		return
	}
	room, err := s.engine.Leave(r.Context(), mux.Vars(r)["id"], playerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, RoomResponse{Message: "Player left successfully", Room: room})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	state, err := s.engine.StartHand(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, StartResponse{
		Message: "Game started",
		InitialState: InitialState{
			GameID:            state.Game.ID,
			Players:           state.Room.Seats,
			CommunityCards:    []poker.Card{},
			Pot:               state.Game.Pot,
			CurrentPlayerTurn: state.Room.CurrentPlayerTurn,
		},
	})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := decode(r, &req); err != nil {
		s.writeBadRequest(w, err)
		return
	}
	switch {
	case strings.TrimSpace(req.PlayerID) == "":
		s.writeError(w, r, missingParam("player_id"))
		return
	case req.PlayerAction == "":
		s.writeError(w, r, missingParam("player_action"))
		return
	}
	action, err := table.ParseAction(req.PlayerAction)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	state, err := s.engine.Act(r.Context(), mux.Vars(r)["id"], req.PlayerID, action, req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	gs := GameState{
		CurrentTurn:  state.Game.CurrentTurn,
		Pot:          state.Game.Pot,
		CurrentPhase: state.Game.Phase,
		Winner:       winnerOf(state.Game),
	}
	if state.Room.ActiveGame {
		gs.CurrentPlayerTurn = state.Room.CurrentPlayerTurn
	}
	s.writeJSON(w, http.StatusOK, ActionResponse{Message: "Action performed successfully", GameState: gs})
}

func (s *Server) handleNextPhase(w http.ResponseWriter, r *http.Request) {
	state, err := s.engine.AdvancePhase(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, PhaseResponse{
		Phase:          state.Game.Phase,
		CommunityCards: state.Game.CommunityCards,
		Winner:         winnerOf(state.Game),
	})
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	state, err := s.engine.Showdown(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, EndResponse{
		Winner: *winnerOf(state.Game),
		Pot:    state.Game.PotAwarded,
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.engine.Room(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.hub.ServeTopic(w, r, table.Topic(id))
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req CreatePlayerRequest
	if err := decode(r, &req); err != nil {
		s.writeBadRequest(w, err)
		return
	}
	player, err := s.engine.CreatePlayer(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, player)
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := s.engine.Player(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, player)
}

func (s *Server) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeletePlayer(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, MessageResponse{Message: "Player deleted successfully"})
}

func winnerOf(g *table.Game) *Winner {
	if g == nil || g.Winner == nil {
		return nil
	}
	return &Winner{PlayerID: g.Winner.PlayerID, Name: g.Winner.Name, Hand: g.WinnerHand}
}
