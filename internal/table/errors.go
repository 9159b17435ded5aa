package table

import (
	"errors"
	"fmt"
)

// Kind classifies a rule violation.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindAlreadyActive        Kind = "already_active"
	KindNotYourTurn          Kind = "not_your_turn"
	KindNoActiveGame         Kind = "no_active_game"
	KindInsufficientChips    Kind = "insufficient_chips"
	KindUnmappedPhase        Kind = "unmapped_phase"
	KindNoWinnerDeterminable Kind = "no_winner_determinable"
	KindSeatNotFound         Kind = "seat_not_found"
	KindRoomFull             Kind = "room_full"
	KindHandInProgress       Kind = "hand_in_progress"
	KindAlreadySeated        Kind = "already_seated"
	KindNotEnoughPlayers     Kind = "not_enough_players"
	KindInvalidAction        Kind = "invalid_action"
	KindInvalidArgument      Kind = "invalid_argument"
)

// Error is a rule violation reported by the engine. Stored state is never
// modified when one is returned. Details carries the values a client needs
// to understand the refusal, e.g. the current player or remaining chips.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same Kind, so the Err* sentinels work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrNotFound             = &Error{Kind: KindNotFound, Message: "not found"}
	ErrAlreadyActive        = &Error{Kind: KindAlreadyActive, Message: "already active"}
	ErrNotYourTurn          = &Error{Kind: KindNotYourTurn, Message: "not your turn"}
	ErrNoActiveGame         = &Error{Kind: KindNoActiveGame, Message: "no active game"}
	ErrInsufficientChips    = &Error{Kind: KindInsufficientChips, Message: "insufficient chips"}
	ErrUnmappedPhase        = &Error{Kind: KindUnmappedPhase, Message: "unmapped phase"}
	ErrNoWinnerDeterminable = &Error{Kind: KindNoWinnerDeterminable, Message: "no winner determinable"}
	ErrSeatNotFound         = &Error{Kind: KindSeatNotFound, Message: "seat not found"}
	ErrRoomFull             = &Error{Kind: KindRoomFull, Message: "room full"}
	ErrHandInProgress       = &Error{Kind: KindHandInProgress, Message: "hand in progress"}
	ErrAlreadySeated        = &Error{Kind: KindAlreadySeated, Message: "already seated"}
	ErrNotEnoughPlayers     = &Error{Kind: KindNotEnoughPlayers, Message: "not enough players"}
	ErrInvalidAction        = &Error{Kind: KindInvalidAction, Message: "invalid action"}
	ErrInvalidArgument      = &Error{Kind: KindInvalidArgument, Message: "invalid argument"}
)

// NotFound reports a missing record. Stores return it for unknown ids.
func NotFound(entity, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s %s not found", entity, id),
		Details: map[string]any{entity + "_id": id},
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" for
// infrastructure failures.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

func ruleError(kind Kind, msg string, details map[string]any) *Error {
	return &Error{Kind: kind, Message: msg, Details: details}
}
