package game

import "errors"

// Kind classifies errors so callers can map them onto their transport.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindForbidden  Kind = "forbidden"
	KindInvariant  Kind = "invariant"
	KindInternal   Kind = "internal"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrWrongPhase          = &Error{Kind: KindValidation, Code: "wrong_phase", Message: "action not allowed in the current phase"}
	ErrNotYourTurn         = &Error{Kind: KindValidation, Code: "not_your_turn", Message: "it is not your turn to speak"}
	ErrAlreadyVoted        = &Error{Kind: KindValidation, Code: "already_voted", Message: "vote already submitted"}
	ErrInvalidTarget       = &Error{Kind: KindValidation, Code: "invalid_target", Message: "invalid target"}
	ErrSelfVote            = &Error{Kind: KindValidation, Code: "self_vote", Message: "voting for yourself is not allowed in this room"}
	ErrPlayerEliminated    = &Error{Kind: KindValidation, Code: "eliminated", Message: "eliminated players cannot act"}
	ErrRoleMismatch        = &Error{Kind: KindValidation, Code: "role_mismatch", Message: "your role cannot perform this action"}
	ErrAbilityUsed         = &Error{Kind: KindValidation, Code: "ability_used", Message: "ability already used"}
	ErrUnknownAction       = &Error{Kind: KindValidation, Code: "unknown_action", Message: "unknown night action"}
	ErrNoVictim            = &Error{Kind: KindValidation, Code: "no_victim", Message: "there is no victim to save yet"}
	ErrEmptySpeech         = &Error{Kind: KindValidation, Code: "empty_speech", Message: "speech cannot be empty"}
	ErrSpeechTooLong       = &Error{Kind: KindValidation, Code: "speech_too_long", Message: "speech is too long"}
	ErrInsufficientPlayers = &Error{Kind: KindValidation, Code: "insufficient_players", Message: "not enough players to start"}
	ErrUnknownGame         = &Error{Kind: KindValidation, Code: "unknown_game", Message: "unsupported game type"}
	ErrInvalidRoster       = &Error{Kind: KindValidation, Code: "invalid_roster", Message: "roster has missing or duplicate seats"}
	ErrGameOver            = &Error{Kind: KindValidation, Code: "game_over", Message: "the game has already ended"}

	ErrNotHost = &Error{Kind: KindForbidden, Code: "not_host", Message: "only the room host can start the game"}

	ErrNoActiveGame   = &Error{Kind: KindNotFound, Code: "no_active_game", Message: "no active game in this room"}
	ErrRoomNotFound   = &Error{Kind: KindNotFound, Code: "room_not_found", Message: "room not found"}
	ErrPlayerNotFound = &Error{Kind: KindNotFound, Code: "player_not_found", Message: "player is not seated in this room"}

	ErrInvariant = &Error{Kind: KindInvariant, Code: "invariant", Message: "game state invariant violated"}
)

// KindOf returns the classification of err, or KindInternal for errors
// that did not originate from this package.
func KindOf(err error) Kind {
	var gameErr *Error
	if errors.As(err, &gameErr) {
		return gameErr.Kind
	}
	return KindInternal
}

// CodeOf returns the machine readable code carried by err.
func CodeOf(err error) string {
	var gameErr *Error
	if errors.As(err, &gameErr) {
		return gameErr.Code
	}
	return "internal"
}
