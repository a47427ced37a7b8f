package server

import (
	"net/http"

	"party-deduction/internal/game"

	"github.com/gin-gonic/gin"
)

// conflictCodes are validation failures caused by the game state rather
// than a malformed request.
var conflictCodes = map[string]bool{
	"wrong_phase":   true,
	"not_your_turn": true,
	"already_voted": true,
	"ability_used":  true,
	"game_over":     true,
	"room_playing":  true,
	"room_full":     true,
	"seat_conflict": true,
	"no_victim":     true,
}

func statusFor(err error) int {
	switch game.KindOf(err) {
	case game.KindValidation:
		if conflictCodes[game.CodeOf(err)] {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case game.KindNotFound:
		return http.StatusNotFound
	case game.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeGameError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	c.JSON(status, gin.H{"error": message, "code": game.CodeOf(err)})
}
