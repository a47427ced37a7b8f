package server

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"party-deduction/internal/game"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	maxNameLength     = 20
	maxPlayerIDLength = 64
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("name", func(fl validator.FieldLevel) bool {
			_, err := validateName(fl.Field().String())
			return err == nil
		})
		_ = engine.RegisterValidation("gametype", func(fl validator.FieldLevel) bool {
			_, ok := game.ParseGameType(fl.Field().String())
			return ok
		})
		_ = engine.RegisterValidation("nightaction", func(fl validator.FieldLevel) bool {
			switch game.NightActionKind(fl.Field().String()) {
			case game.ActionWolfKill, game.ActionSeerCheck, game.ActionWitchSave, game.ActionWitchPoison:
				return true
			}
			return false
		})
	})
}

func validateName(name string) (string, error) {
	trimmed := normalizeText(name)
	if trimmed == "" {
		return "", errors.New("name is required")
	}
	if utf8.RuneCountInString(trimmed) > maxNameLength {
		return "", fmt.Errorf("name must be %d characters or fewer", maxNameLength)
	}
	for _, r := range trimmed {
		if !unicode.IsPrint(r) {
			return "", errors.New("name contains unsupported characters")
		}
	}
	return trimmed, nil
}

// validatePlayerID accepts opaque ids made of letters, digits, '-' and '_'.
func validatePlayerID(id string) bool {
	if id == "" || len(id) > maxPlayerIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}
