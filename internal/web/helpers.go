package web

import (
	"strconv"
	"time"

	"github.com/a-h/templ"
)

func itoa(value int) string {
	return strconv.Itoa(value)
}

func esc(value string) string {
	return templ.EscapeString(value)
}

// FormatClock renders a log timestamp for the page.
func FormatClock(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.UTC().Format("15:04:05")
}
