package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// RoomView renders the read-only spectator page. It refreshes itself while
// a game is running.
func RoomView(page RoomPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Room `)
		b.WriteString(esc(page.RoomID))
		b.WriteString(`</title>`)
		if page.Phase != "WAITING" && page.Winner == "" {
			b.WriteString(`
    <meta http-equiv="refresh" content="5"/>`)
		}
		b.WriteString(`
  </head>
  <body>
    <main class="shell">
      <header>
        <h1>`)
		b.WriteString(esc(page.GameType))
		b.WriteString(`</h1>
        <p class="phase">`)
		b.WriteString(esc(page.Phase))
		if page.Round > 0 {
			b.WriteString(` &middot; round `)
			b.WriteString(itoa(page.Round))
		}
		if page.SecondsLeft > 0 {
			b.WriteString(` &middot; `)
			b.WriteString(itoa(page.SecondsLeft))
			b.WriteString(`s left`)
		}
		b.WriteString(`</p>`)
		if page.Speaker != "" {
			b.WriteString(`
        <p class="speaker">Speaking: `)
			b.WriteString(esc(page.Speaker))
			b.WriteString(`</p>`)
		}
		if page.Winner != "" {
			b.WriteString(`
        <p class="winner">Winner: `)
			b.WriteString(esc(page.Winner))
			b.WriteString(`</p>`)
		}
		if page.Words != "" {
			b.WriteString(`
        <p class="words">`)
			b.WriteString(esc(page.Words))
			b.WriteString(`</p>`)
		}
		b.WriteString(`
      </header>
      <section>
        <h2>Players</h2>
        <ol class="players">`)
		for _, p := range page.Players {
			b.WriteString(`
          <li class="`)
			if p.Alive {
				b.WriteString("alive")
			} else {
				b.WriteString("dead")
			}
			b.WriteString(`">`)
			b.WriteString(itoa(p.Seat))
			b.WriteString(`. `)
			b.WriteString(esc(p.Name))
			if p.IsAI {
				b.WriteString(` (AI)`)
			}
			if p.Role != "" {
				b.WriteString(` &middot; `)
				b.WriteString(esc(p.Role))
			}
			if p.Connection != "" && p.Connection != "ONLINE" {
				b.WriteString(` &middot; `)
				b.WriteString(esc(strings.ToLower(p.Connection)))
			}
			b.WriteString(`</li>`)
		}
		b.WriteString(`
        </ol>
      </section>
      <section>
        <h2>Log</h2>
        <ul class="log">`)
		for _, entry := range page.Logs {
			b.WriteString(`
          <li><span class="at">`)
			b.WriteString(esc(entry.At))
			b.WriteString(`</span> `)
			b.WriteString(esc(entry.Message))
			b.WriteString(`</li>`)
		}
		b.WriteString(`
        </ul>
      </section>
    </main>
  </body>
</html>
`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
