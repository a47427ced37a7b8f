package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func Home() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Party Deduction</title>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <h1>Find the spy. Survive the night.</h1>
        <p>Host a game of Undercover or Werewolf, or join a room with its id.</p>
      </header>

      <section class="panel">
        <h2>Create a room</h2>
        <form id="createForm">
          <input name="name" placeholder="Display name" autocomplete="name" required/>
          <select name="game_type">
            <option value="undercover">Undercover</option>
            <option value="werewolf">Werewolf</option>
          </select>
          <button type="submit">Create room</button>
        </form>
        <div id="createResult" class="result"></div>
      </section>

      <section class="panel">
        <h2>Join a room</h2>
        <form id="joinForm">
          <input name="room" placeholder="Room id" autocomplete="off" required/>
          <input name="name" placeholder="Display name" autocomplete="name" required/>
          <button type="submit">Join room</button>
        </form>
        <div id="joinResult" class="result"></div>
      </section>
    </main>

    <script>
      const playerHeaders = () => {
        const headers = { "Content-Type": "application/json" };
        const id = localStorage.getItem("player_id");
        if (id) headers["X-Player-ID"] = id;
        return headers;
      };

      document.getElementById("createForm").addEventListener("submit", async (event) => {
        event.preventDefault();
        const form = event.target;
        const out = document.getElementById("createResult");
        const res = await fetch("/api/rooms", {
          method: "POST",
          headers: playerHeaders(),
          body: JSON.stringify({ name: form.elements.name.value, game_type: form.elements.game_type.value })
        });
        const data = await res.json();
        if (!res.ok) {
          out.textContent = data.error || "Failed to create room.";
          return;
        }
        localStorage.setItem("player_id", data.player_id);
        out.textContent = "Room created: " + data.room.id;
      });

      document.getElementById("joinForm").addEventListener("submit", async (event) => {
        event.preventDefault();
        const form = event.target;
        const out = document.getElementById("joinResult");
        const room = form.elements.room.value.trim();
        const res = await fetch("/api/rooms/" + encodeURIComponent(room) + "/join", {
          method: "POST",
          headers: playerHeaders(),
          body: JSON.stringify({ name: form.elements.name.value })
        });
        const data = await res.json();
        if (!res.ok) {
          out.textContent = data.error || "Failed to join room.";
          return;
        }
        localStorage.setItem("player_id", data.player_id);
        out.textContent = "Joined at seat " + data.seat + ".";
      });
    </script>
  </body>
</html>
`)
		return err
	})
}
