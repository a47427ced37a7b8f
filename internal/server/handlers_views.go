package server

import (
	"math"
	"net/http"
	"time"

	"party-deduction/internal/game"
	"party-deduction/internal/web"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleHome(c *gin.Context) {
	templ.Handler(web.Home()).ServeHTTP(c.Writer, c.Request)
}

func (s *Server) handleRoomView(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	view, err := s.service.State(c.Request.Context(), uri.RoomID, "")
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			c.Redirect(http.StatusFound, "/")
			return
		}
		s.fail(c, err)
		return
	}
	templ.Handler(web.RoomView(roomPage(view, time.Now()))).ServeHTTP(c.Writer, c.Request)
}

func roomPage(view game.View, now time.Time) web.RoomPage {
	page := web.RoomPage{
		RoomID:   view.RoomID,
		GameType: string(view.GameType),
		Phase:    string(view.Phase),
		Round:    view.Round,
		Speaker:  view.CurrentSpeakerName,
		Winner:   string(view.Winner),
	}
	if view.PhaseDeadline != nil {
		if left := view.PhaseDeadline.Sub(now).Seconds(); left > 0 {
			page.SecondsLeft = int(math.Ceil(left))
		}
	}
	if view.Extras.CivilianWord != "" {
		page.Words = "Civilians: " + view.Extras.CivilianWord + " / Undercover: " + view.Extras.UndercoverWord
	}
	for _, p := range view.Players {
		page.Players = append(page.Players, web.RoomPlayer{
			Seat:       p.Seat,
			Name:       p.DisplayName,
			IsAI:       p.IsAI,
			Alive:      p.Alive,
			Connection: string(p.Connection),
			Role:       string(p.Role),
		})
	}
	for _, entry := range view.Logs {
		page.Logs = append(page.Logs, web.RoomLog{Message: entry.Message, At: web.FormatClock(entry.At)})
	}
	return page
}
