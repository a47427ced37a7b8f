package server

import (
	"net/http"
	"strings"

	"party-deduction/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const playerHeader = "X-Player-ID"

type roomURI struct {
	RoomID string `uri:"roomID" binding:"required"`
}

type playerURI struct {
	PlayerID string `uri:"playerID" binding:"required"`
}

type createRoomRequest struct {
	Name     string         `json:"name" binding:"required,name"`
	GameType string         `json:"game_type" binding:"required,gametype"`
	Config   map[string]any `json:"config"`
}

type joinRequest struct {
	Name string `json:"name" binding:"required,name"`
}

type addAIRequest struct {
	Name string `json:"name" binding:"omitempty,name"`
}

type speakRequest struct {
	Content string `json:"content"`
}

type voteRequest struct {
	Target  string `json:"target"`
	Abstain bool   `json:"abstain"`
}

type nightRequest struct {
	Action     string `json:"action" binding:"required,nightaction"`
	Target     string `json:"target"`
	UseAbility bool   `json:"use_ability"`
}

type roomResponse struct {
	Room     Room   `json:"room"`
	PlayerID string `json:"player_id,omitempty"`
	Seat     int    `json:"seat,omitempty"`
}

// callerID returns the X-Player-ID header. A malformed header is rejected;
// a missing one yields "".
func callerID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.GetHeader(playerHeader))
	if id == "" {
		return "", true
	}
	if !validatePlayerID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player id", "code": "invalid_player_id"})
		return "", false
	}
	return id, true
}

// requireCaller is callerID for routes that act on behalf of a player.
func requireCaller(c *gin.Context) (string, bool) {
	id, ok := callerID(c)
	if !ok {
		return "", false
	}
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": playerHeader + " header is required", "code": "missing_player_id"})
		return "", false
	}
	return id, true
}

// callerOrNew issues a fresh player id for first-time visitors.
func callerOrNew(c *gin.Context) (string, bool) {
	id, ok := callerID(c)
	if !ok {
		return "", false
	}
	if id == "" {
		id = uuid.NewString()
	}
	return id, true
}

func (s *Server) handleCreateRoom(c *gin.Context) {
	playerID, ok := callerOrNew(c)
	if !ok {
		return
	}
	var req createRoomRequest
	if !bindJSON(c, &req, bindMessages{
		"Name":     {"required": "name is required", "name": "name must be 1-20 printable characters"},
		"GameType": {"required": "game_type is required", "gametype": "game_type must be undercover or werewolf"},
	}, "invalid room request") {
		return
	}
	gameType, _ := game.ParseGameType(req.GameType)
	name, _ := validateName(req.Name)
	room, err := s.service.CreateRoom(c.Request.Context(), gameType, playerID, name, req.Config)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, roomResponse{Room: room, PlayerID: playerID, Seat: 1})
}

func (s *Server) handleGetRoom(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	room, err := s.service.Room(c.Request.Context(), uri.RoomID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, roomResponse{Room: room})
}

func (s *Server) handleJoinRoom(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	playerID, ok := callerOrNew(c)
	if !ok {
		return
	}
	var req joinRequest
	if !bindJSON(c, &req, bindMessages{
		"Name": {"required": "name is required", "name": "name must be 1-20 printable characters"},
	}, "invalid join request") {
		return
	}
	name, _ := validateName(req.Name)
	room, seat, err := s.service.JoinRoom(c.Request.Context(), uri.RoomID, playerID, name)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info("player joined", zap.String("room_id", room.ID), zap.String("player_id", playerID), zap.Int("seat", seat.SeatNumber))
	c.JSON(http.StatusOK, roomResponse{Room: room, PlayerID: playerID, Seat: seat.SeatNumber})
}

func (s *Server) handleAddAI(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	playerID, ok := requireCaller(c)
	if !ok {
		return
	}
	var req addAIRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, bindMessages{
		"Name": {"name": "name must be 1-20 printable characters"},
	}, "invalid request") {
		return
	}
	name, _ := validateName(req.Name)
	room, seat, err := s.service.AddAI(c.Request.Context(), uri.RoomID, playerID, name)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, roomResponse{Room: room, PlayerID: seat.PlayerID, Seat: seat.SeatNumber})
}

func (s *Server) handleStartGame(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	playerID, ok := requireCaller(c)
	if !ok {
		return
	}
	view, err := s.service.Start(c.Request.Context(), uri.RoomID, playerID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleGameState(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	playerID, ok := callerID(c)
	if !ok {
		return
	}
	view, err := s.service.State(c.Request.Context(), uri.RoomID, playerID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleSpeak(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	playerID, ok := requireCaller(c)
	if !ok {
		return
	}
	var req speakRequest
	if !bindJSON(c, &req, nil, "invalid speech request") {
		return
	}
	view, err := s.service.Speak(c.Request.Context(), uri.RoomID, playerID, req.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleVote(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	playerID, ok := requireCaller(c)
	if !ok {
		return
	}
	var req voteRequest
	if !bindJSON(c, &req, nil, "invalid vote request") {
		return
	}
	ballot := game.Ballot{Target: strings.TrimSpace(req.Target), Abstain: req.Abstain}
	if ballot.Target == game.Abstain {
		ballot = game.Ballot{Abstain: true}
	}
	view, err := s.service.Vote(c.Request.Context(), uri.RoomID, playerID, ballot)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleNightAction(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	playerID, ok := requireCaller(c)
	if !ok {
		return
	}
	var req nightRequest
	if !bindJSON(c, &req, bindMessages{
		"Action": {"required": "action is required", "nightaction": "unknown night action"},
	}, "invalid night action") {
		return
	}
	view, err := s.service.NightAction(c.Request.Context(), uri.RoomID, playerID, game.NightRequest{
		Action:     game.NightActionKind(req.Action),
		Target:     strings.TrimSpace(req.Target),
		UseAbility: req.UseAbility,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleHeartbeat(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	playerID, ok := requireCaller(c)
	if !ok {
		return
	}
	if err := s.service.Heartbeat(c.Request.Context(), uri.RoomID, playerID); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handlePlayerStats(c *gin.Context) {
	var uri playerURI
	if !bindURI(c, &uri) {
		return
	}
	stats, err := s.service.PlayerStats(c.Request.Context(), uri.PlayerID)
	if err != nil {
		s.fail(c, err)
		return
	}
	if stats == nil {
		stats = []PlayerStats{}
	}
	c.JSON(http.StatusOK, gin.H{"player_id": uri.PlayerID, "stats": stats})
}

func (s *Server) fail(c *gin.Context, err error) {
	if statusFor(err) == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	writeGameError(c, err)
}
