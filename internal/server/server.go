package server

import (
	"net/http"
	"time"

	"party-deduction/internal/config"
	"party-deduction/internal/game"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	service *Service
	ws      *wsHub
	cfg     config.Config
	logger  *zap.Logger
}

// Deps are the optional collaborators of a server. Nil fields fall back
// to in-memory implementations, which is what the tests use.
type Deps struct {
	DB        *gorm.DB
	Presence  PresenceTracker
	Generator game.Generator
	Logger    *zap.Logger
}

func New(deps *Deps, cfg config.Config) *Server {
	if deps == nil {
		deps = &Deps{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	hub := newWSHub(logger)
	svcDeps := ServiceDeps{
		Engine:     newEngine(deps.Generator, cfg),
		Presence:   deps.Presence,
		Events:     multiPublisher{hub},
		Logger:     logger,
		Defaults:   settingsFromConfig(cfg),
		RecentLogs: cfg.RecentLogEntries,
	}
	if svcDeps.Presence == nil {
		svcDeps.Presence = NewMemoryPresence(time.Duration(cfg.PresenceTTLSeconds) * time.Second)
	}
	if deps.DB != nil {
		svcDeps.Sessions = NewGormStore(deps.DB)
		svcDeps.Rooms = NewGormRooms(deps.DB)
		svcDeps.Stats = NewGormStats(deps.DB)
		svcDeps.Words = NewGormWords(deps.DB, NewStaticWords(nil), logger)
		svcDeps.Events = multiPublisher{hub, newEventLog(deps.DB, logger)}
	}
	return &Server{
		service: NewService(svcDeps),
		ws:      hub,
		cfg:     cfg,
		logger:  logger,
	}
}

func (s *Server) Service() *Service {
	return s.service
}

func (s *Server) Handler() http.Handler {
	registerValidators()
	if !s.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(RequestLogger(s.logger), gin.Recovery())
	corsConfig := cors.Config{
		AllowOrigins: s.cfg.CORSOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", playerHeader},
		MaxAge:       12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/", s.handleHome)
	router.GET("/rooms/:roomID", s.handleRoomView)
	router.GET("/ws/rooms/:roomID", s.handleWebsocket)

	api := router.Group("/api")
	api.POST("/rooms", s.handleCreateRoom)
	api.GET("/rooms/:roomID", s.handleGetRoom)
	api.POST("/rooms/:roomID/join", s.handleJoinRoom)
	api.POST("/rooms/:roomID/ai", s.handleAddAI)
	api.POST("/rooms/:roomID/heartbeat", s.handleHeartbeat)
	api.GET("/players/:playerID/stats", s.handlePlayerStats)

	gameRoutes := api.Group("/rooms/:roomID/game")
	gameRoutes.POST("/start", s.handleStartGame)
	gameRoutes.GET("/state", s.handleGameState)
	gameRoutes.POST("/speak", s.handleSpeak)
	gameRoutes.POST("/vote", s.handleVote)
	gameRoutes.POST("/night", s.handleNightAction)
	return router
}
