package server

import (
	_ "embed"
	"log/slog"
	"net/http"
	"time"

	"ctchen222/tictactoe-ai/internal/api/controller"
	"ctchen222/tictactoe-ai/internal/api/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("server")

//go:embed web/index.html
var indexHTML []byte

type Server struct {
	sessions service.SessionService
	tokens   service.TokenService
	sessionC *controller.SessionController
	upgrader websocket.Upgrader
	engine   *gin.Engine
}

func NewServer(sessions service.SessionService, tokens service.TokenService) *Server {
	s := &Server{
		sessions: sessions,
		tokens:   tokens,
		sessionC: controller.NewSessionController(sessions, tokens),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), requestLogger())
	s.RegisterHandlers()
	return s
}

// Engine returns the configured gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterHandlers() {
	s.engine.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	s.engine.GET("/ws", s.handleWebSocket)

	api := s.engine.Group("/api")
	api.POST("/sessions", s.sessionC.Create)

	sessions := api.Group("/sessions/:id", s.sessionC.Authorize)
	sessions.GET("", s.sessionC.Get)
	sessions.POST("/moves", s.sessionC.Move)
	sessions.POST("/reset", s.sessionC.Reset)
	sessions.PUT("/difficulty", s.sessionC.SetDifficulty)
	sessions.DELETE("", s.sessionC.Delete)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.InfoContext(c.Request.Context(), "http request",
			"http.method", c.Request.Method,
			"http.route", c.FullPath(),
			"http.status", c.Writer.Status(),
			"http.duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
