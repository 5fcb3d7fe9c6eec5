package controller

import (
	"log/slog"
	"net/http"
	"strings"

	"ctchen222/tictactoe-ai/internal/api/models"
	"ctchen222/tictactoe-ai/internal/api/response"
	"ctchen222/tictactoe-ai/internal/api/service"
	"ctchen222/tictactoe-ai/internal/bot"
	"ctchen222/tictactoe-ai/internal/game"

	"github.com/gin-gonic/gin"
)

// SessionIDKey is the gin context key holding the authorized session id.
const SessionIDKey = "session.id"

// SessionController handles session-related HTTP requests.
type SessionController struct {
	sessions service.SessionService
	tokens   service.TokenService
}

// NewSessionController creates a new SessionController.
func NewSessionController(sessions service.SessionService, tokens service.TokenService) *SessionController {
	return &SessionController{
		sessions: sessions,
		tokens:   tokens,
	}
}

// TokenFromRequest reads a bearer token from the Authorization header or the token query parameter.
func TokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return c.Query("token")
}

// Authorize rejects requests whose token is missing, invalid, or bound to another session.
func (sc *SessionController) Authorize(c *gin.Context) {
	sessionID, err := sc.tokens.Verify(TokenFromRequest(c))
	if err != nil {
		response.ErrorResponse(c, http.StatusUnauthorized, err.Error())
		c.Abort()
		return
	}
	if id := c.Param("id"); id != "" && id != sessionID {
		response.ErrorResponse(c, http.StatusForbidden, "token does not grant access to this session")
		c.Abort()
		return
	}
	c.Set(SessionIDKey, sessionID)
	c.Next()
}

// Create handles the new-session endpoint.
func (sc *SessionController) Create(c *gin.Context) {
	var req models.CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	s, err := sc.sessions.Create(c.Request.Context(), bot.Difficulty(req.Difficulty))
	if err != nil {
		response.ErrorResponseFromErr(c, err)
		return
	}

	token, err := sc.tokens.Issue(s.ID)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to issue session token", "session.id", s.ID, "error", err)
		response.ErrorResponse(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	response.SuccessResponseWithStatus(c, http.StatusCreated, models.CreateSessionResponse{Session: s, Token: token})
}

// Get returns the session state.
func (sc *SessionController) Get(c *gin.Context) {
	s, err := sc.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ErrorResponseFromErr(c, err)
		return
	}
	response.SuccessResponse(c, s)
}

// Move plays the human's move and the computer's reply.
func (sc *SessionController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	s, err := sc.sessions.Play(c.Request.Context(), c.Param("id"), game.Move{Row: *req.Row, Col: *req.Col})
	if err != nil {
		response.ErrorResponseFromErr(c, err)
		return
	}
	response.SuccessResponse(c, s)
}

// Reset starts another game in the session.
func (sc *SessionController) Reset(c *gin.Context) {
	s, err := sc.sessions.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ErrorResponseFromErr(c, err)
		return
	}
	response.SuccessResponse(c, s)
}

// SetDifficulty changes the tier for later computer moves.
func (sc *SessionController) SetDifficulty(c *gin.Context) {
	var req models.DifficultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	s, err := sc.sessions.SetDifficulty(c.Request.Context(), c.Param("id"), bot.Difficulty(req.Difficulty))
	if err != nil {
		response.ErrorResponseFromErr(c, err)
		return
	}
	response.SuccessResponse(c, s)
}

// Delete ends the session.
func (sc *SessionController) Delete(c *gin.Context) {
	if err := sc.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.ErrorResponseFromErr(c, err)
		return
	}
	response.SuccessResponse(c, gin.H{"message": "Session deleted"})
}
