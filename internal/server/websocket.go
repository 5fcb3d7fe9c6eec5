package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"ctchen222/tictactoe-ai/internal/api/controller"
	"ctchen222/tictactoe-ai/internal/api/response"
	"ctchen222/tictactoe-ai/internal/bot"
	"ctchen222/tictactoe-ai/internal/validator"
	"ctchen222/tictactoe-ai/pkg/proto"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxMessageSize = 512
	writeWait      = 5 * time.Second
)

// handleWebSocket authorizes the token, upgrades the connection and serves
// one session until the client disconnects.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.Path),
		attribute.String("http.method", c.Request.Method),
	))
	defer span.End()

	sessionID, err := s.tokens.Verify(controller.TokenFromRequest(c))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid session token")
		response.ErrorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}
	span.SetAttributes(attribute.String("session.id", sessionID))

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Session lookup failed")
		response.ErrorResponseFromErr(c, err)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upgrade connection", "session.id", sessionID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	slog.InfoContext(ctx, "Websocket connected", "session.id", sessionID)
	if err := writeMessage(conn, proto.NewUpdate(sess, sess.Board, sess.Scores, sess.LastComputerMove)); err != nil {
		span.RecordError(err)
		return
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(ctx, "Websocket connection error", "session.id", sessionID, "error", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "Websocket connection error")
			}
			slog.InfoContext(ctx, "Websocket disconnected", "session.id", sessionID)
			return
		}

		for _, reply := range s.handleMessage(ctx, sessionID, msg) {
			if err := writeMessage(conn, reply); err != nil {
				slog.ErrorContext(ctx, "Error writing message", "session.id", sessionID, "error", err)
				span.RecordError(err)
				return
			}
		}
	}
}

// handleMessage applies one client message and returns the replies in send order.
func (s *Server) handleMessage(ctx context.Context, sessionID string, raw []byte) []*proto.ServerToClientMessage {
	ctx, span := tracer.Start(ctx, "server.handleMessage", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	var msg proto.ClientToServerMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		span.RecordError(err)
		return []*proto.ServerToClientMessage{proto.NewError("malformed message")}
	}
	if err := validator.Struct(&msg); err != nil {
		span.RecordError(err)
		return []*proto.ServerToClientMessage{proto.NewError(err.Error())}
	}
	span.SetAttributes(attribute.String("message.type", msg.Type))

	switch msg.Type {
	case proto.TypeMove:
		move := msg.Move()
		sess, err := s.sessions.Play(ctx, sessionID, move)
		if err != nil {
			return []*proto.ServerToClientMessage{errorMessage(err)}
		}
		replies := []*proto.ServerToClientMessage{proto.NewUpdate(sess, sess.BeforeComputerMove(), sess.ScoresBeforeComputerMove(), &move)}
		if sess.LastComputerMove != nil {
			replies = append(replies, proto.NewUpdate(sess, sess.Board, sess.Scores, sess.LastComputerMove))
		}
		return replies

	case proto.TypeReset:
		sess, err := s.sessions.Reset(ctx, sessionID)
		if err != nil {
			return []*proto.ServerToClientMessage{errorMessage(err)}
		}
		return []*proto.ServerToClientMessage{proto.NewUpdate(sess, sess.Board, sess.Scores, nil)}

	case proto.TypeDifficulty:
		sess, err := s.sessions.SetDifficulty(ctx, sessionID, bot.Difficulty(msg.Difficulty))
		if err != nil {
			return []*proto.ServerToClientMessage{errorMessage(err)}
		}
		return []*proto.ServerToClientMessage{proto.NewUpdate(sess, sess.Board, sess.Scores, sess.LastComputerMove)}
	}
	return []*proto.ServerToClientMessage{proto.NewError("unsupported message type")}
}

func errorMessage(err error) *proto.ServerToClientMessage {
	if response.StatusFor(err) == http.StatusInternalServerError {
		return proto.NewError(http.StatusText(http.StatusInternalServerError))
	}
	return proto.NewError(err.Error())
}

func writeMessage(conn *websocket.Conn, msg *proto.ServerToClientMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}
