package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"github.com/adsero/adsero-assistant/internal/datastream"
	"github.com/adsero/adsero-assistant/internal/services"
)

// ChatHandler streams assistant turns over HTTP and websockets
type ChatHandler struct {
	chat services.ChatStreamer
	log  *logrus.Entry
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat services.ChatStreamer, log *logrus.Entry) *ChatHandler {
	return &ChatHandler{
		chat: chat,
		log:  log,
	}
}

// turnContext bounds one turn by the configured maximum duration. It is
// detached from the request because the body is written after the handler
// returns.
func (h *ChatHandler) turnContext() (context.Context, context.CancelFunc) {
	if d := h.chat.MaxDuration(); d > 0 {
		return context.WithTimeout(context.Background(), d)
	}
	return context.WithCancel(context.Background())
}

// Stream handles POST /api/chat
func (h *ChatHandler) Stream(c *fiber.Ctx) error {
	var req services.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.chat.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	ctx, cancel := h.turnContext()
	stream, err := h.chat.StreamChat(ctx, req)
	if err != nil {
		cancel()
		h.log.WithError(err).Error("Failed to start chat stream")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to start chat stream",
		})
	}

	c.Set(fiber.HeaderContentType, datastream.ContentType)
	c.Set(datastream.HeaderName, datastream.HeaderValue)
	c.Set(fiber.HeaderCacheControl, "no-cache")

	log := h.log
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		if err := relay(ctx, datastream.NewWriter(w), stream); err != nil {
			log.WithError(err).Warn("Chat stream ended with error")
		}
	})

	return nil
}

// wsFrame is one server message on /api/chat/ws
type wsFrame struct {
	Type         string `json:"type"`
	Content      string `json:"content,omitempty"`
	Error        string `json:"error,omitempty"`
	FinishReason string `json:"finishReason,omitempty"`
}

// wsSink writes relay parts as websocket frames
type wsSink struct {
	conn *websocket.Conn
}

func (s wsSink) Text(text string) error {
	return s.conn.WriteJSON(wsFrame{Type: "content", Content: text})
}

func (s wsSink) Error(msg string) error {
	return s.conn.WriteJSON(wsFrame{Type: "error", Error: msg})
}

func (s wsSink) Finish(reason string) error {
	if reason == "" {
		reason = "stop"
	}
	return s.conn.WriteJSON(wsFrame{Type: "done", FinishReason: reason})
}

// StreamWS handles websocket /api/chat/ws. Each client message is a chat
// request; turns on one connection run one after another.
func (h *ChatHandler) StreamWS(conn *websocket.Conn) {
	defer conn.Close()
	out := wsSink{conn: conn}

	for {
		var req services.ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				if out.Error("Invalid request body") != nil {
					return
				}
				continue
			}
			// Client went away
			return
		}

		if err := h.chat.Validate(req); err != nil {
			if out.Error(err.Error()) != nil {
				return
			}
			continue
		}

		if err := h.turn(out, req); err != nil {
			h.log.WithError(err).Warn("Websocket chat turn ended with error")
		}
	}
}

func (h *ChatHandler) turn(out wsSink, req services.ChatRequest) error {
	ctx, cancel := h.turnContext()
	defer cancel()

	stream, err := h.chat.StreamChat(ctx, req)
	if err != nil {
		return errors.Join(err, out.Error("Failed to start chat stream"))
	}
	return relay(ctx, out, stream)
}

// RequireUpgrade rejects plain HTTP requests on websocket routes
func RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
