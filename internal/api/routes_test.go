package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	fws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adsero/adsero-assistant/internal/chat"
	"github.com/adsero/adsero-assistant/internal/config"
	"github.com/adsero/adsero-assistant/internal/datastream"
	"github.com/adsero/adsero-assistant/internal/providers"
	"github.com/adsero/adsero-assistant/internal/providers/stub"
	"github.com/adsero/adsero-assistant/internal/services"
	"github.com/adsero/adsero-assistant/internal/sharepoint"
)

type appOptions struct {
	provider    providers.Provider
	maxDuration time.Duration
	rateLimit   int
}

func newTestApp(t *testing.T, opts appOptions) *fiber.App {
	t.Helper()
	logger, _ := test.NewNullLogger()
	log := logrus.NewEntry(logger)

	if opts.provider == nil {
		opts.provider = stub.New(stub.WithChunks("Hello", " world"))
	}
	if opts.maxDuration == 0 {
		opts.maxDuration = 5 * time.Second
	}

	registry := providers.NewRegistry()
	registry.Register(stub.Name, opts.provider)

	health := services.NewHealthMonitor(opts.provider.Name())
	svc := services.NewChatService(opts.provider, nil, config.ChatConfig{
		Model:        "test-model",
		MaxDuration:  opts.maxDuration,
		SystemPrompt: config.DefaultSystemPrompt,
	}, log, services.WithHealthMonitor(health))

	app := NewApp("test", config.ServerConfig{CORSOrigins: "http://localhost:5173"}, log)
	SetupRoutes(app, Dependencies{
		Chat:           svc,
		Catalog:        sharepoint.NewMockCatalog(),
		Providers:      registry,
		ActiveProvider: stub.Name,
		Health:         health,
		ChatRateLimit:  opts.rateLimit,
		Log:            log,
	})
	return app
}

func postChat(t *testing.T, app *fiber.App, body string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func getJSON(t *testing.T, app *fiber.App, target string, v interface{}) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

const helloRequest = `{"messages":[{"role":"user","content":"hi"}]}`

func TestChatStreamsDatastream(t *testing.T) {
	app := newTestApp(t, appOptions{})

	resp, body := postChat(t, app, helloRequest)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, datastream.ContentType, resp.Header.Get("Content-Type"))
	assert.Equal(t, datastream.HeaderValue, resp.Header.Get(datastream.HeaderName))
	assert.Equal(t, "0:\"Hello\"\n0:\" world\"\nd:{\"finishReason\":\"stop\"}\n", body)
}

func TestChatRejectsInvalidRequests(t *testing.T) {
	app := newTestApp(t, appOptions{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"messages":`},
		{"empty history", `{"messages":[]}`},
		{"last from assistant", `{"messages":[{"role":"user","content":"hi"},{"role":"assistant","content":"yo"}]}`},
		{"unknown role", `{"messages":[{"role":"tool","content":"x"},{"role":"user","content":"hi"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postChat(t, app, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var payload map[string]string
			require.NoError(t, json.Unmarshal([]byte(body), &payload))
			assert.NotEmpty(t, payload["error"])
		})
	}
}

func TestChatProviderStartFailure(t *testing.T) {
	app := newTestApp(t, appOptions{provider: stub.New(stub.WithStartError(errors.New("invalid api key")))})

	resp, body := postChat(t, app, helloRequest)

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Failed to start chat stream"}`, body)
}

func TestChatMidStreamFailure(t *testing.T) {
	app := newTestApp(t, appOptions{provider: stub.New(stub.WithChunks("a", "b"), stub.WithFailureAfter(1))})

	resp, body := postChat(t, app, helloRequest)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0:\"a\"\n3:\"stub provider failure\"\n", body)
}

func TestChatMaxDuration(t *testing.T) {
	app := newTestApp(t, appOptions{
		provider:    stub.New(stub.WithChunks("slow", "reply"), stub.WithDelay(2*time.Second)),
		maxDuration: 50 * time.Millisecond,
	})

	resp, body := postChat(t, app, helloRequest)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(body, "0:\"slow\"\n3:"), body)
	assert.NotContains(t, body, "d:")
}

func TestChatRateLimit(t *testing.T) {
	app := newTestApp(t, appOptions{rateLimit: 1})

	resp, _ := postChat(t, app, helloRequest)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := postChat(t, app, helloRequest)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, body, "rate limit")
}

func TestSharePointDocumentsQuery(t *testing.T) {
	app := newTestApp(t, appOptions{})

	var body struct {
		Documents []sharepoint.Document `json:"documents"`
	}
	status := getJSON(t, app, "/api/sharepoint?type=documents&query=legal", &body)
	require.Equal(t, http.StatusOK, status)

	var names []string
	for _, d := range body.Documents {
		names = append(names, d.Name)
	}
	assert.Contains(t, names, "Legal Contract Template.docx")
	assert.Contains(t, names, "Legal Research Notes.docx")
	assert.NotContains(t, names, "Client Agreement.pdf")
}

func TestSharePointReports(t *testing.T) {
	app := newTestApp(t, appOptions{})

	var body map[string][]sharepoint.Report
	require.Equal(t, http.StatusOK, getJSON(t, app, "/api/sharepoint?type=reports", &body))
	assert.Len(t, body["reports"], 3)
	assert.NotContains(t, body, "documents")
}

func TestSharePointEmptyResultKeepsKey(t *testing.T) {
	app := newTestApp(t, appOptions{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/sharepoint?type=documents&query=zzz", nil), -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.JSONEq(t, `{"documents":[]}`, string(data))
}

func TestSharePointInvalidType(t *testing.T) {
	app := newTestApp(t, appOptions{})

	for _, target := range []string{"/api/sharepoint?type=invalid", "/api/sharepoint"} {
		var body map[string]string
		assert.Equal(t, http.StatusBadRequest, getJSON(t, app, target, &body))
		assert.Equal(t, "Invalid request type", body["error"])
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, appOptions{})

	var body map[string]string
	require.Equal(t, http.StatusOK, getJSON(t, app, "/api/health", &body))
	assert.Equal(t, map[string]string{"status": "healthy", "service": ServiceName}, body)
}

func TestProviders(t *testing.T) {
	app := newTestApp(t, appOptions{})

	var body []map[string]interface{}
	require.Equal(t, http.StatusOK, getJSON(t, app, "/api/providers", &body))
	require.Len(t, body, 1)
	assert.Equal(t, "stub", body[0]["id"])
	assert.Equal(t, true, body[0]["active"])

	health, ok := body[0]["health"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, health["healthy"])
	assert.Equal(t, float64(0), health["success_count"])
}

func TestProvidersReportStreamOutcomes(t *testing.T) {
	app := newTestApp(t, appOptions{})

	resp, _ := postChat(t, app, `{"messages":[{"role":"user","content":"hi"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body []map[string]interface{}
	require.Equal(t, http.StatusOK, getJSON(t, app, "/api/providers", &body))
	require.Len(t, body, 1)
	health := body[0]["health"].(map[string]interface{})
	assert.Equal(t, float64(1), health["success_count"])
	assert.Equal(t, float64(0), health["error_count"])
}

func TestUnknownRouteUsesErrorHandler(t *testing.T) {
	app := newTestApp(t, appOptions{})

	var body map[string]interface{}
	assert.Equal(t, http.StatusNotFound, getJSON(t, app, "/api/nope", &body))
	assert.Equal(t, float64(http.StatusNotFound), body["code"])
	assert.NotEmpty(t, body["error"])
}

func TestWebsocketRequiresUpgrade(t *testing.T) {
	app := newTestApp(t, appOptions{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/chat/ws", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

// listen serves app on a loopback port
func listen(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return ln.Addr().String()
}

func TestWebsocketChat(t *testing.T) {
	addr := listen(t, newTestApp(t, appOptions{}))

	conn, _, err := fws.DefaultDialer.Dial("ws://"+addr+"/api/chat/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	readFrames := func() []map[string]string {
		var frames []map[string]string
		for {
			var frame map[string]string
			require.NoError(t, conn.ReadJSON(&frame))
			frames = append(frames, frame)
			if frame["type"] != "content" {
				return frames
			}
		}
	}

	require.NoError(t, conn.WriteMessage(fws.TextMessage, []byte(helloRequest)))
	frames := readFrames()
	require.Len(t, frames, 3)
	assert.Equal(t, map[string]string{"type": "content", "content": "Hello"}, frames[0])
	assert.Equal(t, map[string]string{"type": "content", "content": " world"}, frames[1])
	assert.Equal(t, map[string]string{"type": "done", "finishReason": "stop"}, frames[2])

	// invalid turns report an error and keep the connection open
	require.NoError(t, conn.WriteMessage(fws.TextMessage, []byte(`{"messages":[]}`)))
	frames = readFrames()
	require.Len(t, frames, 1)
	assert.Equal(t, "error", frames[0]["type"])

	require.NoError(t, conn.WriteMessage(fws.TextMessage, []byte(helloRequest)))
	frames = readFrames()
	assert.Equal(t, "done", frames[len(frames)-1]["type"])
}

func TestSessionManagerAgainstServer(t *testing.T) {
	addr := listen(t, newTestApp(t, appOptions{}))

	m := chat.NewManager(chat.NewClient(chat.NewHTTPStreamer("http://"+addr, nil)))
	turn, err := m.Send(context.Background(), "Show me the latest legal documents")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, turn.Wait(ctx))

	s, ok := m.Active()
	require.True(t, ok)
	assert.Equal(t, "Show me the latest legal docum…", s.Title)
	require.Len(t, s.Messages, 2)
	assert.Equal(t, "Hello world", s.Messages[1].Content)
	assert.Equal(t, chat.StatusComplete, s.Messages[1].Status)
}
