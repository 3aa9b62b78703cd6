package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/adsero/adsero-assistant/internal/datastream"
)

// ErrStreamTruncated means the connection ended before the finish part
var ErrStreamTruncated = errors.New("stream ended before completion")

// ServiceError is a non-200 answer from the chat endpoint
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("chat service returned %d: %s", e.Status, e.Message)
}

// StreamError is an error part sent by the server mid-stream
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return "stream error: " + e.Message
}

type chatRequest struct {
	Messages []wireMessage `json:"messages"`
}

type wireMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// HTTPStreamer streams turns from the server's /api/chat endpoint
type HTTPStreamer struct {
	endpoint string
	http     *http.Client
}

// NewHTTPStreamer creates a streamer for the server at baseURL
func NewHTTPStreamer(baseURL string, httpClient *http.Client) *HTTPStreamer {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPStreamer{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/chat",
		http:     httpClient,
	}
}

// Stream posts the history and returns the decoded token stream
func (s *HTTPStreamer) Stream(ctx context.Context, history []Message) (TokenStream, error) {
	body := chatRequest{Messages: make([]wireMessage, 0, len(history))}
	for _, m := range history {
		body.Messages = append(body.Messages, wireMessage{Role: m.Role, Content: m.Content})
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post chat: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload)
		if payload.Error == "" {
			payload.Error = http.StatusText(resp.StatusCode)
		}
		return nil, &ServiceError{Status: resp.StatusCode, Message: payload.Error}
	}

	return &httpTokenStream{
		body:   resp.Body,
		reader: datastream.NewReader(resp.Body),
	}, nil
}

type httpTokenStream struct {
	body     io.ReadCloser
	reader   *datastream.Reader
	finished bool
}

func (s *httpTokenStream) Recv() (string, error) {
	if s.finished {
		return "", io.EOF
	}

	for {
		part, err := s.reader.Next()
		if errors.Is(err, io.EOF) {
			return "", ErrStreamTruncated
		}
		if err != nil {
			return "", err
		}

		switch part.Type {
		case datastream.PartText:
			if part.Text == "" {
				continue
			}
			return part.Text, nil
		case datastream.PartError:
			return "", &StreamError{Message: part.Text}
		case datastream.PartFinish:
			s.finished = true
			return "", io.EOF
		}
	}
}

func (s *httpTokenStream) Close() error {
	return s.body.Close()
}
