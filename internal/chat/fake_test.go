package chat

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeStreamer hands every opened stream to the test through streams
type fakeStreamer struct {
	startErr error
	streams  chan *fakeStream

	mu        sync.Mutex
	histories [][]Message
}

func newFakeStreamer() *fakeStreamer {
	return &fakeStreamer{streams: make(chan *fakeStream, 8)}
}

func (f *fakeStreamer) Stream(ctx context.Context, history []Message) (TokenStream, error) {
	f.mu.Lock()
	f.histories = append(f.histories, history)
	f.mu.Unlock()

	if f.startErr != nil {
		return nil, f.startErr
	}
	s := &fakeStream{
		ctx:    ctx,
		tokens: make(chan string),
		errs:   make(chan error, 1),
		closed: make(chan struct{}),
	}
	f.streams <- s
	return s, nil
}

func (f *fakeStreamer) history(i int) []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.histories[i]
}

// next waits for the stream opened by the most recent send
func (f *fakeStreamer) next(t *testing.T) *fakeStream {
	t.Helper()
	select {
	case s := <-f.streams:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no stream opened")
		return nil
	}
}

type fakeStream struct {
	ctx    context.Context
	tokens chan string
	errs   chan error
	closed chan struct{}
	once   sync.Once
}

func (s *fakeStream) Recv() (string, error) {
	select {
	case tok, ok := <-s.tokens:
		if !ok {
			return "", io.EOF
		}
		return tok, nil
	case err := <-s.errs:
		return "", err
	case <-s.ctx.Done():
		return "", s.ctx.Err()
	}
}

func (s *fakeStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

// send delivers one token and reports whether the consumer took it
func (s *fakeStream) send(tok string) bool {
	select {
	case s.tokens <- tok:
		return true
	case <-s.ctx.Done():
		return false
	case <-time.After(2 * time.Second):
		return false
	}
}

func (s *fakeStream) finish() {
	close(s.tokens)
}

func (s *fakeStream) fail(err error) {
	s.errs <- err
}

func waitTurn(t *testing.T, turn *Turn) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := turn.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "turn did not finish")
	return err
}

func sequentialIDs() func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}
}

func newTestManager(opts ...ManagerOption) (*Manager, *fakeStreamer) {
	streamer := newFakeStreamer()
	opts = append([]ManagerOption{WithIDGenerator(sequentialIDs())}, opts...)
	return NewManager(NewClient(streamer), opts...), streamer
}
