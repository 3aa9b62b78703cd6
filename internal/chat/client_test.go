package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendPublishesUserMessageFirst(t *testing.T) {
	streamer := newFakeStreamer()
	c := NewClient(streamer)
	c.Load("s1", nil)

	var snapshots [][]Message
	c.OnChange(func(_ string, messages []Message) {
		snapshots = append(snapshots, messages)
	})

	turn, err := c.Send(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, []Message{{Role: RoleUser, Content: "hello", Status: StatusComplete}}, snapshots[0])
	assert.Equal(t, "s1", turn.SessionID)
	assert.True(t, c.Busy())

	streamer.next(t).finish()
	require.NoError(t, waitTurn(t, turn))
}

func TestClientEmptyCompletion(t *testing.T) {
	streamer := newFakeStreamer()
	c := NewClient(streamer)

	turn, err := c.Send(context.Background(), "hello")
	require.NoError(t, err)
	streamer.next(t).finish()
	require.NoError(t, waitTurn(t, turn))

	messages := c.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, Message{Role: RoleAssistant, Status: StatusComplete}, messages[1])
}

func TestClientStartFailure(t *testing.T) {
	streamer := newFakeStreamer()
	streamer.startErr = &ServiceError{Status: 502, Message: "provider unavailable"}
	c := NewClient(streamer)

	turn, err := c.Send(context.Background(), "hello")
	require.NoError(t, err)

	var svcErr *ServiceError
	require.ErrorAs(t, waitTurn(t, turn), &svcErr)
	assert.Equal(t, 502, svcErr.Status)
	assert.False(t, c.Busy())
	assert.Len(t, c.Messages(), 1, "no assistant entry for a turn that never started")
}

func TestClientTurnClose(t *testing.T) {
	streamer := newFakeStreamer()
	c := NewClient(streamer)

	turn, err := c.Send(context.Background(), "hello")
	require.NoError(t, err)
	stream := streamer.next(t)
	require.True(t, stream.send("partial"))

	turn.Close()
	assert.ErrorIs(t, waitTurn(t, turn), context.Canceled)
	assert.False(t, c.Busy())

	messages := c.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, StatusFailed, messages[1].Status)

	select {
	case <-stream.closed:
	default:
		t.Fatal("stream was not closed")
	}
}

func TestClientParentContextCancel(t *testing.T) {
	streamer := newFakeStreamer()
	c := NewClient(streamer)

	ctx, cancel := context.WithCancel(context.Background())
	turn, err := c.Send(ctx, "hello")
	require.NoError(t, err)
	streamer.next(t)

	cancel()
	assert.ErrorIs(t, waitTurn(t, turn), context.Canceled)
}

func TestClientLoadAbandonsTurn(t *testing.T) {
	streamer := newFakeStreamer()
	c := NewClient(streamer)
	c.Load("a", nil)

	var seen []string
	c.OnChange(func(sessionID string, _ []Message) {
		seen = append(seen, sessionID)
	})

	turn, err := c.Send(context.Background(), "hello")
	require.NoError(t, err)
	stream := streamer.next(t)

	c.Load("b", []Message{{Role: RoleUser, Content: "other", Status: StatusComplete}})
	assert.False(t, c.Busy())
	assert.ErrorIs(t, waitTurn(t, turn), ErrSessionChanged)
	assert.False(t, stream.send("late"))

	assert.Equal(t, "b", c.SessionID())
	assert.Equal(t, []Message{{Role: RoleUser, Content: "other", Status: StatusComplete}}, c.Messages())
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestClientLoadCopiesHistory(t *testing.T) {
	c := NewClient(newFakeStreamer())
	history := []Message{{Role: RoleUser, Content: "hello", Status: StatusComplete}}
	c.Load("a", history)
	history[0].Content = "changed"

	assert.Equal(t, "hello", c.Messages()[0].Content)
}

func TestTurnErrBeforeDone(t *testing.T) {
	streamer := newFakeStreamer()
	c := NewClient(streamer)

	turn, err := c.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.NoError(t, turn.Err())

	stream := streamer.next(t)
	stream.fail(errors.New("boom"))
	<-turn.Done()
	assert.EqualError(t, turn.Err(), "boom")
}

func TestHistoryOfSkipsUnfinished(t *testing.T) {
	history := historyOf([]Message{
		{Role: RoleUser, Content: "a", Status: StatusComplete},
		{Role: RoleAssistant, Content: "b", Status: StatusFailed},
		{Role: RoleUser, Content: "c", Status: StatusComplete},
		{Role: RoleAssistant, Content: "d", Status: StatusStreaming},
	})
	assert.Equal(t, []Message{{Role: RoleUser, Content: "a"}, {Role: RoleUser, Content: "c"}}, history)
}
