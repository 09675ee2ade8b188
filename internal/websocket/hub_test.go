package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoasmr/api/internal/logger"
	"github.com/autoasmr/api/internal/model"
)

func TestHub_BroadcastActivityReachesJobSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(logger.Nop())
	go hub.Run(ctx)

	watcher := &Client{JobID: "a", Send: make(chan []byte, 4)}
	other := &Client{JobID: "b", Send: make(chan []byte, 4)}
	hub.Register(watcher)
	hub.Register(other)
	require.Eventually(t, func() bool { return hub.Subscribers("a") == 1 }, time.Second, time.Millisecond)

	hub.BroadcastActivity(model.ActivityEntry{JobID: "a", Message: "Generating ASMR video...", Level: model.LogLevelInfo})

	select {
	case data := <-watcher.Send:
		var msg model.WSActivityMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, model.WSMessageTypeActivity, msg.Type)
		assert.Equal(t, "a", msg.JobID)
		assert.Equal(t, "Generating ASMR video...", msg.Entry.Message)
	case <-time.After(time.Second):
		t.Fatal("no activity message delivered")
	}

	select {
	case <-other.Send:
		t.Fatal("message leaked to another job")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHub_Unregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(logger.Nop())
	go hub.Run(ctx)

	c := &Client{JobID: "a", Send: make(chan []byte, 1)}
	hub.Register(c)
	hub.Unregister(c)

	_, open := <-c.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.Subscribers("a"))
}

func TestHub_BroadcastWithoutRunnerDoesNotBlock(t *testing.T) {
	hub := NewHub(logger.Nop())
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.BroadcastActivity(model.ActivityEntry{JobID: "a"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked")
	}
}
