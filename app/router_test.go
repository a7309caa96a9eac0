package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWatermillRouter_RetriesFailedHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubsub.Close()

	registry := prometheus.NewRegistry()
	router, err := NewWatermillRouter(logger, registry)
	require.NoError(t, err)

	attempts := 0
	done := make(chan int, 1)
	router.AddNoPublisherHandler("flaky", "flaky.topic", pubsub, func(msg *message.Message) error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		done <- attempts
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = router.Run(ctx) }()
	<-router.Running()

	require.NoError(t, pubsub.Publish("flaky.topic", message.NewMessage(watermill.NewUUID(), []byte("{}"))))

	select {
	case n := <-done:
		assert.Equal(t, 3, n)
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not retried")
	}

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
	require.NoError(t, router.Close())
}
