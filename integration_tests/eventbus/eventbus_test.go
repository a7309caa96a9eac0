package eventbusintegrationtests

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Black-And-White-Club/elo-bot/app/eventbus"
	linkevents "github.com/Black-And-White-Club/elo-bot/app/events/link"
	"github.com/Black-And-White-Club/elo-bot/app/shared/handlerwrapper"
	"github.com/Black-And-White-Club/elo-bot/integration_tests/testutils"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEnv *testutils.TestEnvironment

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		log.Println("Skipping event bus integration tests in short mode")
		os.Exit(0)
	}

	env, err := testutils.NewTestEnvironment(context.Background())
	if err != nil {
		log.Fatalf("Failed to set up test environment: %v", err)
	}
	testEnv = env

	code := m.Run()
	env.Cleanup()
	os.Exit(code)
}

func receive(t *testing.T, ch <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-ch:
		msg.Ack()
		return msg
	case <-time.After(15 * time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func TestEventBus_RoutesByTopicMetadataOverJetStream(t *testing.T) {
	ctx, cancel := context.WithCancel(testEnv.Ctx)
	defer cancel()

	ch, err := testEnv.EventBus.Subscribe(ctx, linkevents.StatusRequestedV1)
	require.NoError(t, err)

	msg, err := handlerwrapper.NewMessage(ctx, linkevents.StatusRequestedV1, &linkevents.StatusRequestedPayloadV1{})
	require.NoError(t, err)
	require.NoError(t, testEnv.EventBus.Publish("", msg))

	got := receive(t, ch)
	assert.Equal(t, msg.UUID, got.UUID)
	assert.Equal(t, linkevents.StatusRequestedV1, got.Metadata.Get(handlerwrapper.TopicMetadataKey))
}

func TestEventBus_StreamsExistAfterConnect(t *testing.T) {
	// a second bus against the same server must find the streams in place
	bus, err := eventbus.NewEventBus(testEnv.Ctx, testEnv.Config.NATS.URL, testEnv.Logger)
	require.NoError(t, err)
	assert.NoError(t, bus.Close())
}
