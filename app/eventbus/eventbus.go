// Package eventbus connects module routers to NATS JetStream, or to an
// in-process channel when no NATS URL is configured.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
	"github.com/Black-And-White-Club/elo-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventBus publishes and subscribes watermill messages. Publishing to the
// empty topic routes each message by its topic metadata, which is how routers
// forward handler results.
type EventBus interface {
	Publish(topic string, messages ...*message.Message) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

// eventBus implements the EventBus interface.
type eventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	natsConn   *nc.Conn
	logger     *slog.Logger
	closeOnce  sync.Once
}

var _ EventBus = (*eventBus)(nil)

// NewEventBus creates an EventBus backed by NATS JetStream. The streams the
// application publishes to are created on startup.
func NewEventBus(ctx context.Context, natsURL string, logger *slog.Logger) (EventBus, error) {
	if natsURL == "" {
		return NewInProcessEventBus(logger), nil
	}

	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(time.Second),
		nc.MaxReconnects(-1),
	}

	natsConn, err := nc.Connect(natsURL, options...)
	if err != nil {
		logger.Error("Failed to connect to NATS", attr.Error(err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	if err := InitializeStreams(ctx, js, logger); err != nil {
		natsConn.Close()
		return nil, err
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}
	jsConfig := nats.JetStreamConfig{
		Disabled:      false,
		AutoProvision: false,
		SubscribeOptions: []nc.SubOpt{
			nc.DeliverNew(),
			nc.AckExplicit(),
		},
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         natsURL,
			NatsOptions: options,
			Marshaler:   marshaler,
			JetStream:   jsConfig,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:            natsURL,
			NatsOptions:    options,
			Unmarshaler:    marshaler,
			JetStream:      jsConfig,
			AckWaitTimeout: 30 * time.Second,
			CloseTimeout:   10 * time.Second,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		_ = publisher.Close()
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	logger.Info("Event bus connected to NATS", attr.String("nats_url", natsURL))
	return &eventBus{
		publisher:  publisher,
		subscriber: subscriber,
		natsConn:   natsConn,
		logger:     logger,
	}, nil
}

// NewInProcessEventBus creates an EventBus on a watermill go channel. Messages
// are lost on restart.
func NewInProcessEventBus(logger *slog.Logger) EventBus {
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermill.NewSlogLogger(logger))

	logger.Info("Event bus running in process")
	return &eventBus{
		publisher:  ch,
		subscriber: ch,
		logger:     logger,
	}
}

// Publish sends messages to topic. With an empty topic every message goes to
// the topic named in its metadata.
func (eb *eventBus) Publish(topic string, messages ...*message.Message) error {
	if topic != "" {
		return eb.publish(topic, messages...)
	}

	for _, msg := range messages {
		dest := msg.Metadata.Get(handlerwrapper.TopicMetadataKey)
		if dest == "" {
			return fmt.Errorf("message %s has no topic metadata", msg.UUID)
		}
		if err := eb.publish(dest, msg); err != nil {
			return err
		}
	}
	return nil
}

func (eb *eventBus) publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
		if msg.Metadata.Get(handlerwrapper.TopicMetadataKey) == "" {
			msg.Metadata.Set(handlerwrapper.TopicMetadataKey, topic)
		}
	}

	if err := eb.publisher.Publish(topic, messages...); err != nil {
		eb.logger.Error("Failed to publish message",
			attr.String("topic", topic),
			attr.Error(err),
		)
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	eb.logger.Debug("Message published",
		attr.String("topic", topic),
		attr.Int("count", len(messages)),
	)
	return nil
}

func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	eb.logger.Info("Subscription started", attr.String("topic", topic))
	return messages, nil
}

// Close closes all NATS and Watermill resources.
func (eb *eventBus) Close() error {
	var errs []error
	eb.closeOnce.Do(func() {
		if eb.publisher != nil {
			if err := eb.publisher.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close publisher: %w", err))
			}
		}
		if eb.subscriber != nil && any(eb.subscriber) != any(eb.publisher) {
			if err := eb.subscriber.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close subscriber: %w", err))
			}
		}
		if eb.natsConn != nil {
			eb.natsConn.Close()
		}
	})
	return errors.Join(errs...)
}
