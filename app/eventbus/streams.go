package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
	"github.com/nats-io/nats.go/jetstream"
)

// StreamConfigs lists the JetStream streams backing every topic family.
func StreamConfigs() []jetstream.StreamConfig {
	return []jetstream.StreamConfig{
		{Name: "link", Subjects: []string{"link.>"}},
		{Name: "sync", Subjects: []string{"sync.>"}},
		{Name: "presentation", Subjects: []string{"presentation.>"}},
		{Name: "discord", Subjects: []string{"discord.>"}},
	}
}

// InitializeStreams creates the necessary streams in JetStream during
// application startup, adding missing subjects to streams that already exist.
func InitializeStreams(ctx context.Context, js jetstream.JetStream, logger *slog.Logger) error {
	for _, cfg := range StreamConfigs() {
		stream, err := js.Stream(ctx, cfg.Name)
		if errors.Is(err, jetstream.ErrStreamNotFound) {
			if _, err := js.CreateStream(ctx, cfg); err != nil {
				logger.Error("Failed to create JetStream stream", attr.String("stream", cfg.Name), attr.Error(err))
				return fmt.Errorf("failed to create stream %s: %w", cfg.Name, err)
			}
			logger.Info("Created JetStream stream", attr.String("stream", cfg.Name))
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to check stream %s: %w", cfg.Name, err)
		}

		info, err := stream.Info(ctx)
		if err != nil {
			return fmt.Errorf("failed to get stream info for %s: %w", cfg.Name, err)
		}
		missing := false
		for _, subject := range cfg.Subjects {
			if !slices.Contains(info.Config.Subjects, subject) {
				info.Config.Subjects = append(info.Config.Subjects, subject)
				missing = true
			}
		}
		if !missing {
			continue
		}
		if _, err := js.UpdateStream(ctx, info.Config); err != nil {
			return fmt.Errorf("failed to update stream %s: %w", cfg.Name, err)
		}
		logger.Info("Stream updated with new subjects", attr.String("stream", cfg.Name))
	}
	return nil
}
