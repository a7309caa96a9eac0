package presentationhandlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	discordevents "github.com/Black-And-White-Club/elo-bot/app/events/discord"
	guildevents "github.com/Black-And-White-Club/elo-bot/app/events/guild"
	presentationservice "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/application"
	presentationdomain "github.com/Black-And-White-Club/elo-bot/app/modules/presentation/domain"
	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
	"github.com/Black-And-White-Club/elo-bot/app/shared/handlerwrapper"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
)

// Reply texts.
const (
	MessageLeftGuild       = "Left guild."
	MessageGuildNotFound   = "Guild not found."
	MessageLeaveFailed     = "Error when leaving guild."
	MessageGuildListFailed = "Error attempting to get guilds."
	guildListHeader        = "# Guilds \n"
	guildListLineFormat    = "**Guild**: '%s', **ID**: '%s'.\n"
)

// Handlers handles guild lifecycle events.
type Handlers interface {
	HandleGuildJoined(ctx context.Context, payload *guildevents.GuildJoinedPayloadV1) ([]handlerwrapper.Result, error)
	HandleGuildListRequested(ctx context.Context, payload *guildevents.GuildListRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleGuildLeaveRequested(ctx context.Context, payload *guildevents.GuildLeaveRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

// GuildDirectory lists and leaves guilds.
type GuildDirectory interface {
	Guilds(ctx context.Context) ([]presentationdomain.Guild, error)
	LeaveGuild(ctx context.Context, guildID sharedtypes.GuildID) error
}

// PresentationHandlers implements Handlers.
type PresentationHandlers struct {
	provisioner presentationservice.RoleProvisioner
	guilds      GuildDirectory
	logger      *slog.Logger
}

var _ Handlers = (*PresentationHandlers)(nil)

// NewPresentationHandlers creates a new PresentationHandlers.
func NewPresentationHandlers(provisioner presentationservice.RoleProvisioner, guilds GuildDirectory, logger *slog.Logger) *PresentationHandlers {
	return &PresentationHandlers{provisioner: provisioner, guilds: guilds, logger: logger}
}

// HandleGuildJoined provisions tier roles in a guild the bot just joined.
// Missing permissions are logged and acknowledged; the next sweep retries.
func (h *PresentationHandlers) HandleGuildJoined(ctx context.Context, payload *guildevents.GuildJoinedPayloadV1) ([]handlerwrapper.Result, error) {
	h.logger.InfoContext(ctx, "Provisioning tier roles for guild",
		attr.ExtractCorrelationID(ctx),
		attr.GuildID(payload.GuildID),
		attr.String("guild_name", payload.Name),
	)

	if _, err := h.provisioner.EnsureRoles(ctx, payload.GuildID); err != nil {
		if errors.Is(err, presentationdomain.ErrPermissionDenied) || errors.Is(err, presentationdomain.ErrNotFound) {
			h.logger.WarnContext(ctx, "Cannot provision tier roles",
				attr.GuildID(payload.GuildID),
				attr.Error(err),
			)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to provision tier roles: %w", err)
	}
	return nil, nil
}

func (h *PresentationHandlers) HandleGuildListRequested(ctx context.Context, payload *guildevents.GuildListRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	guilds, err := h.guilds.Guilds(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list guilds", attr.ExtractCorrelationID(ctx), attr.Error(err))
		return discordevents.Reply(payload.Interaction, MessageGuildListFailed), nil
	}
	return discordevents.Reply(payload.Interaction, GuildListMessage(guilds)), nil
}

func (h *PresentationHandlers) HandleGuildLeaveRequested(ctx context.Context, payload *guildevents.GuildLeaveRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	err := h.guilds.LeaveGuild(ctx, payload.GuildID)
	switch {
	case err == nil:
		h.logger.InfoContext(ctx, "Left guild", attr.ExtractCorrelationID(ctx), attr.GuildID(payload.GuildID))
		return discordevents.Reply(payload.Interaction, MessageLeftGuild), nil
	case errors.Is(err, presentationdomain.ErrNotFound):
		return discordevents.Reply(payload.Interaction, MessageGuildNotFound), nil
	default:
		h.logger.ErrorContext(ctx, "Failed to leave guild",
			attr.ExtractCorrelationID(ctx),
			attr.GuildID(payload.GuildID),
			attr.Error(err),
		)
		return discordevents.Reply(payload.Interaction, MessageLeaveFailed), nil
	}
}

// GuildListMessage renders one line per guild.
func GuildListMessage(guilds []presentationdomain.Guild) string {
	var b strings.Builder
	b.WriteString(guildListHeader)
	for _, g := range guilds {
		fmt.Fprintf(&b, guildListLineFormat, g.Name, g.ID)
	}
	return b.String()
}
