// Package discordcommands turns slash command interactions into request events.
package discordcommands

import (
	"context"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/elo-bot/app/events"
	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
	"github.com/Black-And-White-Club/elo-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bwmarrin/discordgo"
)

const publishTimeout = 5 * time.Second

// Responder is the subset of the Discord session the command layer uses.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

var _ Responder = (*discordgo.Session)(nil)

// Publisher publishes request events.
type Publisher interface {
	Publish(topic string, messages ...*message.Message) error
}

// Dispatcher routes slash commands. Commands that need the link store or the
// rank provider are deferred and answered by the module that handles the event.
type Dispatcher struct {
	responder Responder
	publisher Publisher
	ownerID   string
	limiter   *UserRateLimiter
	commands  map[string]command
	logger    *slog.Logger
}

// NewDispatcher creates a new Dispatcher. A nil limiter disables command limiting.
func NewDispatcher(responder Responder, publisher Publisher, ownerID string, limiter *UserRateLimiter, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		responder: responder,
		publisher: publisher,
		ownerID:   ownerID,
		limiter:   limiter,
		commands:  commandTable(),
		logger:    logger,
	}
}

// RegisterCommands replaces the application's global commands with Definitions.
func (d *Dispatcher) RegisterCommands(ctx context.Context, appID string) error {
	registered, err := d.responder.ApplicationCommandBulkOverwrite(appID, "", Definitions(), discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	d.logger.InfoContext(ctx, "Slash commands registered", attr.Int("count", len(registered)))
	return nil
}

// HandleInteraction is the discordgo InteractionCreate handler.
func (d *Dispatcher) HandleInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	d.Dispatch(context.Background(), i)
}

// Dispatch answers one interaction.
func (d *Dispatcher) Dispatch(ctx context.Context, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	user := invoker(i)
	if user == nil {
		return
	}

	logger := d.logger.With(
		attr.String("command", data.Name),
		attr.String("user_id", user.ID),
		attr.String("guild_id", i.GuildID),
	)

	cmd, ok := d.commands[data.Name]
	if !ok {
		logger.WarnContext(ctx, "Unknown command")
		d.respond(ctx, logger, i, MessageUnknownCommand, true)
		return
	}

	if cmd.ownerOnly && user.ID != d.ownerID {
		logger.WarnContext(ctx, "Owner command refused")
		d.respond(ctx, logger, i, MessageNotOwner, true)
		return
	}

	if !cmd.ownerOnly && d.limiter != nil && !d.limiter.Allow(user.ID) {
		d.respond(ctx, logger, i, MessageRateLimited, true)
		return
	}

	options := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(data.Options))
	for _, opt := range data.Options {
		options[opt.Name] = opt
	}

	req, reply := cmd.build(invocation{
		user:        user,
		options:     options,
		interaction: &events.Interaction{ApplicationID: i.AppID, Token: i.Token},
	})
	if req == nil {
		d.respond(ctx, logger, i, reply, cmd.ownerOnly)
		return
	}

	// The handling module edits this deferred response once it is done.
	err := d.responder.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: responseData("", cmd.ownerOnly),
	}, discordgo.WithContext(ctx))
	if err != nil {
		logger.ErrorContext(ctx, "Failed to defer interaction response", attr.Error(err))
		return
	}

	if err := d.publish(ctx, req); err != nil {
		logger.ErrorContext(ctx, "Failed to publish command request", attr.String("topic", req.topic), attr.Error(err))
		content := MessageSomethingWentWrong
		if _, err := d.responder.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}, discordgo.WithContext(ctx)); err != nil {
			logger.ErrorContext(ctx, "Failed to edit interaction response", attr.Error(err))
		}
		return
	}
	logger.DebugContext(ctx, "Command request published", attr.String("topic", req.topic))
}

func (d *Dispatcher) publish(ctx context.Context, req *request) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg, err := handlerwrapper.NewMessage(ctx, req.topic, req.payload)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)
	return d.publisher.Publish(req.topic, msg)
}

func (d *Dispatcher) respond(ctx context.Context, logger *slog.Logger, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	err := d.responder.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: responseData(content, ephemeral),
	}, discordgo.WithContext(ctx))
	if err != nil {
		logger.ErrorContext(ctx, "Failed to respond to interaction", attr.Error(err))
	}
}

func responseData(content string, ephemeral bool) *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return data
}

// invoker returns the user behind an interaction in a guild or a DM.
func invoker(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}
