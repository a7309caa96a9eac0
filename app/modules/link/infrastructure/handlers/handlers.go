package linkhandlers

import (
	"context"
	"fmt"
	"log/slog"

	discordevents "github.com/Black-And-White-Club/elo-bot/app/events/discord"
	linkevents "github.com/Black-And-White-Club/elo-bot/app/events/link"
	linkservice "github.com/Black-And-White-Club/elo-bot/app/modules/link/application"
	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
	"github.com/Black-And-White-Club/elo-bot/app/shared/handlerwrapper"
)

// LinkHandlers turns link requests into service calls and replies.
type LinkHandlers struct {
	service  linkservice.Service
	restorer RestoreScheduler
	logger   *slog.Logger
}

var _ Handlers = (*LinkHandlers)(nil)

// NewLinkHandlers creates a new LinkHandlers.
func NewLinkHandlers(service linkservice.Service, restorer RestoreScheduler, logger *slog.Logger) *LinkHandlers {
	return &LinkHandlers{
		service:  service,
		restorer: restorer,
		logger:   logger,
	}
}

// HandleLinkRequested links the user and answers with the outcome. Service
// errors become a reply rather than a redelivery, since the user is waiting.
func (h *LinkHandlers) HandleLinkRequested(ctx context.Context, payload *linkevents.LinkRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	res, err := h.service.Link(ctx, payload.Query, payload.DiscordID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Link request failed",
			attr.ExtractCorrelationID(ctx),
			attr.DiscordID(payload.DiscordID),
			attr.String("query", payload.Query),
			attr.Error(err),
		)
		return discordevents.Reply(payload.Interaction, linkFailedMessage(payload)), nil
	}

	results := discordevents.Reply(payload.Interaction, linkOutcomeMessage(payload, res.Outcome))
	if res.Outcome == linkservice.LinkOutcomeLinked && res.Snapshot != nil && res.Snapshot.Eligible() {
		results = append(results, handlerwrapper.Result{
			Topic: linkevents.LinkedV1,
			Payload: &linkevents.LinkedPayloadV1{
				DiscordID: payload.DiscordID,
				FaceitID:  res.Snapshot.PlayerID,
				Elo:       *res.Snapshot.Elo,
				Tier:      *res.Snapshot.Tier,
			},
		})
	}
	return results, nil
}

func (h *LinkHandlers) HandleUnlinkRequested(ctx context.Context, payload *linkevents.UnlinkRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	res, err := h.service.Unlink(ctx, payload.DiscordID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Unlink request failed",
			attr.ExtractCorrelationID(ctx),
			attr.DiscordID(payload.DiscordID),
			attr.Error(err),
		)
		return discordevents.Reply(payload.Interaction, unlinkFailedMessage(payload)), nil
	}

	results := discordevents.Reply(payload.Interaction, unlinkOutcomeMessage(payload, res.Outcome))
	if res.Outcome == linkservice.UnlinkOutcomeUnlinked {
		results = append(results, handlerwrapper.Result{
			Topic:   linkevents.UnlinkedV1,
			Payload: &linkevents.UnlinkedPayloadV1{DiscordID: payload.DiscordID},
		})
	}
	return results, nil
}

func (h *LinkHandlers) HandleStatusRequested(ctx context.Context, payload *linkevents.StatusRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	report, err := h.service.Status(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Status request failed",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
		return discordevents.Reply(payload.Interaction, MessageSomethingWentWrong), nil
	}
	return discordevents.Reply(payload.Interaction, StatusMessage(report)), nil
}

// HandleRestoreRequested hands the restore to the background queue; the
// worker answers the interaction once every guild has been scanned.
func (h *LinkHandlers) HandleRestoreRequested(ctx context.Context, payload *linkevents.RestoreRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if err := h.restorer.EnqueueRestore(ctx, payload.Interaction); err != nil {
		h.logger.ErrorContext(ctx, "Failed to enqueue restore",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
		return discordevents.Reply(payload.Interaction, MessageSomethingWentWrong), nil
	}
	return nil, nil
}

// Reply texts.
const (
	MessageSomethingWentWrong = "Whops! Something went wrong."
	MessageAccountNotFound    = "Faceit account not found."
	MessageAlreadyLinked      = "User already linked, unlink using '/unlink'."
	MessageIneligible         = "User has not played CS2 on Faceit."
	MessageNotLinkedSelf      = "User not linked. Please link using '/link *faceitUsername*'"
	MessageNotLinked          = "User not linked."
)

func linkOutcomeMessage(p *linkevents.LinkRequestedPayloadV1, outcome linkservice.LinkOutcome) string {
	switch outcome {
	case linkservice.LinkOutcomeLinked:
		if p.Forced {
			return fmt.Sprintf("Successfully force linked Discord user '%s' to Faceit account '%s'.", p.DisplayName, p.Query)
		}
		return fmt.Sprintf("Successfully linked Discord user '%s' to Faceit account '%s'.", p.DisplayName, p.Query)
	case linkservice.LinkOutcomeAlreadyLinked:
		return MessageAlreadyLinked
	case linkservice.LinkOutcomeIneligible:
		return MessageIneligible
	default:
		return MessageAccountNotFound
	}
}

func linkFailedMessage(p *linkevents.LinkRequestedPayloadV1) string {
	if p.Forced {
		return fmt.Sprintf("Error when attempting to forcefully link Discord user '%s' to Faceit account '%s'.", p.DisplayName, p.Query)
	}
	return fmt.Sprintf("Error when attempting to link Discord user '%s' to Faceit account '%s'.", p.DisplayName, p.Query)
}

func unlinkOutcomeMessage(p *linkevents.UnlinkRequestedPayloadV1, outcome linkservice.UnlinkOutcome) string {
	switch {
	case outcome == linkservice.UnlinkOutcomeUnlinked && p.Forced:
		return fmt.Sprintf("Successfully force unlinked user '%s'.", p.DisplayName)
	case outcome == linkservice.UnlinkOutcomeUnlinked:
		return fmt.Sprintf("Successfully unlinked user '%s'.", p.DisplayName)
	case p.Forced:
		return MessageNotLinked
	default:
		return MessageNotLinkedSelf
	}
}

func unlinkFailedMessage(p *linkevents.UnlinkRequestedPayloadV1) string {
	if p.Forced {
		return fmt.Sprintf("Error when attempting to force unlink user '%s'.", p.DisplayName)
	}
	return fmt.Sprintf("Error when attempting to unlink user '%s'.", p.DisplayName)
}

// StatusMessage renders the status command reply.
func StatusMessage(report linkservice.StatusReport) string {
	return fmt.Sprintf("Connected to %d guilds. Total of %d users linked.", report.Guilds, report.LinkedUsers)
}

// RestoreMessage renders the restore command reply.
func RestoreMessage(report linkservice.RestoreReport) string {
	return fmt.Sprintf("Restore complete. Total: %d, Assumed: %d, Added: %d, Errors: %d",
		report.Total, report.Assumed, report.Added, report.Errors)
}
