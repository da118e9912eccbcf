package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/events"
)

// NotificationService mirrors ticket lifecycle events to the operator
// log. Outbound webhook delivery is handled separately by the worker.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to the lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketOpened, n.handle("TicketOpened"))
	n.dispatcher.Subscribe(events.EventDuplicateBlocked, n.handle("DuplicateBlocked"))
	n.dispatcher.Subscribe(events.EventCloseRequested, n.handle("CloseRequested"))
	n.dispatcher.Subscribe(events.EventCloseCancelled, n.handle("CloseCancelled"))
	n.dispatcher.Subscribe(events.EventTicketArchived, n.handle("TicketArchived"))
	n.dispatcher.Subscribe(events.EventMemberAdded, n.handle("MemberAdded"))
	n.dispatcher.Subscribe(events.EventMemberRemoved, n.handle("MemberRemoved"))
	n.dispatcher.Subscribe(events.EventTranscriptGenerated, n.handle("TranscriptGenerated"))
}

func (n *NotificationService) handle(name string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		n.logger.Info(name,
			zap.String("event_id", event.ID),
			zap.String("guild_id", event.GuildID),
			zap.String("channel_id", event.ChannelID),
			zap.String("actor_id", event.ActorID),
			zap.Any("payload", event.Payload))
		return nil
	}
}
