package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/counter"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/policy"
	"github.com/spec-kit/ticket-bot/internal/presentation"
	"github.com/spec-kit/ticket-bot/pkg/util"
)

// TicketService coordinates the ticket lifecycle up to the active state:
// duplicate detection before opening, provisioning and the initial staff
// notification.
type TicketService struct {
	client      platform.Client
	policy      *policy.AccessPolicy
	counters    *counter.Store
	tickets     config.TicketsConfig
	provisioner *Provisioner
	builder     *presentation.Builder
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Client      platform.Client
	Policy      *policy.AccessPolicy
	Counters    *counter.Store
	Tickets     config.TicketsConfig
	Provisioner *Provisioner
	Builder     *presentation.Builder
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		client:      deps.Client,
		policy:      deps.Policy,
		counters:    deps.Counters,
		tickets:     deps.Tickets,
		provisioner: deps.Provisioner,
		builder:     deps.Builder,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
	}
}

// ExistingTicket references a ticket channel the requester can already
// see.
type ExistingTicket struct {
	Channel  *discordgo.Channel
	OpenedAt time.Time
}

// CreatedTicket is the outcome of a successful creation.
type CreatedTicket struct {
	Ticket  domain.Ticket
	Channel *discordgo.Channel
}

// FindExisting scans the type's category for a channel already visible to
// the user. A nil result means the user may open a new ticket. The
// category must be configured; otherwise the caller reports the
// configuration problem before any state changes.
func (s *TicketService) FindExisting(ctx context.Context, guildID, userID string, t domain.TicketType) (*ExistingTicket, error) {
	categoryID := s.tickets.CategoryID(t)
	if categoryID == "" {
		return nil, configurationError(t, categoryID)
	}

	channels, err := s.client.GuildChannels(guildID)
	if err != nil {
		return nil, err
	}

	categoryFound := false
	for _, ch := range channels {
		if ch.ID == categoryID && ch.Type == discordgo.ChannelTypeGuildCategory {
			categoryFound = true
			break
		}
	}
	if !categoryFound {
		return nil, configurationError(t, categoryID)
	}

	for _, ch := range channels {
		if ch.ParentID != categoryID || ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		if !memberCanView(ch, userID) {
			continue
		}
		openedAt, tsErr := discordgo.SnowflakeTimestamp(ch.ID)
		if tsErr != nil {
			openedAt = time.Now()
		}
		s.publish(ctx, events.Event{
			Type:      events.EventDuplicateBlocked,
			GuildID:   guildID,
			ChannelID: ch.ID,
			ActorID:   userID,
			Payload: events.DuplicateBlockedPayload{
				TicketType:      t,
				ExistingChannel: ch.Name,
			},
		})
		return &ExistingTicket{Channel: ch, OpenedAt: openedAt}, nil
	}
	return nil, nil
}

// Create provisions the channel for a submitted ticket and posts the
// initial message mentioning the requester and all authorized roles, with
// the lifecycle controls attached.
func (s *TicketService) Create(ctx context.Context, guildID string, member *discordgo.Member, t domain.TicketType, description string) (*CreatedTicket, error) {
	guild, err := s.client.Guild(guildID)
	if err != nil {
		return nil, err
	}

	channel, number, err := s.provisioner.CreateChannel(guild, t, member)
	if err != nil {
		return nil, err
	}

	mentions := []string{member.User.Mention()}
	for _, role := range s.policy.Resolve(guild, t) {
		mentions = append(mentions, role.Mention())
	}

	_, err = s.client.SendMessage(channel.ID, &discordgo.MessageSend{
		Content:    strings.Join(mentions, " "),
		Embeds:     []*discordgo.MessageEmbed{s.builder.TicketEmbed(t, member.User, number, description)},
		Components: s.builder.ControlComponents(),
	})
	if err != nil {
		// The channel exists but the notification failed; surface the
		// error, the requester still gets a channel reference from it.
		s.logger.Error("unable to post initial ticket message",
			zap.String("channel_id", channel.ID), zap.Error(err))
	}

	s.publish(ctx, events.Event{
		Type:      events.EventTicketOpened,
		GuildID:   guildID,
		ChannelID: channel.ID,
		ActorID:   member.User.ID,
		Payload: events.TicketOpenedPayload{
			TicketType: t,
			Number:     number,
			Channel:    channel.Name,
		},
	})

	return &CreatedTicket{
		Ticket: domain.Ticket{
			Type:        t,
			Number:      number,
			ChannelID:   channel.ID,
			ChannelName: channel.Name,
			RequesterID: member.User.ID,
			CreatedAt:   time.Now().UTC(),
		},
		Channel: channel,
	}, nil
}

// Authorize gates staff actions on a ticket channel.
func (s *TicketService) Authorize(guildID string, member *discordgo.Member, channelName string) (bool, error) {
	guild, err := s.client.Guild(guildID)
	if err != nil {
		return false, err
	}
	return s.policy.Authorize(guild, member, channelName), nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func configurationError(t domain.TicketType, categoryID string) error {
	details := map[string]any{"ticket_type": string(t)}
	if categoryID != "" {
		details["category_id"] = categoryID
	}
	return util.NewConfigurationError("categoria não configurada", details)
}

func memberCanView(ch *discordgo.Channel, userID string) bool {
	for _, ow := range ch.PermissionOverwrites {
		if ow.Type == discordgo.PermissionOverwriteTypeMember &&
			ow.ID == userID &&
			ow.Allow&discordgo.PermissionViewChannel != 0 {
			return true
		}
	}
	return false
}
