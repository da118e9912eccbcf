package service

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/counter"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/policy"
	"github.com/spec-kit/ticket-bot/pkg/util"
)

// TicketAccess is the permission set granted to principals who may
// participate in a ticket channel.
const TicketAccess = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionReadMessageHistory

// Provisioner creates private ticket channels under the configured
// category with per-entity permission overwrites.
type Provisioner struct {
	client   platform.Client
	policy   *policy.AccessPolicy
	counters *counter.Store
	tickets  config.TicketsConfig
	logger   *zap.Logger
}

// NewProvisioner constructs the provisioner.
func NewProvisioner(client platform.Client, accessPolicy *policy.AccessPolicy, counters *counter.Store, tickets config.TicketsConfig, logger *zap.Logger) *Provisioner {
	return &Provisioner{
		client:   client,
		policy:   accessPolicy,
		counters: counters,
		tickets:  tickets,
		logger:   logger,
	}
}

// CreateChannel provisions the channel for one ticket and returns it with
// the assigned sequence number. The counter increment is not rolled back
// if the platform call fails afterwards; the number is consumed either
// way.
func (p *Provisioner) CreateChannel(guild *discordgo.Guild, t domain.TicketType, member *discordgo.Member) (*discordgo.Channel, int, error) {
	categoryID := p.tickets.CategoryID(t)
	if categoryID == "" {
		return nil, 0, util.NewConfigurationError("categoria não configurada",
			map[string]any{"ticket_type": string(t)})
	}

	category, err := p.client.Channel(categoryID)
	if err != nil || category.Type != discordgo.ChannelTypeGuildCategory {
		return nil, 0, util.NewConfigurationError("categoria não encontrada",
			map[string]any{"ticket_type": string(t), "category_id": categoryID})
	}

	number := p.counters.Increment(t)
	name := t.ChannelName(number)

	p.logger.Info("creating ticket channel",
		zap.String("ticket_type", string(t)),
		zap.Int("number", number),
		zap.String("requester_id", member.User.ID))

	overwrites := []*discordgo.PermissionOverwrite{
		{
			// The everyone role shares the guild's ID.
			ID:   guild.ID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    member.User.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: TicketAccess,
		},
	}
	for _, role := range p.policy.Resolve(guild, t) {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    role.ID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: TicketAccess,
		})
	}
	if botID := p.client.BotUserID(); botID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    botID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: TicketAccess,
		})
	}

	channel, err := p.client.CreateChannel(guild.ID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                "Ticket de " + t.Label() + " - " + DisplayName(member),
		ParentID:             category.ID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return nil, 0, util.NewInternalError(err)
	}
	return channel, number, nil
}

// DisplayName picks the server nickname over the global display name over
// the username.
func DisplayName(member *discordgo.Member) string {
	if member == nil {
		return "Unknown"
	}
	if nick := strings.TrimSpace(member.Nick); nick != "" {
		return nick
	}
	if member.User != nil {
		if member.User.GlobalName != "" {
			return member.User.GlobalName
		}
		return member.User.Username
	}
	return "Unknown"
}
