package discord

import (
	"context"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/policy"
	"github.com/spec-kit/ticket-bot/internal/service"
)

var adminOnly = int64(discordgo.PermissionAdministrator)

// commandDefinitions returns the global application commands registered
// on ready.
func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:                     "ticket",
			Description:              "Publica o menu de abertura de tickets neste canal",
			DefaultMemberPermissions: &adminOnly,
		},
		{
			Name:                     "config",
			Description:              "Mostra a configuração do sistema de tickets",
			DefaultMemberPermissions: &adminOnly,
		},
		{
			Name:        "add",
			Description: "Adiciona um usuário ao ticket atual",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "usuario",
					Description: "Usuário a adicionar",
					Required:    true,
				},
			},
		},
		{
			Name:        "remove",
			Description: "Remove um usuário do ticket atual",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "usuario",
					Description: "Usuário a remover",
					Required:    true,
				},
			},
		},
		{
			Name:        "test",
			Description: "Verifica se o bot está respondendo",
		},
	}
}

// handleTicketCommand posts the public ticket menu in the invoking
// channel.
func (b *Bot) handleTicketCommand(i *discordgo.InteractionCreate) {
	if !b.requireAdministrator(i) {
		return
	}

	_, err := b.deps.Client.SendMessage(i.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{b.deps.Builder.MenuEmbed()},
		Components: b.deps.Builder.MenuComponents(),
	})
	if err != nil {
		b.logger.Error("unable to post ticket menu",
			zap.String("channel_id", i.ChannelID), zap.Error(err))
		b.respondEphemeralText(i, "Não foi possível publicar o menu de tickets.")
		return
	}
	b.respondEphemeralText(i, "Menu de tickets publicado. ✅")
}

// handleConfigCommand reports category wiring and current counters.
func (b *Bot) handleConfigCommand(i *discordgo.InteractionCreate) {
	if !b.requireAdministrator(i) {
		return
	}

	types := domain.AllTypes()
	categories := make([]string, 0, len(types)+1)
	for _, t := range types {
		categories = append(categories, b.categoryLine(t.Label(), b.deps.Config.Tickets.CategoryID(t)))
	}
	categories = append(categories, b.categoryLine("Arquivo", b.deps.Config.Tickets.ArchiveCategoryID))

	snapshot := b.deps.Counters.Snapshot()
	counters := make([]string, 0, len(snapshot))
	for t, n := range snapshot {
		counters = append(counters, fmt.Sprintf("%s: %d", t.Label(), n))
	}
	sort.Strings(counters)

	b.respondEphemeralEmbed(i, b.deps.Builder.ConfigEmbed(categories, counters))
}

// categoryLine reports one category's status: unset, set but no longer
// resolvable in the guild, or operational.
func (b *Bot) categoryLine(label, categoryID string) string {
	if categoryID == "" {
		return fmt.Sprintf("❌ %s: não configurada", label)
	}
	ch, err := b.deps.Client.Channel(categoryID)
	if err != nil || ch.Type != discordgo.ChannelTypeGuildCategory {
		return fmt.Sprintf("❌ %s: não encontrada (`%s`)", label, categoryID)
	}
	return fmt.Sprintf("✅ %s: Operacional", label)
}

// handleAddCommand grants a user access to the current ticket channel.
func (b *Bot) handleAddCommand(i *discordgo.InteractionCreate) {
	b.handleMembershipCommand(i, true)
}

// handleRemoveCommand revokes a user's access to the current ticket
// channel.
func (b *Bot) handleRemoveCommand(i *discordgo.InteractionCreate) {
	b.handleMembershipCommand(i, false)
}

func (b *Bot) handleMembershipCommand(i *discordgo.InteractionCreate, grant bool) {
	ch, err := b.deps.Client.Channel(i.ChannelID)
	if err != nil {
		b.respondEphemeralText(i, "Canal não encontrado.")
		return
	}
	if _, ok := domain.TypeFromChannelName(ch.Name); !ok {
		b.respondEphemeralText(i, "Este comando só funciona dentro de um canal de ticket.")
		return
	}

	authorized, err := b.deps.Tickets.Authorize(i.GuildID, i.Member, ch.Name)
	if err != nil || !authorized {
		b.respondEphemeralEmbed(i, b.deps.Builder.AccessDeniedEmbed())
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		b.respondEphemeralText(i, "Informe o usuário.")
		return
	}
	user := options[0].UserValue(nil)

	var allow, deny int64
	eventType := events.EventMemberAdded
	if grant {
		allow = service.TicketAccess
	} else {
		deny = service.TicketAccess
		eventType = events.EventMemberRemoved
	}

	if err := b.deps.Client.SetChannelPermissions(ch.ID, user.ID,
		discordgo.PermissionOverwriteTypeMember, allow, deny); err != nil {
		b.logger.Error("unable to update ticket membership",
			zap.String("channel_id", ch.ID),
			zap.String("member_id", user.ID),
			zap.Bool("grant", grant),
			zap.Error(err))
		b.respondEphemeralText(i, "Não foi possível atualizar as permissões do usuário.")
		return
	}

	b.publish(events.Event{
		Type:      eventType,
		GuildID:   i.GuildID,
		ChannelID: ch.ID,
		ActorID:   i.Member.User.ID,
		Payload: events.MemberChangedPayload{
			MemberID:    user.ID,
			ChannelName: ch.Name,
		},
	})

	if grant {
		b.respondEphemeralText(i, fmt.Sprintf("<@%s> adicionado ao ticket. ✅", user.ID))
		return
	}
	b.respondEphemeralText(i, fmt.Sprintf("<@%s> removido do ticket. ✅", user.ID))
}

// handleTestCommand answers with gateway health.
func (b *Bot) handleTestCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	latency := s.HeartbeatLatency()
	b.respondEphemeralText(i,
		fmt.Sprintf("✅ Bot funcionando! Latência do gateway: %dms", latency.Milliseconds()))
}

// requireAdministrator replies with an access denial when the invoker is
// not a guild administrator. Command-level permissions already gate
// visibility; this re-checks on execution.
func (b *Bot) requireAdministrator(i *discordgo.InteractionCreate) bool {
	guild, err := b.deps.Client.Guild(i.GuildID)
	if err != nil || !policy.IsAdministrator(guild, i.Member) {
		b.respondEphemeralEmbed(i, b.deps.Builder.AccessDeniedEmbed())
		return false
	}
	return true
}

func (b *Bot) publish(event events.Event) {
	if b.deps.Dispatcher == nil {
		return
	}
	_ = b.deps.Dispatcher.Publish(context.Background(), event)
}
