package presentation

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/domain"
)

// Builder assembles user-facing embeds and components. Pure formatting:
// nothing here talks to the platform.
type Builder struct {
	serverName string
	iconURL    string
	thumbURL   string
}

// NewBuilder creates a Builder carrying the configured branding.
func NewBuilder(serverName string, brand config.BrandConfig) *Builder {
	return &Builder{serverName: serverName, iconURL: brand.IconURL, thumbURL: brand.ThumbURL}
}

// MenuEmbed is the ticket-menu message posted by /ticket.
func (b *Builder) MenuEmbed() *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎫 **SISTEMA DE TICKETS - %s**", b.serverName),
		Description: "Selecione abaixo o tipo de atendimento desejado.",
		Color:       0x9B59B6,
		Timestamp:   nowTimestamp(),
		Footer:      b.footer(fmt.Sprintf("%s | Sistema de Tickets", b.serverName)),
	}
	b.thumbnail(embed)
	return embed
}

// MenuComponents is the row of ticket-type buttons under the menu embed.
func (b *Builder) MenuComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "📋 Suporte", Style: discordgo.PrimaryButton, CustomID: OpenCustomID(domain.TypeSupport)},
				discordgo.Button{Label: "🚨 Denúncia", Style: discordgo.DangerButton, CustomID: OpenCustomID(domain.TypeReport)},
				discordgo.Button{Label: "🎭 Roleplay", Style: discordgo.SecondaryButton, CustomID: OpenCustomID(domain.TypeRoleplay)},
				discordgo.Button{Label: "💰 Financeiro", Style: discordgo.SuccessButton, CustomID: OpenCustomID(domain.TypeFinance)},
			},
		},
	}
}

// TicketEmbed is the initial message inside a freshly provisioned ticket
// channel.
func (b *Builder) TicketEmbed(t domain.TicketType, user *discordgo.User, number int, description string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎫 %s - %s", t.Label(), b.serverName),
		Description: t.Blurb(),
		Color:       t.Color(),
		Timestamp:   nowTimestamp(),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "👤 **INFORMAÇÕES DO SOLICITANTE**",
				Value: fmt.Sprintf("• **Usuário:** %s\n• **ID:** `%s`\n• **Conta criada:** %s",
					user.Mention(), user.ID, relativeTimestamp(accountCreation(user.ID))),
				Inline: false,
			},
			{
				Name: "📋 **DETALHES DO TICKET**",
				Value: fmt.Sprintf("• **Tipo:** %s\n• **Status:** 🟢 **Aberto**\n• **Criado em:** %s",
					t.Label(), fullTimestamp(time.Now())),
				Inline: true,
			},
			{
				Name: "⚡ **INFORMAÇÕES DO ATENDIMENTO**",
				Value: fmt.Sprintf("• **Prioridade:** %s\n• **Setor:** %s\n• **Ticket ID:** `%d`",
					t.Priority(), t.Label(), number),
				Inline: true,
			},
		},
		Footer: b.footer(fmt.Sprintf("%s | Sistema de Tickets", b.serverName)),
	}

	if description != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "📝 **DESCRIÇÃO DA SOLICITAÇÃO**",
			Value:  fmt.Sprintf("```%s```", description),
			Inline: false,
		})
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "💡 **PRÓXIMOS PASSOS**",
		Value: "• Aguarde a equipe responder\n" +
			"• Mantenha educação e paciência\n" +
			"• Envie informações adicionais se solicitado\n" +
			"• Evite marcar a equipe desnecessariamente",
		Inline: false,
	})

	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("")}
	return embed
}

// ControlComponents is the lifecycle control row attached to the initial
// ticket message.
func (b *Builder) ControlComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "🔒 Fechar", Style: discordgo.DangerButton, CustomID: CustomIDClose},
				discordgo.Button{Label: "📋 Transcript", Style: discordgo.SecondaryButton, CustomID: CustomIDTranscript},
			},
		},
	}
}

// DuplicateEmbed reports an already-open ticket of the requested type.
func (b *Builder) DuplicateEmbed(t domain.TicketType, user *discordgo.User, channel *discordgo.Channel, openedAt time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎫 **TICKET JÁ ABERTO - %s**", b.serverName),
		Description: fmt.Sprintf("Olá %s, você já possui um ticket deste tipo em andamento.", user.Mention()),
		Color:       0xF39C12,
		Timestamp:   nowTimestamp(),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "📋 **TICKET ATUAL**",
				Value: fmt.Sprintf("• **Canal:** %s\n• **Tipo:** %s\n• **Status:** 🟡 **Em Andamento**\n• **Aberto há:** %s",
					channel.Mention(), t.Label(), relativeTimestamp(openedAt)),
				Inline: false,
			},
		},
		Footer: b.footer(fmt.Sprintf("%s | Sistema de Tickets", b.serverName)),
	}
	b.thumbnail(embed)
	return embed
}

// CreatedEmbed is the ephemeral confirmation sent to the requester.
func (b *Builder) CreatedEmbed(t domain.TicketType, channel *discordgo.Channel, number int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "✅ **TICKET CRIADO!**",
		Description: fmt.Sprintf("Seu ticket de **%s** foi criado e a equipe foi notificada.", t.Label()),
		Color:       0x2ECC71,
		Timestamp:   nowTimestamp(),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "📋 **DETALHES**",
				Value: fmt.Sprintf("• **Canal:** %s\n• **Tipo:** %s\n• **Número:** `%d`",
					channel.Mention(), t.Label(), number),
				Inline: false,
			},
		},
		Footer: b.footer(b.serverName),
	}
	b.thumbnail(embed)
	return embed
}

// AccessDeniedEmbed rejects an unauthorized close/manage attempt.
func (b *Builder) AccessDeniedEmbed() *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "❌ **ACESSO NEGADO**",
		Description: "Você não possui permissão para fechar este ticket.",
		Color:       0xE74C3C,
		Timestamp:   nowTimestamp(),
		Footer:      b.footer(b.serverName),
	}
	b.thumbnail(embed)
	return embed
}

// ConfirmCloseEmbed is the close-confirmation prompt body.
func (b *Builder) ConfirmCloseEmbed() *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "🔒 **CONFIRMAR FECHAMENTO**",
		Description: "Você está prestes a fechar e arquivar este ticket. Esta ação é **irreversível**.",
		Color:       0xE74C3C,
		Timestamp:   nowTimestamp(),
		Footer:      b.footer(b.serverName),
	}
	b.thumbnail(embed)
	return embed
}

// ConfirmCloseComponents is the confirm/cancel row for one prompt instance.
func (b *Builder) ConfirmCloseComponents(nonce string, disabled bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "✅ Confirmar Fechamento", Style: discordgo.DangerButton, CustomID: ConfirmCustomID(nonce), Disabled: disabled},
				discordgo.Button{Label: "❌ Cancelar", Style: discordgo.SecondaryButton, CustomID: CancelCustomID(nonce), Disabled: disabled},
			},
		},
	}
}

// ClosedEmbed is the closure notice posted to the channel before archival.
func (b *Builder) ClosedEmbed(opener *discordgo.User, closer *discordgo.User, duration string) *discordgo.MessageEmbed {
	openerValue := "Desconhecido"
	if opener != nil {
		openerValue = opener.Mention()
	}
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🔒 **TICKET FECHADO - %s**", b.serverName),
		Description: "Este ticket foi encerrado e arquivado.",
		Color:       0xE74C3C,
		Timestamp:   nowTimestamp(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "👤 Aberto por", Value: openerValue, Inline: true},
			{Name: "🛑 Fechado por", Value: closer.Mention(), Inline: true},
			{Name: "⏱️ Duração", Value: duration, Inline: true},
		},
		Footer: b.footer(b.serverName),
	}
	b.thumbnail(embed)
	return embed
}

// CancelledEmbed replaces the prompt when closing is cancelled or expires.
func (b *Builder) CancelledEmbed() *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "❌ **AÇÃO CANCELADA**",
		Description: "O ticket permanecerá aberto.",
		Color:       0x95A5A6,
		Timestamp:   nowTimestamp(),
		Footer:      b.footer(b.serverName),
	}
	b.thumbnail(embed)
	return embed
}

// ConfigEmbed reports current category configuration and counters.
func (b *Builder) ConfigEmbed(categories []string, counters []string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("⚙️ **CONFIG - %s**", b.serverName),
		Description: "Configurações atuais do sistema de tickets",
		Color:       0xF39C12,
		Timestamp:   nowTimestamp(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📁 **CATEGORIAS**", Value: joinLines(categories), Inline: false},
			{Name: "📊 **CONTADORES**", Value: joinLines(counters), Inline: false},
		},
		Footer: b.footer(b.serverName),
	}
	b.thumbnail(embed)
	return embed
}

// TranscriptEmbed announces a generated transcript.
func (b *Builder) TranscriptEmbed(channelName string, messageCount int, requester *discordgo.User) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "📋 **TRANSCRIPT GERADO**",
		Description: fmt.Sprintf("Histórico de `%s` com **%d** mensagens, solicitado por %s.",
			channelName, messageCount, requester.Mention()),
		Color:     0x3498DB,
		Timestamp: nowTimestamp(),
		Footer:    b.footer(b.serverName),
	}
	b.thumbnail(embed)
	return embed
}

func (b *Builder) footer(text string) *discordgo.MessageEmbedFooter {
	if b.iconURL != "" {
		return &discordgo.MessageEmbedFooter{Text: text, IconURL: b.iconURL}
	}
	return &discordgo.MessageEmbedFooter{Text: text}
}

func (b *Builder) thumbnail(embed *discordgo.MessageEmbed) {
	if b.thumbURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: b.thumbURL}
	}
}

func nowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// fullTimestamp renders Discord's long date-time markup.
func fullTimestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:F>", t.Unix())
}

// relativeTimestamp renders Discord's relative-time markup.
func relativeTimestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

// accountCreation derives a user's account creation time from the
// snowflake ID.
func accountCreation(userID string) time.Time {
	ts, err := discordgo.SnowflakeTimestamp(userID)
	if err != nil {
		return time.Now()
	}
	return ts
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return "Nenhum"
	}
	out := lines[0]
	for _, l := range lines[1:] {
		out += "\n" + l
	}
	return out
}
