package discord

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/presentation"
	"github.com/spec-kit/ticket-bot/pkg/util"
)

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Member == nil || i.Member.User == nil {
		// DM interactions are not part of the ticket flow.
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		b.recordInteraction("command:" + name)
		switch name {
		case "ticket":
			b.handleTicketCommand(i)
		case "config":
			b.handleConfigCommand(i)
		case "add":
			b.handleAddCommand(i)
		case "remove":
			b.handleRemoveCommand(i)
		case "test":
			b.handleTestCommand(s, i)
		}

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		switch {
		case strings.HasPrefix(customID, presentation.CustomIDOpenPrefix):
			b.recordInteraction("button:open")
			b.handleOpenButton(i, customID)
		case customID == presentation.CustomIDClose:
			b.recordInteraction("button:close")
			b.handleCloseButton(i)
		case customID == presentation.CustomIDTranscript:
			b.recordInteraction("button:transcript")
			b.handleTranscriptButton(i)
		default:
			if nonce, confirm, ok := presentation.NonceFromCustomID(customID); ok {
				b.recordInteraction("button:close_decision")
				b.handleCloseDecision(i, nonce, confirm)
			}
		}

	case discordgo.InteractionModalSubmit:
		b.recordInteraction("modal:submit")
		b.handleModalSubmit(i)
	}
}

// handleOpenButton runs duplicate detection and, when the user is clear,
// opens the description modal.
func (b *Bot) handleOpenButton(i *discordgo.InteractionCreate, customID string) {
	t, ok := presentation.TypeFromCustomID(customID)
	if !ok {
		return
	}

	existing, err := b.deps.Tickets.FindExisting(context.Background(), i.GuildID, i.Member.User.ID, t)
	if err != nil {
		b.recordError("open", err)
		b.respondEphemeralText(i, "⚠️ "+util.ToDomainError(err).Message)
		return
	}
	if existing != nil {
		b.respondEphemeralEmbed(i,
			b.deps.Builder.DuplicateEmbed(t, i.Member.User, existing.Channel, existing.OpenedAt))
		return
	}

	err = b.respond.Respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: presentation.ModalCustomID(t),
			Title:    "Abrir ticket de " + t.Label(),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "description",
						Label:       "Descreva seu problema",
						Style:       discordgo.TextInputParagraph,
						Placeholder: "Explique com detalhes o motivo do ticket",
						Required:    true,
						MaxLength:   1000,
					},
				}},
			},
		},
	})
	if err != nil {
		b.logger.Error("unable to open ticket modal", zap.Error(err))
	}
}

// handleModalSubmit provisions the ticket from a submitted description.
func (b *Bot) handleModalSubmit(i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	t, ok := presentation.TypeFromCustomID(data.CustomID)
	if !ok {
		return
	}

	description := modalInputValue(data)

	// Channel creation can exceed the 3 second interaction deadline.
	err := b.respond.Respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		b.logger.Error("unable to defer modal response", zap.Error(err))
		return
	}

	created, err := b.deps.Tickets.Create(context.Background(), i.GuildID, i.Member, t, description)
	if err != nil {
		b.recordError("create", err)
		b.followupText(i, "⚠️ "+util.ToDomainError(err).Message)
		return
	}

	b.followupEmbed(i, b.deps.Builder.CreatedEmbed(t, created.Channel, created.Ticket.Number))
}

// handleCloseButton opens the confirmation window for authorized staff.
func (b *Bot) handleCloseButton(i *discordgo.InteractionCreate) {
	ch, err := b.deps.Client.Channel(i.ChannelID)
	if err != nil {
		b.respondEphemeralText(i, "Canal não encontrado.")
		return
	}

	authorized, err := b.deps.Tickets.Authorize(i.GuildID, i.Member, ch.Name)
	if err != nil || !authorized {
		b.respondEphemeralEmbed(i, b.deps.Builder.AccessDeniedEmbed())
		return
	}

	nonce := uuid.NewString()
	err = b.respond.Respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{b.deps.Builder.ConfirmCloseEmbed()},
			Components: b.deps.Builder.ConfirmCloseComponents(nonce, false),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Error("unable to post close confirmation", zap.Error(err))
		return
	}

	b.prompts.put(nonce, &closePrompt{
		interaction: i.Interaction,
		channelID:   i.ChannelID,
		requesterID: i.Member.User.ID,
	}, b.expireClosePrompt(nonce))

	b.publish(events.Event{
		Type:      events.EventCloseRequested,
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		ActorID:   i.Member.User.ID,
		Payload: events.CloseRequestedPayload{
			ChannelName: ch.Name,
			PromptID:    nonce,
		},
	})
}

// expireClosePrompt disables the confirmation buttons once the window
// passes without a decision.
func (b *Bot) expireClosePrompt(nonce string) func(*closePrompt) {
	return func(p *closePrompt) {
		disabled := b.deps.Builder.ConfirmCloseComponents(nonce, true)
		_, err := b.respond.EditResponse(p.interaction, &discordgo.WebhookEdit{
			Components: &disabled,
		})
		if err != nil {
			// The ephemeral prompt may already be gone.
			b.logger.Debug("unable to disable expired close prompt", zap.Error(err))
		}
	}
}

// handleCloseDecision resolves a confirm or cancel press on the close
// prompt.
func (b *Bot) handleCloseDecision(i *discordgo.InteractionCreate, nonce string, confirm bool) {
	prompt := b.prompts.take(nonce)
	if prompt == nil {
		// Window expired between render and press.
		b.updateWithEmbed(i, b.deps.Builder.CancelledEmbed(), b.deps.Builder.ConfirmCloseComponents(nonce, true))
		return
	}

	if !confirm {
		b.updateWithEmbed(i, b.deps.Builder.CancelledEmbed(), b.deps.Builder.ConfirmCloseComponents(nonce, true))
		b.publish(events.Event{
			Type:      events.EventCloseCancelled,
			GuildID:   i.GuildID,
			ChannelID: prompt.channelID,
			ActorID:   i.Member.User.ID,
		})
		return
	}

	b.updateWithEmbed(i, b.deps.Builder.ConfirmCloseEmbed(), b.deps.Builder.ConfirmCloseComponents(nonce, true))

	opener := b.deps.Archive.FindOpener(prompt.channelID)
	duration := presentation.FormatDuration(b.deps.Archive.TicketAge(prompt.channelID))

	if _, err := b.deps.Client.SendMessage(prompt.channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			b.deps.Builder.ClosedEmbed(opener, i.Member.User, duration),
		},
	}); err != nil {
		b.logger.Error("unable to post closed notice",
			zap.String("channel_id", prompt.channelID), zap.Error(err))
	}

	openerID := ""
	if opener != nil {
		openerID = opener.ID
	}
	if err := b.deps.Archive.Archive(context.Background(), i.GuildID, prompt.channelID, openerID); err != nil {
		b.recordError("archive", err)
		b.logger.Error("unable to archive ticket channel",
			zap.String("channel_id", prompt.channelID), zap.Error(err))
	}
}

// handleTranscriptButton generates and attaches the channel transcript.
func (b *Bot) handleTranscriptButton(i *discordgo.InteractionCreate) {
	ch, err := b.deps.Client.Channel(i.ChannelID)
	if err != nil {
		b.respondEphemeralText(i, "Canal não encontrado.")
		return
	}

	authorized, err := b.deps.Tickets.Authorize(i.GuildID, i.Member, ch.Name)
	if err != nil || !authorized {
		b.respondEphemeralEmbed(i, b.deps.Builder.AccessDeniedEmbed())
		return
	}

	err = b.respond.Respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		b.logger.Error("unable to defer transcript response", zap.Error(err))
		return
	}

	doc, path, err := b.deps.Transcripts.Generate(context.Background(), i.GuildID, i.ChannelID, i.Member.User.ID)
	if err != nil {
		b.recordError("transcript", err)
		b.followupText(i, "⚠️ "+util.ToDomainError(err).Message)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		b.followupText(i, "⚠️ Transcript gerado mas o arquivo não pôde ser anexado.")
		return
	}
	defer file.Close()

	_, err = b.respond.Followup(i.Interaction, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{
			b.deps.Builder.TranscriptEmbed(doc.ChannelName, doc.MessageCount, i.Member.User),
		},
		Files: []*discordgo.File{{
			Name:        filepath.Base(path),
			ContentType: "application/json",
			Reader:      file,
		}},
	})
	if err != nil {
		b.logger.Error("unable to attach transcript", zap.Error(err))
	}
}

func modalInputValue(data discordgo.ModalSubmitInteractionData) string {
	for _, row := range data.Components {
		ar, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range ar.Components {
			if input, ok := comp.(*discordgo.TextInput); ok {
				return strings.TrimSpace(input.Value)
			}
		}
	}
	return ""
}

func (b *Bot) respondEphemeralText(i *discordgo.InteractionCreate, content string) {
	err := b.respond.Respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Error("unable to respond to interaction", zap.Error(err))
	}
}

func (b *Bot) respondEphemeralEmbed(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := b.respond.Respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Error("unable to respond to interaction", zap.Error(err))
	}
}

func (b *Bot) updateWithEmbed(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	err := b.respond.Respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
	if err != nil {
		b.logger.Error("unable to update interaction message", zap.Error(err))
	}
}

func (b *Bot) followupText(i *discordgo.InteractionCreate, content string) {
	if _, err := b.respond.Followup(i.Interaction, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}); err != nil {
		b.logger.Error("unable to send followup", zap.Error(err))
	}
}

func (b *Bot) followupEmbed(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	if _, err := b.respond.Followup(i.Interaction, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	}); err != nil {
		b.logger.Error("unable to send followup", zap.Error(err))
	}
}

func (b *Bot) recordInteraction(kind string) {
	if b.deps.Metrics == nil {
		return
	}
	b.deps.Metrics.RecordInteraction(kind)
}

func (b *Bot) recordError(kind string, err error) {
	if b.deps.Metrics == nil {
		return
	}
	b.deps.Metrics.RecordError(kind, util.ToDomainError(err).Code)
}
