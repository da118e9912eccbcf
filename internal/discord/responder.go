package discord

import "github.com/bwmarrin/discordgo"

// responder abstracts interaction acknowledgement so the handler flows
// can be exercised without a live gateway session.
type responder interface {
	Respond(i *discordgo.Interaction, resp *discordgo.InteractionResponse) error
	Followup(i *discordgo.Interaction, params *discordgo.WebhookParams) (*discordgo.Message, error)
	EditResponse(i *discordgo.Interaction, edit *discordgo.WebhookEdit) (*discordgo.Message, error)
}

type sessionResponder struct {
	session *discordgo.Session
}

func (r sessionResponder) Respond(i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return r.session.InteractionRespond(i, resp)
}

func (r sessionResponder) Followup(i *discordgo.Interaction, params *discordgo.WebhookParams) (*discordgo.Message, error) {
	return r.session.FollowupMessageCreate(i, true, params)
}

func (r sessionResponder) EditResponse(i *discordgo.Interaction, edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
	return r.session.InteractionResponseEdit(i, edit)
}
