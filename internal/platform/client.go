package platform

import (
	"github.com/bwmarrin/discordgo"
)

// Client is the narrow surface of the Discord API that the ticket services
// depend on. Services accept this interface so the workflow logic can be
// exercised against a fake in tests; the production implementation wraps a
// gateway session.
type Client interface {
	// BotUserID is the bot's own user ID, used for self permission
	// overwrites and opener detection.
	BotUserID() string

	Guild(guildID string) (*discordgo.Guild, error)
	GuildMember(guildID, userID string) (*discordgo.Member, error)
	GuildChannels(guildID string) ([]*discordgo.Channel, error)
	Channel(channelID string) (*discordgo.Channel, error)

	CreateChannel(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error)
	EditChannel(channelID string, edit *discordgo.ChannelEdit) (*discordgo.Channel, error)
	SetChannelPermissions(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64) error

	ChannelMessages(channelID string, limit int, beforeID, afterID string) ([]*discordgo.Message, error)
	SendMessage(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error)
}

// SessionClient adapts a live discordgo session to Client.
type SessionClient struct {
	session *discordgo.Session
}

// NewSessionClient wraps the session.
func NewSessionClient(session *discordgo.Session) *SessionClient {
	return &SessionClient{session: session}
}

func (c *SessionClient) BotUserID() string {
	if c.session.State != nil && c.session.State.User != nil {
		return c.session.State.User.ID
	}
	return ""
}

func (c *SessionClient) Guild(guildID string) (*discordgo.Guild, error) {
	return c.session.Guild(guildID)
}

func (c *SessionClient) GuildMember(guildID, userID string) (*discordgo.Member, error) {
	return c.session.GuildMember(guildID, userID)
}

func (c *SessionClient) GuildChannels(guildID string) ([]*discordgo.Channel, error) {
	return c.session.GuildChannels(guildID)
}

func (c *SessionClient) Channel(channelID string) (*discordgo.Channel, error) {
	return c.session.Channel(channelID)
}

func (c *SessionClient) CreateChannel(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	return c.session.GuildChannelCreateComplex(guildID, data)
}

func (c *SessionClient) EditChannel(channelID string, edit *discordgo.ChannelEdit) (*discordgo.Channel, error) {
	return c.session.ChannelEdit(channelID, edit)
}

func (c *SessionClient) SetChannelPermissions(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64) error {
	return c.session.ChannelPermissionSet(channelID, targetID, targetType, allow, deny)
}

func (c *SessionClient) ChannelMessages(channelID string, limit int, beforeID, afterID string) ([]*discordgo.Message, error) {
	return c.session.ChannelMessages(channelID, limit, beforeID, afterID, "")
}

func (c *SessionClient) SendMessage(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	return c.session.ChannelMessageSendComplex(channelID, data)
}
