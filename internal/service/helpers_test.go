package service_test

import (
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/domain"
)

// fakeClient implements platform.Client against in-memory guild state.
type fakeClient struct {
	botID    string
	guilds   map[string]*discordgo.Guild
	channels map[string]*discordgo.Channel
	members  map[string]*discordgo.Member
	messages map[string][]*discordgo.Message
	sent     map[string][]*discordgo.MessageSend

	permEdits []permEdit
	nextID    int
}

type permEdit struct {
	channelID  string
	targetID   string
	targetType discordgo.PermissionOverwriteType
	allow      int64
	deny       int64
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		botID:    "990",
		guilds:   make(map[string]*discordgo.Guild),
		channels: make(map[string]*discordgo.Channel),
		members:  make(map[string]*discordgo.Member),
		messages: make(map[string][]*discordgo.Message),
		sent:     make(map[string][]*discordgo.MessageSend),
		nextID:   5000,
	}
}

func (f *fakeClient) BotUserID() string { return f.botID }

func (f *fakeClient) Guild(guildID string) (*discordgo.Guild, error) {
	if g, ok := f.guilds[guildID]; ok {
		return g, nil
	}
	return nil, discordgo.ErrStateNotFound
}

func (f *fakeClient) GuildMember(guildID, userID string) (*discordgo.Member, error) {
	if m, ok := f.members[userID]; ok {
		return m, nil
	}
	return nil, discordgo.ErrStateNotFound
}

func (f *fakeClient) GuildChannels(guildID string) ([]*discordgo.Channel, error) {
	var out []*discordgo.Channel
	for _, ch := range f.channels {
		if ch.GuildID == guildID {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (f *fakeClient) Channel(channelID string) (*discordgo.Channel, error) {
	if ch, ok := f.channels[channelID]; ok {
		return ch, nil
	}
	return nil, discordgo.ErrStateNotFound
}

func (f *fakeClient) CreateChannel(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	f.nextID++
	ch := &discordgo.Channel{
		ID:                   strconv.Itoa(f.nextID),
		GuildID:              guildID,
		Name:                 data.Name,
		Topic:                data.Topic,
		Type:                 data.Type,
		ParentID:             data.ParentID,
		PermissionOverwrites: data.PermissionOverwrites,
	}
	f.channels[ch.ID] = ch
	return ch, nil
}

func (f *fakeClient) EditChannel(channelID string, edit *discordgo.ChannelEdit) (*discordgo.Channel, error) {
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, discordgo.ErrStateNotFound
	}
	if edit.Name != "" {
		ch.Name = edit.Name
	}
	if edit.ParentID != "" {
		ch.ParentID = edit.ParentID
	}
	if edit.PermissionOverwrites != nil {
		ch.PermissionOverwrites = edit.PermissionOverwrites
	}
	return ch, nil
}

func (f *fakeClient) SetChannelPermissions(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64) error {
	f.permEdits = append(f.permEdits, permEdit{
		channelID:  channelID,
		targetID:   targetID,
		targetType: targetType,
		allow:      allow,
		deny:       deny,
	})
	ch, ok := f.channels[channelID]
	if !ok {
		return discordgo.ErrStateNotFound
	}
	for _, ow := range ch.PermissionOverwrites {
		if ow.ID == targetID && ow.Type == targetType {
			ow.Allow = allow
			ow.Deny = deny
			return nil
		}
	}
	ch.PermissionOverwrites = append(ch.PermissionOverwrites, &discordgo.PermissionOverwrite{
		ID: targetID, Type: targetType, Allow: allow, Deny: deny,
	})
	return nil
}

func (f *fakeClient) ChannelMessages(channelID string, limit int, beforeID, afterID string) ([]*discordgo.Message, error) {
	msgs := f.messages[channelID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (f *fakeClient) SendMessage(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	f.sent[channelID] = append(f.sent[channelID], data)
	f.nextID++
	return &discordgo.Message{ID: strconv.Itoa(f.nextID), ChannelID: channelID}, nil
}

func (f *fakeClient) overwriteFor(channelID, targetID string, targetType discordgo.PermissionOverwriteType) *discordgo.PermissionOverwrite {
	ch, ok := f.channels[channelID]
	if !ok {
		return nil
	}
	for _, ow := range ch.PermissionOverwrites {
		if ow.ID == targetID && ow.Type == targetType {
			return ow
		}
	}
	return nil
}

func configBrand() config.BrandConfig {
	return config.BrandConfig{IconURL: "https://img/icon.png", ThumbURL: "https://img/thumb.png"}
}

func ticketsConfig() config.TicketsConfig {
	return config.TicketsConfig{
		Types: map[domain.TicketType]config.TypeSettings{
			domain.TypeSupport:  {CategoryID: "100", RoleNames: []string{"Support", "Moderator", "Admin"}},
			domain.TypeReport:   {CategoryID: "200", RoleNames: []string{"Moderator", "Admin"}},
			domain.TypeFinance:  {CategoryID: "300", RoleNames: []string{"Admin"}},
			domain.TypeRoleplay: {CategoryID: "400", RoleNames: []string{"Roleplay Team", "Admin"}},
		},
	}
}

func seedGuild(f *fakeClient) *discordgo.Guild {
	guild := &discordgo.Guild{
		ID:      "900",
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "r-support", Name: "Support"},
			{ID: "r-admin", Name: "Admin"},
		},
	}
	f.guilds[guild.ID] = guild
	f.channels["100"] = &discordgo.Channel{ID: "100", GuildID: "900", Name: "Tickets Suporte", Type: discordgo.ChannelTypeGuildCategory}
	f.channels["300"] = &discordgo.Channel{ID: "300", GuildID: "900", Name: "Tickets Financeiro", Type: discordgo.ChannelTypeGuildCategory}
	return guild
}
