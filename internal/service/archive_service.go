package service

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/policy"
	"github.com/spec-kit/ticket-bot/pkg/util"
)

// ArchiveService relocates closed ticket channels to the archive category
// and locks down access. The whole sequence is best-effort: each step's
// failure is logged and the remaining steps still run; nothing is rolled
// back.
type ArchiveService struct {
	client            platform.Client
	policy            *policy.AccessPolicy
	archiveCategoryID string
	dispatcher        events.Dispatcher
	logger            *zap.Logger
}

// NewArchiveService constructs the service.
func NewArchiveService(client platform.Client, accessPolicy *policy.AccessPolicy, archiveCategoryID string, dispatcher events.Dispatcher, logger *zap.Logger) *ArchiveService {
	return &ArchiveService{
		client:            client,
		policy:            accessPolicy,
		archiveCategoryID: archiveCategoryID,
		dispatcher:        dispatcher,
		logger:            logger,
	}
}

// FindOpener scans the channel's earliest messages for the first
// bot-authored message that mentions a user; the mentioned user is taken
// as the ticket opener. Returns nil when no such message exists. This is
// a heuristic tied to the initial ticket message format.
func (a *ArchiveService) FindOpener(channelID string) *discordgo.User {
	msgs, err := a.client.ChannelMessages(channelID, 10, "", "0")
	if err != nil {
		a.logger.Warn("unable to fetch channel history for opener detection",
			zap.String("channel_id", channelID), zap.Error(err))
		return nil
	}

	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})

	botID := a.client.BotUserID()
	for _, m := range msgs {
		if m.Author == nil || len(m.Mentions) == 0 {
			continue
		}
		if m.Author.Bot || m.Author.ID == botID {
			return m.Mentions[0]
		}
	}
	return nil
}

// TicketAge computes the elapsed time since the channel was created,
// derived from its snowflake ID.
func (a *ArchiveService) TicketAge(channelID string) time.Duration {
	createdAt, err := discordgo.SnowflakeTimestamp(channelID)
	if err != nil {
		return 0
	}
	return time.Since(createdAt)
}

// Archive applies the archival policy to a closed ticket channel. With no
// archive category configured the channel is renamed and locked in place;
// otherwise it is moved into the archive category with overwrites synced
// to the category's defaults, renamed, stripped of non-staff/non-opener
// members, and the everyone role loses write access.
func (a *ArchiveService) Archive(ctx context.Context, guildID, channelID, openerID string) error {
	ch, err := a.client.Channel(channelID)
	if err != nil {
		return util.NewNotFound("ticket channel", map[string]any{"channel_id": channelID})
	}

	if a.archiveCategoryID == "" {
		a.renameArchived(ch)
		a.denyEveryone(ch.ID, guildID, discordgo.PermissionViewChannel|discordgo.PermissionSendMessages)
		a.published(ctx, guildID, ch, openerID)
		return nil
	}

	// Member overwrites are collected before the move because syncing to
	// the category's defaults replaces them.
	memberIDs := memberOverwriteIDs(ch)

	if category, catErr := a.client.Channel(a.archiveCategoryID); catErr != nil {
		a.logger.Warn("archive category not resolvable, leaving channel in place",
			zap.String("category_id", a.archiveCategoryID), zap.Error(catErr))
	} else {
		if _, editErr := a.client.EditChannel(ch.ID, &discordgo.ChannelEdit{
			ParentID:             category.ID,
			PermissionOverwrites: category.PermissionOverwrites,
		}); editErr != nil {
			a.logger.Error("unable to move channel to archive category",
				zap.String("channel_id", ch.ID), zap.Error(editErr))
		}
	}

	a.renameArchived(ch)
	a.stripMembers(guildID, ch.ID, memberIDs, openerID)
	a.denyEveryone(ch.ID, guildID, discordgo.PermissionSendMessages)

	a.published(ctx, guildID, ch, openerID)
	return nil
}

func (a *ArchiveService) renameArchived(ch *discordgo.Channel) {
	if domain.IsArchivedName(ch.Name) {
		return
	}
	newName := domain.ArchivedName(ch.Name)
	if _, err := a.client.EditChannel(ch.ID, &discordgo.ChannelEdit{Name: newName}); err != nil {
		a.logger.Error("unable to rename archived channel",
			zap.String("channel_id", ch.ID), zap.Error(err))
		return
	}
	ch.Name = newName
}

// stripMembers removes read/write from every member-overwrite principal
// that is neither the bot, staff, nor the original opener.
func (a *ArchiveService) stripMembers(guildID, channelID string, memberIDs []string, openerID string) {
	guild, err := a.client.Guild(guildID)
	if err != nil {
		a.logger.Error("unable to load guild for member strip",
			zap.String("guild_id", guildID), zap.Error(err))
		return
	}

	botID := a.client.BotUserID()
	for _, id := range memberIDs {
		if id == botID || id == openerID {
			continue
		}
		member, memberErr := a.client.GuildMember(guildID, id)
		if memberErr != nil {
			// Member may have left the guild; nothing to strip.
			continue
		}
		if a.policy.IsStaff(guild, member) {
			continue
		}
		if err := a.client.SetChannelPermissions(channelID, id,
			discordgo.PermissionOverwriteTypeMember,
			0, discordgo.PermissionViewChannel|discordgo.PermissionSendMessages); err != nil {
			a.logger.Error("unable to strip member from archived channel",
				zap.String("channel_id", channelID),
				zap.String("member_id", id),
				zap.Error(err))
		}
	}
}

func (a *ArchiveService) denyEveryone(channelID, guildID string, deny int64) {
	if err := a.client.SetChannelPermissions(channelID, guildID,
		discordgo.PermissionOverwriteTypeRole, 0, deny); err != nil {
		a.logger.Error("unable to lock everyone role on archived channel",
			zap.String("channel_id", channelID), zap.Error(err))
	}
}

func (a *ArchiveService) published(ctx context.Context, guildID string, ch *discordgo.Channel, openerID string) {
	if a.dispatcher == nil {
		return
	}
	_ = a.dispatcher.Publish(ctx, events.Event{
		Type:      events.EventTicketArchived,
		GuildID:   guildID,
		ChannelID: ch.ID,
		Payload: events.TicketArchivedPayload{
			ChannelName: ch.Name,
			OpenerID:    openerID,
			Duration:    a.TicketAge(ch.ID).Round(time.Minute).String(),
		},
	})
}

func memberOverwriteIDs(ch *discordgo.Channel) []string {
	var out []string
	for _, ow := range ch.PermissionOverwrites {
		if ow.Type == discordgo.PermissionOverwriteTypeMember {
			out = append(out, ow.ID)
		}
	}
	return out
}
