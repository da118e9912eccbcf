package policy

import (
	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/domain"
)

// AccessPolicy maps ticket types to the role names permitted to view and
// manage tickets of that type. Role names are resolved against the live
// guild role list on every use, never cached, since roles can be renamed
// or recreated externally at any time.
type AccessPolicy struct {
	tickets config.TicketsConfig
}

// New builds the policy from configuration.
func New(tickets config.TicketsConfig) *AccessPolicy {
	return &AccessPolicy{tickets: tickets}
}

// RoleNames returns the configured role names for a ticket type.
func (p *AccessPolicy) RoleNames(t domain.TicketType) []string {
	return p.tickets.RoleNames(t)
}

// Resolve looks up the configured role names for a type in the guild's
// role list. Names without a matching role are silently skipped.
func (p *AccessPolicy) Resolve(guild *discordgo.Guild, t domain.TicketType) []*discordgo.Role {
	return rolesByNames(guild, p.tickets.RoleNames(t))
}

// Authorize reports whether a member may manage the ticket living in the
// named channel: administrators always may; otherwise the channel-name
// prefix must map to a known ticket type and the member must hold at least
// one of that type's configured role names. Unknown prefixes are never
// authorized.
func (p *AccessPolicy) Authorize(guild *discordgo.Guild, member *discordgo.Member, channelName string) bool {
	if IsAdministrator(guild, member) {
		return true
	}

	t, ok := domain.TypeFromChannelName(channelName)
	if !ok {
		return false
	}

	allowed := make(map[string]bool, len(p.tickets.RoleNames(t)))
	for _, name := range p.tickets.RoleNames(t) {
		allowed[name] = true
	}

	for _, name := range memberRoleNames(guild, member) {
		if allowed[name] {
			return true
		}
	}
	return false
}

// IsStaff reports whether a member is staff for archival purposes: an
// administrator, or a holder of any configured role across all ticket
// types.
func (p *AccessPolicy) IsStaff(guild *discordgo.Guild, member *discordgo.Member) bool {
	if IsAdministrator(guild, member) {
		return true
	}

	staff := make(map[string]bool)
	for _, t := range domain.AllTypes() {
		for _, name := range p.tickets.RoleNames(t) {
			staff[name] = true
		}
	}

	for _, name := range memberRoleNames(guild, member) {
		if staff[name] {
			return true
		}
	}
	return false
}

// IsAdministrator reports whether a member holds server-wide administrator
// capability, either as the guild owner or through a role carrying the
// administrator permission bit.
func IsAdministrator(guild *discordgo.Guild, member *discordgo.Member) bool {
	if guild == nil || member == nil || member.User == nil {
		return false
	}
	if guild.OwnerID == member.User.ID {
		return true
	}

	held := make(map[string]bool, len(member.Roles))
	for _, id := range member.Roles {
		held[id] = true
	}
	for _, role := range guild.Roles {
		if held[role.ID] && role.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
	}
	return false
}

func rolesByNames(guild *discordgo.Guild, names []string) []*discordgo.Role {
	if guild == nil {
		return nil
	}
	var out []*discordgo.Role
	for _, name := range names {
		for _, role := range guild.Roles {
			if role.Name == name {
				out = append(out, role)
				break
			}
		}
	}
	return out
}

func memberRoleNames(guild *discordgo.Guild, member *discordgo.Member) []string {
	if guild == nil || member == nil {
		return nil
	}
	byID := make(map[string]string, len(guild.Roles))
	for _, role := range guild.Roles {
		byID[role.ID] = role.Name
	}
	var out []string
	for _, id := range member.Roles {
		if name, ok := byID[id]; ok {
			out = append(out, name)
		}
	}
	return out
}
