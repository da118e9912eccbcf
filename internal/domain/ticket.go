package domain

import (
	"strconv"
	"strings"
	"time"
)

// TicketType enumerates the closed set of ticket categories. The value is
// the channel-name slug and the key used in the counters file, so it is
// part of the persisted contract and must not change.
type TicketType string

const (
	TypeSupport  TicketType = "suporte"
	TypeReport   TicketType = "denúncia"
	TypeFinance  TicketType = "financeiro"
	TypeRoleplay TicketType = "roleplay"
)

// ArchivedPrefix marks a channel that has been closed and archived.
const ArchivedPrefix = "arquivado-"

// AllTypes returns every ticket type in display order.
func AllTypes() []TicketType {
	return []TicketType{TypeSupport, TypeReport, TypeFinance, TypeRoleplay}
}

// Label is the capitalized display name.
func (t TicketType) Label() string {
	switch t {
	case TypeSupport:
		return "Suporte"
	case TypeReport:
		return "Denúncia"
	case TypeFinance:
		return "Financeiro"
	case TypeRoleplay:
		return "Roleplay"
	}
	return string(t)
}

// Color is the embed accent color for the type.
func (t TicketType) Color() int {
	switch t {
	case TypeSupport:
		return 0x3498DB
	case TypeReport:
		return 0xE74C3C
	case TypeFinance:
		return 0x2ECC71
	case TypeRoleplay:
		return 0x9B59B6
	}
	return 0x3498DB
}

// Priority is the display priority label for the type.
func (t TicketType) Priority() string {
	switch t {
	case TypeSupport:
		return "🟡 Média"
	case TypeReport:
		return "🔴 Alta"
	case TypeFinance:
		return "🟢 Normal"
	case TypeRoleplay:
		return "🟣 Especial"
	}
	return "🟡 Média"
}

// Blurb is the descriptive text shown on the initial ticket embed.
func (t TicketType) Blurb() string {
	switch t {
	case TypeSupport:
		return "🔧 **Atendimento de Suporte**\nNossa equipe irá ajudar com dúvidas e problemas técnicos."
	case TypeReport:
		return "🚨 **Central de Denúncias**\nRelate situações que violem regras e diretrizes."
	case TypeFinance:
		return "💰 **Departamento Financeiro**\nAtendimento sobre pagamentos, reembolsos e doações."
	case TypeRoleplay:
		return "🎭 **Equipe Roleplay**\nSolicitações, histórias, personagens e assuntos de RP."
	}
	return ""
}

// ChannelName builds the display name for ticket number n, e.g. "suporte-7".
func (t TicketType) ChannelName(n int) string {
	return strings.ToLower(string(t)) + "-" + strconv.Itoa(n)
}

// TypeFromChannelName maps a channel name back to its ticket type by
// prefix. Unknown prefixes (including archived channels) report false.
func TypeFromChannelName(name string) (TicketType, bool) {
	lower := strings.ToLower(name)
	for _, t := range AllTypes() {
		if strings.HasPrefix(lower, string(t)+"-") {
			return t, true
		}
	}
	return "", false
}

// ArchivedName applies the archive prefix exactly once.
func ArchivedName(name string) string {
	if strings.HasPrefix(name, ArchivedPrefix) {
		return name
	}
	return ArchivedPrefix + name
}

// IsArchivedName reports whether a channel has already been archived.
func IsArchivedName(name string) bool {
	return strings.HasPrefix(name, ArchivedPrefix)
}

// TicketState enumerates lifecycle states for a ticket channel.
type TicketState string

const (
	StateNone             TicketState = "NONE"
	StateOpen             TicketState = "OPEN"
	StateDuplicateBlocked TicketState = "DUPLICATE_BLOCKED"
	StateActive           TicketState = "ACTIVE"
	StateCloseRequested   TicketState = "CLOSE_REQUESTED"
	StateArchived         TicketState = "ARCHIVED"
)

// Ticket describes one provisioned ticket instance. The channel itself is
// owned by Discord; this is the bot-side view of it.
type Ticket struct {
	Type        TicketType
	Number      int
	ChannelID   string
	ChannelName string
	RequesterID string
	CreatedAt   time.Time
}
