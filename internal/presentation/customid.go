package presentation

import (
	"strings"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// Custom-ID scheme shared by the component builders and the interaction
// dispatcher. Button and modal IDs are stable across restarts so controls
// on old messages keep working.
const (
	CustomIDOpenPrefix    = "ticket:open:"
	CustomIDModalPrefix   = "ticket:modal:"
	CustomIDClose         = "ticket:close"
	CustomIDTranscript    = "ticket:transcript"
	CustomIDConfirmPrefix = "ticket:confirm:"
	CustomIDCancelPrefix  = "ticket:cancel:"
)

// OpenCustomID builds the menu-button ID for a ticket type.
func OpenCustomID(t domain.TicketType) string {
	return CustomIDOpenPrefix + string(t)
}

// ModalCustomID builds the description-modal ID for a ticket type.
func ModalCustomID(t domain.TicketType) string {
	return CustomIDModalPrefix + string(t)
}

// ConfirmCustomID builds the close-confirmation ID for a prompt nonce.
func ConfirmCustomID(nonce string) string {
	return CustomIDConfirmPrefix + nonce
}

// CancelCustomID builds the close-cancellation ID for a prompt nonce.
func CancelCustomID(nonce string) string {
	return CustomIDCancelPrefix + nonce
}

// TypeFromCustomID extracts the ticket type from an open/modal custom ID.
func TypeFromCustomID(id string) (domain.TicketType, bool) {
	var raw string
	switch {
	case strings.HasPrefix(id, CustomIDOpenPrefix):
		raw = strings.TrimPrefix(id, CustomIDOpenPrefix)
	case strings.HasPrefix(id, CustomIDModalPrefix):
		raw = strings.TrimPrefix(id, CustomIDModalPrefix)
	default:
		return "", false
	}
	for _, t := range domain.AllTypes() {
		if string(t) == raw {
			return t, true
		}
	}
	return "", false
}

// NonceFromCustomID extracts the prompt nonce from a confirm/cancel ID,
// reporting whether the ID was a confirmation.
func NonceFromCustomID(id string) (nonce string, confirm, ok bool) {
	switch {
	case strings.HasPrefix(id, CustomIDConfirmPrefix):
		return strings.TrimPrefix(id, CustomIDConfirmPrefix), true, true
	case strings.HasPrefix(id, CustomIDCancelPrefix):
		return strings.TrimPrefix(id, CustomIDCancelPrefix), false, true
	}
	return "", false, false
}
