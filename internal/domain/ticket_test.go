package domain_test

import (
	"testing"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

func TestChannelName(t *testing.T) {
	if got := domain.TypeSupport.ChannelName(1); got != "suporte-1" {
		t.Fatalf("expected %q, got %q", "suporte-1", got)
	}
	if got := domain.TypeFinance.ChannelName(3); got != "financeiro-3" {
		t.Fatalf("expected %q, got %q", "financeiro-3", got)
	}
}

func TestTypeFromChannelName(t *testing.T) {
	cases := []struct {
		name string
		want domain.TicketType
		ok   bool
	}{
		{"suporte-7", domain.TypeSupport, true},
		{"denúncia-1", domain.TypeReport, true},
		{"financeiro-3", domain.TypeFinance, true},
		{"roleplay-12", domain.TypeRoleplay, true},
		{"SUPORTE-7", domain.TypeSupport, true},
		{"random-3", "", false},
		{"suporte", "", false},
		{"arquivado-suporte-7", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := domain.TypeFromChannelName(tc.name)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("type = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestArchivedName(t *testing.T) {
	got := domain.ArchivedName("suporte-4")
	if got != "arquivado-suporte-4" {
		t.Fatalf("expected prefixed name, got %q", got)
	}

	// Applying the prefix again must not stack.
	if again := domain.ArchivedName(got); again != got {
		t.Fatalf("prefix applied twice: %q", again)
	}

	if !domain.IsArchivedName(got) {
		t.Fatalf("expected %q to be archived", got)
	}
	if domain.IsArchivedName("suporte-4") {
		t.Fatalf("open channel reported as archived")
	}
}

func TestTypeMetadataCoversAllTypes(t *testing.T) {
	for _, typ := range domain.AllTypes() {
		if typ.Label() == "" || typ.Blurb() == "" || typ.Priority() == "" {
			t.Fatalf("incomplete metadata for %q", typ)
		}
		if typ.Color() == 0 {
			t.Fatalf("missing color for %q", typ)
		}
	}
}
