package service_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/counter"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/policy"
	"github.com/spec-kit/ticket-bot/internal/presentation"
	"github.com/spec-kit/ticket-bot/internal/service"
	"github.com/spec-kit/ticket-bot/pkg/util"
)

func newTicketService(t *testing.T, f *fakeClient) (*service.TicketService, *counter.Store) {
	t.Helper()
	store := counter.NewStore(filepath.Join(t.TempDir(), "counters.json"), zap.NewNop())
	store.Load()

	cfg := ticketsConfig()
	accessPolicy := policy.New(cfg)
	builder := presentation.NewBuilder("Test Server", configBrand())
	provisioner := service.NewProvisioner(f, accessPolicy, store, cfg, zap.NewNop())

	return service.NewTicketService(service.TicketDependencies{
		Client:      f,
		Policy:      accessPolicy,
		Counters:    store,
		Tickets:     cfg,
		Provisioner: provisioner,
		Builder:     builder,
		Dispatcher:  events.NewInMemoryDispatcher(),
		Logger:      zap.NewNop(),
	}), store
}

func TestCreateTicketEndToEnd(t *testing.T) {
	f := newFakeClient()
	seedGuild(f)
	member := &discordgo.Member{User: &discordgo.User{ID: "111", Username: "fulano"}}
	f.members["111"] = member

	svc, store := newTicketService(t, f)

	created, err := svc.Create(context.Background(), "900", member, domain.TypeSupport, "preciso de ajuda")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.Channel.Name != "suporte-1" {
		t.Fatalf("channel name = %q, want %q", created.Channel.Name, "suporte-1")
	}
	if created.Channel.ParentID != "100" {
		t.Fatalf("channel parent = %q, want configured category", created.Channel.ParentID)
	}
	if created.Ticket.Number != 1 || created.Ticket.Type != domain.TypeSupport {
		t.Fatalf("unexpected ticket: %+v", created.Ticket)
	}

	everyone := f.overwriteFor(created.Channel.ID, "900", discordgo.PermissionOverwriteTypeRole)
	if everyone == nil || everyone.Deny&discordgo.PermissionViewChannel == 0 {
		t.Fatalf("everyone role not denied view: %+v", everyone)
	}
	opener := f.overwriteFor(created.Channel.ID, "111", discordgo.PermissionOverwriteTypeMember)
	if opener == nil || opener.Allow&discordgo.PermissionViewChannel == 0 || opener.Allow&discordgo.PermissionSendMessages == 0 {
		t.Fatalf("opener overwrite missing read+write: %+v", opener)
	}
	supportRole := f.overwriteFor(created.Channel.ID, "r-support", discordgo.PermissionOverwriteTypeRole)
	if supportRole == nil || supportRole.Allow&discordgo.PermissionViewChannel == 0 {
		t.Fatalf("support role overwrite missing: %+v", supportRole)
	}
	bot := f.overwriteFor(created.Channel.ID, f.botID, discordgo.PermissionOverwriteTypeMember)
	if bot == nil || bot.Allow&discordgo.PermissionSendMessages == 0 {
		t.Fatalf("bot overwrite missing: %+v", bot)
	}

	// Counter file reflects the creation.
	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read counters: %v", err)
	}
	persisted := make(map[domain.TicketType]int)
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("unmarshal counters: %v", err)
	}
	if persisted[domain.TypeSupport] != 1 {
		t.Fatalf("persisted support counter = %d, want 1", persisted[domain.TypeSupport])
	}

	// Initial message mentions the requester and the resolved roles and
	// carries the lifecycle controls.
	sent := f.sent[created.Channel.ID]
	if len(sent) != 1 {
		t.Fatalf("expected 1 channel message, got %d", len(sent))
	}
	if !strings.Contains(sent[0].Content, "<@111>") || !strings.Contains(sent[0].Content, "<@&r-support>") {
		t.Fatalf("mentions missing from content: %q", sent[0].Content)
	}
	if len(sent[0].Components) == 0 {
		t.Fatalf("lifecycle controls missing from initial message")
	}

	// Second ticket of the same type gets the next number.
	member2 := &discordgo.Member{User: &discordgo.User{ID: "222", Username: "beltrano"}}
	second, err := svc.Create(context.Background(), "900", member2, domain.TypeSupport, "outra coisa")
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.Channel.Name != "suporte-2" {
		t.Fatalf("second channel name = %q", second.Channel.Name)
	}
}

func TestFindExistingBlocksDuplicate(t *testing.T) {
	f := newFakeClient()
	seedGuild(f)
	f.channels["4000"] = &discordgo.Channel{
		ID:       "4000",
		GuildID:  "900",
		Name:     "suporte-1",
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: "100",
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{ID: "900", Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
			{ID: "111", Type: discordgo.PermissionOverwriteTypeMember, Allow: service.TicketAccess},
		},
	}

	svc, _ := newTicketService(t, f)

	existing, err := svc.FindExisting(context.Background(), "900", "111", domain.TypeSupport)
	if err != nil {
		t.Fatalf("find existing: %v", err)
	}
	if existing == nil || existing.Channel.ID != "4000" {
		t.Fatalf("expected existing ticket 4000, got %+v", existing)
	}

	// A different user in the same category is not blocked.
	other, err := svc.FindExisting(context.Background(), "900", "222", domain.TypeSupport)
	if err != nil {
		t.Fatalf("find existing for other user: %v", err)
	}
	if other != nil {
		t.Fatalf("unexpected duplicate for other user: %+v", other)
	}

	// Same user, different type: not blocked either.
	fin, err := svc.FindExisting(context.Background(), "900", "111", domain.TypeFinance)
	if err != nil {
		t.Fatalf("find existing finance: %v", err)
	}
	if fin != nil {
		t.Fatalf("duplicate reported across types: %+v", fin)
	}
}

func TestFindExistingUnconfiguredCategory(t *testing.T) {
	f := newFakeClient()
	seedGuild(f)

	svc, _ := newTicketService(t, f)

	// Report category "200" is configured but does not exist in the guild.
	_, err := svc.FindExisting(context.Background(), "900", "111", domain.TypeReport)
	if err == nil {
		t.Fatalf("expected configuration error")
	}
	if !util.IsCode(err, util.CodeConfiguration) {
		t.Fatalf("error code = %v, want CONFIGURATION_ERROR", err)
	}
}

func TestCreateUnresolvableCategoryDoesNotConsumeNumber(t *testing.T) {
	f := newFakeClient()
	seedGuild(f)
	member := &discordgo.Member{User: &discordgo.User{ID: "111", Username: "fulano"}}

	svc, store := newTicketService(t, f)

	_, err := svc.Create(context.Background(), "900", member, domain.TypeReport, "denúncia")
	if err == nil {
		t.Fatalf("expected configuration error")
	}
	if !util.IsCode(err, util.CodeConfiguration) {
		t.Fatalf("error code = %v, want CONFIGURATION_ERROR", err)
	}
	if store.Snapshot()[domain.TypeReport] != 0 {
		t.Fatalf("counter consumed despite unresolvable category")
	}
}

func TestAuthorizeDelegatesToPolicy(t *testing.T) {
	f := newFakeClient()
	seedGuild(f)
	svc, _ := newTicketService(t, f)

	staff := &discordgo.Member{User: &discordgo.User{ID: "333"}, Roles: []string{"r-admin"}}
	ok, err := svc.Authorize("900", staff, "financeiro-3")
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if !ok {
		t.Fatalf("Admin role holder should be authorized for financeiro-3")
	}

	plain := &discordgo.Member{User: &discordgo.User{ID: "444"}}
	ok, err = svc.Authorize("900", plain, "financeiro-3")
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if ok {
		t.Fatalf("plain member must not be authorized")
	}
}
