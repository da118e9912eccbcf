package discord

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func TestPromptRegistryTakeConsumesOnce(t *testing.T) {
	r := newPromptRegistry()
	r.put("n1", &closePrompt{channelID: "4000"}, func(*closePrompt) {})

	p := r.take("n1")
	if p == nil || p.channelID != "4000" {
		t.Fatalf("take returned %+v", p)
	}
	if r.take("n1") != nil {
		t.Fatalf("nonce consumable twice")
	}
}

func TestPromptRegistryUnknownNonce(t *testing.T) {
	r := newPromptRegistry()
	if r.take("missing") != nil {
		t.Fatalf("unknown nonce returned a prompt")
	}
}

func TestPromptRegistryDrainStopsTimers(t *testing.T) {
	r := newPromptRegistry()
	expired := make(chan struct{}, 1)
	r.put("n1", &closePrompt{}, func(*closePrompt) { expired <- struct{}{} })

	r.drain()

	if r.take("n1") != nil {
		t.Fatalf("drained prompt still registered")
	}
	select {
	case <-expired:
		t.Fatalf("expiry fired after drain")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCommandDefinitions(t *testing.T) {
	defs := commandDefinitions()

	byName := make(map[string]*discordgo.ApplicationCommand, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}
	for _, name := range []string{"ticket", "config", "add", "remove", "test"} {
		if byName[name] == nil {
			t.Fatalf("command %q not defined", name)
		}
	}

	for _, name := range []string{"ticket", "config"} {
		cmd := byName[name]
		if cmd.DefaultMemberPermissions == nil || *cmd.DefaultMemberPermissions != int64(discordgo.PermissionAdministrator) {
			t.Fatalf("command %q not restricted to administrators", name)
		}
	}

	for _, name := range []string{"add", "remove"} {
		cmd := byName[name]
		if len(cmd.Options) != 1 || cmd.Options[0].Type != discordgo.ApplicationCommandOptionUser || !cmd.Options[0].Required {
			t.Fatalf("command %q missing required user option", name)
		}
	}
}

func TestModalInputValue(t *testing.T) {
	data := discordgo.ModalSubmitInteractionData{
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: "description", Value: "  preciso de ajuda  "},
			}},
		},
	}
	if got := modalInputValue(data); got != "preciso de ajuda" {
		t.Fatalf("modal value = %q", got)
	}

	if got := modalInputValue(discordgo.ModalSubmitInteractionData{}); got != "" {
		t.Fatalf("empty modal value = %q", got)
	}
}
