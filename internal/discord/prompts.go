package discord

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// closePromptTTL is how long a close confirmation stays actionable.
const closePromptTTL = 30 * time.Second

// closePrompt tracks one pending close confirmation. The originating
// interaction is kept so the ephemeral prompt can be disabled when the
// window expires without a decision.
type closePrompt struct {
	interaction *discordgo.Interaction
	channelID   string
	requesterID string
	timer       *time.Timer
}

type promptRegistry struct {
	mu      sync.Mutex
	prompts map[string]*closePrompt
}

func newPromptRegistry() *promptRegistry {
	return &promptRegistry{prompts: make(map[string]*closePrompt)}
}

// put registers a prompt under its nonce and schedules expiry. The
// callback runs only if the prompt is still pending when the window
// closes.
func (r *promptRegistry) put(nonce string, p *closePrompt, onExpire func(*closePrompt)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.timer = time.AfterFunc(closePromptTTL, func() {
		if expired := r.take(nonce); expired != nil {
			onExpire(expired)
		}
	})
	r.prompts[nonce] = p
}

// take removes and returns the prompt, stopping its expiry timer. Nil
// when the nonce is unknown or already consumed.
func (r *promptRegistry) take(nonce string) *closePrompt {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prompts[nonce]
	if !ok {
		return nil
	}
	delete(r.prompts, nonce)
	if p.timer != nil {
		p.timer.Stop()
	}
	return p
}

// drain cancels every pending prompt without firing expiry callbacks.
func (r *promptRegistry) drain() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for nonce, p := range r.prompts {
		if p.timer != nil {
			p.timer.Stop()
		}
		delete(r.prompts, nonce)
	}
}
