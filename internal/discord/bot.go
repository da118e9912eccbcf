package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/counter"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/policy"
	"github.com/spec-kit/ticket-bot/internal/presentation"
	"github.com/spec-kit/ticket-bot/internal/service"
	"github.com/spec-kit/ticket-bot/internal/transcript"
)

// Dependencies bundles the collaborators the gateway layer routes
// interactions to.
type Dependencies struct {
	Client      platform.Client
	Tickets     *service.TicketService
	Archive     *service.ArchiveService
	Transcripts *transcript.Service
	Policy      *policy.AccessPolicy
	Builder     *presentation.Builder
	Counters    *counter.Store
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Config      *config.Config
	Logger      *zap.Logger
}

// Bot owns the gateway session and translates Discord interactions into
// ticket service calls.
type Bot struct {
	session *discordgo.Session
	deps    Dependencies
	respond responder
	prompts *promptRegistry
	logger  *zap.Logger
}

// NewSession creates the gateway session for a bot token with the
// intents the ticket flows need.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers
	return session, nil
}

// New attaches the interaction handlers to an existing session. The
// session is not opened yet; call Start.
func New(session *discordgo.Session, deps Dependencies) *Bot {
	bot := &Bot{
		session: session,
		deps:    deps,
		respond: sessionResponder{session: session},
		prompts: newPromptRegistry(),
		logger:  deps.Logger,
	}
	if deps.Client == nil {
		bot.deps.Client = platform.NewSessionClient(session)
	}

	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onInteractionCreate)
	return bot
}

// Session exposes the underlying gateway session for wiring (readiness
// probes, shutdown).
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// Ready reports whether the gateway connection has completed its initial
// handshake.
func (b *Bot) Ready() bool {
	return b.session != nil && b.session.DataReady
}

// Start opens the gateway connection. Command registration happens in
// the ready handler once the application ID is known.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	return nil
}

// Stop closes the gateway connection and cancels pending close prompts.
func (b *Bot) Stop() error {
	b.prompts.drain()
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("gateway ready",
		zap.String("user", r.User.Username),
		zap.Int("guilds", len(r.Guilds)))

	if _, err := s.ApplicationCommandBulkOverwrite(r.User.ID, "", commandDefinitions()); err != nil {
		b.logger.Error("unable to register application commands", zap.Error(err))
	}

	if text := b.deps.Config.Bot.PresenceText; text != "" {
		if err := s.UpdateWatchStatus(0, text); err != nil {
			b.logger.Warn("unable to set presence", zap.Error(err))
		}
	}
}
