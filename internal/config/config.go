package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App          AppConfig
	Bot          BotConfig
	Brand        BrandConfig
	Tickets      TicketsConfig
	Counters     CountersConfig
	Transcript   TranscriptConfig
	Logger       LoggerConfig
	Notification NotificationConfig
}

// AppConfig controls the ops HTTP server.
type AppConfig struct {
	Name    string
	Host    string
	Port    string
	Version string
}

// BotConfig holds gateway connection values.
type BotConfig struct {
	Token        string
	ServerName   string
	PresenceText string
}

// BrandConfig holds optional branding image URLs.
type BrandConfig struct {
	IconURL  string
	ThumbURL string
}

// TypeSettings carries the per-ticket-type channel category and the role
// names allowed to view and manage tickets of that type.
type TypeSettings struct {
	CategoryID string
	RoleNames  []string
}

// TicketsConfig maps each ticket type to its settings.
type TicketsConfig struct {
	Types             map[domain.TicketType]TypeSettings
	ArchiveCategoryID string
}

// CountersConfig locates the persisted ticket counters.
type CountersConfig struct {
	FilePath string
}

// TranscriptConfig locates saved transcripts.
type TranscriptConfig struct {
	Dir string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// NotificationConfig holds the optional webhook notification endpoint.
type NotificationConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults
// where possible. A missing bot token is a fatal configuration error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	token := strings.TrimSpace(os.Getenv("DISCORD_TOKEN"))
	if token == "" {
		return nil, errors.New("missing DISCORD_TOKEN in environment")
	}

	iconURL := getEnv("BRAND_ICON_URL", "")

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "ticket-bot"),
			Host:    getEnv("APP_HOST", "0.0.0.0"),
			Port:    getEnv("APP_PORT", "8080"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Bot: BotConfig{
			Token:        token,
			ServerName:   getEnv("SERVER_NAME", "Your Discord Server"),
			PresenceText: getEnv("PRESENCE_TEXT", "seus tickets 👀"),
		},
		Brand: BrandConfig{
			IconURL:  iconURL,
			ThumbURL: getEnv("BRAND_THUMB_URL", iconURL),
		},
		Tickets: TicketsConfig{
			Types: map[domain.TicketType]TypeSettings{
				domain.TypeSupport: {
					CategoryID: getEnv("CATEGORY_SUPORTE_ID", ""),
					RoleNames:  getEnvAsList("SUPORTE_ROLES", []string{"Support", "Moderator", "Admin"}),
				},
				domain.TypeReport: {
					CategoryID: getEnv("CATEGORY_DENUNCIA_ID", ""),
					RoleNames:  getEnvAsList("DENUNCIA_ROLES", []string{"Moderator", "Admin"}),
				},
				domain.TypeFinance: {
					CategoryID: getEnv("CATEGORY_FINANCEIRO_ID", ""),
					RoleNames:  getEnvAsList("FINANCEIRO_ROLES", []string{"Admin"}),
				},
				domain.TypeRoleplay: {
					CategoryID: getEnv("CATEGORY_ROLEPLAY_ID", ""),
					RoleNames:  getEnvAsList("ROLEPLAY_ROLES", []string{"Roleplay Team", "Admin"}),
				},
			},
			ArchiveCategoryID: getEnv("ARCHIVE_CATEGORY_ID", ""),
		},
		Counters: CountersConfig{
			FilePath: getEnv("COUNTERS_FILE", "ticket_counters.json"),
		},
		Transcript: TranscriptConfig{
			Dir: getEnv("TRANSCRIPT_DIR", "transcripts"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Notification: NotificationConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the ops HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// CategoryID returns the configured category for a ticket type, empty when
// unconfigured.
func (c TicketsConfig) CategoryID(t domain.TicketType) string {
	return c.Types[t].CategoryID
}

// RoleNames returns the configured role names for a ticket type.
func (c TicketsConfig) RoleNames(t domain.TicketType) []string {
	return c.Types[t].RoleNames
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
