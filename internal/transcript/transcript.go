package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/pkg/util"
)

// pageSize is the platform's maximum per history request.
const pageSize = 100

// Attachment records an uploaded file referenced by a message.
type Attachment struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

// Message is one entry of a transcript, oldest first.
type Message struct {
	ID          string                    `json:"id"`
	AuthorID    string                    `json:"author_id"`
	AuthorName  string                    `json:"author_name"`
	Bot         bool                      `json:"bot,omitempty"`
	Content     string                    `json:"content"`
	Timestamp   time.Time                 `json:"timestamp"`
	Embeds      []*discordgo.MessageEmbed `json:"embeds,omitempty"`
	Attachments []Attachment              `json:"attachments,omitempty"`
}

// Document is the persisted transcript for one ticket channel.
type Document struct {
	GuildID      string    `json:"guild_id"`
	ChannelID    string    `json:"channel_id"`
	ChannelName  string    `json:"channel_name"`
	RequestedBy  string    `json:"requested_by"`
	GeneratedAt  time.Time `json:"generated_at"`
	MessageCount int       `json:"message_count"`
	Messages     []Message `json:"messages"`
}

// Service builds JSON transcripts from a ticket channel's full history
// and stores them on disk.
type Service struct {
	client     platform.Client
	dir        string
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewService constructs the transcript service. The directory is created
// lazily on first write.
func NewService(client platform.Client, dir string, dispatcher events.Dispatcher, logger *zap.Logger) *Service {
	return &Service{
		client:     client,
		dir:        dir,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Generate collects the channel's complete history and writes it as an
// indented JSON document under the transcript directory. It returns the
// document and the path of the written file.
func (s *Service) Generate(ctx context.Context, guildID, channelID, requestedBy string) (*Document, string, error) {
	ch, err := s.client.Channel(channelID)
	if err != nil {
		return nil, "", util.NewNotFound("ticket channel", map[string]any{"channel_id": channelID})
	}

	messages, err := s.collect(channelID)
	if err != nil {
		return nil, "", err
	}

	doc := &Document{
		GuildID:      guildID,
		ChannelID:    channelID,
		ChannelName:  ch.Name,
		RequestedBy:  requestedBy,
		GeneratedAt:  time.Now().UTC(),
		MessageCount: len(messages),
		Messages:     messages,
	}

	path, err := s.write(doc)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("transcript generated",
		zap.String("channel_id", channelID),
		zap.Int("messages", doc.MessageCount),
		zap.String("path", path))

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:      events.EventTranscriptGenerated,
			GuildID:   guildID,
			ChannelID: channelID,
			ActorID:   requestedBy,
			Payload: events.TranscriptGeneratedPayload{
				ChannelName:  ch.Name,
				MessageCount: doc.MessageCount,
				FilePath:     path,
			},
		})
	}

	return doc, path, nil
}

// collect pages backwards through the history and returns the messages
// oldest first.
func (s *Service) collect(channelID string) ([]Message, error) {
	var raw []*discordgo.Message
	beforeID := ""
	for {
		page, err := s.client.ChannelMessages(channelID, pageSize, beforeID, "")
		if err != nil {
			return nil, util.NewInternalError(err)
		}
		if len(page) == 0 {
			break
		}
		raw = append(raw, page...)
		beforeID = page[len(page)-1].ID
		if len(page) < pageSize {
			break
		}
	}

	out := make([]Message, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		out = append(out, fromPlatform(raw[i]))
	}
	return out, nil
}

func fromPlatform(m *discordgo.Message) Message {
	msg := Message{
		ID:        m.ID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
		Embeds:    m.Embeds,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorName = m.Author.Username
		msg.Bot = m.Author.Bot
	}
	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, Attachment{
			ID:          a.ID,
			URL:         a.URL,
			Name:        a.Filename,
			ContentType: a.ContentType,
			Size:        a.Size,
		})
	}
	return msg
}

func (s *Service) write(doc *Document) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", util.NewPersistenceError("unable to create transcript directory", err)
	}

	name := fmt.Sprintf("%s-%s.json", sanitizeName(doc.ChannelName), doc.GeneratedAt.Format("20060102-150405"))
	path := filepath.Join(s.dir, name)

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return "", util.NewInternalError(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", util.NewPersistenceError("unable to write transcript file", err)
	}
	return path, nil
}

// sanitizeName keeps channel-name characters that are safe in a file
// name and falls back to a fixed stem for anything degenerate.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			// Accented channel names (denúncia) degrade to a dash.
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "ticket"
	}
	return out
}
