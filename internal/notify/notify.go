package notify

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// Notifier pushes headline game moments to an out-of-band channel. Failures
// are logged and swallowed; notifications never block or fail gameplay.
type Notifier interface {
	Notify(message string) error
	Close() error
}

// Noop is used when no channel is configured.
type Noop struct{}

func (Noop) Notify(string) error { return nil }
func (Noop) Close() error        { return nil }

// Discord posts to a single channel via a bot token.
type Discord struct {
	session   *discordgo.Session
	channelID string
	log       *slog.Logger
}

func NewDiscord(botToken, channelID string, logger *slog.Logger) (*Discord, error) {
	if logger == nil {
		logger = slog.Default()
	}
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	// Plain REST sends only, no gateway connection needed.
	return &Discord{session: session, channelID: channelID, log: logger}, nil
}

func (d *Discord) Notify(message string) error {
	if _, err := d.session.ChannelMessageSend(d.channelID, message); err != nil {
		d.log.Warn("discord notify failed", "err", err)
		return err
	}
	return nil
}

func (d *Discord) Close() error {
	return d.session.Close()
}
