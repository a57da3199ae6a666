package notify

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Discord posts notifications through a Discord webhook. Webhook execution
// needs no gateway connection, so the session stays unauthenticated.
type Discord struct {
	WebhookID    string
	WebhookToken string
}

// Send executes the webhook with the formatted notification.
func (d Discord) Send(title, message, url string) error {
	if d.WebhookID == "" || d.WebhookToken == "" {
		return fmt.Errorf("notify: discord webhook not configured")
	}

	session, err := discordgo.New("")
	if err != nil {
		return fmt.Errorf("notify: discord session: %w", err)
	}

	content := fmt.Sprintf("**%s**\n%s", title, message)
	if url != "" {
		content += "\n" + url
	}

	_, err = session.WebhookExecute(d.WebhookID, d.WebhookToken, false, &discordgo.WebhookParams{
		Content: content,
	})
	if err != nil {
		return fmt.Errorf("notify: discord webhook: %w", err)
	}
	return nil
}
