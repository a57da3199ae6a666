package notify

import (
	"fmt"

	slackapi "github.com/slack-go/slack"
)

// Slack posts notifications to a Slack incoming webhook.
type Slack struct {
	WebhookURL string
}

// Send posts one webhook message. The URL, when present, is appended as a
// link line so it stays clickable in Slack.
func (s Slack) Send(title, message, url string) error {
	if s.WebhookURL == "" {
		return fmt.Errorf("notify: slack webhook URL not configured")
	}

	text := fmt.Sprintf("*%s*\n%s", title, message)
	if url != "" {
		text += "\n" + url
	}

	if err := slackapi.PostWebhook(s.WebhookURL, &slackapi.WebhookMessage{Text: text}); err != nil {
		return fmt.Errorf("notify: slack webhook: %w", err)
	}
	return nil
}
