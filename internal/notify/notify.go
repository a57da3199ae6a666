// Package notify delivers attention items to notification surfaces (desktop,
// Slack, Discord). Delivery is fire-and-forget: failures are logged and never
// propagated into the sync pipeline.
package notify

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
)

// Notifier is a single notification surface.
type Notifier interface {
	Send(title, message, url string) error
}

// ShouldNotify reports whether an item of the given priority crosses the
// configured threshold.
func ShouldNotify(priority, threshold int) bool {
	return priority >= threshold
}

// Format builds the notification title and message for an attention item.
func Format(itemTitle, projectName string) (title, message string) {
	return "DesignFlow: " + projectName, itemTitle
}

// Dispatch formats and sends a notification, swallowing delivery errors.
func Dispatch(n Notifier, itemTitle, projectName, url string) {
	if n == nil {
		return
	}
	title, message := Format(itemTitle, projectName)
	if err := n.Send(title, message, url); err != nil {
		log.Printf("notify: send failed: %v", err)
	}
}

// Desktop shells out to an OS notification command. The command template may
// reference {{.Title}}, {{.Message}} and {{.URL}} placeholders, e.g.
// `notify-send '{{.Title}}' '{{.Message}}'`.
type Desktop struct {
	Command string
}

// Send runs the configured command with placeholders substituted.
func (d Desktop) Send(title, message, url string) error {
	if d.Command == "" {
		return fmt.Errorf("notify: desktop command not configured")
	}
	r := strings.NewReplacer(
		"{{.Title}}", title,
		"{{.Message}}", message,
		"{{.URL}}", url,
	)
	cmd := exec.Command("sh", "-c", r.Replace(d.Command))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("notify: desktop command: %v: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Multi fans a notification out to several surfaces. Each adapter failure is
// logged; Send itself never fails.
type Multi []Notifier

func (m Multi) Send(title, message, url string) error {
	for _, n := range m {
		if err := n.Send(title, message, url); err != nil {
			log.Printf("notify: adapter send failed: %v", err)
		}
	}
	return nil
}
