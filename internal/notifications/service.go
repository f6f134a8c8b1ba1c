package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"photoreel/internal/config"
)

const userAgent = "photoreel/0.1"

// Service is the notification surface used by the CLI.
type Service interface {
	NotifyAlbumPublished(ctx context.Context, name, folder string, photos int) error
	NotifyAlbumReset(ctx context.Context, folder string) error
	NotifySyncCompleted(ctx context.Context, target string, uploaded, deleted int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy-backed service when a topic is configured and a
// noop service otherwise.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notify.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := cfg.NotifyTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyAlbumPublished(ctx context.Context, name, folder string, photos int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = folder
	}
	return n.send(ctx, payload{
		title:   "photoreel - Album Published",
		message: fmt.Sprintf("📷 Published %s (%s, %d photos)", name, folder, photos),
		tags:    []string{"photoreel", "publish", "completed"},
	})
}

func (n *ntfyService) NotifyAlbumReset(ctx context.Context, folder string) error {
	return n.send(ctx, payload{
		title:   "photoreel - Album Reset",
		message: fmt.Sprintf("Reset %s to raw photos", strings.TrimSpace(folder)),
		tags:    []string{"photoreel", "reset"},
	})
}

func (n *ntfyService) NotifySyncCompleted(ctx context.Context, target string, uploaded, deleted int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	message := fmt.Sprintf("Synced %s: %d uploaded", target, uploaded)
	if deleted > 0 {
		message += fmt.Sprintf(", %d deleted", deleted)
	}
	message += " in " + duration.String()
	return n.send(ctx, payload{
		title:   "photoreel - Sync Complete",
		message: message,
		tags:    []string{"photoreel", "sync", "completed"},
	})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" during ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return n.send(ctx, payload{
		title:    "photoreel - Error",
		message:  builder.String(),
		tags:     []string{"photoreel", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "photoreel - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"photoreel", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyAlbumPublished(context.Context, string, string, int) error { return nil }
func (noopService) NotifyAlbumReset(context.Context, string) error                  { return nil }
func (noopService) NotifySyncCompleted(context.Context, string, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyError(context.Context, error, string) error { return nil }
func (noopService) TestNotification(context.Context) error           { return nil }
