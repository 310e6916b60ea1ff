package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mediato115/internal/bus"
	"mediato115/internal/config"
)

const userAgent = "mediato115-Go/0.1.0"

// Service is an outbound-only notification sink.
type Service interface {
	Post(ctx context.Context, n bus.Notification) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
	}
}

// IsNoop reports whether svc drops everything it receives.
func IsNoop(svc Service) bool {
	_, ok := svc.(noopService)
	return ok
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

// Post sends n as an ntfy message. Buttons cannot call back through ntfy, so
// menu options are listed with their item IDs for use with "mediato115 select".
func (s *ntfyService) Post(ctx context.Context, n bus.Notification) error {
	message := strings.TrimRight(n.Text, "\n")
	if n.HasButtons() {
		var b strings.Builder
		b.WriteString(message)
		for _, row := range n.Buttons {
			for _, button := range row {
				_, data, ok := bus.DecodePayload(button.Payload)
				if !ok {
					continue
				}
				fmt.Fprintf(&b, "\n[%s] mediato115 select %s", button.Label, data)
			}
		}
		message = strings.TrimLeft(b.String(), "\n")
	}
	if message == "" {
		message = n.Title
	}
	tags := []string{"mediato115"}
	if n.Channel != "" {
		tags = append(tags, n.Channel)
	}
	return s.send(ctx, payload{
		title:   "mediato115 - " + n.Title,
		message: message,
		tags:    tags,
	})
}

func (s *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "mediato115 - Test",
		message:  "Notification system test",
		tags:     []string{"mediato115", "test"},
		priority: "low",
	}
	return s.send(ctx, data)
}

func (s *ntfyService) send(ctx context.Context, data payload) error {
	if s == nil || s.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(data.message))
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

	resp, err := s.client.Do(req)
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

func (noopService) Post(context.Context, bus.Notification) error { return nil }
func (noopService) TestNotification(context.Context) error       { return nil }
