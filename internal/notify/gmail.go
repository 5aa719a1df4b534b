package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const gmailSendInterval = time.Second

type gmailMessages interface {
	Send(ctx context.Context, raw string) error
}

type gmailAPI struct {
	service *gmail.Service
}

func (g gmailAPI) Send(ctx context.Context, raw string) error {
	_, err := g.service.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	return err
}

// GmailSender sends mail through the Gmail API as a delegated service account user.
// Sends are serialised and spaced to stay under the API rate limits.
type GmailSender struct {
	api      gmailMessages
	from     string
	mu       sync.Mutex
	lastSent time.Time
	interval time.Duration
}

func NewGmailSender(ctx context.Context, credentialsFile string, from string) (*GmailSender, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read gmail credentials: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(data, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gmail credentials: %w", err)
	}
	jwtConfig.Subject = from

	service, err := gmail.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &GmailSender{
		api:      gmailAPI{service: service},
		from:     from,
		interval: gmailSendInterval,
	}, nil
}

func (s *GmailSender) SendMail(ctx context.Context, tmpl Template, to Recipient, payload map[string]any) error {
	if to.Email == "" {
		return fmt.Errorf("recipient %d has no email address", to.UserID)
	}

	subject, body, err := Render(tmpl, to, payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lastSent.IsZero() {
		if wait := s.interval - time.Since(s.lastSent); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if err := s.api.Send(ctx, encodeMessage(s.from, to.Email, subject, body)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.lastSent = time.Now()
	return nil
}

func encodeMessage(from, to, subject, body string) string {
	raw := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		from, to, subject, body,
	)
	return base64.URLEncoding.EncodeToString([]byte(raw))
}
