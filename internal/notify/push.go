package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"time"
)

type Publisher interface {
	Publish(userID string, payload []byte)
}

type PushEvent struct {
	Type      string         `json:"type"`
	Template  Template       `json:"template"`
	Subject   string         `json:"subject"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp string         `json:"timestamp"`
}

// PushSender forwards notifications to the recipient's open websocket connections.
type PushSender struct {
	publisher Publisher
	now       func() time.Time
}

func NewPushSender(publisher Publisher) *PushSender {
	return &PushSender{publisher: publisher, now: time.Now}
}

func (s *PushSender) SendMail(_ context.Context, tmpl Template, to Recipient, payload map[string]any) error {
	subject, _, err := Render(tmpl, to, payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(PushEvent{
		Type:      "notification",
		Template:  tmpl,
		Subject:   subject,
		Payload:   payload,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	s.publisher.Publish(strconv.FormatInt(to.UserID, 10), encoded)
	return nil
}
