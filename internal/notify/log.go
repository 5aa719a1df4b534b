package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSender writes rendered notifications to the logger. It is the fallback when no
// mail provider is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendMail(_ context.Context, tmpl Template, to Recipient, payload map[string]any) error {
	subject, _, err := Render(tmpl, to, payload)
	if err != nil {
		return err
	}
	s.logger.Info("Notification",
		zap.String("template", string(tmpl)),
		zap.Int64("recipient_id", to.UserID),
		zap.String("recipient_email", to.Email),
		zap.String("subject", subject),
	)
	return nil
}
