package notify

import (
	"context"

	"go.uber.org/zap"
)

// NewSender assembles the delivery chain: push when publisher is set, then Gmail when
// credentials are configured, otherwise the log sender.
func NewSender(ctx context.Context, logger *zap.Logger, credentialsFile, from string, publisher Publisher) (Sender, error) {
	senders := Multi{}
	if publisher != nil {
		senders = append(senders, NewPushSender(publisher))
	}
	if credentialsFile != "" && from != "" {
		gmail, err := NewGmailSender(ctx, credentialsFile, from)
		if err != nil {
			return nil, err
		}
		senders = append(senders, gmail)
	} else {
		senders = append(senders, NewLogSender(logger))
	}
	return senders, nil
}
