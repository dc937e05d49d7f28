package mailer

import (
	"context"

	"github.com/bislerium/blog-backend/pkg/helpers"
)

// QueueSender satisfies the account service's EmailSender contract by
// publishing an EmailJob to RabbitMQ; the email worker does the actual
// delivery. Only publish failures are visible to the caller.
type QueueSender struct {
	Pub *helpers.RabbitPublisher
}

func NewQueueSender(pub *helpers.RabbitPublisher) *QueueSender {
	return &QueueSender{Pub: pub}
}

func (s *QueueSender) Send(ctx context.Context, to, subject, body string) error {
	return s.Pub.PublishJSON(ctx, EmailJob{To: to, Subject: subject, Text: body})
}
