package notify

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// LogSender writes notifications to the log instead of delivering them.
// It stands in for SMTP in development.
type LogSender struct {
	log logrus.FieldLogger
}

func NewLogSender(logger logrus.FieldLogger) *LogSender {
	return &LogSender{log: logger}
}

func (s *LogSender) Send(_ context.Context, n Notification) error {
	s.log.WithFields(logrus.Fields{
		"notification": n.Kind,
		"to":           n.To,
		"subject":      n.Subject,
	}).Info(n.Summary)
	return nil
}

// MultiSender fans a notification out to every sender and joins their errors
type MultiSender []Sender

func (m MultiSender) Send(ctx context.Context, n Notification) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
