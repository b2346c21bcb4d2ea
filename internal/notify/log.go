package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Log reports messages as error level log entries.
type Log struct {
	log logrus.FieldLogger
}

func NewLog(log logrus.FieldLogger) *Log {
	return &Log{log: log}
}

func (n *Log) NotifyError(_ context.Context, message string) {
	n.log.WithField("notification", true).Error(message)
}
