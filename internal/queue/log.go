package queue

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogPublisher writes events to the logger only.
type LogPublisher struct {
	logger logrus.FieldLogger
}

var _ Publisher = (*LogPublisher)(nil)

func NewLogPublisher(logger logrus.FieldLogger) *LogPublisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &LogPublisher{logger: logger}
}

func (l *LogPublisher) Publish(_ context.Context, events ...*Event) error {
	for _, event := range events {
		l.logger.WithFields(logrus.Fields{
			"event":            event.Type,
			"eventId":          event.ID,
			"researchEntityId": event.ResearchEntityID,
			"documentId":       event.DocumentID,
			"sourceId":         event.SourceID,
			"relatedIds":       event.RelatedIDs,
		}).Info(event.Message)
	}

	return nil
}

func (l *LogPublisher) Close() error {
	return nil
}
