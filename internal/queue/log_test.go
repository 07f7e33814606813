package queue

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogPublisher_Publish(t *testing.T) {
	logger, hook := test.NewNullLogger()
	publisher := NewLogPublisher(logger)

	event := NewEvent(EventAlreadyDiscarded)
	event.ResearchEntityID = 3
	event.DocumentID = 11
	event.Message = "document already discarded"

	require.NoError(t, publisher.Publish(context.Background(), event))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "document already discarded", entry.Message)
	assert.Equal(t, EventAlreadyDiscarded, entry.Data["event"])
	assert.Equal(t, uint(11), entry.Data["documentId"])
}

func TestNewEvent(t *testing.T) {
	a := NewEvent(EventDocumentVerified)
	b := NewEvent(EventDocumentVerified)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.CreatedAt.IsZero())
}
