package server

import (
	"context"
	"fmt"
	"testing"

	"github.com/emrgen/research/internal/config"
	"github.com/emrgen/research/internal/model"
	"github.com/emrgen/research/internal/queue"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		DBDriver:         "sqlite",
		DBDSN:            fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString()),
		EventCompression: "lz4",
	}
}

func TestNewApp_LocalFallbacks(t *testing.T) {
	app, err := NewApp(memoryConfig())
	require.NoError(t, err)
	defer app.Close()

	assert.IsType(t, &queue.LogPublisher{}, app.publisher)
	assert.Nil(t, app.redis)

	require.NoError(t, app.Store.Migrate())

	ctx := context.Background()
	entity := &model.ResearchEntity{Kind: model.ResearchEntityUser, Name: "Rossi", Slug: "rossi"}
	require.NoError(t, app.Store.CreateResearchEntity(ctx, entity))

	_, err = app.Documents.CopyDocument(ctx, entity.ID, 42)
	assert.Error(t, err)
}

func TestNewApp_UnsupportedDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.DBDriver = "oracle"

	_, err := NewApp(cfg)
	assert.Error(t, err)
}

func TestNewApp_UnknownCompression(t *testing.T) {
	cfg := memoryConfig()
	cfg.KafkaBrokers = "localhost:9092"
	cfg.EventCompression = "zstd"

	_, err := NewApp(cfg)
	assert.Error(t, err)
}
