package server

import (
	"errors"

	"github.com/emrgen/research/internal/compress"
	"github.com/emrgen/research/internal/config"
	"github.com/emrgen/research/internal/lock"
	"github.com/emrgen/research/internal/queue"
	"github.com/emrgen/research/internal/service"
	"github.com/emrgen/research/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// App holds the services wired from a configuration.
type App struct {
	Store     *store.GormStore
	Documents *service.DocumentService
	Discards  *service.DiscardService
	Sources   *service.SourceService

	publisher queue.Publisher
	redis     *redis.Client
}

// NewApp opens the database and builds the lock and the event publisher.
// Redis and kafka are used when configured, in-process fallbacks otherwise.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := config.OpenDb(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Store: store.NewGormStore(db)}

	var locker lock.Locker
	if cfg.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		locker = lock.NewRedisLocker(app.redis, cfg.LockTTL)
	} else {
		logrus.Debug("no redis configured, using in-process locks")
		locker = lock.NewLocalLocker()
	}

	if cfg.KafkaBrokers != "" {
		codec, err := compress.New(cfg.EventCompression)
		if err != nil {
			app.Close()
			return nil, err
		}
		publisher, err := queue.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, codec)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.publisher = publisher
	} else {
		app.publisher = queue.NewLogPublisher(logrus.StandardLogger())
	}

	app.Documents = service.NewDocumentService(app.Store, locker, app.publisher)
	app.Documents.SetMaxFavorites(cfg.MaxFavorites)
	app.Discards = service.NewDiscardService(app.Store, locker, app.publisher)
	app.Sources = service.NewSourceService(app.Store, locker, app.publisher)

	return app, nil
}

// Close flushes the publisher and releases the redis client.
func (a *App) Close() error {
	var errs []error
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}

	return errors.Join(errs...)
}
