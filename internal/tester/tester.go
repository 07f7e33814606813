package tester

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/emrgen/research/internal/model"
	"github.com/emrgen/research/internal/queue"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	db *gorm.DB
)

// Setup opens a fresh in-memory database and migrates it.
func Setup() {
	_ = os.Setenv("ENV", "test")

	var err error
	db, err = NewDB()
	if err != nil {
		panic(err)
	}
}

// NewDB returns a migrated in-memory database private to the caller.
func NewDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	// a single connection keeps the shared memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)

	if err := model.Migrate(conn); err != nil {
		return nil, err
	}

	return conn, nil
}

func TestDB() *gorm.DB {
	return db
}

// Recorder is a queue.Publisher keeping events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []*queue.Event
}

var _ queue.Publisher = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, events ...*queue.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)

	return nil
}

func (r *Recorder) Close() error {
	return nil
}

// Events returns the recorded events of the given types, all of them when none is given.
func (r *Recorder) Events(types ...queue.EventType) []*queue.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*queue.Event, 0, len(r.events))
	for _, event := range r.events {
		if len(types) == 0 {
			out = append(out, event)
			continue
		}
		for _, t := range types {
			if event.Type == t {
				out = append(out, event)
				break
			}
		}
	}

	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
