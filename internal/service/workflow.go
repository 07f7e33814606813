package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/emrgen/research/internal/lock"
	"github.com/emrgen/research/internal/model"
	"github.com/emrgen/research/internal/queue"
	"github.com/emrgen/research/internal/store"
	"github.com/sirupsen/logrus"
)

// runner executes the workflows of one research entity one at a time, each inside a
// store transaction. Events are published after commit.
type runner struct {
	store     store.Store
	locker    lock.Locker
	publisher queue.Publisher
}

func researchEntityKey(id uint) string {
	return fmt.Sprintf("research-entity:%d", id)
}

func (r *runner) run(ctx context.Context, researchEntityID uint, f func(w *workflow) error) error {
	unlock, err := r.locker.Lock(ctx, researchEntityKey(researchEntityID))
	if err != nil {
		return err
	}
	defer unlock()

	var events []*queue.Event
	err = r.store.Transaction(ctx, func(tx store.Store) error {
		w := newWorkflow(tx, researchEntityID)
		if err := f(w); err != nil {
			return err
		}
		events = w.events
		return nil
	})
	if err != nil {
		return err
	}

	r.publish(ctx, events)

	return nil
}

func (r *runner) publish(ctx context.Context, events []*queue.Event) {
	if len(events) == 0 {
		return
	}
	if err := r.publisher.Publish(ctx, events...); err != nil {
		logrus.Errorf("error publishing %d events: %v", len(events), err)
	}
}

// workflow is the transaction-scoped view of a research entity operation.
type workflow struct {
	tx               store.Store
	researchEntityID uint
	finder           *DuplicateFinder
	resolver         *AuthorshipResolver
	events           []*queue.Event
}

func newWorkflow(tx store.Store, researchEntityID uint) *workflow {
	return &workflow{
		tx:               tx,
		researchEntityID: researchEntityID,
		finder:           NewDuplicateFinder(tx),
		resolver:         NewAuthorshipResolver(tx, tx),
	}
}

func (w *workflow) log() *logrus.Entry {
	return logrus.WithField("researchEntityId", w.researchEntityID)
}

func (w *workflow) emit(eventType queue.EventType, documentID uint, message string, related ...uint) {
	event := queue.NewEvent(eventType)
	event.ResearchEntityID = w.researchEntityID
	event.DocumentID = documentID
	event.Message = message
	event.RelatedIDs = related
	w.events = append(w.events, event)
}

// positionTakenError is raised when the authorship insert loses a race on a position.
type positionTakenError struct {
	documentID uint
	position   int
	err        error
}

func (e *positionTakenError) Error() string {
	return e.err.Error()
}

func (e *positionTakenError) Unwrap() error {
	return e.err
}

// releaseClaim deletes the authorship of the research entity on the document, if any.
func (w *workflow) releaseClaim(ctx context.Context, documentID uint) (bool, error) {
	authorship, err := w.tx.GetAuthorship(ctx, documentID, w.researchEntityID)
	if errors.Is(err, store.ErrAuthorshipNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := w.tx.DeleteAuthorship(ctx, authorship.ID); err != nil {
		return false, err
	}
	w.emit(queue.EventDocumentUnverified, documentID, "authorship removed")

	return true, nil
}

// unverify removes the claim of the research entity and deletes the document when
// nobody holds it any more.
func (w *workflow) unverify(ctx context.Context, documentID uint) (bool, error) {
	if _, err := w.tx.GetDocument(ctx, documentID); err != nil {
		return false, err
	}

	if _, err := w.releaseClaim(ctx, documentID); err != nil {
		return false, err
	}

	return w.deleteIfNotVerified(ctx, documentID)
}

// deleteIfNotVerified deletes a verified document that is not externally sourced, has no
// confirmed authorship and is not referenced by a discard entry.
func (w *workflow) deleteIfNotVerified(ctx context.Context, documentID uint) (bool, error) {
	doc, err := w.tx.GetDocument(ctx, documentID)
	if errors.Is(err, store.ErrDocumentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if doc.Kind != model.DocumentKindVerified || doc.IsExternallySourced() {
		return false, nil
	}

	confirmed, err := w.tx.CountConfirmedAuthorships(ctx, doc.ID)
	if err != nil {
		return false, err
	}
	if confirmed > 0 {
		return false, nil
	}

	discarded, err := w.tx.CountDiscarded(ctx, doc.ID)
	if err != nil {
		return false, err
	}
	if discarded > 0 {
		return false, nil
	}

	if err := w.tx.DeleteDocument(ctx, doc.ID); err != nil {
		return false, err
	}
	w.log().WithField("documentId", doc.ID).Info("deleted document without authorships")
	w.emit(queue.EventDocumentDeleted, doc.ID, "document deleted, no authorships left")

	return true, nil
}
