package service

import (
	"context"
	"fmt"

	"github.com/emrgen/research/internal/lock"
	"github.com/emrgen/research/internal/model"
	"github.com/emrgen/research/internal/queue"
	"github.com/emrgen/research/internal/store"
)

func NewDiscardService(store store.Store, locker lock.Locker, publisher queue.Publisher) *DiscardService {
	return &DiscardService{
		runner: runner{
			store:     store,
			locker:    locker,
			publisher: publisher,
		},
	}
}

// DiscardService keeps the per research entity ledger of suppressed documents.
type DiscardService struct {
	runner
}

// discard releases any claim of the research entity on the document and records the
// discard entry. An existing entry is returned as is.
func (w *workflow) discard(ctx context.Context, documentID uint) (*model.DiscardedDocument, error) {
	if _, err := w.tx.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}

	if _, err := w.releaseClaim(ctx, documentID); err != nil {
		return nil, err
	}

	row, created, err := w.tx.FindOrCreateDiscarded(ctx, w.researchEntityID, documentID)
	if err != nil {
		return nil, err
	}

	if created {
		ledgerOperationsTotal.WithLabelValues("discard").Inc()
		w.emit(queue.EventDocumentDiscarded, documentID, "document discarded")
	} else {
		w.log().WithField("documentId", documentID).Debug("document already discarded")
		w.emit(queue.EventAlreadyDiscarded, documentID, "document already discarded")
	}

	return row, nil
}

func (w *workflow) undiscard(ctx context.Context, documentID uint) (*LedgerOutcome, error) {
	removed, err := w.tx.DeleteDiscarded(ctx, w.researchEntityID, documentID)
	if err != nil {
		return nil, err
	}
	if removed == 0 {
		return &LedgerOutcome{ID: documentID, Rejection: reject(MsgNotDiscarded, documentID)}, nil
	}

	ledgerOperationsTotal.WithLabelValues("undiscard").Inc()
	w.emit(queue.EventDocumentUndiscarded, documentID, "document undiscarded")

	deleted, err := w.deleteIfNotVerified(ctx, documentID)
	if err != nil {
		return nil, err
	}

	return &LedgerOutcome{ID: documentID, Deleted: deleted}, nil
}

// DiscardDocument hides a document from the research entity, dropping its claim if any.
func (s *DiscardService) DiscardDocument(ctx context.Context, researchEntityID, documentID uint) (*model.DiscardedDocument, error) {
	var row *model.DiscardedDocument
	err := s.run(ctx, researchEntityID, func(w *workflow) error {
		var err error
		row, err = w.discard(ctx, documentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return row, nil
}

// DiscardDocuments discards each document independently.
func (s *DiscardService) DiscardDocuments(ctx context.Context, researchEntityID uint, documentIDs []uint) []*LedgerOutcome {
	outcomes := make([]*LedgerOutcome, 0, len(documentIDs))
	for _, id := range documentIDs {
		row, err := s.DiscardDocument(ctx, researchEntityID, id)
		outcomes = append(outcomes, &LedgerOutcome{ID: id, Discarded: row, Err: err})
	}

	return outcomes
}

// UndiscardDocument removes the discard entry and deletes the document when nobody
// verified or discarded it.
func (s *DiscardService) UndiscardDocument(ctx context.Context, researchEntityID, documentID uint) (*LedgerOutcome, error) {
	var outcome *LedgerOutcome
	err := s.run(ctx, researchEntityID, func(w *workflow) error {
		var err error
		outcome, err = w.undiscard(ctx, documentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

// SetDocumentAsNotDuplicate records that two documents are distinct publications.
func (s *DiscardService) SetDocumentAsNotDuplicate(ctx context.Context, researchEntityID, document1ID, document2ID uint) (*model.DocumentNotDuplicate, error) {
	if document1ID == document2ID {
		return nil, fmt.Errorf("%w: a document cannot be marked as not duplicate of itself", ErrInvalidInput)
	}

	var mark *model.DocumentNotDuplicate
	err := s.run(ctx, researchEntityID, func(w *workflow) error {
		for _, id := range []uint{document1ID, document2ID} {
			if _, err := w.tx.GetDocument(ctx, id); err != nil {
				return err
			}
		}

		var err error
		mark, err = w.tx.FindOrCreateNotDuplicate(ctx, model.NewDocumentNotDuplicate(researchEntityID, document1ID, document2ID))
		if err != nil {
			return err
		}

		ledgerOperationsTotal.WithLabelValues("not_duplicate").Inc()
		w.emit(queue.EventNotDuplicateMarked, mark.DocumentID, "documents marked as not duplicate", mark.DuplicateID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return mark, nil
}
