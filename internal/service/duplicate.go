package service

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/research/internal/model"
	"github.com/emrgen/research/internal/store"
	"github.com/sirupsen/logrus"
)

type copyStore interface {
	FindVerifiedCopies(ctx context.Context, criteria store.CopyCriteria) ([]*model.Document, error)
	ListNotDuplicates(ctx context.Context, documentID uint) ([]*model.DocumentNotDuplicate, error)
}

// DuplicateFinder looks up verified documents that are the same publication as a candidate.
type DuplicateFinder struct {
	store copyStore
}

func NewDuplicateFinder(store copyStore) *DuplicateFinder {
	return &DuplicateFinder{store: store}
}

// FindCopies returns the verified documents sharing the candidate title or scopus id,
// lowest id first. Copies too short to have an author at position are skipped, as are
// pairs marked as not duplicate for doc or any of related.
func (f *DuplicateFinder) FindCopies(ctx context.Context, doc *model.Document, position int, related ...uint) ([]*model.Document, error) {
	candidates, err := f.store.FindVerifiedCopies(ctx, store.CopyCriteria{
		Title:     doc.Title,
		ScopusID:  doc.ScopusID,
		ExcludeID: doc.ID,
	})
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return candidates, nil
	}

	distinct := mapset.NewSet[uint]()
	for _, id := range append([]uint{doc.ID}, related...) {
		if id == 0 {
			continue
		}
		marks, err := f.store.ListNotDuplicates(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, mark := range marks {
			distinct.Add(mark.Other(id))
		}
	}

	copies := make([]*model.Document, 0, len(candidates))
	for _, candidate := range candidates {
		if position >= len(candidate.Authors()) {
			continue
		}
		if distinct.Contains(candidate.ID) {
			continue
		}
		copies = append(copies, candidate)
	}

	if len(copies) > 1 {
		logrus.WithFields(logrus.Fields{
			"documentId": doc.ID,
			"copies":     len(copies),
		}).Debug("too many similar documents")
	}

	return copies, nil
}
