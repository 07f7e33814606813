package service

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/research/internal/lock"
	"github.com/emrgen/research/internal/model"
	"github.com/emrgen/research/internal/queue"
	"github.com/emrgen/research/internal/store"
	"github.com/sirupsen/logrus"
)

const sourceMergeKey = "source-merge"

func NewSourceService(store store.Store, locker lock.Locker, publisher queue.Publisher) *SourceService {
	return &SourceService{
		runner: runner{
			store:     store,
			locker:    locker,
			publisher: publisher,
		},
	}
}

// SourceService folds duplicate publication venues into one canonical source.
type SourceService struct {
	runner
}

// MergeResult lists the sources folded into Source. Merged is false when no candidate
// could be reconciled.
type MergeResult struct {
	Source  *model.Source   `json:"source"`
	Removed []*model.Source `json:"removed"`
	Merged  bool            `json:"merged"`
}

// mergeSourceFields reconciles candidate into base. Fields set on both sides must agree.
func mergeSourceFields(base, candidate model.Source) (model.Source, bool) {
	merged := base
	ok := mergeString(&merged.Title, candidate.Title) &&
		mergeString(&merged.ISSN, candidate.ISSN) &&
		mergeString(&merged.EISSN, candidate.EISSN) &&
		mergeString(&merged.Acronym, candidate.Acronym) &&
		mergeString(&merged.Location, candidate.Location) &&
		mergeInt(&merged.Year, candidate.Year) &&
		mergeString(&merged.Publisher, candidate.Publisher) &&
		mergeString(&merged.ISBN, candidate.ISBN) &&
		mergeString(&merged.Website, candidate.Website) &&
		mergeString((*string)(&merged.Type), string(candidate.Type)) &&
		mergeString(&merged.ScopusID, candidate.ScopusID)
	if !ok {
		return base, false
	}

	return merged, true
}

func mergeString(dst *string, value string) bool {
	switch {
	case value == "" || *dst == value:
		return true
	case *dst == "":
		*dst = value
		return true
	default:
		return false
	}
}

func mergeInt(dst *int, value int) bool {
	switch {
	case value == 0 || *dst == value:
		return true
	case *dst == 0:
		*dst = value
		return true
	default:
		return false
	}
}

// fold moves the documents and metric links of dup onto canonical and deletes dup.
func fold(ctx context.Context, tx store.Store, canonical, dup *model.Source) error {
	if _, err := tx.RepointDocuments(ctx, dup.ID, canonical.ID); err != nil {
		return err
	}

	links, err := tx.ListSourceMetricLinks(ctx, dup.ID)
	if err != nil {
		return err
	}
	for _, link := range links {
		if err := tx.DeleteSourceMetricLink(ctx, link.ID); err != nil {
			return err
		}
		exists, err := tx.HasSourceMetricLink(ctx, canonical.ID, link.SourceMetricID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := tx.LinkSourceMetric(ctx, canonical.ID, link.SourceMetricID); err != nil {
			return err
		}
	}

	return tx.DeleteSource(ctx, dup.ID)
}

func (s *SourceService) merge(ctx context.Context, tx store.Store, source *model.Source, copies []*model.Source) (*MergeResult, []*queue.Event, error) {
	merged := *source
	removed := make([]*model.Source, 0)
	seen := mapset.NewThreadUnsafeSet[uint](source.ID)
	for _, candidate := range copies {
		// each source is folded at most once
		if !seen.Add(candidate.ID) {
			continue
		}

		next, ok := mergeSourceFields(merged, *candidate)
		if !ok {
			logrus.WithFields(logrus.Fields{
				"sourceId":    source.ID,
				"candidateId": candidate.ID,
			}).Debug("source is not a duplicate")
			continue
		}

		if err := fold(ctx, tx, source, candidate); err != nil {
			return nil, nil, err
		}
		merged = next
		removed = append(removed, candidate)
	}

	if len(removed) == 0 {
		return &MergeResult{Source: source, Removed: removed}, nil, nil
	}

	if err := tx.UpdateSource(ctx, &merged); err != nil {
		return nil, nil, err
	}
	sourcesMergedTotal.Add(float64(len(removed)))

	event := queue.NewEvent(queue.EventSourceMerged)
	event.SourceID = merged.ID
	event.Message = fmt.Sprintf("%d sources merged", len(removed))
	for _, r := range removed {
		event.RelatedIDs = append(event.RelatedIDs, r.ID)
	}

	return &MergeResult{Source: &merged, Removed: removed, Merged: true}, []*queue.Event{event}, nil
}

func (s *SourceService) transact(ctx context.Context, f func(tx store.Store) ([]*queue.Event, error)) error {
	unlock, err := s.locker.Lock(ctx, sourceMergeKey)
	if err != nil {
		return err
	}
	defer unlock()

	var events []*queue.Event
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		events, err = f(tx)
		return err
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events)

	return nil
}

// Merge folds the given copies into the source, skipping candidates that disagree with it.
func (s *SourceService) Merge(ctx context.Context, sourceID uint, copyIDs []uint) (*MergeResult, error) {
	var result *MergeResult
	err := s.transact(ctx, func(tx store.Store) ([]*queue.Event, error) {
		source, err := tx.GetSource(ctx, sourceID)
		if err != nil {
			return nil, err
		}

		ids := mapset.NewThreadUnsafeSet[uint](copyIDs...)
		copies := make([]*model.Source, 0, ids.Cardinality())
		for _, id := range copyIDs {
			if !ids.Contains(id) {
				continue
			}
			ids.Remove(id)
			c, err := tx.GetSource(ctx, id)
			if err != nil {
				return nil, err
			}
			copies = append(copies, c)
		}

		var events []*queue.Event
		result, events, err = s.merge(ctx, tx, source, copies)
		return events, err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// SearchCopies lists the sources sharing title, scopus id or issn with the source.
func (s *SourceService) SearchCopies(ctx context.Context, sourceID uint) ([]*model.Source, error) {
	source, err := s.store.GetSource(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	return s.store.SearchSourceCopies(ctx, source)
}

// MergeDuplicates searches the copies of a source and merges them into it.
func (s *SourceService) MergeDuplicates(ctx context.Context, sourceID uint) (*MergeResult, error) {
	var result *MergeResult
	err := s.transact(ctx, func(tx store.Store) ([]*queue.Event, error) {
		source, err := tx.GetSource(ctx, sourceID)
		if err != nil {
			return nil, err
		}
		copies, err := tx.SearchSourceCopies(ctx, source)
		if err != nil {
			return nil, err
		}

		var events []*queue.Event
		result, events, err = s.merge(ctx, tx, source, copies)
		return events, err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// MergeAll merges the duplicates of every source, lowest id first, and returns the
// number of removed sources.
func (s *SourceService) MergeAll(ctx context.Context) (int, error) {
	sources, err := s.store.ListSources(ctx)
	if err != nil {
		return 0, err
	}

	removed := mapset.NewSet[uint]()
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return removed.Cardinality(), err
		}
		if removed.Contains(source.ID) {
			continue
		}

		result, err := s.MergeDuplicates(ctx, source.ID)
		if err != nil {
			return removed.Cardinality(), err
		}
		for _, r := range result.Removed {
			removed.Add(r.ID)
		}
	}

	return removed.Cardinality(), nil
}
