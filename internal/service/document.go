package service

import (
	"context"
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/research/internal/lock"
	"github.com/emrgen/research/internal/model"
	"github.com/emrgen/research/internal/queue"
	"github.com/emrgen/research/internal/store"
)

// NewDocumentService creates a new DocumentService.
func NewDocumentService(store store.Store, locker lock.Locker, publisher queue.Publisher) *DocumentService {
	return &DocumentService{
		runner: runner{
			store:     store,
			locker:    locker,
			publisher: publisher,
		},
		maxFavorites: DefaultMaxFavorites,
	}
}

// DocumentService manages drafts and the verification of documents by research entities.
type DocumentService struct {
	runner
	maxFavorites int
}

// DraftAuthorship is an author position entered on a draft, not yet claimed by anyone.
type DraftAuthorship struct {
	Position                int    `json:"position"`
	AffiliationInstituteIDs []uint `json:"affiliationInstituteIds"`
	Corresponding           bool   `json:"corresponding"`
}

// DraftInput holds the editable fields of a draft.
type DraftInput struct {
	Title        string            `json:"title"`
	AuthorsStr   string            `json:"authorsStr"`
	ScopusID     string            `json:"scopusId"`
	DOI          string            `json:"doi"`
	Year         string            `json:"year"`
	Abstract     string            `json:"abstract"`
	DocumentType string            `json:"documentType"`
	SourceID     *uint             `json:"sourceId"`
	Authorships  []DraftAuthorship `json:"authorships"`
}

func (in *DraftInput) apply(doc *model.Document) {
	doc.Title = in.Title
	doc.AuthorsStr = in.AuthorsStr
	doc.ScopusID = in.ScopusID
	doc.DOI = in.DOI
	doc.Year = in.Year
	doc.Abstract = in.Abstract
	doc.DocumentType = in.DocumentType
	doc.SourceID = in.SourceID
	doc.Source = nil
}

// skeleton builds the unconfirmed authorships of a draft.
func (in *DraftInput) skeleton(documentID uint) ([]*model.Authorship, error) {
	authors := len((&model.Document{AuthorsStr: in.AuthorsStr}).Authors())
	positions := mapset.NewSet[int]()

	authorships := make([]*model.Authorship, 0, len(in.Authorships))
	for _, a := range in.Authorships {
		if a.Position < 0 || a.Position >= authors {
			return nil, fmt.Errorf("%w: position %d out of %d authors", ErrInvalidInput, a.Position, authors)
		}
		if !positions.Add(a.Position) {
			return nil, fmt.Errorf("%w: position %d given twice", ErrInvalidInput, a.Position)
		}

		authorships = append(authorships, &model.Authorship{
			DocumentID:    documentID,
			Position:      a.Position,
			Corresponding: a.Corresponding,
			Affiliations:  newAffiliations(documentID, a.AffiliationInstituteIDs),
		})
	}

	return authorships, nil
}

func (w *workflow) createSkeleton(ctx context.Context, authorships []*model.Authorship) error {
	for _, authorship := range authorships {
		if err := w.tx.CreateAuthorship(ctx, authorship); err != nil {
			return err
		}
	}

	return nil
}

// CreateDraft creates a draft owned by the research entity.
func (d *DocumentService) CreateDraft(ctx context.Context, researchEntityID uint, in *DraftInput) (*model.Document, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: missing draft data", ErrInvalidInput)
	}

	var draft *model.Document
	err := d.run(ctx, researchEntityID, func(w *workflow) error {
		if _, err := w.tx.GetResearchEntity(ctx, researchEntityID); err != nil {
			return err
		}

		creator := researchEntityID
		doc := &model.Document{
			Kind:           model.DocumentKindDraft,
			DraftCreatorID: &creator,
		}
		in.apply(doc)
		if err := w.tx.CreateDocument(ctx, doc); err != nil {
			return err
		}

		skeleton, err := in.skeleton(doc.ID)
		if err != nil {
			return err
		}
		if err := w.createSkeleton(ctx, skeleton); err != nil {
			return err
		}

		draft, err = w.tx.GetDocument(ctx, doc.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return draft, nil
}

// CreateDrafts creates each draft independently.
func (d *DocumentService) CreateDrafts(ctx context.Context, researchEntityID uint, in []*DraftInput) []*Outcome {
	outcomes := make([]*Outcome, 0, len(in))
	for _, draftInput := range in {
		draft, err := d.CreateDraft(ctx, researchEntityID, draftInput)
		if err != nil {
			outcomes = append(outcomes, &Outcome{Err: err})
			continue
		}
		outcomes = append(outcomes, &Outcome{ID: draft.ID, Document: draft})
	}

	return outcomes
}

// ownDraft loads a draft and checks it belongs to the research entity.
func (w *workflow) ownDraft(ctx context.Context, draftID uint) (*model.Document, error) {
	draft, err := w.tx.GetDocument(ctx, draftID)
	if errors.Is(err, store.ErrDocumentNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrDraftNotFound, draftID)
	}
	if err != nil {
		return nil, err
	}
	if draft.Kind != model.DocumentKindDraft || draft.DraftCreatorID == nil || *draft.DraftCreatorID != w.researchEntityID {
		return nil, fmt.Errorf("%w: %d", ErrDraftNotFound, draftID)
	}

	return draft, nil
}

// UpdateDraft replaces the fields of a draft. An edited draft is no longer synchronized
// with any external source. Authorships are replaced only when given.
func (d *DocumentService) UpdateDraft(ctx context.Context, researchEntityID, draftID uint, in *DraftInput) (*model.Document, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: missing draft data", ErrInvalidInput)
	}

	var draft *model.Document
	err := d.run(ctx, researchEntityID, func(w *workflow) error {
		current, err := w.ownDraft(ctx, draftID)
		if err != nil {
			return err
		}

		updated := *current
		in.apply(&updated)
		updated.Kind = model.DocumentKindDraft
		updated.Synchronized = false
		if err := w.tx.UpdateDocument(ctx, &updated); err != nil {
			return err
		}

		if in.Authorships != nil {
			skeleton, err := in.skeleton(draftID)
			if err != nil {
				return err
			}
			if err := w.tx.DeleteUnconfirmedAuthorships(ctx, draftID); err != nil {
				return err
			}
			if err := w.createSkeleton(ctx, skeleton); err != nil {
				return err
			}
		}

		draft, err = w.tx.GetDocument(ctx, draftID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return draft, nil
}

// DeleteDraft deletes a draft of the research entity.
func (d *DocumentService) DeleteDraft(ctx context.Context, researchEntityID, draftID uint) error {
	return d.run(ctx, researchEntityID, func(w *workflow) error {
		if _, err := w.ownDraft(ctx, draftID); err != nil {
			return err
		}

		return w.tx.DeleteDocument(ctx, draftID)
	})
}

// DeleteDrafts deletes each draft independently.
func (d *DocumentService) DeleteDrafts(ctx context.Context, researchEntityID uint, draftIDs []uint) []*Outcome {
	outcomes := make([]*Outcome, 0, len(draftIDs))
	for _, id := range draftIDs {
		outcomes = append(outcomes, &Outcome{ID: id, Err: d.DeleteDraft(ctx, researchEntityID, id)})
	}

	return outcomes
}

// copyToDraft materialises a private draft of doc for the research entity.
func (w *workflow) copyToDraft(ctx context.Context, doc *model.Document) (*model.Document, error) {
	creator := w.researchEntityID
	draft := &model.Document{
		Kind:           model.DocumentKindDraft,
		Title:          doc.Title,
		AuthorsStr:     doc.AuthorsStr,
		ScopusID:       doc.ScopusID,
		DOI:            doc.DOI,
		Year:           doc.Year,
		Abstract:       doc.Abstract,
		DocumentType:   doc.DocumentType,
		Synchronized:   doc.IsExternallySourced(),
		SourceID:       doc.SourceID,
		DraftCreatorID: &creator,
	}
	if err := w.tx.CreateDocument(ctx, draft); err != nil {
		return nil, err
	}

	skeleton := make([]*model.Authorship, 0, len(doc.Authorships))
	for _, a := range doc.Authorships {
		skeleton = append(skeleton, &model.Authorship{
			DocumentID:    draft.ID,
			Position:      a.Position,
			Corresponding: a.Corresponding,
			Affiliations:  newAffiliations(draft.ID, a.InstituteIDs()),
		})
	}
	if err := w.createSkeleton(ctx, skeleton); err != nil {
		return nil, err
	}

	w.log().WithField("documentId", doc.ID).Debugf("copied to draft %d", draft.ID)

	return w.tx.GetDocument(ctx, draft.ID)
}

// CopyDocument creates a private draft copy of a verified or external document.
func (d *DocumentService) CopyDocument(ctx context.Context, researchEntityID, documentID uint) (*model.Document, error) {
	var draft *model.Document
	err := d.run(ctx, researchEntityID, func(w *workflow) error {
		doc, err := w.tx.GetDocument(ctx, documentID)
		if err != nil {
			return err
		}
		if doc.Kind == model.DocumentKindDraft {
			return fmt.Errorf("%w: document %d is a draft", ErrInvalidInput, documentID)
		}

		draft, err = w.copyToDraft(ctx, doc)
		return err
	})
	if err != nil {
		return nil, err
	}

	return draft, nil
}

// CopyDocuments copies each document independently.
func (d *DocumentService) CopyDocuments(ctx context.Context, researchEntityID uint, documentIDs []uint) []*Outcome {
	outcomes := make([]*Outcome, 0, len(documentIDs))
	for _, id := range documentIDs {
		draft, err := d.CopyDocument(ctx, researchEntityID, id)
		if err != nil {
			outcomes = append(outcomes, &Outcome{ID: id, Err: err})
			continue
		}
		outcomes = append(outcomes, &Outcome{ID: id, Document: draft})
	}

	return outcomes
}
