package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/research/internal/model"
	"github.com/emrgen/research/internal/queue"
	"github.com/emrgen/research/internal/store"
	"github.com/sirupsen/logrus"
)

// claim is a validated verification ready to be written.
type claim struct {
	// draft is set when the claim comes from a draft, it is promoted when it is
	// also the target and deleted otherwise.
	draft  *model.Document
	target *model.Document
	data   *AuthorshipData
	copies []uint
}

func (v *vacating) excluded() uint {
	if v == nil {
		return 0
	}

	return v.documentID
}

// verify dispatches on the document kind.
func (w *workflow) verify(ctx context.Context, doc *model.Document, input *VerificationInput, swap *vacating) (*Outcome, error) {
	switch doc.Kind {
	case model.DocumentKindVerified:
		return w.verifyVerifiedDocument(ctx, doc, input, swap)
	case model.DocumentKindDraft:
		return w.verifyDraft(ctx, doc, input, swap)
	case model.DocumentKindExternal:
		return w.verifyExternalDocument(ctx, doc, input, swap)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDocumentKind, doc.Kind)
	}
}

// plan validates a verification without writing anything.
func (w *workflow) plan(ctx context.Context, doc *model.Document, input *VerificationInput, swap *vacating, related ...uint) (*claim, *Rejection, error) {
	switch doc.Kind {
	case model.DocumentKindVerified:
		return w.planVerified(ctx, doc, input, swap)
	case model.DocumentKindDraft:
		return w.planDraft(ctx, doc, input, swap, related...)
	default:
		return nil, nil, fmt.Errorf("%w: cannot plan %q", ErrUnknownDocumentKind, doc.Kind)
	}
}

func (w *workflow) planVerified(ctx context.Context, doc *model.Document, input *VerificationInput, swap *vacating) (*claim, *Rejection, error) {
	entityID := w.researchEntityID
	if doc.ClaimOf(entityID) != nil && !swap.covers(doc.ID, entityID) {
		return nil, reject(MsgAlreadyVerified, entityID), nil
	}

	if doc.ScopusID != "" {
		duplicated, err := w.tx.HasVerifiedScopusID(ctx, entityID, doc.ScopusID, swap.excluded())
		if err != nil {
			return nil, nil, err
		}
		if duplicated {
			return nil, reject(MsgDocumentDuplicatedID, doc), nil
		}
	}

	data, err := w.resolver.resolve(ctx, doc, entityID, input, swap)
	if err != nil {
		return nil, nil, err
	}
	if !data.IsVerifiable {
		return nil, data.rejection(), nil
	}

	if held := doc.ClaimAt(data.Position); held != nil && *held.ResearchEntityID != entityID {
		return nil, conflictRejection(doc, data.Position, *held.ResearchEntityID), nil
	}

	return &claim{target: doc, data: data}, nil, nil
}

func (w *workflow) planDraft(ctx context.Context, draft *model.Document, input *VerificationInput, swap *vacating, related ...uint) (*claim, *Rejection, error) {
	entityID := w.researchEntityID
	if draft.DraftCreatorID == nil || *draft.DraftCreatorID != entityID {
		return nil, nil, fmt.Errorf("%w: %d", ErrDraftNotFound, draft.ID)
	}

	if !draft.IsValid() {
		return nil, reject(MsgDraftNotValid, draft), nil
	}

	if draft.ScopusID != "" {
		duplicated, err := w.tx.HasVerifiedScopusID(ctx, entityID, draft.ScopusID, swap.excluded())
		if err != nil {
			return nil, nil, err
		}
		if duplicated {
			return nil, reject(MsgDraftDuplicatedID, draft), nil
		}
	}

	data, err := w.resolver.resolve(ctx, draft, entityID, input, swap)
	if err != nil {
		return nil, nil, err
	}
	if !data.IsVerifiable {
		return nil, data.rejection(), nil
	}

	copies, err := w.finder.FindCopies(ctx, draft, data.Position, related...)
	if err != nil {
		return nil, nil, err
	}
	if len(copies) == 0 {
		return &claim{draft: draft, target: draft, data: data}, nil, nil
	}

	winner := copies[0]
	if winner.ClaimOf(entityID) != nil && !swap.covers(winner.ID, entityID) {
		return nil, reject(MsgAlreadyVerified, entityID), nil
	}
	if held := winner.ClaimAt(data.Position); held != nil && *held.ResearchEntityID != entityID {
		return nil, conflictRejection(winner, data.Position, *held.ResearchEntityID), nil
	}

	ids := make([]uint, 0, len(copies))
	for _, c := range copies {
		ids = append(ids, c.ID)
	}

	return &claim{draft: draft, target: winner, data: data, copies: ids}, nil, nil
}

// apply writes a planned claim and returns the reloaded verified document.
func (w *workflow) apply(ctx context.Context, c *claim) (*model.Document, error) {
	entityID := w.researchEntityID
	data := c.data
	logger := w.log().WithFields(logrus.Fields{
		"documentId": c.target.ID,
		"position":   data.Position,
	})

	if len(c.copies) > 1 {
		duplicateCandidatesTotal.Inc()
		w.emit(queue.EventTooManyDuplicates, c.draft.ID,
			fmt.Sprintf("too many similar documents to %d (%d)", c.draft.ID, len(c.copies)), c.copies...)
	}

	affiliations := data.AffiliationInstituteIDs
	switch {
	case c.draft == nil:
	case c.draft.ID == c.target.ID:
		promoted := *c.draft
		promoted.Kind = model.DocumentKindVerified
		promoted.DraftCreatorID = nil
		if err := w.tx.UpdateDocument(ctx, &promoted); err != nil {
			return nil, err
		}
		if err := w.tx.DeleteUnconfirmedAuthorships(ctx, promoted.ID); err != nil {
			return nil, err
		}
		logger.Debug("draft promoted")
	default:
		affiliations = addMissingAffiliation(affiliations, c.draft.SkeletonAt(data.Position))
		if err := w.tx.DeleteDocument(ctx, c.draft.ID); err != nil {
			return nil, err
		}
		logger.Debugf("draft %d substituted by %d", c.draft.ID, c.target.ID)
		w.emit(queue.EventDraftMerged, c.target.ID, "draft merged into verified document", c.draft.ID)
	}

	// verification clears a stale discard of the same document
	if _, err := w.tx.DeleteDiscarded(ctx, entityID, c.target.ID); err != nil {
		return nil, err
	}

	authorship := &model.Authorship{
		DocumentID:       c.target.ID,
		ResearchEntityID: &entityID,
		Position:         data.Position,
		Corresponding:    data.Corresponding,
		Public:           data.Public,
		Favorite:         data.Favorite,
		Affiliations:     newAffiliations(c.target.ID, affiliations),
	}
	if err := w.tx.CreateAuthorship(ctx, authorship); err != nil {
		if errors.Is(err, store.ErrPositionTaken) {
			return nil, &positionTakenError{documentID: c.target.ID, position: data.Position, err: err}
		}
		return nil, err
	}

	logger.Info("document verified")
	w.emit(queue.EventDocumentVerified, c.target.ID, "document verified")

	return w.tx.GetDocument(ctx, c.target.ID)
}

func (w *workflow) verifyVerifiedDocument(ctx context.Context, doc *model.Document, input *VerificationInput, swap *vacating) (*Outcome, error) {
	c, rejection, err := w.planVerified(ctx, doc, input, swap)
	if err != nil {
		return nil, err
	}
	if rejection != nil {
		return &Outcome{Rejection: rejection}, nil
	}

	verified, err := w.apply(ctx, c)
	if err != nil {
		return nil, err
	}

	return &Outcome{Document: verified}, nil
}

func (w *workflow) verifyDraft(ctx context.Context, draft *model.Document, input *VerificationInput, swap *vacating, related ...uint) (*Outcome, error) {
	c, rejection, err := w.planDraft(ctx, draft, input, swap, related...)
	if err != nil {
		return nil, err
	}
	if rejection != nil {
		return &Outcome{Rejection: rejection}, nil
	}

	verified, err := w.apply(ctx, c)
	if err != nil {
		return nil, err
	}

	return &Outcome{Document: verified}, nil
}

// verifyExternalDocument claims an external document through a private draft copy.
// The copy does not survive a rejected attempt.
func (w *workflow) verifyExternalDocument(ctx context.Context, doc *model.Document, input *VerificationInput, swap *vacating) (*Outcome, error) {
	draft, err := w.copyToDraft(ctx, doc)
	if err != nil {
		return nil, err
	}

	outcome, err := w.verifyDraft(ctx, draft, input, swap, doc.ID)
	if err != nil {
		return nil, err
	}
	if outcome.Rejected() {
		if err := w.tx.DeleteDocument(ctx, draft.ID); err != nil {
			return nil, err
		}
	}

	return outcome, nil
}

// removeVerify verifies doc and discards the document at discardID, validating the new
// claim before the old one is released.
func (w *workflow) removeVerify(ctx context.Context, doc *model.Document, input *VerificationInput, discardID uint) (*Outcome, error) {
	swap := &vacating{documentID: discardID, researchEntityID: w.researchEntityID}

	target := doc
	var related []uint
	if doc.Kind == model.DocumentKindExternal {
		draft, err := w.copyToDraft(ctx, doc)
		if err != nil {
			return nil, err
		}
		target = draft
		related = append(related, doc.ID)
	}

	// drops the temporary copy, if one was made
	cleanup := func() error {
		if target.ID == doc.ID {
			return nil
		}
		return w.tx.DeleteDocument(ctx, target.ID)
	}

	_, rejection, err := w.plan(ctx, target, input, swap, related...)
	if err != nil {
		return nil, err
	}
	if rejection != nil {
		if err := cleanup(); err != nil {
			return nil, err
		}
		return &Outcome{Rejection: rejection}, nil
	}

	if _, err := w.discard(ctx, discardID); err != nil {
		return nil, err
	}

	var outcome *Outcome
	if target.Kind == model.DocumentKindDraft {
		outcome, err = w.verifyDraft(ctx, target, input, nil, related...)
	} else {
		outcome, err = w.verify(ctx, target, input, nil)
	}
	if err != nil {
		return nil, err
	}
	if outcome.Rejected() {
		if err := cleanup(); err != nil {
			return nil, err
		}
	}

	return outcome, nil
}

// addMissingAffiliation adds the institutes of the draft authorship missing from ids.
func addMissingAffiliation(ids []uint, skeleton *model.Authorship) []uint {
	if skeleton == nil {
		return ids
	}

	merged := mapset.NewSet[uint](ids...)
	merged.Append(skeleton.InstituteIDs()...)

	out := merged.ToSlice()
	slices.Sort(out)

	return out
}

func newAffiliations(documentID uint, instituteIDs []uint) []*model.Affiliation {
	affiliations := make([]*model.Affiliation, 0, len(instituteIDs))
	for _, id := range instituteIDs {
		affiliations = append(affiliations, &model.Affiliation{
			DocumentID:  documentID,
			InstituteID: id,
		})
	}

	return affiliations
}

// VerifyDocument claims a document of any kind for the research entity.
func (d *DocumentService) VerifyDocument(ctx context.Context, researchEntityID, documentID uint, input *VerificationInput) (*Outcome, error) {
	var kind model.DocumentKind
	var outcome *Outcome
	err := d.run(ctx, researchEntityID, func(w *workflow) error {
		doc, err := w.tx.GetDocument(ctx, documentID)
		if err != nil {
			return err
		}
		kind = doc.Kind

		outcome, err = w.verify(ctx, doc, input, nil)
		return err
	})

	return d.finish(ctx, string(kind), researchEntityID, documentID, outcome, err)
}

// VerifyDraft claims a draft of the research entity.
func (d *DocumentService) VerifyDraft(ctx context.Context, researchEntityID, draftID uint, input *VerificationInput) (*Outcome, error) {
	var outcome *Outcome
	err := d.run(ctx, researchEntityID, func(w *workflow) error {
		draft, err := w.tx.GetDocument(ctx, draftID)
		if errors.Is(err, store.ErrDocumentNotFound) {
			return fmt.Errorf("%w: %d", ErrDraftNotFound, draftID)
		}
		if err != nil {
			return err
		}
		if draft.Kind != model.DocumentKindDraft {
			return fmt.Errorf("%w: %d", ErrDraftNotFound, draftID)
		}

		outcome, err = w.verifyDraft(ctx, draft, input, nil)
		return err
	})

	return d.finish(ctx, string(model.DocumentKindDraft), researchEntityID, draftID, outcome, err)
}

// RemoveVerify verifies documentID and discards discardID in one step. Nothing is
// discarded when the new claim is rejected.
func (d *DocumentService) RemoveVerify(ctx context.Context, researchEntityID, documentID uint, input *VerificationInput, discardID uint) (*Outcome, error) {
	if documentID == discardID {
		return nil, fmt.Errorf("%w: cannot replace document %d with itself", ErrInvalidInput, documentID)
	}

	var kind model.DocumentKind
	var outcome *Outcome
	err := d.run(ctx, researchEntityID, func(w *workflow) error {
		doc, err := w.tx.GetDocument(ctx, documentID)
		if err != nil {
			return err
		}
		kind = doc.Kind

		outcome, err = w.removeVerify(ctx, doc, input, discardID)
		return err
	})

	return d.finish(ctx, string(kind), researchEntityID, documentID, outcome, err)
}

// finish turns a lost position race into a conflict rejection and records the result.
func (d *DocumentService) finish(ctx context.Context, kind string, researchEntityID, id uint, outcome *Outcome, err error) (*Outcome, error) {
	var taken *positionTakenError
	if errors.As(err, &taken) {
		outcome, err = d.positionTaken(ctx, researchEntityID, taken)
	}

	observeVerification(kind, outcome, err)
	if err != nil {
		return nil, err
	}

	outcome.ID = id
	return outcome, nil
}

func (d *DocumentService) positionTaken(ctx context.Context, researchEntityID uint, taken *positionTakenError) (*Outcome, error) {
	doc, err := d.store.GetDocument(ctx, taken.documentID)
	if err != nil {
		return nil, errors.Join(taken, err)
	}

	if doc.ClaimOf(researchEntityID) != nil {
		return &Outcome{Rejection: reject(MsgAlreadyVerified, researchEntityID)}, nil
	}
	if held := doc.ClaimAt(taken.position); held != nil {
		return &Outcome{Rejection: conflictRejection(doc, taken.position, *held.ResearchEntityID)}, nil
	}

	return nil, taken
}

// VerifyDrafts verifies each draft with its default authorship.
func (d *DocumentService) VerifyDrafts(ctx context.Context, researchEntityID uint, draftIDs []uint) []*Outcome {
	outcomes := make([]*Outcome, 0, len(draftIDs))
	for _, id := range draftIDs {
		outcome, err := d.VerifyDraft(ctx, researchEntityID, id, nil)
		outcomes = append(outcomes, batchOutcome(id, outcome, err))
	}

	return outcomes
}

// VerifyDocuments verifies each document with its default authorship.
func (d *DocumentService) VerifyDocuments(ctx context.Context, researchEntityID uint, documentIDs []uint) []*Outcome {
	outcomes := make([]*Outcome, 0, len(documentIDs))
	for _, id := range documentIDs {
		outcome, err := d.VerifyDocument(ctx, researchEntityID, id, nil)
		outcomes = append(outcomes, batchOutcome(id, outcome, err))
	}

	return outcomes
}

// UnverifyDocument removes the authorship of the research entity. It reports whether
// the document was deleted as a consequence.
func (d *DocumentService) UnverifyDocument(ctx context.Context, researchEntityID, documentID uint) (bool, error) {
	var deleted bool
	err := d.run(ctx, researchEntityID, func(w *workflow) error {
		var err error
		deleted, err = w.unverify(ctx, documentID)
		return err
	})

	return deleted, err
}

func batchOutcome(id uint, outcome *Outcome, err error) *Outcome {
	if err != nil {
		logrus.WithField("id", id).Warnf("batch item failed: %v", err)
		return &Outcome{ID: id, Err: err}
	}

	return outcome
}
