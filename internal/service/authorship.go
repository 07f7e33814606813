package service

import (
	"context"
	"errors"
	"slices"

	"github.com/emrgen/research/internal/model"
	"github.com/emrgen/research/internal/store"
)

// VerificationInput is what a research entity states when claiming a document.
// A nil Position selects the single unconfirmed authorship of the document, or else the
// author whose name matches the research entity.
type VerificationInput struct {
	Position                *int   `json:"position,omitempty"`
	AffiliationInstituteIDs []uint `json:"affiliationInstituteIds,omitempty"`
	Corresponding           bool   `json:"corresponding"`
	Public                  bool   `json:"public"`
	Favorite                bool   `json:"favorite"`
}

// AuthorshipData is the resolved claim of a research entity on a document.
type AuthorshipData struct {
	IsVerifiable            bool
	Error                   string
	Document                *model.Document
	Position                int
	AffiliationInstituteIDs []uint
	Corresponding           bool
	Public                  bool
	Favorite                bool
}

func (a *AuthorshipData) rejection() *Rejection {
	return reject(a.Error, a.Document)
}

// vacating names a claim that is being released in the same workflow.
type vacating struct {
	documentID       uint
	researchEntityID uint
}

func (v *vacating) covers(documentID, researchEntityID uint) bool {
	return v != nil && v.documentID == documentID && v.researchEntityID == researchEntityID
}

// AuthorshipResolver computes which position a research entity claims on a document
// and whether that claim is structurally valid.
type AuthorshipResolver struct {
	institutes store.InstituteStore
	entities   store.ResearchEntityStore
}

func NewAuthorshipResolver(institutes store.InstituteStore, entities store.ResearchEntityStore) *AuthorshipResolver {
	return &AuthorshipResolver{
		institutes: institutes,
		entities:   entities,
	}
}

// researchEntity loads the claiming entity, nil when it is unknown.
func (r *AuthorshipResolver) researchEntity(ctx context.Context, id uint) (*model.ResearchEntity, error) {
	entity, err := r.entities.GetResearchEntity(ctx, id)
	if errors.Is(err, store.ErrResearchEntityNotFound) {
		return nil, nil
	}

	return entity, err
}

func (r *AuthorshipResolver) GetAuthorshipsData(ctx context.Context, doc *model.Document, researchEntityID uint, input *VerificationInput) (*AuthorshipData, error) {
	return r.resolve(ctx, doc, researchEntityID, input, nil)
}

func (r *AuthorshipResolver) resolve(ctx context.Context, doc *model.Document, researchEntityID uint, input *VerificationInput, swap *vacating) (*AuthorshipData, error) {
	if input == nil {
		input = &VerificationInput{}
	}

	data := &AuthorshipData{
		Document:      doc,
		Position:      -1,
		Corresponding: input.Corresponding,
		Public:        input.Public,
		Favorite:      input.Favorite,
	}

	var entity *model.ResearchEntity
	entityLoaded := false
	loadEntity := func() (*model.ResearchEntity, error) {
		if entityLoaded {
			return entity, nil
		}
		var err error
		entity, err = r.researchEntity(ctx, researchEntityID)
		entityLoaded = err == nil
		return entity, err
	}

	var skeleton *model.Authorship
	if input.Position != nil {
		data.Position = *input.Position
		skeleton = doc.SkeletonAt(data.Position)
	} else if unconfirmed := doc.Skeleton(); len(unconfirmed) == 1 {
		skeleton = unconfirmed[0]
		data.Position = skeleton.Position
		data.Corresponding = data.Corresponding || skeleton.Corresponding
	} else {
		entity, err := loadEntity()
		if err != nil {
			return nil, err
		}
		if entity != nil {
			if position, ok := doc.AuthorPositionOf(entity.Aliases()); ok {
				data.Position = position
				skeleton = doc.SkeletonAt(position)
			}
		}
	}

	if data.Position < 0 || data.Position >= len(doc.Authors()) {
		data.Error = MsgInvalidPosition
		return data, nil
	}

	if claim := doc.ClaimOf(researchEntityID); claim != nil && claim.Position != data.Position &&
		!swap.covers(doc.ID, researchEntityID) {
		data.Error = MsgVerifiedAsOtherAuthor
		return data, nil
	}

	ids := input.AffiliationInstituteIDs
	if len(ids) == 0 && skeleton != nil {
		ids = skeleton.InstituteIDs()
	}
	if len(ids) == 0 {
		entity, err := loadEntity()
		if err != nil {
			return nil, err
		}
		if entity != nil && entity.InstituteID != nil {
			ids = []uint{*entity.InstituteID}
		}
	}
	ids = slices.Compact(slices.Sorted(slices.Values(ids)))
	if len(ids) == 0 {
		data.Error = MsgNoAffiliation
		return data, nil
	}

	missing, err := r.institutes.MissingInstitutes(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		data.Error = MsgInstituteNotFound
		return data, nil
	}

	data.AffiliationInstituteIDs = ids
	data.IsVerifiable = true

	return data, nil
}
