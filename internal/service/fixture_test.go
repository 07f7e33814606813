package service

import (
	"context"
	"testing"

	"github.com/emrgen/research/internal/lock"
	"github.com/emrgen/research/internal/model"
	"github.com/emrgen/research/internal/store"
	"github.com/emrgen/research/internal/tester"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx      context.Context
	store    *store.GormStore
	docs     *DocumentService
	discards *DiscardService
	sources  *SourceService
	events   *tester.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := tester.NewDB()
	require.NoError(t, err)

	st := store.NewGormStore(db)
	locker := lock.NewLocalLocker()
	events := tester.NewRecorder()

	return &fixture{
		ctx:      context.Background(),
		store:    st,
		docs:     NewDocumentService(st, locker, events),
		discards: NewDiscardService(st, locker, events),
		sources:  NewSourceService(st, locker, events),
		events:   events,
	}
}

func (f *fixture) entity(t *testing.T, name string) uint {
	t.Helper()

	entity := &model.ResearchEntity{Kind: model.ResearchEntityUser, Name: name, Slug: name}
	require.NoError(t, f.store.CreateResearchEntity(f.ctx, entity))

	return entity.ID
}

func (f *fixture) institute(t *testing.T, name string) uint {
	t.Helper()

	institute := &model.Institute{Name: name}
	require.NoError(t, f.store.CreateInstitute(f.ctx, institute))

	return institute.ID
}

func (f *fixture) draft(t *testing.T, entityID uint, in *DraftInput) *model.Document {
	t.Helper()

	draft, err := f.docs.CreateDraft(f.ctx, entityID, in)
	require.NoError(t, err)

	return draft
}

// external stores a document mirrored from an outside database, with one unconfirmed
// authorship per author.
func (f *fixture) external(t *testing.T, title, authors, scopusID string, instituteID uint) *model.Document {
	t.Helper()

	doc := &model.Document{
		Kind:       model.DocumentKindExternal,
		Title:      title,
		AuthorsStr: authors,
		ScopusID:   scopusID,
	}
	require.NoError(t, f.store.CreateDocument(f.ctx, doc))

	for i := range doc.Authors() {
		require.NoError(t, f.store.CreateAuthorship(f.ctx, &model.Authorship{
			DocumentID:   doc.ID,
			Position:     i,
			Affiliations: newAffiliations(doc.ID, []uint{instituteID}),
		}))
	}

	loaded, err := f.store.GetDocument(f.ctx, doc.ID)
	require.NoError(t, err)

	return loaded
}

// verified creates a draft and verifies it, returning the verified document.
func (f *fixture) verified(t *testing.T, entityID uint, title, authors, scopusID string, position int, instituteID uint) *model.Document {
	t.Helper()

	draft := f.draft(t, entityID, &DraftInput{
		Title:      title,
		AuthorsStr: authors,
		ScopusID:   scopusID,
		Authorships: []DraftAuthorship{
			{Position: position, AffiliationInstituteIDs: []uint{instituteID}},
		},
	})

	outcome, err := f.docs.VerifyDocument(f.ctx, entityID, draft.ID, nil)
	require.NoError(t, err)
	require.Nil(t, outcome.Rejection)

	return outcome.Document
}

func at(position int) *int {
	return &position
}
