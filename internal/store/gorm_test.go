package store

import (
	"context"
	"testing"

	"github.com/emrgen/research/internal/model"
	"github.com/emrgen/research/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	tester.Setup()
	m.Run()
}

func TestGormStore_Migrate_Idempotent(t *testing.T) {
	s := NewGormStore(tester.TestDB())

	require.NoError(t, s.Migrate())
	require.NoError(t, s.Migrate())
}

func newTestStore(t *testing.T) *GormStore {
	t.Helper()

	db, err := tester.NewDB()
	require.NoError(t, err)

	return NewGormStore(db)
}

func createDocument(t *testing.T, s *GormStore, doc *model.Document) *model.Document {
	t.Helper()
	require.NoError(t, s.CreateDocument(context.Background(), doc))

	return doc
}

func entityID(id uint) *uint {
	return &id
}

func TestGormStore_CreateAuthorship_PositionTaken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := createDocument(t, s, &model.Document{Kind: model.DocumentKindVerified, Title: "T", AuthorsStr: "A, B"})
	require.NoError(t, s.CreateAuthorship(ctx, &model.Authorship{DocumentID: doc.ID, ResearchEntityID: entityID(1), Position: 0}))

	err := s.CreateAuthorship(ctx, &model.Authorship{DocumentID: doc.ID, ResearchEntityID: entityID(2), Position: 0})
	assert.ErrorIs(t, err, ErrPositionTaken)

	err = s.CreateAuthorship(ctx, &model.Authorship{DocumentID: doc.ID, ResearchEntityID: entityID(1), Position: 1})
	assert.ErrorIs(t, err, ErrPositionTaken)

	count, err := s.CountConfirmedAuthorships(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormStore_UnconfirmedAuthorships(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := createDocument(t, s, &model.Document{Kind: model.DocumentKindDraft, Title: "T", AuthorsStr: "A, B, C"})
	for _, position := range []int{0, 1} {
		require.NoError(t, s.CreateAuthorship(ctx, &model.Authorship{
			DocumentID:   doc.ID,
			Position:     position,
			Affiliations: []*model.Affiliation{{DocumentID: doc.ID, InstituteID: 5}},
		}))
	}
	require.NoError(t, s.CreateAuthorship(ctx, &model.Authorship{DocumentID: doc.ID, ResearchEntityID: entityID(1), Position: 2}))

	loaded, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Skeleton(), 2)
	assert.Len(t, loaded.Affiliations, 2)

	require.NoError(t, s.DeleteUnconfirmedAuthorships(ctx, doc.ID))

	loaded, err = s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Authorships, 1)
	assert.Equal(t, 2, loaded.Authorships[0].Position)
	assert.Empty(t, loaded.Affiliations)
}

func TestGormStore_GetDocument_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetDocument(context.Background(), 42)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = s.GetAuthorship(context.Background(), 42, 1)
	assert.ErrorIs(t, err, ErrAuthorshipNotFound)
}

func TestGormStore_FindVerifiedCopies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := createDocument(t, s, &model.Document{Kind: model.DocumentKindVerified, Title: "Same title", AuthorsStr: "A"})
	b := createDocument(t, s, &model.Document{Kind: model.DocumentKindVerified, Title: "Other title", ScopusID: "S1", AuthorsStr: "A"})
	createDocument(t, s, &model.Document{Kind: model.DocumentKindDraft, Title: "Same title", AuthorsStr: "A"})
	createDocument(t, s, &model.Document{Kind: model.DocumentKindExternal, Title: "Same title", AuthorsStr: "A"})
	candidate := createDocument(t, s, &model.Document{Kind: model.DocumentKindVerified, Title: "Same title", ScopusID: "S1", AuthorsStr: "A"})

	copies, err := s.FindVerifiedCopies(ctx, CopyCriteria{Title: "Same title", ScopusID: "S1", ExcludeID: candidate.ID})
	require.NoError(t, err)
	require.Len(t, copies, 2)
	assert.Equal(t, a.ID, copies[0].ID)
	assert.Equal(t, b.ID, copies[1].ID)

	copies, err = s.FindVerifiedCopies(ctx, CopyCriteria{})
	require.NoError(t, err)
	assert.Empty(t, copies)
}

func TestGormStore_HasVerifiedScopusID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := createDocument(t, s, &model.Document{Kind: model.DocumentKindVerified, Title: "T", ScopusID: "S1", AuthorsStr: "A"})
	require.NoError(t, s.CreateAuthorship(ctx, &model.Authorship{DocumentID: doc.ID, ResearchEntityID: entityID(3), Position: 0}))

	found, err := s.HasVerifiedScopusID(ctx, 3, "S1", 0)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.HasVerifiedScopusID(ctx, 3, "S1", doc.ID)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = s.HasVerifiedScopusID(ctx, 4, "S1", 0)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGormStore_Discarded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, created, err := s.FindOrCreateDiscarded(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := s.FindOrCreateDiscarded(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	removed, err := s.DeleteDiscarded(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = s.DeleteDiscarded(ctx, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestGormStore_MissingInstitutes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	institute := &model.Institute{Name: "I1"}
	require.NoError(t, s.CreateInstitute(ctx, institute))

	missing, err := s.MissingInstitutes(ctx, []uint{institute.ID, 99, 98, 99})
	require.NoError(t, err)
	assert.Equal(t, []uint{98, 99}, missing)

	missing, err = s.MissingInstitutes(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestGormStore_Transaction_Rollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var id uint
	err := s.Transaction(ctx, func(tx Store) error {
		doc := &model.Document{Kind: model.DocumentKindDraft, Title: "T", AuthorsStr: "A"}
		if err := tx.CreateDocument(ctx, doc); err != nil {
			return err
		}
		id = doc.ID
		return ErrPositionTaken
	})
	assert.ErrorIs(t, err, ErrPositionTaken)

	_, err = s.GetDocument(ctx, id)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestGormStore_UpdateAuthorship_Favorite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"T1", "T2"} {
		doc := createDocument(t, s, &model.Document{Kind: model.DocumentKindVerified, Title: title, AuthorsStr: "A"})
		require.NoError(t, s.CreateAuthorship(ctx, &model.Authorship{DocumentID: doc.ID, ResearchEntityID: entityID(1), Position: 0}))

		authorship, err := s.GetAuthorship(ctx, doc.ID, 1)
		require.NoError(t, err)
		authorship.Favorite = true
		require.NoError(t, s.UpdateAuthorship(ctx, authorship))
	}

	count, err := s.CountFavoriteAuthorships(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = s.CountFavoriteAuthorships(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, count)
}
