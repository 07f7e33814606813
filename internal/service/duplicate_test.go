package service

import (
	"context"
	"testing"

	"github.com/emrgen/research/internal/model"
	"github.com/emrgen/research/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCopies struct {
	verified []*model.Document
	marks    []*model.DocumentNotDuplicate
	criteria store.CopyCriteria
}

func (c *fakeCopies) FindVerifiedCopies(_ context.Context, criteria store.CopyCriteria) ([]*model.Document, error) {
	c.criteria = criteria
	return c.verified, nil
}

func (c *fakeCopies) ListNotDuplicates(_ context.Context, documentID uint) ([]*model.DocumentNotDuplicate, error) {
	out := make([]*model.DocumentNotDuplicate, 0)
	for _, mark := range c.marks {
		if mark.DocumentID == documentID || mark.DuplicateID == documentID {
			out = append(out, mark)
		}
	}

	return out, nil
}

func TestDuplicateFinder_FindCopies(t *testing.T) {
	st := &fakeCopies{
		verified: []*model.Document{
			{ID: 2, Title: "T", AuthorsStr: "A"},
			{ID: 3, Title: "T", AuthorsStr: threeAuthors},
			{ID: 5, Title: "T", AuthorsStr: threeAuthors},
			{ID: 8, Title: "T", AuthorsStr: threeAuthors},
		},
		marks: []*model.DocumentNotDuplicate{
			model.NewDocumentNotDuplicate(1, 9, 5),
			model.NewDocumentNotDuplicate(1, 8, 40),
		},
	}
	finder := NewDuplicateFinder(st)
	draft := &model.Document{ID: 9, Title: "T", ScopusID: "S", AuthorsStr: threeAuthors}

	found, err := finder.FindCopies(context.Background(), draft, 2)
	require.NoError(t, err)
	assert.Equal(t, store.CopyCriteria{Title: "T", ScopusID: "S", ExcludeID: 9}, st.criteria)
	require.Len(t, found, 2)
	assert.Equal(t, uint(3), found[0].ID)
	assert.Equal(t, uint(8), found[1].ID)

	// marks recorded on the mirrored document apply to its copy
	found, err = finder.FindCopies(context.Background(), draft, 2, 40)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, uint(3), found[0].ID)
}

func TestDuplicateFinder_NoCandidates(t *testing.T) {
	finder := NewDuplicateFinder(&fakeCopies{})

	found, err := finder.FindCopies(context.Background(), &model.Document{ID: 1, Title: "T"}, 0)
	require.NoError(t, err)
	assert.Empty(t, found)
}
