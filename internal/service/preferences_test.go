package service

import (
	"testing"

	"github.com/emrgen/research/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentService_SetAuthorshipFavorite(t *testing.T) {
	f := newFixture(t)
	inst := f.institute(t, "IIT")
	rossi := f.entity(t, "rossi")
	bianchi := f.entity(t, "bianchi")

	first := f.verified(t, rossi, "Graphene transport", threeAuthors, "", 0, inst)
	second := f.verified(t, rossi, "Spin waves", threeAuthors, "", 0, inst)
	f.docs.SetMaxFavorites(1)

	authorship, err := f.docs.SetAuthorshipFavorite(f.ctx, rossi, first.ID, true)
	require.NoError(t, err)
	assert.True(t, authorship.Favorite)

	stored, err := f.store.GetAuthorship(f.ctx, first.ID, rossi)
	require.NoError(t, err)
	assert.True(t, stored.Favorite)
	assert.Len(t, stored.Affiliations, 1)

	// setting the same value again does not count against the limit
	_, err = f.docs.SetAuthorshipFavorite(f.ctx, rossi, first.ID, true)
	require.NoError(t, err)

	_, err = f.docs.SetAuthorshipFavorite(f.ctx, rossi, second.ID, true)
	assert.ErrorIs(t, err, ErrFavoriteLimit)

	_, err = f.docs.SetAuthorshipFavorite(f.ctx, rossi, first.ID, false)
	require.NoError(t, err)
	authorship, err = f.docs.SetAuthorshipFavorite(f.ctx, rossi, second.ID, true)
	require.NoError(t, err)
	assert.True(t, authorship.Favorite)

	_, err = f.docs.SetAuthorshipFavorite(f.ctx, bianchi, first.ID, true)
	assert.ErrorIs(t, err, store.ErrAuthorshipNotFound)
}

func TestDocumentService_SetAuthorshipPrivacy(t *testing.T) {
	f := newFixture(t)
	inst := f.institute(t, "IIT")
	rossi := f.entity(t, "rossi")
	doc := f.verified(t, rossi, "Graphene transport", threeAuthors, "", 0, inst)

	_, err := f.docs.SetAuthorshipPrivacy(f.ctx, rossi, doc.ID, true)
	require.NoError(t, err)

	stored, err := f.store.GetAuthorship(f.ctx, doc.ID, rossi)
	require.NoError(t, err)
	assert.True(t, stored.Public)
}
