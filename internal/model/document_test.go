package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument_Authors(t *testing.T) {
	doc := &Document{AuthorsStr: " Rossi M., Bianchi L. ,, Verdi G. "}

	assert.Equal(t, []string{"Rossi M.", "Bianchi L.", "Verdi G."}, doc.Authors())
	assert.Equal(t, "Bianchi L.", doc.AuthorAt(1))
	assert.Empty(t, doc.AuthorAt(3))
	assert.Empty(t, doc.AuthorAt(-1))
}

func TestDocument_IsValid(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want bool
	}{
		{name: "complete", doc: Document{Title: "T", AuthorsStr: "A"}, want: true},
		{name: "blank title", doc: Document{Title: "  ", AuthorsStr: "A"}},
		{name: "no authors", doc: Document{Title: "T", AuthorsStr: " , "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.doc.IsValid())
		})
	}
}

func TestDocument_Claims(t *testing.T) {
	entity := uint(7)
	doc := &Document{
		Kind: DocumentKindVerified,
		Authorships: []*Authorship{
			{ID: 1, Position: 0},
			{ID: 2, Position: 1, ResearchEntityID: &entity},
		},
	}

	assert.Nil(t, doc.ClaimAt(0))
	assert.Equal(t, uint(2), doc.ClaimAt(1).ID)
	assert.Equal(t, uint(2), doc.ClaimOf(7).ID)
	assert.Nil(t, doc.ClaimOf(8))
	assert.Len(t, doc.Skeleton(), 1)
	assert.Equal(t, uint(1), doc.SkeletonAt(0).ID)
	assert.Nil(t, doc.SkeletonAt(1))
}

func TestDocument_IsExternallySourced(t *testing.T) {
	assert.True(t, (&Document{Kind: DocumentKindExternal}).IsExternallySourced())
	assert.True(t, (&Document{Kind: DocumentKindVerified, Synchronized: true}).IsExternallySourced())
	assert.False(t, (&Document{Kind: DocumentKindVerified}).IsExternallySourced())
}

func TestNewDocumentNotDuplicate(t *testing.T) {
	mark := NewDocumentNotDuplicate(3, 20, 10)

	assert.Equal(t, uint(10), mark.DocumentID)
	assert.Equal(t, uint(20), mark.DuplicateID)
	assert.Equal(t, uint(20), mark.Other(10))
	assert.Equal(t, uint(10), mark.Other(20))
}

func TestResearchEntity_Aliases(t *testing.T) {
	user := &ResearchEntity{Kind: ResearchEntityUser, Name: "mario", Surname: "Rossi"}
	assert.Equal(t, []string{"MARIO ROSSI", "ROSSI MARIO", "ROSSI M.", "M. ROSSI"}, user.Aliases())

	assert.Nil(t, (&ResearchEntity{Kind: ResearchEntityUser, Name: "Mario"}).Aliases())
	assert.Nil(t, (&ResearchEntity{Kind: ResearchEntityGroup, Name: "Nano", Surname: "Lab"}).Aliases())
}

func TestDocument_AuthorPositionOf(t *testing.T) {
	aliases := (&ResearchEntity{Kind: ResearchEntityUser, Name: "Luca", Surname: "Bianchi"}).Aliases()

	position, ok := (&Document{AuthorsStr: "Rossi M., bianchi l., Verdi G."}).AuthorPositionOf(aliases)
	assert.True(t, ok)
	assert.Equal(t, 1, position)

	_, ok = (&Document{AuthorsStr: "Rossi M., Verdi G."}).AuthorPositionOf(aliases)
	assert.False(t, ok)

	_, ok = (&Document{AuthorsStr: "Bianchi L., L. Bianchi"}).AuthorPositionOf(aliases)
	assert.False(t, ok)
}
