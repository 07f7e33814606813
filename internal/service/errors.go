package service

import (
	"errors"
	"fmt"

	"github.com/emrgen/research/internal/model"
)

var (
	// ErrInvalidInput is returned when a request is malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDraftNotFound is returned when a draft id does not resolve to a draft of the research entity.
	ErrDraftNotFound = errors.New("draft not found")
	// ErrUnknownDocumentKind is returned when a document carries a kind no workflow handles.
	ErrUnknownDocumentKind = errors.New("unknown document kind")
	// ErrFavoriteLimit is returned when a research entity already holds the maximum of favorite authorships.
	ErrFavoriteLimit = errors.New("favorite max limit reached")
)

// Rejection messages. Callers match on them, keep the wording stable.
const (
	MsgDraftNotValid         = "Draft not valid for verification"
	MsgAlreadyVerified       = "Document already verified"
	MsgDraftDuplicatedID     = "Draft already verified (duplicated id)"
	MsgDocumentDuplicatedID  = "Document already verified (duplicated id)"
	MsgInvalidPosition       = "invalid position"
	MsgVerifiedAsOtherAuthor = "You already verified this document as a different author"
	MsgInstituteNotFound     = "Institute not found"
	MsgNoAffiliation         = "No affiliation selected"
	MsgPositionClaimed       = "You cannot verify this document as %s because someone else already claimed to be that author"
	MsgNotDiscarded          = "Document not discarded"
)

// PositionConflict describes a position claimed by another research entity.
type PositionConflict struct {
	DocumentID uint   `json:"documentId"`
	Position   int    `json:"position"`
	ClaimantID uint   `json:"claimantId"`
	AuthorName string `json:"authorName"`
}

// Rejection is an expected business-rule refusal. It is a value, not an error.
type Rejection struct {
	Error    string            `json:"error"`
	Item     any               `json:"item"`
	Conflict *PositionConflict `json:"conflict,omitempty"`
}

func (r *Rejection) String() string {
	return r.Error
}

func reject(message string, item any) *Rejection {
	return &Rejection{
		Error: message,
		Item:  item,
	}
}

// conflictRejection reports that position on doc is held by claimant.
func conflictRejection(doc *model.Document, position int, claimant uint) *Rejection {
	name := doc.AuthorAt(position)
	return &Rejection{
		Error: fmt.Sprintf(MsgPositionClaimed, name),
		Item:  doc,
		Conflict: &PositionConflict{
			DocumentID: doc.ID,
			Position:   position,
			ClaimantID: claimant,
			AuthorName: name,
		},
	}
}

// Outcome is the result of a document workflow: the resulting document or a rejection.
// Err is only set on batch items.
type Outcome struct {
	ID        uint            `json:"id"`
	Document  *model.Document `json:"document,omitempty"`
	Rejection *Rejection      `json:"rejection,omitempty"`
	Err       error           `json:"-"`
}

func (o *Outcome) Rejected() bool {
	return o.Rejection != nil
}

// LedgerOutcome is the result of a discard ledger operation.
type LedgerOutcome struct {
	ID        uint                     `json:"id"`
	Discarded *model.DiscardedDocument `json:"discarded,omitempty"`
	// Deleted is set when the document was removed because nobody verified it any more.
	Deleted   bool       `json:"deleted"`
	Rejection *Rejection `json:"rejection,omitempty"`
	Err       error      `json:"-"`
}
