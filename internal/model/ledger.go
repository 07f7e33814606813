package model

import "time"

// DiscardedDocument marks a suggested document as not relevant to a research entity.
// It references the document without owning it.
type DiscardedDocument struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	ResearchEntityID uint `gorm:"not null;uniqueIndex:idx_discarded_documents_entity_document"`
	DocumentID       uint `gorm:"not null;uniqueIndex:idx_discarded_documents_entity_document;index"`
}

func (DiscardedDocument) TableName() string {
	return "discarded_documents"
}

// DocumentNotDuplicate records that two documents were judged distinct publications.
// DocumentID always holds the smaller id of the pair.
type DocumentNotDuplicate struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	DocumentID       uint `gorm:"not null;uniqueIndex:idx_document_not_duplicates_pair"`
	DuplicateID      uint `gorm:"not null;uniqueIndex:idx_document_not_duplicates_pair;index"`
	ResearchEntityID uint `gorm:"not null"`
}

func (DocumentNotDuplicate) TableName() string {
	return "document_not_duplicates"
}

// NewDocumentNotDuplicate builds a mark for the pair with its ids normalized.
func NewDocumentNotDuplicate(researchEntityID, document1ID, document2ID uint) *DocumentNotDuplicate {
	if document2ID < document1ID {
		document1ID, document2ID = document2ID, document1ID
	}

	return &DocumentNotDuplicate{
		DocumentID:       document1ID,
		DuplicateID:      document2ID,
		ResearchEntityID: researchEntityID,
	}
}

// Other returns the id paired with documentID.
func (n *DocumentNotDuplicate) Other(documentID uint) uint {
	if n.DocumentID == documentID {
		return n.DuplicateID
	}

	return n.DocumentID
}
