package model

import "time"

// Authorship binds a document to a research entity at an author position.
// Drafts carry unconfirmed authorships (no research entity) describing the positions
// and affiliations the creator entered; verification confirms one of them.
type Authorship struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	DocumentID       uint  `gorm:"not null;uniqueIndex:idx_authorships_document_position;uniqueIndex:idx_authorships_document_entity"`
	ResearchEntityID *uint `gorm:"uniqueIndex:idx_authorships_document_entity"`
	Position         int   `gorm:"not null;uniqueIndex:idx_authorships_document_position"`
	Corresponding    bool  `gorm:"not null;default:false"`
	Public           bool  `gorm:"not null;default:false"`
	Favorite         bool  `gorm:"not null;default:false"`

	Affiliations []*Affiliation `gorm:"foreignKey:AuthorshipID"`
}

func (Authorship) TableName() string {
	return "authorships"
}

func (a *Authorship) IsConfirmed() bool {
	return a.ResearchEntityID != nil
}

// InstituteIDs lists the institutes the authorship is affiliated with.
func (a *Authorship) InstituteIDs() []uint {
	ids := make([]uint, 0, len(a.Affiliations))
	for _, aff := range a.Affiliations {
		ids = append(ids, aff.InstituteID)
	}

	return ids
}

// Affiliation binds an authorship to an institute.
type Affiliation struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	DocumentID   uint `gorm:"index;not null"`
	AuthorshipID uint `gorm:"index;not null"`
	InstituteID  uint `gorm:"index;not null"`
}

func (Affiliation) TableName() string {
	return "affiliations"
}

// Institute is a research institution authors can be affiliated with.
type Institute struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	Name      string `gorm:"not null"`
	ShortName string
}

func (Institute) TableName() string {
	return "institutes"
}
