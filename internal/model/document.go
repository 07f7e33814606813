package model

import (
	"slices"
	"strings"
	"time"
)

// DocumentKind tags the lifecycle state of a document.
type DocumentKind string

const (
	DocumentKindDraft    DocumentKind = "draft"
	DocumentKindVerified DocumentKind = "verified"
	DocumentKindExternal DocumentKind = "external"
)

const authorSeparator = ","

// Document is one bibliographic work.
// A draft is private to its creator, a verified document is the canonical shared record
// and an external document mirrors an outside bibliographic database.
type Document struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Kind         DocumentKind `gorm:"index;not null"`
	Title        string       `gorm:"index"`
	AuthorsStr   string
	ScopusID     string `gorm:"index"`
	DOI          string `gorm:"column:doi"`
	Year         string
	Abstract     string `gorm:"type:text"`
	DocumentType string
	Synchronized bool `gorm:"not null;default:false"`

	SourceID       *uint   `gorm:"index"`
	Source         *Source `gorm:"foreignKey:SourceID"`
	DraftCreatorID *uint   `gorm:"index"`

	Authorships  []*Authorship  `gorm:"foreignKey:DocumentID"`
	Affiliations []*Affiliation `gorm:"foreignKey:DocumentID"`
}

func (Document) TableName() string {
	return "documents"
}

// Authors returns the ordered author list parsed from AuthorsStr.
func (d *Document) Authors() []string {
	authors := make([]string, 0)
	for _, name := range strings.Split(d.AuthorsStr, authorSeparator) {
		name = strings.TrimSpace(name)
		if name != "" {
			authors = append(authors, name)
		}
	}

	return authors
}

// AuthorAt returns the author name at position, or an empty string when out of range.
func (d *Document) AuthorAt(position int) string {
	authors := d.Authors()
	if position < 0 || position >= len(authors) {
		return ""
	}

	return authors[position]
}

// AuthorPositionOf returns the only author position whose name matches one of the
// upper-cased aliases. No match or several matches report false.
func (d *Document) AuthorPositionOf(aliases []string) (int, bool) {
	position := -1
	for i, name := range d.Authors() {
		if !slices.Contains(aliases, strings.ToUpper(name)) {
			continue
		}
		if position >= 0 {
			return -1, false
		}
		position = i
	}

	return position, position >= 0
}

// IsValid reports whether a draft carries enough data to be verified.
func (d *Document) IsValid() bool {
	return strings.TrimSpace(d.Title) != "" && len(d.Authors()) > 0
}

// IsExternallySourced reports whether the document mirrors upstream data.
func (d *Document) IsExternallySourced() bool {
	return d.Kind == DocumentKindExternal || d.Synchronized
}

// ClaimAt returns the confirmed authorship bound to position, if any.
func (d *Document) ClaimAt(position int) *Authorship {
	for _, a := range d.Authorships {
		if a.Position == position && a.IsConfirmed() {
			return a
		}
	}

	return nil
}

// ClaimOf returns the confirmed authorship held by the research entity, if any.
func (d *Document) ClaimOf(researchEntityID uint) *Authorship {
	for _, a := range d.Authorships {
		if a.IsConfirmed() && *a.ResearchEntityID == researchEntityID {
			return a
		}
	}

	return nil
}

// Skeleton returns the unconfirmed authorships, ordered as loaded.
func (d *Document) Skeleton() []*Authorship {
	skeleton := make([]*Authorship, 0)
	for _, a := range d.Authorships {
		if !a.IsConfirmed() {
			skeleton = append(skeleton, a)
		}
	}

	return skeleton
}

// SkeletonAt returns the unconfirmed authorship at position, if any.
func (d *Document) SkeletonAt(position int) *Authorship {
	for _, a := range d.Skeleton() {
		if a.Position == position {
			return a
		}
	}

	return nil
}
