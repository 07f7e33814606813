package model

import (
	"slices"
	"strings"
	"time"
)

type ResearchEntityKind string

const (
	ResearchEntityUser  ResearchEntityKind = "user"
	ResearchEntityGroup ResearchEntityKind = "group"
)

// ResearchEntity is a user or a group able to claim authorships.
type ResearchEntity struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Kind    ResearchEntityKind `gorm:"not null;default:user"`
	Name    string             `gorm:"not null"`
	Surname string
	Slug    string `gorm:"uniqueIndex"`
	// InstituteID is the affiliation used when a claim names none.
	InstituteID *uint `gorm:"index"`
}

func (ResearchEntity) TableName() string {
	return "research_entities"
}

// Aliases returns the upper-cased spellings of a user's name expected in author lists.
// Groups and users without a surname have none.
func (e *ResearchEntity) Aliases() []string {
	name := strings.ToUpper(strings.TrimSpace(e.Name))
	surname := strings.ToUpper(strings.TrimSpace(e.Surname))
	if e.Kind == ResearchEntityGroup || name == "" || surname == "" {
		return nil
	}

	initial := string([]rune(name)[:1])
	aliases := make([]string, 0, 4)
	for _, alias := range []string{
		name + " " + surname,
		surname + " " + name,
		surname + " " + initial + ".",
		initial + ". " + surname,
	} {
		if !slices.Contains(aliases, alias) {
			aliases = append(aliases, alias)
		}
	}

	return aliases
}
