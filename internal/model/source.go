package model

import "time"

type SourceType string

const (
	SourceTypeBook                 SourceType = "book"
	SourceTypeJournal              SourceType = "journal"
	SourceTypeConference           SourceType = "conference"
	SourceTypeScientificConference SourceType = "scientific_conference"
	SourceTypeInstitute            SourceType = "institute"
	SourceTypeBookSeries           SourceType = "bookseries"
	SourceTypeWorkshop             SourceType = "workshop"
	SourceTypeSchool               SourceType = "school"
	SourceTypeMedia                SourceType = "media"
	SourceTypePublicEvent          SourceType = "public_event"
	SourceTypeOutreach             SourceType = "outreach"
)

// Source is a publication venue.
type Source struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Title     string `gorm:"index"`
	ISSN      string `gorm:"column:issn;index"`
	EISSN     string `gorm:"column:eissn"`
	Acronym   string
	Location  string
	Year      int
	Publisher string
	ISBN      string `gorm:"column:isbn"`
	Website   string
	Type      SourceType
	ScopusID  string `gorm:"index"`
}

func (Source) TableName() string {
	return "sources"
}

// SourceMetric is an impact record (e.g. a yearly journal indicator).
type SourceMetric struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	Origin         string `gorm:"not null"`
	SourceOriginID string
	Year           int
	Name           string `gorm:"not null"`
	Value          string
}

func (SourceMetric) TableName() string {
	return "source_metrics"
}

// SourceMetricSource links a metric to a source.
type SourceMetricSource struct {
	ID uint `gorm:"primaryKey"`

	SourceID       uint `gorm:"not null;uniqueIndex:idx_source_metric_sources_pair"`
	SourceMetricID uint `gorm:"not null;uniqueIndex:idx_source_metric_sources_pair"`
}

func (SourceMetricSource) TableName() string {
	return "source_metric_sources"
}
