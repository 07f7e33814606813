package store

import (
	"context"
	"errors"

	"github.com/emrgen/research/internal/model"
)

var (
	ErrDocumentNotFound       = errors.New("document not found")
	ErrAuthorshipNotFound     = errors.New("authorship not found")
	ErrSourceNotFound         = errors.New("source not found")
	ErrResearchEntityNotFound = errors.New("research entity not found")
	// ErrPositionTaken is returned when an authorship write violates the
	// (document, position) or (document, research entity) uniqueness.
	ErrPositionTaken = errors.New("authorship position already taken")
)

type Store interface {
	DocumentStore
	AuthorshipStore
	LedgerStore
	InstituteStore
	ResearchEntityStore
	SourceStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

// CopyCriteria selects verified documents that may be the same publication.
type CopyCriteria struct {
	Title     string
	ScopusID  string
	ExcludeID uint
}

type DocumentStore interface {
	// CreateDocument creates a document together with any authorships and affiliations set on it.
	CreateDocument(ctx context.Context, doc *model.Document) error
	// GetDocument retrieves a document with authorships, affiliations and source populated.
	GetDocument(ctx context.Context, id uint) (*model.Document, error)
	// ListDocuments retrieves documents by ids, populated, ordered by id.
	ListDocuments(ctx context.Context, ids []uint) ([]*model.Document, error)
	// ListDrafts retrieves the drafts created by a research entity.
	ListDrafts(ctx context.Context, researchEntityID uint) ([]*model.Document, error)
	// ListVerifiedDocuments retrieves the documents a research entity holds an authorship on.
	ListVerifiedDocuments(ctx context.Context, researchEntityID uint) ([]*model.Document, error)
	// FindVerifiedCopies retrieves verified documents matching the criteria, ordered by id.
	FindVerifiedCopies(ctx context.Context, criteria CopyCriteria) ([]*model.Document, error)
	// HasVerifiedScopusID reports whether the research entity already holds an authorship on a
	// verified document with scopusID, ignoring excludeID.
	HasVerifiedScopusID(ctx context.Context, researchEntityID uint, scopusID string, excludeID uint) (bool, error)
	// UpdateDocument saves the document columns, associations are left untouched.
	UpdateDocument(ctx context.Context, doc *model.Document) error
	// DeleteDocument deletes a document with its authorships and affiliations.
	DeleteDocument(ctx context.Context, id uint) error
	// CountDocumentsBySource counts the documents referencing a source.
	CountDocumentsBySource(ctx context.Context, sourceID uint) (int64, error)
	// RepointDocuments moves every document of a source to another source.
	RepointDocuments(ctx context.Context, fromSourceID, toSourceID uint) (int64, error)
}

type AuthorshipStore interface {
	// CreateAuthorship creates an authorship with its affiliations.
	CreateAuthorship(ctx context.Context, authorship *model.Authorship) error
	// GetAuthorship retrieves the confirmed authorship of a research entity on a document.
	GetAuthorship(ctx context.Context, documentID, researchEntityID uint) (*model.Authorship, error)
	// UpdateAuthorship saves the authorship flags, affiliations are left untouched.
	UpdateAuthorship(ctx context.Context, authorship *model.Authorship) error
	// CountFavoriteAuthorships counts the authorships a research entity marked as favorite.
	CountFavoriteAuthorships(ctx context.Context, researchEntityID uint) (int64, error)
	// DeleteAuthorship deletes an authorship with its affiliations.
	DeleteAuthorship(ctx context.Context, id uint) error
	// DeleteUnconfirmedAuthorships deletes the draft skeleton of a document.
	DeleteUnconfirmedAuthorships(ctx context.Context, documentID uint) error
	// CountConfirmedAuthorships counts the confirmed authorships of a document.
	CountConfirmedAuthorships(ctx context.Context, documentID uint) (int64, error)
}

type LedgerStore interface {
	// FindOrCreateDiscarded returns the discard entry, creating it when missing.
	FindOrCreateDiscarded(ctx context.Context, researchEntityID, documentID uint) (*model.DiscardedDocument, bool, error)
	// DeleteDiscarded removes a discard entry and reports the deleted row count.
	DeleteDiscarded(ctx context.Context, researchEntityID, documentID uint) (int64, error)
	// CountDiscarded counts the discard entries of a document.
	CountDiscarded(ctx context.Context, documentID uint) (int64, error)
	// FindOrCreateNotDuplicate returns the not-duplicate mark for the pair, creating it when missing.
	FindOrCreateNotDuplicate(ctx context.Context, mark *model.DocumentNotDuplicate) (*model.DocumentNotDuplicate, error)
	// ListNotDuplicates retrieves the not-duplicate marks involving a document.
	ListNotDuplicates(ctx context.Context, documentID uint) ([]*model.DocumentNotDuplicate, error)
}

type InstituteStore interface {
	CreateInstitute(ctx context.Context, institute *model.Institute) error
	// MissingInstitutes returns the ids that do not resolve to an institute.
	MissingInstitutes(ctx context.Context, ids []uint) ([]uint, error)
}

type ResearchEntityStore interface {
	CreateResearchEntity(ctx context.Context, entity *model.ResearchEntity) error
	GetResearchEntity(ctx context.Context, id uint) (*model.ResearchEntity, error)
}

type SourceStore interface {
	CreateSource(ctx context.Context, source *model.Source) error
	GetSource(ctx context.Context, id uint) (*model.Source, error)
	ListSources(ctx context.Context) ([]*model.Source, error)
	// SearchSourceCopies retrieves other sources sharing title, scopus id or issn, ordered by id.
	SearchSourceCopies(ctx context.Context, source *model.Source) ([]*model.Source, error)
	UpdateSource(ctx context.Context, source *model.Source) error
	DeleteSource(ctx context.Context, id uint) error
	CreateSourceMetric(ctx context.Context, metric *model.SourceMetric) error
	// LinkSourceMetric attaches a metric to a source.
	LinkSourceMetric(ctx context.Context, sourceID, metricID uint) error
	ListSourceMetricLinks(ctx context.Context, sourceID uint) ([]*model.SourceMetricSource, error)
	HasSourceMetricLink(ctx context.Context, sourceID, metricID uint) (bool, error)
	DeleteSourceMetricLink(ctx context.Context, id uint) error
}
