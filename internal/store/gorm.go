package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/research/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) conn(ctx context.Context) *gorm.DB {
	return g.db.WithContext(ctx)
}

// populated preloads the relationships the workflows read.
func populated(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Authorships", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		Preload("Authorships.Affiliations", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Preload("Affiliations", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Preload("Source")
}

func (g *GormStore) CreateDocument(ctx context.Context, doc *model.Document) error {
	return g.conn(ctx).Create(doc).Error
}

func (g *GormStore) GetDocument(ctx context.Context, id uint) (*model.Document, error) {
	var docs []*model.Document
	err := populated(g.conn(ctx)).Where("id = ?", id).Limit(1).Find(&docs).Error
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrDocumentNotFound, id)
	}

	return docs[0], nil
}

func (g *GormStore) ListDocuments(ctx context.Context, ids []uint) ([]*model.Document, error) {
	docs := make([]*model.Document, 0)
	if len(ids) == 0 {
		return docs, nil
	}
	err := populated(g.conn(ctx)).Where("id IN ?", ids).Order("id asc").Find(&docs).Error
	return docs, err
}

func (g *GormStore) ListDrafts(ctx context.Context, researchEntityID uint) ([]*model.Document, error) {
	docs := make([]*model.Document, 0)
	err := populated(g.conn(ctx)).
		Where("kind = ? AND draft_creator_id = ?", model.DocumentKindDraft, researchEntityID).
		Order("id asc").
		Find(&docs).Error
	return docs, err
}

func (g *GormStore) ListVerifiedDocuments(ctx context.Context, researchEntityID uint) ([]*model.Document, error) {
	docs := make([]*model.Document, 0)
	claimed := g.conn(ctx).Model(&model.Authorship{}).
		Select("document_id").
		Where("research_entity_id = ?", researchEntityID)
	err := populated(g.conn(ctx)).
		Where("kind = ? AND id IN (?)", model.DocumentKindVerified, claimed).
		Order("id asc").
		Find(&docs).Error
	return docs, err
}

func (g *GormStore) FindVerifiedCopies(ctx context.Context, criteria CopyCriteria) ([]*model.Document, error) {
	docs := make([]*model.Document, 0)
	q := populated(g.conn(ctx)).Where("kind = ?", model.DocumentKindVerified)
	if criteria.ExcludeID != 0 {
		q = q.Where("id <> ?", criteria.ExcludeID)
	}

	switch {
	case criteria.Title != "" && criteria.ScopusID != "":
		q = q.Where("title = ? OR scopus_id = ?", criteria.Title, criteria.ScopusID)
	case criteria.Title != "":
		q = q.Where("title = ?", criteria.Title)
	case criteria.ScopusID != "":
		q = q.Where("scopus_id = ?", criteria.ScopusID)
	default:
		return docs, nil
	}

	err := q.Order("id asc").Find(&docs).Error
	return docs, err
}

func (g *GormStore) HasVerifiedScopusID(ctx context.Context, researchEntityID uint, scopusID string, excludeID uint) (bool, error) {
	var count int64
	q := g.conn(ctx).Model(&model.Document{}).
		Joins("JOIN authorships ON authorships.document_id = documents.id").
		Where("authorships.research_entity_id = ? AND documents.scopus_id = ? AND documents.kind = ?",
			researchEntityID, scopusID, model.DocumentKindVerified)
	if excludeID != 0 {
		q = q.Where("documents.id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// UpdateDocument saves the document columns only, relationships are managed by their own stores.
func (g *GormStore) UpdateDocument(ctx context.Context, doc *model.Document) error {
	return g.conn(ctx).Omit(clause.Associations).Save(doc).Error
}

func (g *GormStore) DeleteDocument(ctx context.Context, id uint) error {
	db := g.conn(ctx)
	if err := db.Where("document_id = ?", id).Delete(&model.Affiliation{}).Error; err != nil {
		return err
	}
	if err := db.Where("document_id = ?", id).Delete(&model.Authorship{}).Error; err != nil {
		return err
	}

	return db.Where("id = ?", id).Delete(&model.Document{}).Error
}

func (g *GormStore) CountDocumentsBySource(ctx context.Context, sourceID uint) (int64, error) {
	var count int64
	err := g.conn(ctx).Model(&model.Document{}).Where("source_id = ?", sourceID).Count(&count).Error
	return count, err
}

func (g *GormStore) RepointDocuments(ctx context.Context, fromSourceID, toSourceID uint) (int64, error) {
	res := g.conn(ctx).Model(&model.Document{}).
		Where("source_id = ?", fromSourceID).
		Update("source_id", toSourceID)
	return res.RowsAffected, res.Error
}

func (g *GormStore) CreateAuthorship(ctx context.Context, authorship *model.Authorship) error {
	err := g.conn(ctx).Create(authorship).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: document %d position %d", ErrPositionTaken, authorship.DocumentID, authorship.Position)
	}

	return err
}

func (g *GormStore) GetAuthorship(ctx context.Context, documentID, researchEntityID uint) (*model.Authorship, error) {
	var authorships []*model.Authorship
	err := g.conn(ctx).
		Preload("Affiliations").
		Where("document_id = ? AND research_entity_id = ?", documentID, researchEntityID).
		Limit(1).
		Find(&authorships).Error
	if err != nil {
		return nil, err
	}
	if len(authorships) == 0 {
		return nil, ErrAuthorshipNotFound
	}

	return authorships[0], nil
}

func (g *GormStore) UpdateAuthorship(ctx context.Context, authorship *model.Authorship) error {
	return g.conn(ctx).Omit(clause.Associations).Save(authorship).Error
}

func (g *GormStore) CountFavoriteAuthorships(ctx context.Context, researchEntityID uint) (int64, error) {
	var count int64
	err := g.conn(ctx).Model(&model.Authorship{}).
		Where("research_entity_id = ? AND favorite = ?", researchEntityID, true).
		Count(&count).Error
	return count, err
}

func (g *GormStore) DeleteAuthorship(ctx context.Context, id uint) error {
	db := g.conn(ctx)
	if err := db.Where("authorship_id = ?", id).Delete(&model.Affiliation{}).Error; err != nil {
		return err
	}

	return db.Where("id = ?", id).Delete(&model.Authorship{}).Error
}

func (g *GormStore) DeleteUnconfirmedAuthorships(ctx context.Context, documentID uint) error {
	db := g.conn(ctx)
	var ids []uint
	err := db.Model(&model.Authorship{}).
		Where("document_id = ? AND research_entity_id IS NULL", documentID).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	if err := db.Where("authorship_id IN ?", ids).Delete(&model.Affiliation{}).Error; err != nil {
		return err
	}

	return db.Where("id IN ?", ids).Delete(&model.Authorship{}).Error
}

func (g *GormStore) CountConfirmedAuthorships(ctx context.Context, documentID uint) (int64, error) {
	var count int64
	err := g.conn(ctx).Model(&model.Authorship{}).
		Where("document_id = ? AND research_entity_id IS NOT NULL", documentID).
		Count(&count).Error
	return count, err
}

func (g *GormStore) FindOrCreateDiscarded(ctx context.Context, researchEntityID, documentID uint) (*model.DiscardedDocument, bool, error) {
	db := g.conn(ctx)
	var rows []*model.DiscardedDocument
	err := db.Where("research_entity_id = ? AND document_id = ?", researchEntityID, documentID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, false, err
	}
	if len(rows) > 0 {
		return rows[0], false, nil
	}

	row := &model.DiscardedDocument{
		ResearchEntityID: researchEntityID,
		DocumentID:       documentID,
	}
	if err := db.Create(row).Error; err != nil {
		return nil, false, err
	}

	return row, true, nil
}

func (g *GormStore) DeleteDiscarded(ctx context.Context, researchEntityID, documentID uint) (int64, error) {
	res := g.conn(ctx).
		Where("research_entity_id = ? AND document_id = ?", researchEntityID, documentID).
		Delete(&model.DiscardedDocument{})
	return res.RowsAffected, res.Error
}

func (g *GormStore) CountDiscarded(ctx context.Context, documentID uint) (int64, error) {
	var count int64
	err := g.conn(ctx).Model(&model.DiscardedDocument{}).Where("document_id = ?", documentID).Count(&count).Error
	return count, err
}

func (g *GormStore) FindOrCreateNotDuplicate(ctx context.Context, mark *model.DocumentNotDuplicate) (*model.DocumentNotDuplicate, error) {
	db := g.conn(ctx)
	var rows []*model.DocumentNotDuplicate
	err := db.Where("document_id = ? AND duplicate_id = ?", mark.DocumentID, mark.DuplicateID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return rows[0], nil
	}

	if err := db.Create(mark).Error; err != nil {
		return nil, err
	}

	return mark, nil
}

func (g *GormStore) ListNotDuplicates(ctx context.Context, documentID uint) ([]*model.DocumentNotDuplicate, error) {
	rows := make([]*model.DocumentNotDuplicate, 0)
	err := g.conn(ctx).
		Where("document_id = ? OR duplicate_id = ?", documentID, documentID).
		Find(&rows).Error
	return rows, err
}

func (g *GormStore) CreateInstitute(ctx context.Context, institute *model.Institute) error {
	return g.conn(ctx).Create(institute).Error
}

func (g *GormStore) MissingInstitutes(ctx context.Context, ids []uint) ([]uint, error) {
	wanted := mapset.NewSet[uint](ids...)
	if wanted.Cardinality() == 0 {
		return nil, nil
	}

	var found []uint
	err := g.conn(ctx).Model(&model.Institute{}).Where("id IN ?", wanted.ToSlice()).Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}

	missing := wanted.Difference(mapset.NewSet[uint](found...)).ToSlice()
	slices.Sort(missing)

	return missing, nil
}

func (g *GormStore) CreateResearchEntity(ctx context.Context, entity *model.ResearchEntity) error {
	return g.conn(ctx).Create(entity).Error
}

func (g *GormStore) GetResearchEntity(ctx context.Context, id uint) (*model.ResearchEntity, error) {
	var entities []*model.ResearchEntity
	err := g.conn(ctx).Where("id = ?", id).Limit(1).Find(&entities).Error
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrResearchEntityNotFound, id)
	}

	return entities[0], nil
}

func (g *GormStore) CreateSource(ctx context.Context, source *model.Source) error {
	return g.conn(ctx).Create(source).Error
}

func (g *GormStore) GetSource(ctx context.Context, id uint) (*model.Source, error) {
	var sources []*model.Source
	err := g.conn(ctx).Where("id = ?", id).Limit(1).Find(&sources).Error
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrSourceNotFound, id)
	}

	return sources[0], nil
}

func (g *GormStore) ListSources(ctx context.Context) ([]*model.Source, error) {
	sources := make([]*model.Source, 0)
	err := g.conn(ctx).Order("id asc").Find(&sources).Error
	return sources, err
}

func (g *GormStore) SearchSourceCopies(ctx context.Context, source *model.Source) ([]*model.Source, error) {
	copies := make([]*model.Source, 0)

	var clauses []string
	var args []any
	if source.Title != "" {
		clauses = append(clauses, "title = ?")
		args = append(args, source.Title)
	}
	if source.ScopusID != "" {
		clauses = append(clauses, "scopus_id = ?")
		args = append(args, source.ScopusID)
	}
	if source.ISSN != "" {
		clauses = append(clauses, "issn = ?")
		args = append(args, source.ISSN)
	}
	if len(clauses) == 0 {
		return copies, nil
	}

	q := g.conn(ctx).Where("id <> ?", source.ID).Where(strings.Join(clauses, " OR "), args...)
	err := q.Order("id asc").Find(&copies).Error
	return copies, err
}

func (g *GormStore) UpdateSource(ctx context.Context, source *model.Source) error {
	return g.conn(ctx).Save(source).Error
}

func (g *GormStore) DeleteSource(ctx context.Context, id uint) error {
	return g.conn(ctx).Where("id = ?", id).Delete(&model.Source{}).Error
}

func (g *GormStore) CreateSourceMetric(ctx context.Context, metric *model.SourceMetric) error {
	return g.conn(ctx).Create(metric).Error
}

func (g *GormStore) LinkSourceMetric(ctx context.Context, sourceID, metricID uint) error {
	return g.conn(ctx).Create(&model.SourceMetricSource{
		SourceID:       sourceID,
		SourceMetricID: metricID,
	}).Error
}

func (g *GormStore) ListSourceMetricLinks(ctx context.Context, sourceID uint) ([]*model.SourceMetricSource, error) {
	links := make([]*model.SourceMetricSource, 0)
	err := g.conn(ctx).Where("source_id = ?", sourceID).Order("id asc").Find(&links).Error
	return links, err
}

func (g *GormStore) HasSourceMetricLink(ctx context.Context, sourceID, metricID uint) (bool, error) {
	var count int64
	err := g.conn(ctx).Model(&model.SourceMetricSource{}).
		Where("source_id = ? AND source_metric_id = ?", sourceID, metricID).
		Count(&count).Error
	return count > 0, err
}

func (g *GormStore) DeleteSourceMetricLink(ctx context.Context, id uint) error {
	return g.conn(ctx).Where("id = ?", id).Delete(&model.SourceMetricSource{}).Error
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
