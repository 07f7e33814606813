package model

import "gorm.io/gorm"

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&ResearchEntity{}, &Institute{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&Source{}, &SourceMetric{}, &SourceMetricSource{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&Document{}, &Authorship{}, &Affiliation{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&DiscardedDocument{}, &DocumentNotDuplicate{}); err != nil {
		return err
	}

	return nil
}
