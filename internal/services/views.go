package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/localnerve/jam-build-revdb/internal/models"
)

// GetTableViews returns the view settings of a user table.
func (s *Service) GetTableViews(ctx context.Context, revisionID, tableID string) (any, error) {
	if err := fixedSchema(tableID); err != nil {
		return nil, err
	}
	if _, err := s.GetTable(ctx, revisionID, tableID); err != nil {
		return nil, err
	}
	row, err := systemRow(s.read(ctx), revisionID, ViewsTable, tableID)
	if err != nil {
		return nil, err
	}
	return row.Data.Decode()
}

// UpdateTableViews replaces the view settings of a user table in a draft.
func (s *Service) UpdateTableViews(ctx context.Context, revisionID, tableID string, views any) error {
	if err := fixedSchema(tableID); err != nil {
		return err
	}
	if err := s.validator.ValidateViews(views); err != nil {
		return err
	}
	return s.mutateDraft(ctx, revisionID, func(tx *gorm.DB, draft *models.Revision) error {
		if _, err := findTable(tx, draft.ID, tableID); err != nil {
			return err
		}
		return putSystemRow(tx, draft, ViewsTable, tableID, views)
	})
}
