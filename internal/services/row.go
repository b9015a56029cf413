package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/localnerve/jam-build-revdb/internal/jsonstore"
	"github.com/localnerve/jam-build-revdb/internal/models"
	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
	"github.com/localnerve/jam-build-revdb/internal/utils"
)

// RowInput is the id and body of a row to write.
type RowInput struct {
	ID   string `json:"id"`
	Data any    `json:"data"`
}

// rowSchema is what row writes validate against. System tables carry no
// stored schema and are checked by their own rules.
type rowSchema struct {
	tableID string
	schema  *jsonstore.Schema
	plain   map[string]any
	hash    string
}

func (s *Service) loadRowSchema(tx *gorm.DB, revisionID, tableID string) (*rowSchema, error) {
	rs := &rowSchema{tableID: tableID}
	if IsSystemTable(tableID) {
		return rs, nil
	}
	schema, err := loadSchema(tx, revisionID, tableID)
	if err != nil {
		return nil, err
	}
	rs.schema = schema
	rs.plain = schema.Plain()
	if rs.hash, err = jsonstore.Hash(rs.plain); err != nil {
		return nil, err
	}
	return rs, nil
}

// normalize validates a row body and returns it with defaults filled in.
func (s *Service) normalize(rs *rowSchema, in RowInput) (any, error) {
	switch rs.tableID {
	case SchemaTable:
		if _, err := s.validator.ValidateSchema(in.Data); err != nil {
			return nil, err
		}
		return in.Data, nil
	case ViewsTable:
		return in.Data, s.validator.ValidateViews(in.Data)
	case MigrationTable:
		return in.Data, nil
	}
	if err := s.validator.ValidateData(rs.plain, in.ID, in.Data); err != nil {
		return nil, err
	}
	return jsonstore.FromPlain(rs.schema, in.Data).Plain(), nil
}

func checkRowInputs(rows []RowInput) error {
	if len(rows) == 0 {
		return revisionerrors.NewValidationError("rows", revisionerrors.FieldError{
			Field:   "rows",
			Message: "at least one row is required",
			Type:    "required",
		})
	}
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		if err := ValidateRowID(r.ID); err != nil {
			return err
		}
		if seen[r.ID] {
			return revisionerrors.NewValidationError("rows", revisionerrors.FieldError{
				Field:   "id",
				Message: fmt.Sprintf("row %s appears more than once", r.ID),
				Type:    "unique",
			})
		}
		seen[r.ID] = true
	}
	return nil
}

func rowIDs(rows []RowInput) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}

// checkRowForeignKeys binds the written rows and checks their foreign keys.
func checkRowForeignKeys(tx *gorm.DB, revisionID string, rs *rowSchema, ids []string, bodies []any) error {
	if rs.schema == nil || len(rs.schema.ForeignKeyTables()) == 0 {
		return nil
	}
	st := jsonstore.NewStore(rs.schema)
	for i, id := range ids {
		st.Bind(id, bodies[i])
	}
	return checkForeignKeyValues(tx, revisionID, st, ids)
}

// CreateRows adds rows to a table of a draft. Every body is validated
// against the table schema and every foreign key must resolve.
func (s *Service) CreateRows(ctx context.Context, revisionID, tableID string, rows []RowInput) ([]models.Row, error) {
	if err := s.checkMutable(tableID); err != nil {
		return nil, err
	}
	if err := checkRowInputs(rows); err != nil {
		return nil, err
	}

	var created []models.Row
	err := s.mutateDraft(ctx, revisionID, func(tx *gorm.DB, draft *models.Revision) error {
		table, err := findTable(tx, draft.ID, tableID)
		if err != nil {
			return err
		}
		ids := rowIDs(rows)
		existing, err := existingRowIDs(tx, table.VersionID, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if existing[id] {
				return fmt.Errorf("row %s in %s: %w", id, tableID, revisionerrors.Conflict)
			}
		}

		rs, err := s.loadRowSchema(tx, draft.ID, tableID)
		if err != nil {
			return err
		}
		bodies := make([]any, len(rows))
		for i, in := range rows {
			if bodies[i], err = s.normalize(rs, in); err != nil {
				return err
			}
		}

		dt, err := getOrCreateDraftTable(tx, draft, tableID)
		if err != nil {
			return err
		}
		created = make([]models.Row, len(rows))
		for i, in := range rows {
			created[i] = models.Row{RowID: in.ID}
			if err := encodeRow(&created[i], bodies[i], rs.hash); err != nil {
				return err
			}
			if err := createRow(tx, dt, &created[i]); err != nil {
				return err
			}
		}
		return checkRowForeignKeys(tx, draft.ID, rs, ids, bodies)
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("created rows", zap.String("revision", revisionID), zap.String("table", tableID), zap.Int("rows", len(created)))
	return created, nil
}

// UpdateRows replaces the bodies of existing rows of a table of a draft.
func (s *Service) UpdateRows(ctx context.Context, revisionID, tableID string, rows []RowInput) ([]models.Row, error) {
	if err := s.checkMutable(tableID); err != nil {
		return nil, err
	}
	if err := checkRowInputs(rows); err != nil {
		return nil, err
	}

	var updated []models.Row
	err := s.mutateDraft(ctx, revisionID, func(tx *gorm.DB, draft *models.Revision) error {
		table, err := findTable(tx, draft.ID, tableID)
		if err != nil {
			return err
		}
		ids := rowIDs(rows)
		existing, err := existingRowIDs(tx, table.VersionID, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if !existing[id] {
				return fmt.Errorf("row %s in %s: %w", id, tableID, revisionerrors.NotFound)
			}
		}

		rs, err := s.loadRowSchema(tx, draft.ID, tableID)
		if err != nil {
			return err
		}
		bodies := make([]any, len(rows))
		for i, in := range rows {
			if bodies[i], err = s.normalize(rs, in); err != nil {
				return err
			}
		}

		dt, err := getOrCreateDraftTable(tx, draft, tableID)
		if err != nil {
			return err
		}
		updated = make([]models.Row, 0, len(rows))
		for i, in := range rows {
			row, err := getOrCreateDraftRow(tx, dt, in.ID)
			if err != nil {
				return err
			}
			if err := encodeRow(row, bodies[i], rs.hash); err != nil {
				return err
			}
			if err := tx.Save(row).Error; err != nil {
				return err
			}
			updated = append(updated, *row)
		}
		return checkRowForeignKeys(tx, draft.ID, rs, ids, bodies)
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("updated rows", zap.String("revision", revisionID), zap.String("table", tableID), zap.Int("rows", len(updated)))
	return updated, nil
}

// RemoveRows deletes rows from a table of a draft. Rows still targeted by a
// foreign key outside the removed set cannot be removed.
func (s *Service) RemoveRows(ctx context.Context, revisionID, tableID string, ids []string) error {
	if err := s.checkMutable(tableID); err != nil {
		return err
	}
	if len(ids) == 0 {
		return revisionerrors.NewValidationError("rows", revisionerrors.FieldError{
			Field:   "ids",
			Message: "at least one row id is required",
			Type:    "required",
		})
	}

	err := s.mutateDraft(ctx, revisionID, func(tx *gorm.DB, draft *models.Revision) error {
		table, err := findTable(tx, draft.ID, tableID)
		if err != nil {
			return err
		}
		existing, err := existingRowIDs(tx, table.VersionID, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if !existing[id] {
				return fmt.Errorf("row %s in %s: %w", id, tableID, revisionerrors.NotFound)
			}
		}
		if !IsSystemTable(tableID) {
			if err := checkNotReferenced(tx, draft.ID, tableID, ids); err != nil {
				return err
			}
		}

		dt, err := getOrCreateDraftTable(tx, draft, tableID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			row, err := findRow(tx, dt.VersionID, id)
			if err != nil {
				return err
			}
			if err := removeRow(tx, dt, row); err != nil {
				return err
			}
		}
		return cleanupOrphans(tx)
	})
	if err != nil {
		return err
	}
	s.log.Debug("removed rows", zap.String("revision", revisionID), zap.String("table", tableID), zap.Int("rows", len(ids)))
	return nil
}

// RenameRow changes the id of a row in a draft and rewrites every foreign
// key value that pointed at the old id.
func (s *Service) RenameRow(ctx context.Context, revisionID, tableID, from, to string) (*models.Row, error) {
	if err := s.checkMutable(tableID); err != nil {
		return nil, err
	}
	if err := ValidateRowID(to); err != nil {
		return nil, err
	}

	var renamed *models.Row
	var cascaded int
	err := s.mutateDraft(ctx, revisionID, func(tx *gorm.DB, draft *models.Revision) error {
		table, err := findTable(tx, draft.ID, tableID)
		if err != nil {
			return err
		}
		existing, err := existingRowIDs(tx, table.VersionID, []string{from, to})
		if err != nil {
			return err
		}
		if !existing[from] {
			return fmt.Errorf("row %s in %s: %w", from, tableID, revisionerrors.NotFound)
		}
		if existing[to] {
			return fmt.Errorf("rename %s to %s: row %s: %w", from, to, to, revisionerrors.Conflict)
		}

		dt, err := getOrCreateDraftTable(tx, draft, tableID)
		if err != nil {
			return err
		}
		if renamed, err = getOrCreateDraftRow(tx, dt, from); err != nil {
			return err
		}
		renamed.RowID = to
		if err := tx.Model(renamed).Update("row_id", to).Error; err != nil {
			return err
		}

		if IsSystemTable(tableID) {
			return nil
		}
		cascaded, err = cascadeRowRename(tx, draft, tableID, from, to)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("renamed row",
		zap.String("revision", revisionID),
		zap.String("table", tableID),
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("referencingRows", cascaded))
	return renamed, nil
}

// cascadeRowRename rewrites foreign keys to a renamed row in every table of
// the draft. It returns the number of rows rewritten.
func cascadeRowRename(tx *gorm.DB, draft *models.Revision, tableID, from, to string) (int, error) {
	tables, err := referencingTables(tx, draft.ID, tableID, jsonstore.ForeignKey)
	if err != nil {
		return 0, err
	}
	count := 0
	for i := range tables {
		ts, err := loadStore(tx, draft.ID, &tables[i])
		if err != nil {
			return 0, err
		}
		changed := ts.store.ReplaceReferences(tableID, from, to)
		if len(changed) == 0 {
			continue
		}
		dt, err := getOrCreateDraftTable(tx, draft, tables[i].TableID)
		if err != nil {
			return 0, err
		}
		for _, id := range changed {
			row, err := getOrCreateDraftRow(tx, dt, id)
			if err != nil {
				return 0, err
			}
			if err := encodeRow(row, ts.store.Plain(id), row.SchemaHash); err != nil {
				return 0, err
			}
			if err := tx.Save(row).Error; err != nil {
				return 0, err
			}
		}
		count += len(changed)
	}
	return count, nil
}

// ListRows returns a page of the rows of a table ordered by id.
func (s *Service) ListRows(ctx context.Context, revisionID, tableID string, req utils.PageRequest) (utils.Page[models.Row], error) {
	table, err := s.GetTable(ctx, revisionID, tableID)
	if err != nil {
		return utils.Page[models.Row]{}, err
	}
	q := s.read(ctx).Model(&models.Row{}).
		Joins("JOIN table_rows tr ON tr.row_version_id = row_versions.version_id").
		Where("tr.table_version_id = ?", table.VersionID)
	return fetchPage(q, keyed[models.Row]{
		name:   "list_rows",
		column: "row_versions.row_id",
		key:    func(r models.Row) string { return r.RowID },
	}, req)
}

// GetRow returns a row of a table in a revision.
func (s *Service) GetRow(ctx context.Context, revisionID, tableID, rowID string) (*models.Row, error) {
	table, err := s.GetTable(ctx, revisionID, tableID)
	if err != nil {
		return nil, err
	}
	return findRow(s.read(ctx), table.VersionID, rowID)
}

// CountRowReferences counts, per referencing table, the foreign key and
// reference values pointing at a row.
func (s *Service) CountRowReferences(ctx context.Context, revisionID, tableID, rowID string) ([]ReferenceCount, error) {
	if _, err := s.GetRow(ctx, revisionID, tableID, rowID); err != nil {
		return nil, err
	}
	db := s.read(ctx)
	tables, err := referencingTables(db, revisionID, tableID, jsonstore.ForeignKey, jsonstore.Reference)
	if err != nil {
		return nil, err
	}
	counts := []ReferenceCount{}
	for i := range tables {
		ts, err := loadStore(db, revisionID, &tables[i])
		if err != nil {
			return nil, err
		}
		if n := ts.store.CountReferences(tableID, rowID); n > 0 {
			counts = append(counts, ReferenceCount{Table: tables[i].TableID, Count: n})
		}
	}
	return counts, nil
}
