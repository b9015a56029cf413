// table.go
//
// A versioned, schema-governed structured-content store for jam-build
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of jam-build-revdb.
// jam-build-revdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// jam-build-revdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with jam-build-revdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/localnerve/jam-build-revdb/internal/jsonstore"
	"github.com/localnerve/jam-build-revdb/internal/migration"
	"github.com/localnerve/jam-build-revdb/internal/models"
	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
	"github.com/localnerve/jam-build-revdb/internal/utils"
)

// TableSchema is the current schema of a table.
type TableSchema struct {
	TableID string         `json:"tableId"`
	Hash    string         `json:"hash"`
	Schema  map[string]any `json:"schema"`
}

// SchemaUpdate is the outcome of a patch batch against a table schema.
// UpdatedRows lists the rows whose data changed.
type SchemaUpdate struct {
	TableSchema
	UpdatedRows []string `json:"updatedRows"`
}

func newTableSchema(tableID string, schema *jsonstore.Schema) (*TableSchema, error) {
	plain := schema.Plain()
	hash, err := jsonstore.Hash(plain)
	if err != nil {
		return nil, err
	}
	return &TableSchema{TableID: tableID, Hash: hash, Schema: plain}, nil
}

// fixedSchema rejects schema operations on system tables.
func fixedSchema(tableID string) error {
	if IsSystemTable(tableID) {
		return fmt.Errorf("system table %s has a fixed schema: %w", tableID, revisionerrors.Forbidden)
	}
	return nil
}

// CreateTable adds a user table to a draft. The schema document must pass
// the meta-schema, and it starts the table's migration log.
func (s *Service) CreateTable(ctx context.Context, revisionID, tableID string, schemaDoc any) (*models.Table, error) {
	if err := fixedSchema(tableID); err != nil {
		return nil, err
	}
	if err := ValidateTableID(tableID); err != nil {
		return nil, err
	}
	schema, err := s.validator.ValidateSchema(schemaDoc)
	if err != nil {
		return nil, err
	}

	var table models.Table
	var log *migration.Log
	err = s.mutateDraft(ctx, revisionID, func(tx *gorm.DB, draft *models.Revision) error {
		exists, err := tableExists(tx, draft.ID, tableID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("table %s: %w", tableID, revisionerrors.Conflict)
		}
		if err := checkForeignKeyTables(tx, draft.ID, tableID, schema); err != nil {
			return err
		}

		table = models.Table{
			VersionID: uuid.NewString(),
			CreatedID: uuid.NewString(),
			TableID:   tableID,
		}
		if err := tx.Create(&table).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.RevisionTable{RevisionID: draft.ID, TableVersionID: table.VersionID}).Error; err != nil {
			return err
		}

		if log, err = migration.NewLog(table.CreatedID, tableID, schema, s.now()); err != nil {
			return err
		}
		if err := saveSchema(tx, draft, tableID, schema); err != nil {
			return err
		}
		if err := saveLog(tx, draft, log); err != nil {
			return err
		}
		return putSystemRow(tx, draft, ViewsTable, tableID, DefaultViews())
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("created table",
		zap.String("revision", revisionID),
		zap.String("table", tableID),
		zap.String("hash", log.InitMigration.Hash))
	return &table, nil
}

// UpdateTable applies a patch batch to the schema of a table, migrates every
// row to the new shape and appends an update record to the migration log.
func (s *Service) UpdateTable(ctx context.Context, revisionID, tableID string, patches []migration.Patch) (*SchemaUpdate, error) {
	if err := fixedSchema(tableID); err != nil {
		return nil, err
	}

	var result *SchemaUpdate
	err := s.mutateDraft(ctx, revisionID, func(tx *gorm.DB, draft *models.Revision) error {
		table, err := findTable(tx, draft.ID, tableID)
		if err != nil {
			return err
		}
		ts, err := loadStore(tx, draft.ID, table)
		if err != nil {
			return err
		}
		log, err := loadLog(tx, draft.ID, table.CreatedID)
		if err != nil {
			return err
		}

		for i, p := range patches {
			if (p.Op == migration.OpAdd || p.Op == migration.OpReplace) && p.Value != nil {
				if err := s.validator.ValidateSchemaNode(fmt.Sprintf("patch %d", i), p.Value); err != nil {
					return err
				}
			}
		}
		hash, err := migration.ApplyAndRecord(log, ts.store, patches, s.now())
		if err != nil {
			return err
		}
		schema := ts.store.Schema()
		plain := schema.Plain()
		if _, err := s.validator.ValidateSchema(plain); err != nil {
			return err
		}
		if err := checkForeignKeyTables(tx, draft.ID, tableID, schema); err != nil {
			return err
		}

		rowIDs := ts.store.RowIDs()
		var changed, stale []string
		for _, id := range rowIDs {
			data := ts.store.Plain(id)
			if err := s.validator.ValidateData(plain, id, data); err != nil {
				return err
			}
			rowHash, err := jsonstore.Hash(data)
			if err != nil {
				return err
			}
			if rowHash != ts.rows[id].Hash {
				changed = append(changed, id)
			}
			if rowHash != ts.rows[id].Hash || ts.rows[id].SchemaHash != hash {
				stale = append(stale, id)
			}
		}
		if err := checkForeignKeyValues(tx, draft.ID, ts.store, rowIDs); err != nil {
			return err
		}
		if err := stampRows(tx, draft, ts, stale, hash); err != nil {
			return err
		}

		if err := saveSchema(tx, draft, tableID, schema); err != nil {
			return err
		}
		if err := saveLog(tx, draft, log); err != nil {
			return err
		}
		result = &SchemaUpdate{
			TableSchema: TableSchema{TableID: tableID, Hash: hash, Schema: plain},
			UpdatedRows: changed,
		}
		if result.UpdatedRows == nil {
			result.UpdatedRows = []string{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("migrated table schema",
		zap.String("revision", revisionID),
		zap.String("table", tableID),
		zap.String("hash", result.Hash),
		zap.Int("patches", len(patches)),
		zap.Int("rows", len(result.UpdatedRows)))
	return result, nil
}

// RenameTable changes the id of a table in a draft. The schema and views
// follow the table, the migration log records the rename and every foreign
// key declared against the old id is retargeted.
func (s *Service) RenameTable(ctx context.Context, revisionID, from, to string) (*models.Table, error) {
	if err := fixedSchema(from); err != nil {
		return nil, err
	}
	if err := ValidateTableID(to); err != nil {
		return nil, err
	}

	var renamed *models.Table
	err := s.mutateDraft(ctx, revisionID, func(tx *gorm.DB, draft *models.Revision) error {
		if _, err := findTable(tx, draft.ID, from); err != nil {
			return err
		}
		exists, err := tableExists(tx, draft.ID, to)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("rename %s to %s: table %s: %w", from, to, to, revisionerrors.Conflict)
		}

		if renamed, err = getOrCreateDraftTable(tx, draft, from); err != nil {
			return err
		}
		renamed.TableID = to
		if err := tx.Model(renamed).Update("table_id", to).Error; err != nil {
			return err
		}
		if err := renameSystemRow(tx, draft, SchemaTable, from, to); err != nil {
			return err
		}
		if err := renameSystemRow(tx, draft, ViewsTable, from, to); err != nil {
			return err
		}

		log, err := loadLog(tx, draft.ID, renamed.CreatedID)
		if err != nil {
			return err
		}
		log.AppendRename(to, s.now())
		if err := saveLog(tx, draft, log); err != nil {
			return err
		}
		return s.retargetDeclarations(tx, draft, from, to)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("renamed table", zap.String("revision", revisionID), zap.String("from", from), zap.String("to", to))
	return renamed, nil
}

// retargetDeclarations points the declarations of every user table aimed
// at from to to. Each changed table gets an update record.
func (s *Service) retargetDeclarations(tx *gorm.DB, draft *models.Revision, from, to string) error {
	tables, err := referencingTables(tx, draft.ID, from, jsonstore.ForeignKey, jsonstore.Reference)
	if err != nil {
		return err
	}
	for _, t := range tables {
		schema, err := loadSchema(tx, draft.ID, t.TableID)
		if err != nil {
			return err
		}
		patches := migration.RetargetForeignKeys(schema, from, to)
		if len(patches) == 0 {
			continue
		}
		log, err := loadLog(tx, draft.ID, t.CreatedID)
		if err != nil {
			return err
		}
		ts, err := loadStore(tx, draft.ID, &t)
		if err != nil {
			return err
		}
		hash, err := migration.ApplyAndRecord(log, ts.store, patches, s.now())
		if err != nil {
			return fmt.Errorf("%w: retargeting %s: %v", revisionerrors.InvariantViolation, t.TableID, err)
		}
		if err := stampRows(tx, draft, ts, ts.store.RowIDs(), hash); err != nil {
			return err
		}
		if err := saveSchema(tx, draft, t.TableID, ts.store.Schema()); err != nil {
			return err
		}
		if err := saveLog(tx, draft, log); err != nil {
			return err
		}
		s.log.Debug("retargeted declarations",
			zap.String("table", t.TableID),
			zap.String("from", from),
			zap.String("to", to),
			zap.String("hash", hash))
	}
	return nil
}

// stampRows copies the rows ids of a table on write, storing their working
// data under schemaHash.
func stampRows(tx *gorm.DB, draft *models.Revision, ts *tableStore, ids []string, schemaHash string) error {
	if len(ids) == 0 {
		return nil
	}
	dt, err := getOrCreateDraftTable(tx, draft, ts.table.TableID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		row, err := getOrCreateDraftRow(tx, dt, id)
		if err != nil {
			return err
		}
		if err := encodeRow(row, ts.store.Plain(id), schemaHash); err != nil {
			return err
		}
		if err := tx.Save(row).Error; err != nil {
			return err
		}
	}
	return nil
}

// RemoveTable drops a table from a draft. Its migration log stays. A table
// still targeted by another table's foreign key cannot be removed.
func (s *Service) RemoveTable(ctx context.Context, revisionID, tableID string) error {
	if err := fixedSchema(tableID); err != nil {
		return err
	}
	err := s.mutateDraft(ctx, revisionID, func(tx *gorm.DB, draft *models.Revision) error {
		table, err := findTable(tx, draft.ID, tableID)
		if err != nil {
			return err
		}
		tables, err := referencingTables(tx, draft.ID, tableID, jsonstore.ForeignKey)
		if err != nil {
			return err
		}
		for _, t := range tables {
			if t.TableID != tableID {
				return fmt.Errorf("table %s is referenced by %s: %w", tableID, t.TableID, revisionerrors.Conflict)
			}
		}

		if err := tx.Where("revision_id = ? AND table_version_id = ?", draft.ID, table.VersionID).
			Delete(&models.RevisionTable{}).Error; err != nil {
			return err
		}
		if err := deleteSystemRow(tx, draft, SchemaTable, tableID); err != nil {
			return err
		}
		if err := deleteSystemRow(tx, draft, ViewsTable, tableID); err != nil {
			return err
		}
		return cleanupOrphans(tx)
	})
	if err != nil {
		return err
	}
	s.log.Info("removed table", zap.String("revision", revisionID), zap.String("table", tableID))
	return nil
}

// revision loads a revision for a read.
func revision(db *gorm.DB, revisionID string) (*models.Revision, error) {
	var rev models.Revision
	if err := db.First(&rev, "id = ?", revisionID).Error; err != nil {
		return nil, notFound(err, "revision %s", revisionID)
	}
	return &rev, nil
}

// ListTables returns a page of the tables of a revision ordered by id.
func (s *Service) ListTables(ctx context.Context, revisionID string, req utils.PageRequest, includeSystem bool) (utils.Page[models.Table], error) {
	db := s.read(ctx)
	if _, err := revision(db, revisionID); err != nil {
		return utils.Page[models.Table]{}, err
	}
	q := db.Model(&models.Table{}).
		Joins("JOIN revision_tables rt ON rt.table_version_id = table_versions.version_id").
		Where("rt.revision_id = ?", revisionID)
	if !includeSystem {
		q = q.Where("table_versions.system = ?", false)
	}
	return fetchPage(q, keyed[models.Table]{
		name:   "list_tables",
		column: "table_versions.table_id",
		key:    func(t models.Table) string { return t.TableID },
	}, req)
}

// GetTable returns the version of a table in a revision.
func (s *Service) GetTable(ctx context.Context, revisionID, tableID string) (*models.Table, error) {
	db := s.read(ctx)
	if _, err := revision(db, revisionID); err != nil {
		return nil, err
	}
	return findTable(db, revisionID, tableID)
}

// GetTableSchema returns the schema of a user table in a revision.
func (s *Service) GetTableSchema(ctx context.Context, revisionID, tableID string) (*TableSchema, error) {
	if err := fixedSchema(tableID); err != nil {
		return nil, err
	}
	db := s.read(ctx)
	if _, err := s.GetTable(ctx, revisionID, tableID); err != nil {
		return nil, err
	}
	schema, err := loadSchema(db, revisionID, tableID)
	if err != nil {
		return nil, err
	}
	return newTableSchema(tableID, schema)
}

// GetTableMigrations returns the migration log of a table as seen from a
// revision.
func (s *Service) GetTableMigrations(ctx context.Context, revisionID, tableID string) (*migration.Log, error) {
	if err := fixedSchema(tableID); err != nil {
		return nil, err
	}
	table, err := s.GetTable(ctx, revisionID, tableID)
	if err != nil {
		return nil, err
	}
	return loadLog(s.read(ctx), revisionID, table.CreatedID)
}
