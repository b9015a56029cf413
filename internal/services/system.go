package services

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/localnerve/jam-build-revdb/internal/jsonstore"
	"github.com/localnerve/jam-build-revdb/internal/migration"
	"github.com/localnerve/jam-build-revdb/internal/models"
	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
)

// DefaultViews is stored for every new table.
func DefaultViews() map[string]any {
	return map[string]any{
		"version":       1,
		"defaultViewId": "default",
		"views": []any{
			map[string]any{"id": "default", "name": "Default"},
		},
	}
}

// encodeRow fills the payload columns of a row version.
func encodeRow(row *models.Row, plain any, schemaHash string) error {
	data, err := models.NewJSON(plain)
	if err != nil {
		return err
	}
	hash, err := jsonstore.Hash(plain)
	if err != nil {
		return err
	}
	row.Data = data
	row.Hash = hash
	row.SchemaHash = schemaHash
	return nil
}

// systemRow reads the row key of a system table in a revision. A missing
// bookkeeping row is a defect.
func systemRow(tx *gorm.DB, revisionID, table, key string) (*models.Row, error) {
	sys, err := findTable(tx, revisionID, table)
	if err != nil {
		return nil, fmt.Errorf("%w: system table %s: %v", revisionerrors.InvariantViolation, table, err)
	}
	row, err := findRow(tx, sys.VersionID, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s row %s: %v", revisionerrors.InvariantViolation, table, key, err)
	}
	return row, nil
}

// putSystemRow writes the row key of a system table in a draft, creating
// the draft private table and row versions as needed.
func putSystemRow(tx *gorm.DB, draft *models.Revision, table, key string, plain any) error {
	sys, err := getOrCreateDraftTable(tx, draft, table)
	if err != nil {
		return fmt.Errorf("%w: system table %s: %v", revisionerrors.InvariantViolation, table, err)
	}
	exists, err := existingRowIDs(tx, sys.VersionID, []string{key})
	if err != nil {
		return err
	}
	if !exists[key] {
		row := models.Row{RowID: key}
		if err := encodeRow(&row, plain, ""); err != nil {
			return err
		}
		return createRow(tx, sys, &row)
	}
	row, err := getOrCreateDraftRow(tx, sys, key)
	if err != nil {
		return err
	}
	if err := encodeRow(row, plain, ""); err != nil {
		return err
	}
	return tx.Save(row).Error
}

// renameSystemRow changes the id of a system row in a draft.
func renameSystemRow(tx *gorm.DB, draft *models.Revision, table, from, to string) error {
	sys, err := getOrCreateDraftTable(tx, draft, table)
	if err != nil {
		return err
	}
	row, err := getOrCreateDraftRow(tx, sys, from)
	if err != nil {
		return fmt.Errorf("%w: %s row %s: %v", revisionerrors.InvariantViolation, table, from, err)
	}
	return tx.Model(row).Update("row_id", to).Error
}

// deleteSystemRow drops a system row from a draft.
func deleteSystemRow(tx *gorm.DB, draft *models.Revision, table, key string) error {
	sys, err := getOrCreateDraftTable(tx, draft, table)
	if err != nil {
		return err
	}
	row, err := findRow(tx, sys.VersionID, key)
	if err != nil {
		return fmt.Errorf("%w: %s row %s: %v", revisionerrors.InvariantViolation, table, key, err)
	}
	return removeRow(tx, sys, row)
}

// loadSchema returns the current schema of a user table in a revision.
func loadSchema(tx *gorm.DB, revisionID, tableID string) (*jsonstore.Schema, error) {
	row, err := systemRow(tx, revisionID, SchemaTable, tableID)
	if err != nil {
		return nil, err
	}
	schema, err := jsonstore.ParseSchema(row.Data.JSON)
	if err != nil {
		return nil, fmt.Errorf("%w: stored schema of %s: %v", revisionerrors.InvariantViolation, tableID, err)
	}
	return schema, nil
}

// saveSchema stores the schema of a user table in a draft.
func saveSchema(tx *gorm.DB, draft *models.Revision, tableID string, schema *jsonstore.Schema) error {
	return putSystemRow(tx, draft, SchemaTable, tableID, schema.Plain())
}

// loadLog returns the migration log of a table lineage.
func loadLog(tx *gorm.DB, revisionID, createdID string) (*migration.Log, error) {
	row, err := systemRow(tx, revisionID, MigrationTable, createdID)
	if err != nil {
		return nil, err
	}
	return migration.ParseLog(row.Data.JSON)
}

func saveLog(tx *gorm.DB, draft *models.Revision, log *migration.Log) error {
	var plain any
	raw, err := json.Marshal(log)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, &plain); err != nil {
		return err
	}
	return putSystemRow(tx, draft, MigrationTable, log.CreatedID, plain)
}
