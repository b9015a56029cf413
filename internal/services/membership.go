package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/localnerve/jam-build-revdb/internal/models"
	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
)

// revisionTables returns the table versions of a revision.
func revisionTables(tx *gorm.DB, revisionID string) ([]models.Table, error) {
	var tables []models.Table
	err := tx.Joins("JOIN revision_tables rt ON rt.table_version_id = table_versions.version_id").
		Where("rt.revision_id = ?", revisionID).
		Order("table_versions.table_id").
		Find(&tables).Error
	return tables, err
}

// findTable returns the version of tableID in a revision.
func findTable(tx *gorm.DB, revisionID, tableID string) (*models.Table, error) {
	var table models.Table
	err := tx.Joins("JOIN revision_tables rt ON rt.table_version_id = table_versions.version_id").
		Where("rt.revision_id = ? AND table_versions.table_id = ?", revisionID, tableID).
		First(&table).Error
	if err != nil {
		return nil, notFound(err, "table %s", tableID)
	}
	return &table, nil
}

func tableExists(tx *gorm.DB, revisionID, tableID string) (bool, error) {
	var count int64
	err := tx.Model(&models.RevisionTable{}).
		Joins("JOIN table_versions tv ON tv.version_id = revision_tables.table_version_id").
		Where("revision_tables.revision_id = ? AND tv.table_id = ?", revisionID, tableID).
		Count(&count).Error
	return count > 0, err
}

// tableRows returns the row versions of a table version.
func tableRows(tx *gorm.DB, tableVersionID string) ([]models.Row, error) {
	var rows []models.Row
	err := tx.Joins("JOIN table_rows tr ON tr.row_version_id = row_versions.version_id").
		Where("tr.table_version_id = ?", tableVersionID).
		Order("row_versions.row_id").
		Find(&rows).Error
	return rows, err
}

// findRow returns the version of rowID in a table version.
func findRow(tx *gorm.DB, tableVersionID, rowID string) (*models.Row, error) {
	var row models.Row
	err := tx.Joins("JOIN table_rows tr ON tr.row_version_id = row_versions.version_id").
		Where("tr.table_version_id = ? AND row_versions.row_id = ?", tableVersionID, rowID).
		First(&row).Error
	if err != nil {
		return nil, notFound(err, "row %s", rowID)
	}
	return &row, nil
}

// existingRowIDs returns which of ids exist in a table version.
func existingRowIDs(tx *gorm.DB, tableVersionID string, ids []string) (map[string]bool, error) {
	var found []string
	err := tx.Model(&models.Row{}).
		Joins("JOIN table_rows tr ON tr.row_version_id = row_versions.version_id").
		Where("tr.table_version_id = ? AND row_versions.row_id IN ?", tableVersionID, ids).
		Pluck("row_versions.row_id", &found).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(found))
	for _, id := range found {
		set[id] = true
	}
	return set, nil
}

// copyRevisionTables gives revision to the same table versions as from.
func copyRevisionTables(tx *gorm.DB, from, to string) error {
	return tx.Exec(`INSERT INTO revision_tables (revision_id, table_version_id)
		SELECT ?, table_version_id FROM revision_tables WHERE revision_id = ?`, to, from).Error
}

func copyTableRows(tx *gorm.DB, from, to string) error {
	return tx.Exec(`INSERT INTO table_rows (table_version_id, row_version_id)
		SELECT ?, row_version_id FROM table_rows WHERE table_version_id = ?`, to, from).Error
}

// swapTableVersion replaces one table version with another in a revision.
func swapTableVersion(tx *gorm.DB, revisionID, from, to string) error {
	result := tx.Model(&models.RevisionTable{}).
		Where("revision_id = ? AND table_version_id = ?", revisionID, from).
		Update("table_version_id", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("%w: table version %s is not in revision %s", revisionerrors.InvariantViolation, from, revisionID)
	}
	return nil
}

func swapRowVersion(tx *gorm.DB, tableVersionID, from, to string) error {
	result := tx.Model(&models.TableRow{}).
		Where("table_version_id = ? AND row_version_id = ?", tableVersionID, from).
		Update("row_version_id", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("%w: row version %s is not in table version %s", revisionerrors.InvariantViolation, from, tableVersionID)
	}
	return nil
}

// tableVersionSet returns the table version ids of a revision.
func tableVersionSet(tx *gorm.DB, revisionID string) (map[string]bool, error) {
	var ids []string
	if err := tx.Model(&models.RevisionTable{}).
		Where("revision_id = ?", revisionID).
		Pluck("table_version_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// recomputeHasChanges compares the table versions of a draft with those of
// its parent and stores the result.
func recomputeHasChanges(tx *gorm.DB, draft *models.Revision) error {
	changed := true
	if draft.ParentID != nil {
		mine, err := tableVersionSet(tx, draft.ID)
		if err != nil {
			return err
		}
		parent, err := tableVersionSet(tx, *draft.ParentID)
		if err != nil {
			return err
		}
		changed = !sameSet(mine, parent)
	}
	if changed == draft.HasChanges {
		return nil
	}
	draft.HasChanges = changed
	return tx.Model(draft).Update("has_changes", changed).Error
}

func sameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// markReadonly freezes every table and row version of a revision.
func markReadonly(tx *gorm.DB, revisionID string) error {
	tables := tx.Model(&models.RevisionTable{}).Select("table_version_id").Where("revision_id = ?", revisionID)
	if err := tx.Model(&models.Table{}).
		Where("version_id IN (?) AND readonly = ?", tables, false).
		Update("readonly", true).Error; err != nil {
		return err
	}
	rows := tx.Model(&models.TableRow{}).Select("row_version_id").Where("table_version_id IN (?)", tables)
	return tx.Model(&models.Row{}).
		Where("version_id IN (?) AND readonly = ?", rows, false).
		Update("readonly", true).Error
}

// cleanupOrphans deletes table and row versions no revision reaches any more.
// Only draft private versions can become unreachable.
func cleanupOrphans(tx *gorm.DB) error {
	if err := tx.Exec(`DELETE FROM table_versions
		WHERE version_id NOT IN (SELECT table_version_id FROM revision_tables)`).Error; err != nil {
		return err
	}
	if err := tx.Exec(`DELETE FROM table_rows
		WHERE table_version_id NOT IN (SELECT version_id FROM table_versions)`).Error; err != nil {
		return err
	}
	return tx.Exec(`DELETE FROM row_versions
		WHERE version_id NOT IN (SELECT row_version_id FROM table_rows)`).Error
}
