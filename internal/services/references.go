package services

import (
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"

	"github.com/localnerve/jam-build-revdb/internal/jsonstore"
	"github.com/localnerve/jam-build-revdb/internal/models"
	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
)

// tableStore is the working copy of one table in a transaction.
type tableStore struct {
	table *models.Table
	rows  map[string]*models.Row
	store *jsonstore.Store
}

// loadStore binds every row of table to its current schema.
func loadStore(tx *gorm.DB, revisionID string, table *models.Table) (*tableStore, error) {
	schema, err := loadSchema(tx, revisionID, table.TableID)
	if err != nil {
		return nil, err
	}
	rows, err := tableRows(tx, table.VersionID)
	if err != nil {
		return nil, err
	}
	ts := &tableStore{
		table: table,
		rows:  make(map[string]*models.Row, len(rows)),
		store: jsonstore.NewStore(schema),
	}
	for i := range rows {
		plain, err := rows[i].Data.Decode()
		if err != nil {
			return nil, fmt.Errorf("%w: row %s of %s: %v", revisionerrors.InvariantViolation, rows[i].RowID, table.TableID, err)
		}
		ts.rows[rows[i].RowID] = &rows[i]
		ts.store.Bind(rows[i].RowID, plain)
	}
	return ts, nil
}

// userTables returns the user tables of a revision.
func userTables(tx *gorm.DB, revisionID string) ([]models.Table, error) {
	tables, err := revisionTables(tx, revisionID)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(tables, func(t models.Table) bool {
		return t.System
	}), nil
}

// referencingTables returns the user tables whose schema declares a
// pointer of one of kinds at target, with their schemas.
func referencingTables(tx *gorm.DB, revisionID, target string, kinds ...jsonstore.RefKind) ([]models.Table, error) {
	tables, err := userTables(tx, revisionID)
	if err != nil {
		return nil, err
	}
	var out []models.Table
	for _, t := range tables {
		schema, err := loadSchema(tx, revisionID, t.TableID)
		if err != nil {
			return nil, err
		}
		for _, d := range schema.Declarations() {
			if d.Table == target && slices.Contains(kinds, d.Kind) {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

// checkForeignKeyTables verifies every table a schema points at with a
// foreign key exists in the revision. self names the table being defined.
func checkForeignKeyTables(tx *gorm.DB, revisionID, self string, schema *jsonstore.Schema) error {
	for _, target := range schema.ForeignKeyTables() {
		if target == self {
			continue
		}
		ok, err := tableExists(tx, revisionID, target)
		if err != nil {
			return err
		}
		if !ok || IsSystemTable(target) {
			return fmt.Errorf("foreign key target table %s: %w", target, revisionerrors.NotFound)
		}
	}
	return nil
}

// checkForeignKeyValues verifies the foreign key values of rowIDs in st
// point at rows that exist in the revision.
func checkForeignKeyValues(tx *gorm.DB, revisionID string, st *jsonstore.Store, rowIDs []string) error {
	type pointer struct {
		row string
		ref jsonstore.RowReference
	}
	wanted := make(map[string][]pointer)
	for _, id := range rowIDs {
		for _, ref := range st.References(id) {
			if ref.Kind == jsonstore.ForeignKey {
				wanted[ref.Table] = append(wanted[ref.Table], pointer{row: id, ref: ref})
			}
		}
	}

	var details []revisionerrors.FieldError
	for _, target := range sortedKeys(wanted) {
		pointers := wanted[target]
		table, err := findTable(tx, revisionID, target)
		if err != nil {
			return fmt.Errorf("%w: foreign key target %s: %v", revisionerrors.InvariantViolation, target, err)
		}
		ids := make([]string, 0, len(pointers))
		for _, p := range pointers {
			ids = append(ids, p.ref.RowID)
		}
		found, err := existingRowIDs(tx, table.VersionID, ids)
		if err != nil {
			return err
		}
		for _, p := range pointers {
			if found[p.ref.RowID] {
				continue
			}
			details = append(details, revisionerrors.FieldError{
				Field:   p.row + p.ref.Path,
				Message: fmt.Sprintf("row %s does not exist in table %s", p.ref.RowID, target),
				Type:    string(jsonstore.ForeignKey),
			})
		}
	}
	if len(details) > 0 {
		return revisionerrors.NewValidationError("foreign keys", details...)
	}
	return nil
}

// checkNotReferenced fails with Conflict when a row outside the removal set
// holds a foreign key to one of ids of table.
func checkNotReferenced(tx *gorm.DB, revisionID, table string, ids []string) error {
	removing := make(map[string]bool, len(ids))
	for _, id := range ids {
		removing[id] = true
	}
	tables, err := referencingTables(tx, revisionID, table, jsonstore.ForeignKey)
	if err != nil {
		return err
	}
	var blocked []string
	for i := range tables {
		ts, err := loadStore(tx, revisionID, &tables[i])
		if err != nil {
			return err
		}
		self := tables[i].TableID == table
		for _, rowID := range ts.store.RowIDs() {
			if self && removing[rowID] {
				continue
			}
			for _, ref := range ts.store.References(rowID) {
				if ref.Kind == jsonstore.ForeignKey && ref.Table == table && removing[ref.RowID] {
					blocked = append(blocked, fmt.Sprintf("%s/%s", tables[i].TableID, rowID))
				}
			}
		}
	}
	if len(blocked) > 0 {
		slices.Sort(blocked)
		blocked = slices.Compact(blocked)
		return fmt.Errorf("rows of %s are referenced by %s: %w", table, strings.Join(blocked, ", "), revisionerrors.Conflict)
	}
	return nil
}

// ReferenceCount is the number of values in one table pointing at a row.
type ReferenceCount struct {
	Table string `json:"table"`
	Count int    `json:"count"`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
