// draft.go
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
	"github.com/looplab/fsm"
	"github.com/tiendc/go-deepcopy"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/localnerve/jam-build-revdb/internal/models"
	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
)

// Revision lifecycle states and events.
const (
	StateDraft    = "draft"
	StateHead     = "head"
	StateOrdinary = "ordinary"

	EventCommit    = "commit"
	EventSupersede = "supersede"
)

// RevisionState returns the lifecycle state of a revision.
func RevisionState(rev *models.Revision) string {
	switch {
	case rev.IsDraft:
		return StateDraft
	case rev.IsHead:
		return StateHead
	}
	return StateOrdinary
}

// newLifecycle returns the state machine of rev. Draft only leaves through
// commit, and nothing returns to draft.
func newLifecycle(rev *models.Revision) *fsm.FSM {
	return fsm.NewFSM(
		RevisionState(rev),
		fsm.Events{
			{Name: EventCommit, Src: []string{StateDraft}, Dst: StateHead},
			{Name: EventSupersede, Src: []string{StateHead}, Dst: StateOrdinary},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				rev.IsDraft = e.Dst == StateDraft
				rev.IsHead = e.Dst == StateHead
			},
		},
	)
}

// transition moves rev through event, updating its flags.
func transition(ctx context.Context, rev *models.Revision, event string) error {
	if err := newLifecycle(rev).Event(ctx, event); err != nil {
		return fmt.Errorf("%w: revision %s cannot %s: %v", revisionerrors.InvariantViolation, rev.ID, event, err)
	}
	return nil
}

// lockDraftOfBranch loads and locks the draft revision of a branch.
func lockDraftOfBranch(tx *gorm.DB, branchID string) (*models.Revision, error) {
	var draft models.Revision
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch_id = ? AND is_draft = ?", branchID, true).
		First(&draft).Error
	if err != nil {
		return nil, notFound(err, "draft of branch %s", branchID)
	}
	return &draft, nil
}

func headOfBranch(tx *gorm.DB, branchID string) (*models.Revision, error) {
	var head models.Revision
	err := tx.Where("branch_id = ? AND is_head = ?", branchID, true).First(&head).Error
	if err != nil {
		return nil, notFound(err, "head of branch %s", branchID)
	}
	return &head, nil
}

// lockDraft loads and locks a revision that must be a draft.
func lockDraft(tx *gorm.DB, revisionID string) (*models.Revision, error) {
	var rev models.Revision
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", revisionID).
		First(&rev).Error
	if err != nil {
		return nil, notFound(err, "revision %s", revisionID)
	}
	if !rev.IsDraft {
		return nil, fmt.Errorf("revision %s is not a draft: %w", revisionID, revisionerrors.Conflict)
	}
	return &rev, nil
}

// getOrCreateDraftTable returns the draft private version of tableID. A
// version that is not readonly was created for this draft and is returned
// as is. Otherwise it is cloned under a new version id and the draft's
// membership is swapped to the clone, sharing every row.
func getOrCreateDraftTable(tx *gorm.DB, draft *models.Revision, tableID string) (*models.Table, error) {
	table, err := findTable(tx, draft.ID, tableID)
	if err != nil {
		return nil, err
	}
	if !table.Readonly {
		return table, nil
	}

	var clone models.Table
	if err := deepcopy.Copy(&clone, table); err != nil {
		return nil, err
	}
	clone.VersionID = uuid.NewString()
	clone.Readonly = false
	clone.Rows = nil
	if err := tx.Create(&clone).Error; err != nil {
		return nil, err
	}
	if err := copyTableRows(tx, table.VersionID, clone.VersionID); err != nil {
		return nil, err
	}
	if err := swapTableVersion(tx, draft.ID, table.VersionID, clone.VersionID); err != nil {
		return nil, err
	}
	return &clone, nil
}

// getOrCreateDraftRow does for a row of a draft private table what
// getOrCreateDraftTable does for the table.
func getOrCreateDraftRow(tx *gorm.DB, table *models.Table, rowID string) (*models.Row, error) {
	if table.Readonly {
		return nil, fmt.Errorf("%w: table version %s is readonly", revisionerrors.InvariantViolation, table.VersionID)
	}
	row, err := findRow(tx, table.VersionID, rowID)
	if err != nil {
		return nil, err
	}
	if !row.Readonly {
		return row, nil
	}

	var clone models.Row
	if err := deepcopy.Copy(&clone, row); err != nil {
		return nil, err
	}
	clone.VersionID = uuid.NewString()
	clone.Readonly = false
	if err := tx.Create(&clone).Error; err != nil {
		return nil, err
	}
	if err := swapRowVersion(tx, table.VersionID, row.VersionID, clone.VersionID); err != nil {
		return nil, err
	}
	return &clone, nil
}

// createRow adds a new row version to a draft private table.
func createRow(tx *gorm.DB, table *models.Table, row *models.Row) error {
	row.VersionID = uuid.NewString()
	row.CreatedID = uuid.NewString()
	if err := tx.Create(row).Error; err != nil {
		return err
	}
	return tx.Create(&models.TableRow{TableVersionID: table.VersionID, RowVersionID: row.VersionID}).Error
}

// removeRow drops a row from a draft private table. Draft private row
// versions are deleted by orphan cleanup.
func removeRow(tx *gorm.DB, table *models.Table, row *models.Row) error {
	return tx.Where("table_version_id = ? AND row_version_id = ?", table.VersionID, row.VersionID).
		Delete(&models.TableRow{}).Error
}
