// service.go
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
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/localnerve/jam-build-revdb/internal/database"
	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
	"github.com/localnerve/jam-build-revdb/internal/validation"
)

// System tables hold per table bookkeeping as rows keyed by table id, or
// by table lineage for the migration log.
const (
	SchemaTable    = "schema"
	MigrationTable = "migration"
	ViewsTable     = "views"
)

// SystemTables lists the system tables every revision carries.
var SystemTables = []string{SchemaTable, MigrationTable, ViewsTable}

var tableIDPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]{0,63}$`)

const maxRowIDLength = 255

// Options tune a Service.
type Options struct {
	// AllowSystemTableMutation lets table and row operations touch system tables.
	AllowSystemTableMutation bool
	// Notifier receives endpoint events after commit. Defaults to a logging notifier.
	Notifier Notifier
	// Now is the clock used for migration records.
	Now func() time.Time
}

// Service is the revision store: the revision/branch controller, the copy
// on write resolver and the table, row and view operations built on them.
type Service struct {
	db          *gorm.DB
	validator   *validation.Service
	notifier    Notifier
	log         *zap.Logger
	allowSystem bool
	now         func() time.Time
}

// New creates a Service.
func New(db *gorm.DB, validator *validation.Service, log *zap.Logger, opts Options) *Service {
	s := &Service{
		db:          db,
		validator:   validator,
		notifier:    opts.Notifier,
		log:         log.Named("revisions"),
		allowSystem: opts.AllowSystemTableMutation,
		now:         opts.Now,
	}
	if s.notifier == nil {
		s.notifier = NewLogNotifier(log)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// transaction runs fn in one serializable transaction. Invariant violations
// are logged as defects.
func (s *Service) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db := s.db.WithContext(ctx)
	err := db.Transaction(fn, database.Serializable(db))
	if errors.Is(err, revisionerrors.InvariantViolation) {
		s.log.Error("invariant violation", zap.Error(err))
	}
	return err
}

// read returns a session for queries outside a transaction.
func (s *Service) read(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// notFound maps gorm's missing record to the NotFound kind.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), revisionerrors.NotFound)
	}
	return err
}

// IsSystemTable reports whether id names a system table.
func IsSystemTable(id string) bool {
	return slices.Contains(SystemTables, id)
}

// ValidateTableID checks a user table id.
func ValidateTableID(id string) error {
	var message string
	switch {
	case !tableIDPattern.MatchString(id):
		message = fmt.Sprintf("table id %q must match %s", id, tableIDPattern)
	case strings.HasPrefix(id, "__"):
		message = fmt.Sprintf("table id %q must not start with __", id)
	case IsSystemTable(id):
		message = fmt.Sprintf("table id %q is reserved", id)
	default:
		return nil
	}
	return revisionerrors.NewValidationError("table", revisionerrors.FieldError{
		Field:   "id",
		Message: message,
		Type:    "pattern",
	})
}

// ValidateRowID checks a row id.
func ValidateRowID(id string) error {
	if id != "" && len(id) <= maxRowIDLength {
		return nil
	}
	return revisionerrors.NewValidationError("row", revisionerrors.FieldError{
		Field:   "id",
		Message: fmt.Sprintf("row id must be 1 to %d characters", maxRowIDLength),
		Type:    "length",
	})
}

func (s *Service) checkMutable(table string) error {
	if IsSystemTable(table) && !s.allowSystem {
		return fmt.Errorf("system table %s is read only: %w", table, revisionerrors.Forbidden)
	}
	return nil
}
