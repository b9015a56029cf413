package migration

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/juju/errors"

	"github.com/localnerve/jam-build-revdb/internal/jsonstore"
	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
)

// ChangeType tags a migration record.
type ChangeType string

const (
	ChangeInit   ChangeType = "init"
	ChangeUpdate ChangeType = "update"
	ChangeRename ChangeType = "rename"
)

// InitMigration records the first schema of a table.
type InitMigration struct {
	ChangeType ChangeType     `json:"changeType"`
	TableID    string         `json:"tableId"`
	Hash       string         `json:"hash"`
	Date       time.Time      `json:"date"`
	Schema     map[string]any `json:"schema"`
}

// Migration is an update or rename record.
type Migration struct {
	ChangeType ChangeType `json:"changeType"`
	Hash       string     `json:"hash,omitempty"`
	Date       time.Time  `json:"date"`
	Patches    []Patch    `json:"patches,omitempty"`
	TableID    string     `json:"tableId,omitempty"`
}

// Log is the append only migration history of one table lineage.
type Log struct {
	CreatedID     string        `json:"createdId"`
	InitMigration InitMigration `json:"initMigration"`
	Migrations    []Migration   `json:"migrations"`
}

// NewLog starts the log of a new table with its init record.
func NewLog(createdID, tableID string, schema *jsonstore.Schema, now time.Time) (*Log, error) {
	plain := schema.Plain()
	hash, err := jsonstore.Hash(plain)
	if err != nil {
		return nil, errors.Annotatef(err, "hashing schema of %s", tableID)
	}
	return &Log{
		CreatedID: createdID,
		InitMigration: InitMigration{
			ChangeType: ChangeInit,
			TableID:    tableID,
			Hash:       hash,
			Date:       now.UTC(),
			Schema:     plain,
		},
		Migrations: []Migration{},
	}, nil
}

// ParseLog decodes a stored log.
func ParseLog(data []byte) (*Log, error) {
	var l Log
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%w: migration log: %v", revisionerrors.InvariantViolation, err)
	}
	if l.InitMigration.ChangeType != ChangeInit {
		return nil, fmt.Errorf("%w: migration log of %s has no init record", revisionerrors.InvariantViolation, l.CreatedID)
	}
	return &l, nil
}

// AppendUpdate appends an update record. Repeated hashes are kept.
func (l *Log) AppendUpdate(hash string, now time.Time, patches []Patch) {
	l.Migrations = append(l.Migrations, Migration{
		ChangeType: ChangeUpdate,
		Hash:       hash,
		Date:       now.UTC(),
		Patches:    patches,
	})
}

// AppendRename appends a rename record.
func (l *Log) AppendRename(tableID string, now time.Time) {
	l.Migrations = append(l.Migrations, Migration{
		ChangeType: ChangeRename,
		Date:       now.UTC(),
		TableID:    tableID,
	})
}

// CurrentTableID is the table id after the last rename.
func (l *Log) CurrentTableID() string {
	id := l.InitMigration.TableID
	for _, m := range l.Migrations {
		if m.ChangeType == ChangeRename {
			id = m.TableID
		}
	}
	return id
}

// LastHash is the hash of the most recent schema.
func (l *Log) LastHash() string {
	hash := l.InitMigration.Hash
	for _, m := range l.Migrations {
		if m.ChangeType == ChangeUpdate {
			hash = m.Hash
		}
	}
	return hash
}

// Replay rebuilds the schema by applying every update record in order to
// the init schema.
func Replay(l *Log) (*jsonstore.Schema, error) {
	schema, err := jsonstore.SchemaFromPlain(l.InitMigration.Schema)
	if err != nil {
		return nil, errors.Annotatef(err, "replaying init schema of %s", l.CreatedID)
	}
	st := jsonstore.NewStore(schema)
	for i, m := range l.Migrations {
		if m.ChangeType != ChangeUpdate {
			continue
		}
		if err := Apply(st, m.Patches); err != nil {
			return nil, errors.Annotatef(err, "replaying migration %d of %s", i, l.CreatedID)
		}
	}
	return st.Schema(), nil
}
