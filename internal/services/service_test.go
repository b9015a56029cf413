package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/localnerve/jam-build-revdb/internal/database/dbtest"
	"github.com/localnerve/jam-build-revdb/internal/migration"
	"github.com/localnerve/jam-build-revdb/internal/models"
	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
	"github.com/localnerve/jam-build-revdb/internal/utils"
	"github.com/localnerve/jam-build-revdb/internal/validation"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const usersSchema = `{
	"type": "object",
	"required": ["name"],
	"additionalProperties": false,
	"properties": {"name": {"type": "string", "default": ""}}
}`

const teamsSchema = `{
	"type": "object",
	"required": ["title"],
	"additionalProperties": false,
	"properties": {"title": {"type": "string", "default": ""}}
}`

const membersSchema = `{
	"type": "object",
	"required": ["name", "team", "mentor"],
	"additionalProperties": false,
	"properties": {
		"name": {"type": "string", "default": ""},
		"team": {"type": "string", "default": "", "foreignKey": "teams"},
		"mentor": {"type": "string", "default": "", "reference": "teams"}
	}
}`

type recordingNotifier struct {
	mu       sync.Mutex
	created  []string
	deleted  []string
	notified [][]string
}

func (n *recordingNotifier) Create(_ context.Context, e models.Endpoint) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, e.ID)
	return nil
}

func (n *recordingNotifier) Delete(_ context.Context, e models.Endpoint) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deleted = append(n.deleted, e.ID)
	return nil
}

func (n *recordingNotifier) Notify(_ context.Context, ids []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = append(n.notified, ids)
	return nil
}

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func newTestService(t *testing.T) (*Service, *recordingNotifier) {
	t.Helper()
	validator, err := validation.New(0, zap.NewNop())
	require.NoError(t, err)
	notifier := &recordingNotifier{}
	s := New(dbtest.NewSQLite(t), validator, zap.NewNop(), Options{
		Notifier: notifier,
		Now:      func() time.Time { return testTime },
	})
	return s, notifier
}

func newProject(t *testing.T, s *Service) *ProjectState {
	t.Helper()
	ctx := context.Background()
	_, err := s.CreateOrganization(ctx, "acme")
	require.NoError(t, err)
	project, err := s.CreateProject(ctx, "acme", "site", "main")
	require.NoError(t, err)
	return project
}

func rowData(t *testing.T, row *models.Row) map[string]any {
	t.Helper()
	v, err := row.Data.Decode()
	require.NoError(t, err)
	return v.(map[string]any)
}

func assertBranchInvariant(t *testing.T, db *gorm.DB, branchID string) {
	t.Helper()
	var heads, drafts int64
	require.NoError(t, db.Model(&models.Revision{}).Where("branch_id = ? AND is_head = ?", branchID, true).Count(&heads).Error)
	require.NoError(t, db.Model(&models.Revision{}).Where("branch_id = ? AND is_draft = ?", branchID, true).Count(&drafts).Error)
	assert.Equal(t, int64(1), heads)
	assert.Equal(t, int64(1), drafts)
	var both int64
	require.NoError(t, db.Model(&models.Revision{}).
		Where("branch_id = ? AND is_head = ? AND is_draft = ?", branchID, true, true).
		Count(&both).Error)
	assert.Zero(t, both)
}

// createUsers creates the users table with row a and commits it.
func createUsers(t *testing.T, s *Service, p *ProjectState) *CommitResult {
	t.Helper()
	ctx := context.Background()
	_, err := s.CreateTable(ctx, p.Root.Draft.ID, "users", decode(t, usersSchema))
	require.NoError(t, err)
	_, err = s.CreateRows(ctx, p.Root.Draft.ID, "users", []RowInput{{ID: "a", Data: decode(t, `{"name":"a"}`)}})
	require.NoError(t, err)
	result, err := s.Commit(ctx, p.Root.Branch.ID, "users")
	require.NoError(t, err)
	return result
}

func TestCreateProject(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := newProject(t, s)

	assert.True(t, p.Root.Branch.IsRoot)
	assert.Equal(t, int64(0), p.Root.Head.Sequence)
	assert.True(t, p.Root.Head.IsStart)
	assert.Equal(t, int64(1), p.Root.Draft.Sequence)
	assert.Equal(t, p.Root.Head.ID, *p.Root.Draft.ParentID)
	assert.False(t, p.Root.Draft.HasChanges)
	assertBranchInvariant(t, s.db, p.Root.Branch.ID)

	all, err := s.ListTables(ctx, p.Root.Draft.ID, utils.PageRequest{}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.TotalCount)
	user, err := s.ListTables(ctx, p.Root.Draft.ID, utils.PageRequest{}, false)
	require.NoError(t, err)
	assert.Empty(t, user.Items)

	_, err = s.CreateProject(ctx, "acme", "site", "main")
	assert.True(t, errors.Is(err, revisionerrors.Conflict))
	_, err = s.CreateProject(ctx, "nobody", "site", "main")
	assert.True(t, errors.Is(err, revisionerrors.NotFound))

	got, err := s.GetProject(ctx, p.Project.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Root.Draft.ID, got.Root.Draft.ID)
}

func TestCommitPublishesDraft(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := newProject(t, s)

	_, err := s.CreateTable(ctx, p.Root.Draft.ID, "users", decode(t, usersSchema))
	require.NoError(t, err)
	_, err = s.CreateRows(ctx, p.Root.Draft.ID, "users", []RowInput{{ID: "a", Data: decode(t, `{"name":"a"}`)}})
	require.NoError(t, err)
	draft, err := s.GetRevision(ctx, p.Root.Draft.ID)
	require.NoError(t, err)
	assert.True(t, draft.HasChanges)

	result, err := s.Commit(ctx, p.Root.Branch.ID, "add users")
	require.NoError(t, err)
	assert.Equal(t, p.Root.Draft.ID, result.Head.ID)
	assert.True(t, result.Head.IsHead)
	assert.False(t, result.Head.IsDraft)
	assert.Equal(t, "add users", result.Head.Comment)
	assert.Equal(t, result.Head.ID, *result.Draft.ParentID)
	assert.False(t, result.Draft.HasChanges)
	assert.Equal(t, int64(2), result.Draft.Sequence)

	oldHead, err := s.GetRevision(ctx, p.Root.Head.ID)
	require.NoError(t, err)
	assert.False(t, oldHead.IsHead)
	assertBranchInvariant(t, s.db, p.Root.Branch.ID)

	tables, err := s.ListTables(ctx, result.Head.ID, utils.PageRequest{}, false)
	require.NoError(t, err)
	require.Len(t, tables.Items, 1)
	assert.Equal(t, "users", tables.Items[0].TableID)
	assert.True(t, tables.Items[0].Readonly)
	rows, err := s.ListRows(ctx, result.Head.ID, "users", utils.PageRequest{})
	require.NoError(t, err)
	require.Len(t, rows.Items, 1)
	assert.Equal(t, "a", rowData(t, &rows.Items[0])["name"])

	_, err = s.CreateTable(ctx, result.Head.ID, "more", decode(t, usersSchema))
	assert.True(t, errors.Is(err, revisionerrors.Conflict), "head is not a draft")
}

func TestCommitWithoutChanges(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := newProject(t, s)

	_, err := s.Commit(ctx, p.Root.Branch.ID, "nothing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, revisionerrors.NoChanges))
	assert.True(t, revisionerrors.IsConflict(err))

	var count int64
	require.NoError(t, s.db.Model(&models.Revision{}).Where("branch_id = ?", p.Root.Branch.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestSchemaTypeChangeResetsValues(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := newProject(t, s)
	committed := createUsers(t, s, p)
	draftID := committed.Draft.ID

	update, err := s.UpdateTable(ctx, draftID, "users", []migration.Patch{
		{Op: migration.OpReplace, Path: "/properties/name", Value: decode(t, `{"type":"number","default":0}`)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, update.UpdatedRows)

	row, err := s.GetRow(ctx, draftID, "users", "a")
	require.NoError(t, err)
	assert.Equal(t, float64(0), rowData(t, row)["name"])
	assert.Equal(t, update.Hash, row.SchemaHash)

	published, err := s.GetRow(ctx, committed.Head.ID, "users", "a")
	require.NoError(t, err)
	assert.Equal(t, "a", rowData(t, published)["name"])
	assert.True(t, published.Readonly)
	assert.NotEqual(t, published.VersionID, row.VersionID)
	assert.Equal(t, published.CreatedID, row.CreatedID)

	log, err := s.GetTableMigrations(ctx, draftID, "users")
	require.NoError(t, err)
	require.Len(t, log.Migrations, 1)
	assert.Equal(t, migration.ChangeUpdate, log.Migrations[0].ChangeType)
	assert.Equal(t, update.Hash, log.Migrations[0].Hash)
	assert.NotEqual(t, log.InitMigration.Hash, update.Hash)

	headLog, err := s.GetTableMigrations(ctx, committed.Head.ID, "users")
	require.NoError(t, err)
	assert.Empty(t, headLog.Migrations)

	draft, err := s.GetRevision(ctx, draftID)
	require.NoError(t, err)
	assert.True(t, draft.HasChanges)
}

func TestSchemaChangeRestampsUnchangedRows(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := newProject(t, s)
	committed := createUsers(t, s, p)
	draftID := committed.Draft.ID

	update, err := s.UpdateTable(ctx, draftID, "users", []migration.Patch{
		{Op: migration.OpReplace, Path: "/properties/name", Value: decode(t, `{"type":"string","default":"anon"}`)},
	})
	require.NoError(t, err)
	assert.Empty(t, update.UpdatedRows)

	row, err := s.GetRow(ctx, draftID, "users", "a")
	require.NoError(t, err)
	assert.Equal(t, "a", rowData(t, row)["name"])
	assert.Equal(t, update.Hash, row.SchemaHash)

	published, err := s.GetRow(ctx, committed.Head.ID, "users", "a")
	require.NoError(t, err)
	assert.NotEqual(t, update.Hash, published.SchemaHash)
	assert.NotEqual(t, published.VersionID, row.VersionID)
}

func TestPatchValuesAreCheckedAgainstMetaSchema(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := newProject(t, s)
	committed := createUsers(t, s, p)

	for name, patch := range map[string]migration.Patch{
		"unsupported keyword": {Op: migration.OpReplace, Path: "/properties/name", Value: decode(t, `{"type":"string","default":"","minLength":3}`)},
		"open object":         {Op: migration.OpAdd, Path: "/properties/address", Value: decode(t, `{"type":"object"}`)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.UpdateTable(ctx, committed.Draft.ID, "users", []migration.Patch{patch})
			require.Error(t, err)
			assert.True(t, errors.Is(err, revisionerrors.ValidationFailed))
			var verr *revisionerrors.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "patch 0", verr.Subject)
		})
	}

	schema, err := s.GetTableSchema(ctx, committed.Draft.ID, "users")
	require.NoError(t, err)
	assert.NotContains(t, schema.Schema["properties"], "address")
	assert.NotContains(t, schema.Schema["properties"].(map[string]any)["name"], "minLength")
	draft, err := s.GetRevision(ctx, committed.Draft.ID)
	require.NoError(t, err)
	assert.False(t, draft.HasChanges)
}

func TestMalformedPatchBatchLeavesDraftUntouched(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := newProject(t, s)
	committed := createUsers(t, s, p)

	_, err := s.UpdateTable(ctx, committed.Draft.ID, "users", []migration.Patch{
		{Op: migration.OpAdd, Path: "/properties/age", Value: decode(t, `{"type":"number","default":1}`)},
		{Op: migration.OpRemove, Path: "/properties/name/bogus"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, revisionerrors.MalformedPatch))

	schema, err := s.GetTableSchema(ctx, committed.Draft.ID, "users")
	require.NoError(t, err)
	assert.NotContains(t, schema.Schema["properties"], "age")
	draft, err := s.GetRevision(ctx, committed.Draft.ID)
	require.NoError(t, err)
	assert.False(t, draft.HasChanges)
}

func TestMigrationReplayMatchesSchema(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := newProject(t, s)
	draftID := createUsers(t, s, p).Draft.ID

	for _, batch := range [][]migration.Patch{
		{{Op: migration.OpAdd, Path: "/properties/age", Value: decode(t, `{"type":"number","default":1}`)}},
		{{Op: migration.OpMove, From: "/properties/age", Path: "/properties/years"}},
		{{Op: migration.OpReplace, Path: "/properties/years", Value: decode(t, `{"type":"string","default":""}`)}},
	} {
		_, err := s.UpdateTable(ctx, draftID, "users", batch)
		require.NoError(t, err)
	}

	row, err := s.GetRow(ctx, draftID, "users", "a")
	require.NoError(t, err)
	assert.Equal(t, "1", rowData(t, row)["years"])

	log, err := s.GetTableMigrations(ctx, draftID, "users")
	require.NoError(t, err)
	replayed, err := migration.Replay(log)
	require.NoError(t, err)
	current, err := s.GetTableSchema(ctx, draftID, "users")
	require.NoError(t, err)
	assert.Equal(t, current.Schema, replayed.Plain())
	assert.Equal(t, current.Hash, log.LastHash())
}

func TestRenameTable(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := newProject(t, s)
	draftID := createUsers(t, s, p).Draft.ID

	renamed, err := s.RenameTable(ctx, draftID, "users", "people")
	require.NoError(t, err)
	assert.Equal(t, "people", renamed.TableID)

	_, err = s.GetTable(ctx, draftID, "users")
	assert.True(t, errors.Is(err, revisionerrors.NotFound))
	_, err = s.GetRow(ctx, draftID, "people", "a")
	require.NoError(t, err)
	_, err = s.GetTableSchema(ctx, draftID, "people")
	require.NoError(t, err)
	_, err = s.GetTableViews(ctx, draftID, "people")
	require.NoError(t, err)

	log, err := s.GetTableMigrations(ctx, draftID, "people")
	require.NoError(t, err)
	require.Len(t, log.Migrations, 1)
	assert.Equal(t, migration.ChangeRename, log.Migrations[0].ChangeType)
	assert.Equal(t, "people", log.CurrentTableID())

	_, err = s.CreateTable(ctx, draftID, "teams", decode(t, teamsSchema))
	require.NoError(t, err)
	_, err = s.RenameTable(ctx, draftID, "people", "teams")
	assert.True(t, errors.Is(err, revisionerrors.Conflict))
	_, err = s.RenameTable(ctx, draftID, "people", "__hidden")
	assert.True(t, errors.Is(err, revisionerrors.ValidationFailed))
}

func TestCopyOnWriteIsIdempotent(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := newProject(t, s)
	committed := createUsers(t, s, p)

	published, err := s.GetTable(ctx, committed.Head.ID, "users")
	require.NoError(t, err)

	err = s.transaction(ctx, func(tx *gorm.DB) error {
		draft, err := lockDraft(tx, committed.Draft.ID)
		require.NoError(t, err)

		first, err := getOrCreateDraftTable(tx, draft, "users")
		require.NoError(t, err)
		second, err := getOrCreateDraftTable(tx, draft, "users")
		require.NoError(t, err)
		assert.Equal(t, first.VersionID, second.VersionID)
		assert.NotEqual(t, published.VersionID, first.VersionID)
		assert.Equal(t, published.CreatedID, first.CreatedID)
		assert.False(t, first.Readonly)

		rowA, err := getOrCreateDraftRow(tx, first, "a")
		require.NoError(t, err)
		rowB, err := getOrCreateDraftRow(tx, second, "a")
		require.NoError(t, err)
		assert.Equal(t, rowA.VersionID, rowB.VersionID)
		return nil
	})
	require.NoError(t, err)

	still, err := s.GetTable(ctx, committed.Head.ID, "users")
	require.NoError(t, err)
	assert.Equal(t, published.VersionID, still.VersionID)
}

func TestRevert(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := newProject(t, s)

	_, err := s.Revert(ctx, p.Root.Branch.ID)
	assert.True(t, errors.Is(err, revisionerrors.NoChanges))

	committed := createUsers(t, s, p)
	_, err = s.UpdateRows(ctx, committed.Draft.ID, "users", []RowInput{{ID: "a", Data: decode(t, `{"name":"changed"}`)}})
	require.NoError(t, err)
	_, err = s.CreateTable(ctx, committed.Draft.ID, "teams", decode(t, teamsSchema))
	require.NoError(t, err)

	draft, err := s.Revert(ctx, p.Root.Branch.ID)
	require.NoError(t, err)
	assert.False(t, draft.HasChanges)

	row, err := s.GetRow(ctx, committed.Draft.ID, "users", "a")
	require.NoError(t, err)
	assert.Equal(t, "a", rowData(t, row)["name"])
	_, err = s.GetTable(ctx, committed.Draft.ID, "teams")
	assert.True(t, errors.Is(err, revisionerrors.NotFound))

	var orphans int64
	require.NoError(t, s.db.Model(&models.Table{}).
		Where("version_id NOT IN (?)", s.db.Model(&models.RevisionTable{}).Select("table_version_id")).
		Count(&orphans).Error)
	assert.Zero(t, orphans)
	require.NoError(t, s.db.Model(&models.Row{}).
		Where("version_id NOT IN (?)", s.db.Model(&models.TableRow{}).Select("row_version_id")).
		Count(&orphans).Error)
	assert.Zero(t, orphans)

	_, err = s.Revert(ctx, p.Root.Branch.ID)
	assert.True(t, errors.Is(err, revisionerrors.NoChanges))
}

func TestForeignKeys(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := newProject(t, s)
	draftID := p.Root.Draft.ID

	_, err := s.CreateTable(ctx, draftID, "members", decode(t, membersSchema))
	assert.True(t, errors.Is(err, revisionerrors.NotFound))

	_, err = s.CreateTable(ctx, draftID, "teams", decode(t, teamsSchema))
	require.NoError(t, err)
	_, err = s.CreateTable(ctx, draftID, "members", decode(t, membersSchema))
	require.NoError(t, err)
	_, err = s.CreateRows(ctx, draftID, "teams", []RowInput{{ID: "t1", Data: decode(t, `{"title":"one"}`)}})
	require.NoError(t, err)

	_, err = s.CreateRows(ctx, draftID, "members", []RowInput{{ID: "m1", Data: decode(t, `{"name":"x","team":"nope","mentor":""}`)}})
	var verr *revisionerrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "foreignKey", verr.Details[0].Type)

	_, err = s.CreateRows(ctx, draftID, "members", []RowInput{
		{ID: "m1", Data: decode(t, `{"name":"x","team":"t1","mentor":"t1"}`)},
		{ID: "m2", Data: decode(t, `{"name":"y","team":"","mentor":""}`)},
	})
	require.NoError(t, err)

	err = s.RemoveRows(ctx, draftID, "teams", []string{"t1"})
	assert.True(t, errors.Is(err, revisionerrors.Conflict))
	err = s.RemoveTable(ctx, draftID, "teams")
	assert.True(t, errors.Is(err, revisionerrors.Conflict))

	_, err = s.RenameRow(ctx, draftID, "teams", "t1", "t2")
	require.NoError(t, err)
	member, err := s.GetRow(ctx, draftID, "members", "m1")
	require.NoError(t, err)
	assert.Equal(t, "t2", rowData(t, member)["team"])
	assert.Equal(t, "t1", rowData(t, member)["mentor"], "soft references are not rewritten")

	counts, err := s.CountRowReferences(ctx, draftID, "teams", "t2")
	require.NoError(t, err)
	assert.Equal(t, []ReferenceCount{{Table: "members", Count: 1}}, counts)

	_, err = s.RenameTable(ctx, draftID, "teams", "squads")
	require.NoError(t, err)
	schema, err := s.GetTableSchema(ctx, draftID, "members")
	require.NoError(t, err)
	props := schema.Schema["properties"].(map[string]any)
	assert.Equal(t, "squads", props["team"].(map[string]any)["foreignKey"])
	assert.Equal(t, "squads", props["mentor"].(map[string]any)["reference"])
	for _, id := range []string{"m1", "m2"} {
		member, err := s.GetRow(ctx, draftID, "members", id)
		require.NoError(t, err)
		assert.Equal(t, schema.Hash, member.SchemaHash, id)
	}
	log, err := s.GetTableMigrations(ctx, draftID, "members")
	require.NoError(t, err)
	require.Len(t, log.Migrations, 1)
	assert.Equal(t, migration.ChangeUpdate, log.Migrations[0].ChangeType)

	require.NoError(t, s.RemoveRows(ctx, draftID, "members", []string{"m1", "m2"}))
	require.NoError(t, s.RemoveRows(ctx, draftID, "squads", []string{"t2"}))
}

func TestRowValidation(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := newProject(t, s)
	draftID := createUsers(t, s, p).Draft.ID

	_, err := s.CreateRows(ctx, draftID, "users", []RowInput{{ID: "b", Data: decode(t, `{"name":5}`)}})
	assert.True(t, errors.Is(err, revisionerrors.ValidationFailed))
	_, err = s.CreateRows(ctx, draftID, "users", []RowInput{{ID: "a", Data: decode(t, `{"name":"dup"}`)}})
	assert.True(t, errors.Is(err, revisionerrors.Conflict))
	_, err = s.CreateRows(ctx, draftID, "users", []RowInput{
		{ID: "c", Data: decode(t, `{"name":"c"}`)},
		{ID: "c", Data: decode(t, `{"name":"c"}`)},
	})
	assert.True(t, errors.Is(err, revisionerrors.ValidationFailed))
	_, err = s.UpdateRows(ctx, draftID, "users", []RowInput{{ID: "zz", Data: decode(t, `{"name":"z"}`)}})
	assert.True(t, errors.Is(err, revisionerrors.NotFound))
	_, err = s.RenameRow(ctx, draftID, "users", "a", "a")
	assert.True(t, errors.Is(err, revisionerrors.Conflict))

	draft, err := s.GetRevision(ctx, draftID)
	require.NoError(t, err)
	assert.False(t, draft.HasChanges)
}

func TestSystemTablesAreProtected(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := newProject(t, s)
	draftID := p.Root.Draft.ID

	_, err := s.CreateRows(ctx, draftID, SchemaTable, []RowInput{{ID: "x", Data: decode(t, `{}`)}})
	assert.True(t, errors.Is(err, revisionerrors.Forbidden))
	_, err = s.RenameTable(ctx, draftID, ViewsTable, "other")
	assert.True(t, errors.Is(err, revisionerrors.Forbidden))
	_, err = s.CreateTable(ctx, draftID, MigrationTable, decode(t, usersSchema))
	assert.True(t, errors.Is(err, revisionerrors.Forbidden))
	assert.True(t, errors.Is(ValidateTableID("__x"), revisionerrors.ValidationFailed))
	assert.True(t, errors.Is(ValidateTableID("1x"), revisionerrors.ValidationFailed))
	assert.NoError(t, ValidateTableID("x_1-y"))
}

func TestCreateBranch(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := newProject(t, s)
	committed := createUsers(t, s, p)

	_, err := s.CreateBranch(ctx, p.Project.ID, "feature", committed.Draft.ID)
	assert.True(t, errors.Is(err, revisionerrors.Conflict))

	branch, err := s.CreateBranch(ctx, p.Project.ID, "feature", committed.Head.ID)
	require.NoError(t, err)
	assert.True(t, branch.Head.IsStart)
	assert.Equal(t, committed.Head.ID, *branch.Head.ParentID)
	assertBranchInvariant(t, s.db, branch.Branch.ID)

	_, err = s.UpdateRows(ctx, branch.Draft.ID, "users", []RowInput{{ID: "a", Data: decode(t, `{"name":"feature"}`)}})
	require.NoError(t, err)
	_, err = s.Commit(ctx, branch.Branch.ID, "feature work")
	require.NoError(t, err)

	main, err := s.GetRow(ctx, committed.Draft.ID, "users", "a")
	require.NoError(t, err)
	assert.Equal(t, "a", rowData(t, main)["name"])

	branches, err := s.ListBranches(ctx, p.Project.ID)
	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.Equal(t, "feature", branches[0].Name)
}

func TestEndpointsFollowCommit(t *testing.T) {
	s, notifier := newTestService(t)
	ctx := context.Background()
	p := newProject(t, s)

	onDraft, err := s.CreateEndpoint(ctx, p.Root.Draft.ID, "preview")
	require.NoError(t, err)
	onHead, err := s.CreateEndpoint(ctx, p.Root.Head.ID, "live")
	require.NoError(t, err)
	assert.Equal(t, []string{onDraft.ID, onHead.ID}, notifier.created)

	_, err = s.CreateTable(ctx, p.Root.Draft.ID, "users", decode(t, usersSchema))
	require.NoError(t, err)
	result, err := s.Commit(ctx, p.Root.Branch.ID, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{onDraft.ID, onHead.ID}, result.MovedEndpoints)
	require.Len(t, notifier.notified, 1)

	preview, err := s.ListEndpoints(ctx, result.Draft.ID)
	require.NoError(t, err)
	require.Len(t, preview, 1)
	assert.Equal(t, onDraft.ID, preview[0].ID)
	live, err := s.ListEndpoints(ctx, result.Head.ID)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, onHead.ID, live[0].ID)

	require.NoError(t, s.DeleteEndpoint(ctx, onHead.ID))
	assert.Equal(t, []string{onHead.ID}, notifier.deleted)
	assert.True(t, errors.Is(s.DeleteEndpoint(ctx, onHead.ID), revisionerrors.NotFound))
}

func TestListRevisionsPages(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := newProject(t, s)
	createUsers(t, s, p)
	for _, id := range []string{"b", "c"} {
		draft, err := s.GetBranchDraft(ctx, p.Root.Branch.ID)
		require.NoError(t, err)
		_, err = s.CreateRows(ctx, draft.ID, "users", []RowInput{{ID: id, Data: decode(t, `{"name":"n"}`)}})
		require.NoError(t, err)
		_, err = s.Commit(ctx, p.Root.Branch.ID, id)
		require.NoError(t, err)
	}

	first, err := s.ListRevisions(ctx, p.Root.Branch.ID, utils.PageRequest{First: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(5), first.TotalCount)
	assert.True(t, first.HasNextPage)
	require.Len(t, first.Items, 3)
	assert.Equal(t, int64(2), first.Items[2].Sequence)

	rest, err := s.ListRevisions(ctx, p.Root.Branch.ID, utils.PageRequest{First: 3, After: first.EndCursor})
	require.NoError(t, err)
	assert.False(t, rest.HasNextPage)
	require.Len(t, rest.Items, 2)
	assert.Equal(t, int64(3), rest.Items[0].Sequence)
	assert.True(t, rest.Items[1].IsDraft)

	head, err := s.GetBranchHead(ctx, p.Root.Branch.ID)
	require.NoError(t, err)
	assert.Equal(t, "c", head.Comment)

	_, err = s.ListRevisions(ctx, p.Root.Branch.ID, utils.PageRequest{After: "!!"})
	assert.True(t, errors.Is(err, revisionerrors.ValidationFailed))
}

func TestTableViews(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	p := newProject(t, s)
	draftID := createUsers(t, s, p).Draft.ID

	views, err := s.GetTableViews(ctx, draftID, "users")
	require.NoError(t, err)
	assert.Equal(t, "default", views.(map[string]any)["defaultViewId"])

	err = s.UpdateTableViews(ctx, draftID, "users", decode(t, `{"version":0}`))
	assert.True(t, errors.Is(err, revisionerrors.ValidationFailed))

	next := decode(t, `{"version":2,"defaultViewId":"byName","views":[{"id":"byName","name":"By name","sorts":[{"field":"name","direction":"asc"}]}]}`)
	require.NoError(t, s.UpdateTableViews(ctx, draftID, "users", next))
	views, err = s.GetTableViews(ctx, draftID, "users")
	require.NoError(t, err)
	assert.Equal(t, next, views)
}
