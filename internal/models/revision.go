// revision.go
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

package models

import (
	"time"
)

// Organization owns projects.
type Organization struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// Project owns branches. Name is unique per organization.
type Project struct {
	ID             string    `gorm:"primaryKey;type:char(36)" json:"id"`
	OrganizationID string    `gorm:"size:64;not null;index:idx_project_org_name,unique" json:"organizationId"`
	Name           string    `gorm:"size:255;not null;index:idx_project_org_name,unique" json:"name"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Branch is a line of revision history. It holds exactly one head and one
// draft revision.
type Branch struct {
	ID        string    `gorm:"primaryKey;type:char(36)" json:"id"`
	ProjectID string    `gorm:"type:char(36);not null;index:idx_branch_project_name,unique" json:"projectId"`
	Name      string    `gorm:"size:255;not null;index:idx_branch_project_name,unique" json:"name"`
	IsRoot    bool      `gorm:"not null;default:false" json:"isRoot"`
	CreatedAt time.Time `json:"createdAt"`
}

// Revision is a snapshot of table membership. Only the draft is mutable.
type Revision struct {
	ID         string    `gorm:"primaryKey;type:char(36)" json:"id"`
	BranchID   string    `gorm:"type:char(36);not null;index:idx_revision_branch_sequence,unique" json:"branchId"`
	ParentID   *string   `gorm:"type:char(36);index" json:"parentId,omitempty"`
	Sequence   int64     `gorm:"not null;index:idx_revision_branch_sequence,unique" json:"sequence"`
	IsHead     bool      `gorm:"not null;default:false" json:"isHead"`
	IsDraft    bool      `gorm:"not null;default:false" json:"isDraft"`
	IsStart    bool      `gorm:"not null;default:false" json:"isStart"`
	HasChanges bool      `gorm:"not null;default:false" json:"hasChanges"`
	Comment    string    `gorm:"size:1024" json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	Tables     []Table   `gorm:"many2many:revision_tables;joinForeignKey:revision_id;joinReferences:table_version_id" json:"-"`
}

// Table is one version of a table. CreatedID is stable across versions.
type Table struct {
	VersionID string    `gorm:"primaryKey;type:char(36)" json:"versionId"`
	CreatedID string    `gorm:"type:char(36);not null;index" json:"createdId"`
	TableID   string    `gorm:"size:64;not null;index" json:"id"`
	System    bool      `gorm:"not null;default:false" json:"system"`
	Readonly  bool      `gorm:"not null;default:false" json:"readonly"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Rows      []Row     `gorm:"many2many:table_rows;joinForeignKey:table_version_id;joinReferences:row_version_id" json:"-"`
}

// Row is one version of a row.
type Row struct {
	VersionID  string    `gorm:"primaryKey;type:char(36)" json:"versionId"`
	CreatedID  string    `gorm:"type:char(36);not null;index" json:"createdId"`
	RowID      string    `gorm:"size:255;not null;index" json:"id"`
	Readonly   bool      `gorm:"not null;default:false" json:"readonly"`
	Data       JSON      `json:"data"`
	Hash       string    `gorm:"size:64" json:"hash"`
	SchemaHash string    `gorm:"size:64" json:"schemaHash"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// RevisionTable is the membership of table versions in revisions.
type RevisionTable struct {
	RevisionID     string `gorm:"primaryKey;type:char(36)" json:"revisionId"`
	TableVersionID string `gorm:"primaryKey;type:char(36);index" json:"tableVersionId"`
}

// TableRow is the membership of row versions in table versions.
type TableRow struct {
	TableVersionID string `gorm:"primaryKey;type:char(36)" json:"tableVersionId"`
	RowVersionID   string `gorm:"primaryKey;type:char(36);index" json:"rowVersionId"`
}

// Endpoint is an external subscriber bound to a revision.
type Endpoint struct {
	ID         string    `gorm:"primaryKey;type:char(36)" json:"id"`
	RevisionID string    `gorm:"type:char(36);not null;index" json:"revisionId"`
	Type       string    `gorm:"size:32;not null" json:"type"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName overrides the table name for Table
func (Table) TableName() string {
	return "table_versions"
}

// TableName overrides the table name for Row
func (Row) TableName() string {
	return "row_versions"
}

// TableName overrides the table name for RevisionTable
func (RevisionTable) TableName() string {
	return "revision_tables"
}

// TableName overrides the table name for TableRow
func (TableRow) TableName() string {
	return "table_rows"
}
