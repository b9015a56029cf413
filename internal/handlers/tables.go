// tables.go
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

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/jam-build-revdb/internal/migration"
	"github.com/localnerve/jam-build-revdb/internal/utils"
)

// CreateTableRequest is the body of POST /revisions/{revision}/tables.
type CreateTableRequest struct {
	ID     string         `json:"id"`
	Schema map[string]any `json:"schema"`
}

// RenameRequest is the body of the rename routes.
type RenameRequest struct {
	To string `json:"to"`
}

// GetRevision handles GET /api/revisions/:revision
// @Summary Get a revision
// @Tags Revisions
// @Produce json
// @Param revision path string true "Revision ID"
// @Success 200 {object} models.Revision
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /revisions/{revision} [get]
func (h *RevisionHandler) GetRevision(c *fiber.Ctx) error {
	rev, err := h.Service.GetRevision(c.UserContext(), c.Params("revision"))
	if err != nil {
		return h.fail(c, "getRevision", err)
	}
	return utils.SuccessResponse(c, rev, fiber.StatusOK)
}

// ListTables handles GET /api/revisions/:revision/tables
// @Summary List the tables of a revision
// @Tags Tables
// @Produce json
// @Param revision path string true "Revision ID"
// @Param first query int false "Page size"
// @Param after query string false "Cursor"
// @Param system query bool false "Include system tables"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /revisions/{revision}/tables [get]
func (h *RevisionHandler) ListTables(c *fiber.Ctx) error {
	req, err := parsePage(c)
	if err != nil {
		return h.fail(c, "listTables", err)
	}
	page, err := h.Service.ListTables(c.UserContext(), c.Params("revision"), req, c.QueryBool("system", false))
	if err != nil {
		return h.fail(c, "listTables", err)
	}
	return utils.SuccessResponse(c, page, fiber.StatusOK)
}

// CreateTable handles POST /api/revisions/:revision/tables
// @Summary Create a table in a draft
// @Tags Tables
// @Accept json
// @Produce json
// @Param revision path string true "Draft revision ID"
// @Param body body CreateTableRequest true "Table id and schema"
// @Success 201 {object} models.Table
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /revisions/{revision}/tables [post]
func (h *RevisionHandler) CreateTable(c *fiber.Ctx) error {
	var body CreateTableRequest
	if err := parseBody(c, &body); err != nil {
		return h.fail(c, "createTable", err)
	}
	var schema any
	if body.Schema != nil {
		schema = body.Schema
	}
	table, err := h.Service.CreateTable(c.UserContext(), c.Params("revision"), body.ID, schema)
	if err != nil {
		return h.fail(c, "createTable", err)
	}
	return utils.SuccessResponse(c, table, fiber.StatusCreated)
}

// GetTable handles GET /api/revisions/:revision/tables/:table
// @Summary Get a table version
// @Tags Tables
// @Produce json
// @Param revision path string true "Revision ID"
// @Param table path string true "Table ID"
// @Success 200 {object} models.Table
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /revisions/{revision}/tables/{table} [get]
func (h *RevisionHandler) GetTable(c *fiber.Ctx) error {
	table, err := h.Service.GetTable(c.UserContext(), c.Params("revision"), c.Params("table"))
	if err != nil {
		return h.fail(c, "getTable", err)
	}
	return utils.SuccessResponse(c, table, fiber.StatusOK)
}

// UpdateTable handles PATCH /api/revisions/:revision/tables/:table
// @Summary Patch the schema of a table
// @Description Applies the patch batch in order and migrates every row
// @Tags Tables
// @Accept json
// @Produce json
// @Param revision path string true "Draft revision ID"
// @Param table path string true "Table ID"
// @Param body body []migration.Patch true "Patch batch"
// @Success 200 {object} services.SchemaUpdate
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /revisions/{revision}/tables/{table} [patch]
func (h *RevisionHandler) UpdateTable(c *fiber.Ctx) error {
	patches, err := migration.ParsePatches(c.Body())
	if err != nil {
		return h.fail(c, "updateTable", err)
	}
	result, err := h.Service.UpdateTable(c.UserContext(), c.Params("revision"), c.Params("table"), patches)
	if err != nil {
		return h.fail(c, "updateTable", err)
	}
	return utils.SuccessResponse(c, result, fiber.StatusOK)
}

// RemoveTable handles DELETE /api/revisions/:revision/tables/:table
// @Summary Remove a table from a draft
// @Tags Tables
// @Produce json
// @Param revision path string true "Draft revision ID"
// @Param table path string true "Table ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /revisions/{revision}/tables/{table} [delete]
func (h *RevisionHandler) RemoveTable(c *fiber.Ctx) error {
	revision := c.Params("revision")
	if err := h.Service.RemoveTable(c.UserContext(), revision, c.Params("table")); err != nil {
		return h.fail(c, "removeTable", err)
	}
	return utils.MutationSuccessResponse(c, revision, 1)
}

// RenameTable handles POST /api/revisions/:revision/tables/:table/rename
// @Summary Rename a table in a draft
// @Tags Tables
// @Accept json
// @Produce json
// @Param revision path string true "Draft revision ID"
// @Param table path string true "Table ID"
// @Param body body RenameRequest true "New id"
// @Success 200 {object} models.Table
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /revisions/{revision}/tables/{table}/rename [post]
func (h *RevisionHandler) RenameTable(c *fiber.Ctx) error {
	var body RenameRequest
	if err := parseBody(c, &body); err != nil {
		return h.fail(c, "renameTable", err)
	}
	table, err := h.Service.RenameTable(c.UserContext(), c.Params("revision"), c.Params("table"), body.To)
	if err != nil {
		return h.fail(c, "renameTable", err)
	}
	return utils.SuccessResponse(c, table, fiber.StatusOK)
}

// GetTableSchema handles GET /api/revisions/:revision/tables/:table/schema
// @Summary Get the schema of a table
// @Tags Tables
// @Produce json
// @Param revision path string true "Revision ID"
// @Param table path string true "Table ID"
// @Success 200 {object} services.TableSchema
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /revisions/{revision}/tables/{table}/schema [get]
func (h *RevisionHandler) GetTableSchema(c *fiber.Ctx) error {
	schema, err := h.Service.GetTableSchema(c.UserContext(), c.Params("revision"), c.Params("table"))
	if err != nil {
		return h.fail(c, "getTableSchema", err)
	}
	return utils.SuccessResponse(c, schema, fiber.StatusOK)
}

// GetTableMigrations handles GET /api/revisions/:revision/tables/:table/migrations
// @Summary Get the migration log of a table
// @Tags Tables
// @Produce json
// @Param revision path string true "Revision ID"
// @Param table path string true "Table ID"
// @Success 200 {object} migration.Log
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /revisions/{revision}/tables/{table}/migrations [get]
func (h *RevisionHandler) GetTableMigrations(c *fiber.Ctx) error {
	log, err := h.Service.GetTableMigrations(c.UserContext(), c.Params("revision"), c.Params("table"))
	if err != nil {
		return h.fail(c, "getTableMigrations", err)
	}
	return utils.SuccessResponse(c, log, fiber.StatusOK)
}

// GetTableViews handles GET /api/revisions/:revision/tables/:table/views
// @Summary Get the view settings of a table
// @Tags Tables
// @Produce json
// @Param revision path string true "Revision ID"
// @Param table path string true "Table ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /revisions/{revision}/tables/{table}/views [get]
func (h *RevisionHandler) GetTableViews(c *fiber.Ctx) error {
	views, err := h.Service.GetTableViews(c.UserContext(), c.Params("revision"), c.Params("table"))
	if err != nil {
		return h.fail(c, "getTableViews", err)
	}
	return utils.SuccessResponse(c, views, fiber.StatusOK)
}

// UpdateTableViews handles PUT /api/revisions/:revision/tables/:table/views
// @Summary Replace the view settings of a table
// @Tags Tables
// @Accept json
// @Produce json
// @Param revision path string true "Draft revision ID"
// @Param table path string true "Table ID"
// @Param body body object true "Views document"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /revisions/{revision}/tables/{table}/views [put]
func (h *RevisionHandler) UpdateTableViews(c *fiber.Ctx) error {
	var views map[string]any
	if err := parseBody(c, &views); err != nil {
		return h.fail(c, "updateTableViews", err)
	}
	revision := c.Params("revision")
	if err := h.Service.UpdateTableViews(c.UserContext(), revision, c.Params("table"), views); err != nil {
		return h.fail(c, "updateTableViews", err)
	}
	return utils.MutationSuccessResponse(c, revision, 1)
}
