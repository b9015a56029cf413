// routes.go
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

	"github.com/localnerve/jam-build-revdb/internal/middleware"
	"github.com/localnerve/jam-build-revdb/internal/services"
)

// Register mounts the revision store routes on api. Reads are public,
// mutations go through the permission oracle when perms is configured.
func Register(api fiber.Router, h *RevisionHandler, perms *services.Permissions) {
	admin := func(param string) fiber.Handler {
		return middleware.Authorize(perms, param, services.ActionAdmin)
	}
	write := func(param string) fiber.Handler {
		return middleware.Authorize(perms, param, services.ActionWrite)
	}

	api.Post("/orgs", admin(""), h.CreateOrganization)
	api.Post("/orgs/:org/projects", admin("org"), h.CreateProject)

	projects := api.Group("/projects/:project")
	projects.Get("/", h.GetProject)
	projects.Get("/branches", h.ListBranches)
	projects.Post("/branches", write("project"), h.CreateBranch)

	branches := api.Group("/branches/:branch")
	branches.Get("/", h.GetBranch)
	branches.Get("/revisions", h.ListRevisions)
	branches.Post("/commit", write("branch"), h.Commit)
	branches.Post("/revert", write("branch"), h.Revert)

	revisions := api.Group("/revisions/:revision")
	revisions.Get("/", h.GetRevision)
	revisions.Get("/endpoints", h.ListEndpoints)
	revisions.Post("/endpoints", admin("revision"), h.CreateEndpoint)
	revisions.Get("/tables", h.ListTables)
	revisions.Post("/tables", write("revision"), h.CreateTable)

	tables := revisions.Group("/tables/:table")
	tables.Get("/", h.GetTable)
	tables.Patch("/", write("revision"), h.UpdateTable)
	tables.Delete("/", write("revision"), h.RemoveTable)
	tables.Post("/rename", write("revision"), h.RenameTable)
	tables.Get("/schema", h.GetTableSchema)
	tables.Get("/migrations", h.GetTableMigrations)
	tables.Get("/views", h.GetTableViews)
	tables.Put("/views", write("revision"), h.UpdateTableViews)

	tables.Get("/rows", h.ListRows)
	tables.Post("/rows", write("revision"), h.CreateRows)
	tables.Put("/rows", write("revision"), h.UpdateRows)
	tables.Delete("/rows", write("revision"), h.RemoveRows)
	tables.Get("/rows/:row", h.GetRow)
	tables.Post("/rows/:row/rename", write("revision"), h.RenameRow)
	tables.Get("/rows/:row/references", h.CountRowReferences)

	api.Delete("/endpoints/:endpoint", admin("endpoint"), h.DeleteEndpoint)
}
