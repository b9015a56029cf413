package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/jam-build-revdb/internal/services"
	"github.com/localnerve/jam-build-revdb/internal/types"
	"github.com/localnerve/jam-build-revdb/internal/utils"
)

// RemoveRowsRequest is the optional body of DELETE .../rows.
type RemoveRowsRequest struct {
	IDs []string `json:"ids"`
}

// ListRows handles GET /api/revisions/:revision/tables/:table/rows
// @Summary List the rows of a table
// @Tags Rows
// @Produce json
// @Param revision path string true "Revision ID"
// @Param table path string true "Table ID"
// @Param first query int false "Page size"
// @Param after query string false "Cursor"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /revisions/{revision}/tables/{table}/rows [get]
func (h *RevisionHandler) ListRows(c *fiber.Ctx) error {
	req, err := parsePage(c)
	if err != nil {
		return h.fail(c, "listRows", err)
	}
	page, err := h.Service.ListRows(c.UserContext(), c.Params("revision"), c.Params("table"), req)
	if err != nil {
		return h.fail(c, "listRows", err)
	}
	return utils.SuccessResponse(c, page, fiber.StatusOK)
}

// GetRow handles GET /api/revisions/:revision/tables/:table/rows/:row
// @Summary Get a row
// @Tags Rows
// @Produce json
// @Param revision path string true "Revision ID"
// @Param table path string true "Table ID"
// @Param row path string true "Row ID"
// @Success 200 {object} models.Row
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /revisions/{revision}/tables/{table}/rows/{row} [get]
func (h *RevisionHandler) GetRow(c *fiber.Ctx) error {
	row, err := h.Service.GetRow(c.UserContext(), c.Params("revision"), c.Params("table"), c.Params("row"))
	if err != nil {
		return h.fail(c, "getRow", err)
	}
	return utils.SuccessResponse(c, row, fiber.StatusOK)
}

// CreateRows handles POST /api/revisions/:revision/tables/:table/rows
// @Summary Create rows in a draft
// @Description Accepts a single row or an array of rows
// @Tags Rows
// @Accept json
// @Produce json
// @Param revision path string true "Draft revision ID"
// @Param table path string true "Table ID"
// @Param body body []services.RowInput true "Rows"
// @Success 201 {array} models.Row
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /revisions/{revision}/tables/{table}/rows [post]
func (h *RevisionHandler) CreateRows(c *fiber.Ctx) error {
	var body types.FlexList[services.RowInput]
	if err := parseBody(c, &body); err != nil {
		return h.fail(c, "createRows", err)
	}
	rows, err := h.Service.CreateRows(c.UserContext(), c.Params("revision"), c.Params("table"), body.Slice())
	if err != nil {
		return h.fail(c, "createRows", err)
	}
	return utils.SuccessResponse(c, rows, fiber.StatusCreated)
}

// UpdateRows handles PUT /api/revisions/:revision/tables/:table/rows
// @Summary Replace the bodies of rows in a draft
// @Tags Rows
// @Accept json
// @Produce json
// @Param revision path string true "Draft revision ID"
// @Param table path string true "Table ID"
// @Param body body []services.RowInput true "Rows"
// @Success 200 {array} models.Row
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /revisions/{revision}/tables/{table}/rows [put]
func (h *RevisionHandler) UpdateRows(c *fiber.Ctx) error {
	var body types.FlexList[services.RowInput]
	if err := parseBody(c, &body); err != nil {
		return h.fail(c, "updateRows", err)
	}
	rows, err := h.Service.UpdateRows(c.UserContext(), c.Params("revision"), c.Params("table"), body.Slice())
	if err != nil {
		return h.fail(c, "updateRows", err)
	}
	return utils.SuccessResponse(c, rows, fiber.StatusOK)
}

// RemoveRows handles DELETE /api/revisions/:revision/tables/:table/rows
// @Summary Remove rows from a draft
// @Description Row ids come from the ids query parameter or the body
// @Tags Rows
// @Accept json
// @Produce json
// @Param revision path string true "Draft revision ID"
// @Param table path string true "Table ID"
// @Param ids query string false "Comma separated row ids"
// @Param body body RemoveRowsRequest false "Row ids"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /revisions/{revision}/tables/{table}/rows [delete]
func (h *RevisionHandler) RemoveRows(c *fiber.Ctx) error {
	ids := parseList(c, "ids")
	if len(ids) == 0 && len(c.Body()) > 0 {
		var body RemoveRowsRequest
		if err := parseBody(c, &body); err != nil {
			return h.fail(c, "removeRows", err)
		}
		ids = body.IDs
	}
	revision := c.Params("revision")
	if err := h.Service.RemoveRows(c.UserContext(), revision, c.Params("table"), ids); err != nil {
		return h.fail(c, "removeRows", err)
	}
	return utils.MutationSuccessResponse(c, revision, len(ids))
}

// RenameRow handles POST /api/revisions/:revision/tables/:table/rows/:row/rename
// @Summary Rename a row in a draft
// @Description Foreign keys pointing at the row are rewritten
// @Tags Rows
// @Accept json
// @Produce json
// @Param revision path string true "Draft revision ID"
// @Param table path string true "Table ID"
// @Param row path string true "Row ID"
// @Param body body RenameRequest true "New id"
// @Success 200 {object} models.Row
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /revisions/{revision}/tables/{table}/rows/{row}/rename [post]
func (h *RevisionHandler) RenameRow(c *fiber.Ctx) error {
	var body RenameRequest
	if err := parseBody(c, &body); err != nil {
		return h.fail(c, "renameRow", err)
	}
	row, err := h.Service.RenameRow(c.UserContext(), c.Params("revision"), c.Params("table"), c.Params("row"), body.To)
	if err != nil {
		return h.fail(c, "renameRow", err)
	}
	return utils.SuccessResponse(c, row, fiber.StatusOK)
}

// CountRowReferences handles GET /api/revisions/:revision/tables/:table/rows/:row/references
// @Summary Count the values pointing at a row, per table
// @Tags Rows
// @Produce json
// @Param revision path string true "Revision ID"
// @Param table path string true "Table ID"
// @Param row path string true "Row ID"
// @Success 200 {array} services.ReferenceCount
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /revisions/{revision}/tables/{table}/rows/{row}/references [get]
func (h *RevisionHandler) CountRowReferences(c *fiber.Ctx) error {
	counts, err := h.Service.CountRowReferences(c.UserContext(), c.Params("revision"), c.Params("table"), c.Params("row"))
	if err != nil {
		return h.fail(c, "countRowReferences", err)
	}
	return utils.SuccessResponse(c, counts, fiber.StatusOK)
}

// CreateEndpointRequest is the body of POST /revisions/{revision}/endpoints.
type CreateEndpointRequest struct {
	Type string `json:"type"`
}

// CreateEndpoint handles POST /api/revisions/:revision/endpoints
// @Summary Bind an endpoint to a revision
// @Tags Endpoints
// @Accept json
// @Produce json
// @Param revision path string true "Revision ID"
// @Param body body CreateEndpointRequest true "Endpoint"
// @Success 201 {object} models.Endpoint
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /revisions/{revision}/endpoints [post]
func (h *RevisionHandler) CreateEndpoint(c *fiber.Ctx) error {
	var body CreateEndpointRequest
	if err := parseBody(c, &body); err != nil {
		return h.fail(c, "createEndpoint", err)
	}
	endpoint, err := h.Service.CreateEndpoint(c.UserContext(), c.Params("revision"), body.Type)
	if err != nil {
		return h.fail(c, "createEndpoint", err)
	}
	return utils.SuccessResponse(c, endpoint, fiber.StatusCreated)
}

// ListEndpoints handles GET /api/revisions/:revision/endpoints
// @Summary List the endpoints bound to a revision
// @Tags Endpoints
// @Produce json
// @Param revision path string true "Revision ID"
// @Success 200 {array} models.Endpoint
// @Router /revisions/{revision}/endpoints [get]
func (h *RevisionHandler) ListEndpoints(c *fiber.Ctx) error {
	endpoints, err := h.Service.ListEndpoints(c.UserContext(), c.Params("revision"))
	if err != nil {
		return h.fail(c, "listEndpoints", err)
	}
	return utils.SuccessResponse(c, endpoints, fiber.StatusOK)
}

// DeleteEndpoint handles DELETE /api/endpoints/:endpoint
// @Summary Delete an endpoint
// @Tags Endpoints
// @Produce json
// @Param endpoint path string true "Endpoint ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /endpoints/{endpoint} [delete]
func (h *RevisionHandler) DeleteEndpoint(c *fiber.Ctx) error {
	if err := h.Service.DeleteEndpoint(c.UserContext(), c.Params("endpoint")); err != nil {
		return h.fail(c, "deleteEndpoint", err)
	}
	return utils.MutationSuccessResponse(c, "", 1)
}

