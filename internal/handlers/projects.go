package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/jam-build-revdb/internal/utils"
)

// CreateOrganizationRequest is the body of POST /orgs.
type CreateOrganizationRequest struct {
	ID string `json:"id"`
}

// CreateProjectRequest is the body of POST /orgs/{org}/projects.
type CreateProjectRequest struct {
	Name   string `json:"name"`
	Branch string `json:"branch"`
}

// CreateBranchRequest is the body of POST /projects/{project}/branches.
type CreateBranchRequest struct {
	Name string `json:"name"`
	From string `json:"from"`
}

// CommitRequest is the optional body of POST /branches/{branch}/commit.
type CommitRequest struct {
	Comment string `json:"comment"`
}

// CreateOrganization handles POST /api/orgs
// @Summary Create an organization
// @Tags Projects
// @Accept json
// @Produce json
// @Param body body CreateOrganizationRequest true "Organization"
// @Success 201 {object} models.Organization
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /orgs [post]
func (h *RevisionHandler) CreateOrganization(c *fiber.Ctx) error {
	var body CreateOrganizationRequest
	if err := parseBody(c, &body); err != nil {
		return h.fail(c, "createOrganization", err)
	}
	org, err := h.Service.CreateOrganization(c.UserContext(), body.ID)
	if err != nil {
		return h.fail(c, "createOrganization", err)
	}
	return utils.SuccessResponse(c, org, fiber.StatusCreated)
}

// CreateProject handles POST /api/orgs/:org/projects
// @Summary Create a project
// @Description Creates a project with its root branch, an empty head and a draft
// @Tags Projects
// @Accept json
// @Produce json
// @Param org path string true "Organization ID"
// @Param body body CreateProjectRequest true "Project"
// @Success 201 {object} services.ProjectState
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /orgs/{org}/projects [post]
func (h *RevisionHandler) CreateProject(c *fiber.Ctx) error {
	var body CreateProjectRequest
	if err := parseBody(c, &body); err != nil {
		return h.fail(c, "createProject", err)
	}
	if body.Branch == "" {
		body.Branch = "main"
	}
	project, err := h.Service.CreateProject(c.UserContext(), c.Params("org"), body.Name, body.Branch)
	if err != nil {
		return h.fail(c, "createProject", err)
	}
	return utils.SuccessResponse(c, project, fiber.StatusCreated)
}

// GetProject handles GET /api/projects/:project
// @Summary Get a project
// @Tags Projects
// @Produce json
// @Param project path string true "Project ID"
// @Success 200 {object} services.ProjectState
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{project} [get]
func (h *RevisionHandler) GetProject(c *fiber.Ctx) error {
	project, err := h.Service.GetProject(c.UserContext(), c.Params("project"))
	if err != nil {
		return h.fail(c, "getProject", err)
	}
	return utils.SuccessResponse(c, project, fiber.StatusOK)
}

// ListBranches handles GET /api/projects/:project/branches
// @Summary List the branches of a project
// @Tags Projects
// @Produce json
// @Param project path string true "Project ID"
// @Success 200 {array} models.Branch
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{project}/branches [get]
func (h *RevisionHandler) ListBranches(c *fiber.Ctx) error {
	branches, err := h.Service.ListBranches(c.UserContext(), c.Params("project"))
	if err != nil {
		return h.fail(c, "listBranches", err)
	}
	return utils.SuccessResponse(c, branches, fiber.StatusOK)
}

// CreateBranch handles POST /api/projects/:project/branches
// @Summary Create a branch from a committed revision
// @Tags Projects
// @Accept json
// @Produce json
// @Param project path string true "Project ID"
// @Param body body CreateBranchRequest true "Branch"
// @Success 201 {object} services.BranchState
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /projects/{project}/branches [post]
func (h *RevisionHandler) CreateBranch(c *fiber.Ctx) error {
	var body CreateBranchRequest
	if err := parseBody(c, &body); err != nil {
		return h.fail(c, "createBranch", err)
	}
	branch, err := h.Service.CreateBranch(c.UserContext(), c.Params("project"), body.Name, body.From)
	if err != nil {
		return h.fail(c, "createBranch", err)
	}
	return utils.SuccessResponse(c, branch, fiber.StatusCreated)
}

// GetBranch handles GET /api/branches/:branch
// @Summary Get a branch with its head and draft
// @Tags Branches
// @Produce json
// @Param branch path string true "Branch ID"
// @Success 200 {object} services.BranchState
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /branches/{branch} [get]
func (h *RevisionHandler) GetBranch(c *fiber.Ctx) error {
	branch, err := h.Service.GetBranch(c.UserContext(), c.Params("branch"))
	if err != nil {
		return h.fail(c, "getBranch", err)
	}
	return utils.SuccessResponse(c, branch, fiber.StatusOK)
}

// ListRevisions handles GET /api/branches/:branch/revisions
// @Summary List the revisions of a branch
// @Tags Branches
// @Produce json
// @Param branch path string true "Branch ID"
// @Param first query int false "Page size"
// @Param after query string false "Cursor"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /branches/{branch}/revisions [get]
func (h *RevisionHandler) ListRevisions(c *fiber.Ctx) error {
	req, err := parsePage(c)
	if err != nil {
		return h.fail(c, "listRevisions", err)
	}
	page, err := h.Service.ListRevisions(c.UserContext(), c.Params("branch"), req)
	if err != nil {
		return h.fail(c, "listRevisions", err)
	}
	return utils.SuccessResponse(c, page, fiber.StatusOK)
}

// Commit handles POST /api/branches/:branch/commit
// @Summary Commit the draft of a branch
// @Description The draft becomes the head and a new draft is created
// @Tags Branches
// @Accept json
// @Produce json
// @Param branch path string true "Branch ID"
// @Param body body CommitRequest false "Commit"
// @Success 200 {object} services.CommitResult
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /branches/{branch}/commit [post]
func (h *RevisionHandler) Commit(c *fiber.Ctx) error {
	var body CommitRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &body); err != nil {
			return h.fail(c, "commit", err)
		}
	}
	result, err := h.Service.Commit(c.UserContext(), c.Params("branch"), body.Comment)
	if err != nil {
		return h.fail(c, "commit", err)
	}
	return utils.SuccessResponse(c, result, fiber.StatusOK)
}

// Revert handles POST /api/branches/:branch/revert
// @Summary Drop every change of the draft of a branch
// @Tags Branches
// @Produce json
// @Param branch path string true "Branch ID"
// @Success 200 {object} models.Revision
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /branches/{branch}/revert [post]
func (h *RevisionHandler) Revert(c *fiber.Ctx) error {
	draft, err := h.Service.Revert(c.UserContext(), c.Params("branch"))
	if err != nil {
		return h.fail(c, "revert", err)
	}
	return utils.SuccessResponse(c, draft, fiber.StatusOK)
}
