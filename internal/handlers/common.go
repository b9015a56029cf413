// common.go
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
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
	"github.com/localnerve/jam-build-revdb/internal/services"
	"github.com/localnerve/jam-build-revdb/internal/types"
	"github.com/localnerve/jam-build-revdb/internal/utils"
)

// RevisionHandler adapts the revision store to HTTP.
type RevisionHandler struct {
	Service *services.Service
	Log     *zap.Logger
}

// fail maps a service error to its response. Unexpected errors are logged
// and reported as 500 with the failing operation as type.
func (h *RevisionHandler) fail(c *fiber.Ctx, op string, err error) error {
	var verr *revisionerrors.ValidationError
	switch {
	case errors.As(err, &verr):
		return utils.ValidationErrorResponse(c, err.Error(), verr.Details)
	case errors.Is(err, revisionerrors.NotFound):
		return utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, revisionerrors.NoChanges):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusConflict, "noChanges")
	case errors.Is(err, revisionerrors.Conflict):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusConflict, "conflict")
	case errors.Is(err, revisionerrors.ValidationFailed):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "validation")
	case errors.Is(err, revisionerrors.MalformedPatch):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "malformedPatch")
	case errors.Is(err, revisionerrors.Forbidden):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "forbidden")
	}
	if errors.Is(err, revisionerrors.InvariantViolation) {
		h.Log.Error("invariant violation", zap.String("op", op), zap.String("url", c.OriginalURL()), zap.Error(err))
	} else {
		h.Log.Error("request failed", zap.String("op", op), zap.String("url", c.OriginalURL()), zap.Error(err))
	}
	return utils.ErrorResponse(c, "internal error", fiber.StatusInternalServerError, op)
}

// parseBody decodes the json body into out.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return revisionerrors.NewValidationError("body", revisionerrors.FieldError{
			Field:   "(root)",
			Message: "request body is required",
			Type:    "required",
		})
	}
	if err := c.BodyParser(out); err != nil {
		return revisionerrors.NewValidationError("body", revisionerrors.FieldError{
			Field:   "(root)",
			Message: err.Error(),
			Type:    "body",
		})
	}
	return nil
}

// parsePage reads the first and after query parameters.
func parsePage(c *fiber.Ctx) (utils.PageRequest, error) {
	var req utils.PageRequest
	if err := c.QueryParser(&req); err != nil {
		return req, revisionerrors.NewValidationError("page", revisionerrors.FieldError{
			Field:   "first",
			Message: err.Error(),
			Type:    "query",
		})
	}
	return req, nil
}

// parseList extracts a list from query parameters, supporting both
// repeated keys and comma separated values.
func parseList(c *fiber.Ctx, name string) []string {
	seen := make(map[string]struct{})
	var list []string

	args := c.Context().QueryArgs()
	for key, value := range args.All() {
		if string(key) != name {
			continue
		}
		for _, v := range strings.Split(string(value), ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				list = append(list, v)
			}
		}
	}
	return list
}

// ErrorHandler renders errors that escape the handlers, middleware
// CustomErrors included, in the same shape as utils.ErrorResponse.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	var fe *fiber.Error
	var ce *types.CustomError
	switch {
	case errors.As(err, &ce):
		code = ce.Code
		message = ce.Message
		errorType = ce.Type
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
		if code == fiber.StatusNotFound {
			errorType = "notFound"
		}
	}

	return utils.ErrorResponse(c, message, code, errorType)
}
