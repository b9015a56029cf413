// auth.go
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

package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/jam-build-revdb/internal/services"
	"github.com/localnerve/jam-build-revdb/internal/types"
)

// SessionCookie carries the authorizer session.
const SessionCookie = "cookie_session"

// Authorize guards a route with the permission oracle. The subject is the
// route parameter naming the object being touched. When no authorizer is
// configured every request passes.
func Authorize(perms *services.Permissions, param string, action services.Action) fiber.Handler {
	errorType := fmt.Sprintf("revdb.authorization.%s", action)

	return func(c *fiber.Ctx) error {
		if perms == nil || !perms.Enabled() {
			return c.Next()
		}

		session := c.Cookies(SessionCookie)
		if session == "" {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: fmt.Sprintf("Authorizer cookie %q not found", SessionCookie),
				Type:    errorType,
			}
		}

		if err := perms.Init(c.UserContext(), c.Protocol(), c.Hostname()); err != nil {
			return &types.CustomError{
				Code:    fiber.StatusServiceUnavailable,
				Message: fmt.Sprintf("Authorizer unavailable: %v", err),
				Type:    errorType,
			}
		}

		principal, err := perms.CheckPermission(subject(c, param), action, session)
		if err != nil {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: fmt.Sprintf("Invalid session: %v", err),
				Type:    errorType,
			}
		}

		c.Locals("user", principal.User)
		return c.Next()
	}
}

func subject(c *fiber.Ctx, param string) string {
	if param == "" {
		return c.Path()
	}
	return param + ":" + c.Params(param)
}
