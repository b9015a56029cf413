// auth_service.go
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
	"fmt"
	"sync"

	"github.com/localnerve/authorizer-go"
	"go.uber.org/zap"

	"github.com/localnerve/jam-build-revdb/internal/config"
	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
	"github.com/localnerve/jam-build-revdb/internal/utils"
)

// Action is what a caller wants to do to a subject.
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
	ActionAdmin Action = "admin"
)

// actionRoles lists the roles that grant each action.
var actionRoles = map[Action][]string{
	ActionRead:  {"reader", "editor", "admin"},
	ActionWrite: {"editor", "admin"},
	ActionAdmin: {"admin"},
}

// RolesFor returns the roles granting action.
func RolesFor(action Action) []string {
	return actionRoles[action]
}

// Principal is the caller a session was issued to.
type Principal struct {
	User any `json:"user"`
}

// Permissions is the permission oracle. It validates authorizer sessions
// against the roles of an action.
type Permissions struct {
	cfg  *config.Config
	log  *zap.Logger
	once sync.Once

	client  *authorizer.AuthorizerClient
	initErr error
}

// NewPermissions returns the oracle for cfg. It connects on first use.
func NewPermissions(cfg *config.Config, log *zap.Logger) *Permissions {
	return &Permissions{cfg: cfg, log: log.Named("permissions")}
}

// Enabled reports whether an authorizer is configured.
func (p *Permissions) Enabled() bool {
	return p.cfg.AuthzEnabled()
}

// Init creates the authorizer client once, using the first request's
// origin as the redirect url.
func (p *Permissions) Init(ctx context.Context, requestProtocol, requestHost string) error {
	p.once.Do(func() {
		if err := utils.PingAuthorizer(ctx, p.cfg.AuthzURL); err != nil {
			p.initErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		redirectURL := fmt.Sprintf("%s://%s", requestProtocol, requestHost)
		p.log.Info("initializing authorizer",
			zap.String("authorizerURL", p.cfg.AuthzURL),
			zap.String("clientID", p.cfg.AuthzClientID),
			zap.String("redirectURL", redirectURL))

		client, err := authorizer.NewAuthorizerClient(p.cfg.AuthzClientID, p.cfg.AuthzURL, redirectURL, nil)
		if err != nil {
			p.initErr = fmt.Errorf("failed to create authorizer client: %w", err)
			return
		}
		p.client = client
	})
	return p.initErr
}

// CheckPermission validates session for action on subject. A missing or
// invalid session, or one without a granting role, is Forbidden.
func (p *Permissions) CheckPermission(subject string, action Action, session string) (*Principal, error) {
	roles, ok := actionRoles[action]
	if !ok {
		return nil, fmt.Errorf("unknown action %q on %s: %w", action, subject, revisionerrors.Forbidden)
	}
	if session == "" {
		return nil, fmt.Errorf("%s %s: no session: %w", action, subject, revisionerrors.Forbidden)
	}
	if p.client == nil {
		return nil, fmt.Errorf("authorizer client not initialized")
	}

	rolesPtrs := make([]*string, len(roles))
	for i := range roles {
		rolesPtrs[i] = &roles[i]
	}
	res, err := p.client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: session,
		Roles:  rolesPtrs,
	})
	if err != nil {
		return nil, fmt.Errorf("%s %s: session validation failed: %v: %w", action, subject, err, revisionerrors.Forbidden)
	}
	if res == nil || !res.IsValid {
		return nil, fmt.Errorf("%s %s: session is not valid: %w", action, subject, revisionerrors.Forbidden)
	}
	return &Principal{User: res.User}, nil
}
