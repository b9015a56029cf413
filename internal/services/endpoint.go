// endpoint.go
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
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/localnerve/jam-build-revdb/internal/models"
	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
)

// Notifier tells external subscribers about their endpoints. It is only
// called after the owning transaction has committed.
type Notifier interface {
	Create(ctx context.Context, endpoint models.Endpoint) error
	Delete(ctx context.Context, endpoint models.Endpoint) error
	Notify(ctx context.Context, endpointIDs []string) error
}

// LogNotifier is the default Notifier. It only logs.
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier returns a Notifier that logs every call.
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.Named("notifier")}
}

func (n *LogNotifier) Create(_ context.Context, endpoint models.Endpoint) error {
	n.log.Info("endpoint created",
		zap.String("endpoint", endpoint.ID),
		zap.String("type", endpoint.Type),
		zap.String("revision", endpoint.RevisionID))
	return nil
}

func (n *LogNotifier) Delete(_ context.Context, endpoint models.Endpoint) error {
	n.log.Info("endpoint deleted", zap.String("endpoint", endpoint.ID), zap.String("type", endpoint.Type))
	return nil
}

func (n *LogNotifier) Notify(_ context.Context, endpointIDs []string) error {
	n.log.Info("endpoints moved", zap.Strings("endpoints", endpointIDs))
	return nil
}

// notify reports moved endpoints. Failures are logged and never undo the
// committed change.
func (s *Service) notify(ctx context.Context, endpointIDs []string) {
	if len(endpointIDs) == 0 {
		return
	}
	if err := s.notifier.Notify(ctx, endpointIDs); err != nil {
		s.log.Warn("endpoint notification failed", zap.Strings("endpoints", endpointIDs), zap.Error(err))
	}
}

// moveEndpoints rebinds every endpoint of one revision to another and
// returns their ids.
func moveEndpoints(tx *gorm.DB, from, to string) ([]string, error) {
	var ids []string
	if err := tx.Model(&models.Endpoint{}).Where("revision_id = ?", from).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	err := tx.Model(&models.Endpoint{}).Where("id IN ?", ids).Update("revision_id", to).Error
	return ids, err
}

// CreateEndpoint binds a new endpoint of type kind to a revision.
func (s *Service) CreateEndpoint(ctx context.Context, revisionID, kind string) (*models.Endpoint, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" || len(kind) > 32 {
		return nil, revisionerrors.NewValidationError("endpoint", revisionerrors.FieldError{
			Field:   "type",
			Message: "type must be 1 to 32 characters",
			Type:    "length",
		})
	}
	endpoint := models.Endpoint{ID: uuid.NewString(), RevisionID: revisionID, Type: kind}
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&models.Revision{}, "id = ?", revisionID).Error; err != nil {
			return notFound(err, "revision %s", revisionID)
		}
		return tx.Create(&endpoint).Error
	})
	if err != nil {
		return nil, err
	}
	if err := s.notifier.Create(ctx, endpoint); err != nil {
		s.log.Warn("endpoint create notification failed", zap.String("endpoint", endpoint.ID), zap.Error(err))
	}
	return &endpoint, nil
}

// DeleteEndpoint removes an endpoint.
func (s *Service) DeleteEndpoint(ctx context.Context, id string) error {
	var endpoint models.Endpoint
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&endpoint, "id = ?", id).Error; err != nil {
			return notFound(err, "endpoint %s", id)
		}
		return tx.Delete(&endpoint).Error
	})
	if err != nil {
		return err
	}
	if err := s.notifier.Delete(ctx, endpoint); err != nil {
		s.log.Warn("endpoint delete notification failed", zap.String("endpoint", id), zap.Error(err))
	}
	return nil
}

// ListEndpoints returns the endpoints bound to a revision.
func (s *Service) ListEndpoints(ctx context.Context, revisionID string) ([]models.Endpoint, error) {
	endpoints := []models.Endpoint{}
	err := s.read(ctx).Where("revision_id = ?", revisionID).Order("id").Find(&endpoints).Error
	if err != nil {
		return nil, fmt.Errorf("listing endpoints of %s: %w", revisionID, err)
	}
	return endpoints, nil
}
