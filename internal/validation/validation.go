// validation.go
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

package validation

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/juju/errors"
	"github.com/juju/gojsonschema"
	"github.com/united-manufacturing-hub/expiremap/v2/pkg/expiremap"
	"go.uber.org/zap"

	"github.com/localnerve/jam-build-revdb/data"
	"github.com/localnerve/jam-build-revdb/internal/jsonstore"
	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
)

// DefaultCacheTTL is how long a compiled validator stays cached when unused.
const DefaultCacheTTL = 10 * time.Minute

// Service compiles schemas into validators and checks documents against
// them. Compiled validators are cached by the hash of the canonical schema
// document, so the cache never has to be invalidated, only evicted.
type Service struct {
	log   *zap.Logger
	cache *expiremap.ExpireMap[uint64, *gojsonschema.Schema]
	meta  *gojsonschema.Schema
	views *gojsonschema.Schema
}

// New builds the service and compiles the embedded meta and views schemas.
func New(ttl time.Duration, log *zap.Logger) (*Service, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	meta, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data.MetaSchema))
	if err != nil {
		return nil, errors.Annotate(err, "compiling meta-schema")
	}
	views, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data.ViewsSchema))
	if err != nil {
		return nil, errors.Annotate(err, "compiling views schema")
	}
	return &Service{
		log:   log.Named("validation"),
		cache: expiremap.NewEx[uint64, *gojsonschema.Schema](ttl, ttl),
		meta:  meta,
		views: views,
	}, nil
}

// Compile returns the validator of schema, from cache when possible.
func (s *Service) Compile(schema map[string]any) (*gojsonschema.Schema, error) {
	canonical, err := jsonstore.CanonicalJSON(schema)
	if err != nil {
		return nil, errors.Annotate(err, "encoding schema")
	}
	key := xxhash.Sum64(canonical)
	if cached, ok := s.cache.Load(key); ok {
		return *cached, nil
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(canonical))
	if err != nil {
		return nil, revisionerrors.NewValidationError("schema", revisionerrors.FieldError{
			Field:   "(root)",
			Message: err.Error(),
			Type:    "compile",
		})
	}
	s.cache.Set(key, compiled)
	s.log.Debug("compiled validator", zap.Uint64("key", key))
	return compiled, nil
}

// ValidateSchema checks a schema document against the meta-schema and
// parses it into a Schema Store.
func (s *Service) ValidateSchema(doc any) (*jsonstore.Schema, error) {
	if err := check("schema", s.meta, doc); err != nil {
		return nil, err
	}
	return jsonstore.SchemaFromPlain(doc)
}

// ValidateSchemaNode checks a schema fragment, such as the value of a patch,
// against the node definitions of the meta-schema. Keywords the store does
// not support are reported instead of being dropped by the parser.
func (s *Service) ValidateSchemaNode(subject string, doc any) error {
	return check(subject, s.meta, doc)
}

// ValidateData checks a row body against its table schema.
func (s *Service) ValidateData(schema map[string]any, rowID string, doc any) error {
	compiled, err := s.Compile(schema)
	if err != nil {
		return err
	}
	return check(fmt.Sprintf("row %s", rowID), compiled, doc)
}

// ValidateViews checks a table views document.
func (s *Service) ValidateViews(doc any) error {
	return check("views", s.views, doc)
}

func check(subject string, schema *gojsonschema.Schema, doc any) error {
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return revisionerrors.NewValidationError(subject, revisionerrors.FieldError{
			Field:   "(root)",
			Message: err.Error(),
			Type:    "document",
		})
	}
	if result.Valid() {
		return nil
	}

	details := make([]revisionerrors.FieldError, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		details = append(details, revisionerrors.FieldError{
			Field:   e.Field(),
			Message: e.Description(),
			Type:    e.Type(),
		})
	}
	return revisionerrors.NewValidationError(subject, details...)
}
