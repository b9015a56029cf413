//go:build e2e

// e2e_test.go
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

package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/localnerve/jam-build-revdb/internal/config"
	"github.com/localnerve/jam-build-revdb/internal/database"
	"github.com/localnerve/jam-build-revdb/internal/database/dbtest"
	"github.com/localnerve/jam-build-revdb/internal/services"
)

// TestE2EWithFullStack runs against the containers of dbtest.CreateAllTestContainers.
func TestE2EWithFullStack(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}
	ctx := context.Background()

	tc, err := dbtest.CreateAllTestContainers(t)
	require.NoError(t, err)
	defer tc.Terminate(t)

	t.Run("HealthCheck", func(t *testing.T) {
		cfg, err := config.Load()
		require.NoError(t, err)

		dbHost, err := tc.DBContainer.Host(ctx)
		require.NoError(t, err)
		dbPort, err := tc.DBContainer.MappedPort(ctx, "3306")
		require.NoError(t, err)
		cfg.DBHost = dbHost
		cfg.DBPort = dbPort.Port()

		cfg.AuthzURL, err = tc.AuthorizerContainer.Endpoint(ctx, "http")
		require.NoError(t, err)

		db, err := database.Connect(cfg, zap.NewNop())
		require.NoError(t, err)
		defer func() { _ = database.Close(db) }()

		result := services.HealthCheck(ctx, cfg, db, zap.NewNop())
		assert.Equal(t, "healthy", result.Status, "%+v", result)
	})

	if tc.RevDBContainer == nil {
		t.Skip("service image not built, skipping HTTP checks")
	}
	baseURL, err := tc.RevDBContainer.Endpoint(ctx, "http")
	require.NoError(t, err)

	t.Run("PrometheusMetrics", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, strings.Contains(string(body), "revdb_"), "expected revdb metrics")
	})

	t.Run("SwaggerUI", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/swagger/index.html")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("PublicRead", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/api/projects/missing")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var result map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, "notFound", result["type"])
	})

	t.Run("GuardedWrite", func(t *testing.T) {
		resp, err := http.Post(baseURL+"/api/orgs", "application/json", strings.NewReader(`{"id":"acme"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
