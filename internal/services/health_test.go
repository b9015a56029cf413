package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/localnerve/jam-build-revdb/internal/config"
	"github.com/localnerve/jam-build-revdb/internal/database/dbtest"
)

func TestHealthCheck(t *testing.T) {
	db := dbtest.NewSQLite(t)
	ctx := context.Background()

	cfg := &config.Config{DBType: "sqlite", DBDatabase: ":memory:"}
	result := HealthCheck(ctx, cfg, db, zap.NewNop())
	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, "ok", result.Database)
	assert.Equal(t, "disabled", result.Authorizer)

	cfg.AuthzURL = "http://127.0.0.1:1"
	cfg.AuthzClientID = "client"
	result = HealthCheck(ctx, cfg, db, zap.NewNop())
	assert.Equal(t, "unhealthy", result.Status)
	assert.Equal(t, "unreachable", result.Authorizer)
	assert.NotEmpty(t, result.ErrorMessage)
}
