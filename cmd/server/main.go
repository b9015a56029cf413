// main.go
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

package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/localnerve/jam-build-revdb/internal/config"
	"github.com/localnerve/jam-build-revdb/internal/database"
	"github.com/localnerve/jam-build-revdb/internal/handlers"
	"github.com/localnerve/jam-build-revdb/internal/logger"
	"github.com/localnerve/jam-build-revdb/internal/middleware"
	"github.com/localnerve/jam-build-revdb/internal/services"
	"github.com/localnerve/jam-build-revdb/internal/utils"
	"github.com/localnerve/jam-build-revdb/internal/validation"

	_ "github.com/localnerve/jam-build-revdb/docs/api" // Swagger docs
)

// @title RevDB API
// @version 1.0.0
// @description Versioned, schema-governed structured content with branches, drafts and commits
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/jam-build-revdb
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to a .env file")
	flag.Parse()

	// Until the configured logger exists
	boot := logger.New(logger.InfoLevel, logger.FormatJSON)

	if envFilename != "" {
		if err := godotenv.Load(envFilename); err != nil {
			boot.Fatal("failed to load environment file", zap.String("file", envFilename), zap.Error(err))
		}
	}

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.New(logger.LogLevel(cfg.LogLevel), logger.LogFormat(cfg.LogFormat))
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	validator, err := validation.New(cfg.ValidatorCacheTTL, log)
	if err != nil {
		log.Fatal("failed to load meta schemas", zap.Error(err))
	}

	store := services.New(db, validator, log, services.Options{
		AllowSystemTableMutation: cfg.AllowSystemTableMutation,
	})

	var perms *services.Permissions
	if cfg.AuthzEnabled() {
		perms = services.NewPermissions(cfg, log)
		log.Info("authorizer will be initialized on first authenticated request")
	} else {
		log.Warn("no authorizer configured, mutations are not guarded")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("revdb")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		result := services.HealthCheck(c.UserContext(), cfg, db, log)
		status := fiber.StatusOK
		if result.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(result)
	})

	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())
	handlers.Register(api, &handlers.RevisionHandler{Service: store, Log: log}, perms)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigs
		log.Info("gracefully shutting down")
		_ = app.Shutdown()
	}()

	log.Info("starting server", zap.String("port", cfg.Port), zap.String("database", cfg.DBType))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}

	log.Info("server stopped")
}
