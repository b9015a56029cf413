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
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/localnerve/jam-build-revdb/internal/config"
	"github.com/localnerve/jam-build-revdb/internal/database"
	"github.com/localnerve/jam-build-revdb/internal/logger"
	"github.com/localnerve/jam-build-revdb/internal/services"
)

func main() {
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to a .env file")
	flag.Parse()

	// Until the configured logger exists
	boot := logger.New(logger.InfoLevel, logger.FormatJSON)

	if envFilename != "" {
		if err := godotenv.Load(envFilename); err != nil {
			boot.Fatal("failed to load environment file", zap.Error(err))
		}
	}

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal("failed to load configuration", zap.Error(err))
	}

	// Results go to stdout, logs only matter when something is wrong.
	log := logger.New(logger.WarnLevel, logger.LogFormat(cfg.LogFormat))

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	result := services.HealthCheck(context.Background(), cfg, db, log)
	_ = database.Close(db)

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal("failed to marshal health check result", zap.Error(err))
	}
	fmt.Println(string(output))

	if result.Status != "healthy" {
		os.Exit(1)
	}
}
