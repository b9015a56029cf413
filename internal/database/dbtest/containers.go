// containers.go
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

// Container helpers shared by the database integration tests and the
// cmd/testcontainers executable. Expects environment variables to be loaded
// from .env files when used standalone.

package dbtest

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/localnerve/jam-build-revdb/internal/config"
)

type TestContainers struct {
	Network             *testcontainers.DockerNetwork
	DBContainer         testcontainers.Container
	AuthorizerContainer testcontainers.Container
	RevDBContainer      testcontainers.Container
}

func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.RevDBContainer != nil {
		if err := tc.RevDBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate RevDB: %v", err)
		}
	}
	if tc.AuthorizerContainer != nil {
		if err := tc.AuthorizerContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Authorizer: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Database: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// DatabaseImage returns the default image for dbType.
func DatabaseImage(dbType string) string {
	if img := os.Getenv("DB_IMAGE"); img != "" {
		return img
	}
	switch dbType {
	case "postgres", "postgresql":
		return "postgres:17-alpine"
	default:
		return "mariadb:11"
	}
}

// StartDatabase starts a database container for cfg.DBType on nw and
// returns a copy of cfg pointing at the mapped host port.
func StartDatabase(ctx context.Context, nw *testcontainers.DockerNetwork, cfg config.Config) (testcontainers.Container, *config.Config, error) {
	port := "3306"
	if cfg.DBType == "postgres" || cfg.DBType == "postgresql" {
		port = "5432"
	}
	tcpDbPort, err := nat.NewPort("tcp", port)
	if err != nil {
		return nil, nil, err
	}

	req := testcontainers.ContainerRequest{
		Image:        DatabaseImage(cfg.DBType),
		ExposedPorts: []string{string(tcpDbPort)},
		Env:          getDBInitEnvMap(cfg),
		WaitingFor:   wait.ForListeningPort(tcpDbPort).WithStartupTimeout(60 * time.Second),
	}
	if nw != nil {
		req.Networks = []string{nw.Name}
		req.NetworkAliases = map[string][]string{nw.Name: {cfg.DBHost}}
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, nil, err
	}

	host, err := dbContainer.Host(ctx)
	if err != nil {
		return dbContainer, nil, err
	}
	mapped, err := dbContainer.MappedPort(ctx, tcpDbPort)
	if err != nil {
		return dbContainer, nil, err
	}

	local := cfg
	local.DBHost = host
	local.DBPort = mapped.Port()
	return dbContainer, &local, nil
}

func getDBInitEnvMap(cfg config.Config) map[string]string {
	switch cfg.DBType {
	case "postgres", "postgresql":
		return map[string]string{
			"POSTGRES_PASSWORD": cfg.DBPassword,
			"POSTGRES_USER":     cfg.DBUser,
			"POSTGRES_DB":       cfg.DBDatabase,
		}
	default:
		return map[string]string{
			"MYSQL_ROOT_PASSWORD": os.Getenv("DB_ROOT_PASSWORD"),
			"MYSQL_DATABASE":      cfg.DBDatabase,
			"MYSQL_USER":          cfg.DBUser,
			"MYSQL_PASSWORD":      cfg.DBPassword,
		}
	}
}

// CreateAllTestContainers starts the database, the authorizer and, when the
// REVDB_IMAGE image exists locally, the service itself on a shared network.
func CreateAllTestContainers(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()
	testContainers := &TestContainers{}

	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
	}
	testContainers.Network = nw
	networkName := nw.Name

	cfg, err := config.Load()
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to load configuration")
	}

	dbContainer, local, err := StartDatabase(ctx, nw, *cfg)
	testContainers.DBContainer = dbContainer
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start Database")
	}
	logMessage(t, "DB_HOST=%s DB_PORT=%s", local.DBHost, local.DBPort)

	// Create and start the Authorizer container
	authzNetworkName := "authorizer"
	tcpAuthzPort, err := nat.NewPort("tcp", getEnv("AUTHZ_PORT", "8080"))
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to create Authorizer port")
	}
	authorizerContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        getEnv("AUTHZ_IMAGE", "lakhansamani/authorizer:latest"),
			ExposedPorts: []string{string(tcpAuthzPort)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     cfg.AuthzClientID,
				"PORT":          tcpAuthzPort.Port(),
				"DATABASE_TYPE": "sqlite",
				"DATABASE_URL":  "/tmp/authorizer.db",
				"ADMIN_SECRET":  os.Getenv("AUTHZ_ADMIN_SECRET"),
				"ROLES":         "admin,editor,reader",
				"DEFAULT_ROLES": "reader",
			},
			WaitingFor: wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(30 * time.Second),
			Networks:   []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {authzNetworkName},
			},
		},
		Started: true,
	})
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start Authorizer")
	}
	testContainers.AuthorizerContainer = authorizerContainer

	authzHost, _ := authorizerContainer.Host(ctx)
	authzPort, _ := authorizerContainer.MappedPort(ctx, tcpAuthzPort)
	logMessage(t, "AUTHZ_URL=http://%s:%s", authzHost, authzPort.Port())

	imageName := getEnv("REVDB_IMAGE", "revdb-test:latest")
	exists, err := imageExists(ctx, imageName)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to check if image exists")
	}
	if !exists {
		logMessage(t, "Image %s does not exist, skipping the service container", imageName)
		return testContainers, nil
	}

	tcpRevdbPort, err := nat.NewPort("tcp", cfg.Port)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to create RevDB port")
	}
	revdbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        imageName,
			ExposedPorts: []string{string(tcpRevdbPort)},
			Env: map[string]string{
				"DB_TYPE":             cfg.DBType,
				"DB_HOST":             cfg.DBHost,
				"DB_PORT":             cfg.DBPort,
				"DB_DATABASE":         cfg.DBDatabase,
				"DB_USER":             cfg.DBUser,
				"DB_PASSWORD":         cfg.DBPassword,
				"DB_CONNECTION_LIMIT": fmt.Sprint(cfg.DBConnectionLimit),
				"AUTHZ_URL":           fmt.Sprintf("http://%s:%s", authzNetworkName, tcpAuthzPort.Port()),
				"AUTHZ_CLIENT_ID":     cfg.AuthzClientID,
				"PORT":                cfg.Port,
			},
			HostConfigModifier: func(hostConfig *container.HostConfig) {
				hostConfig.AutoRemove = true
			},
			WaitingFor: wait.ForHTTP("/metrics").WithPort(tcpRevdbPort).WithStartupTimeout(30 * time.Second),
			Networks:   []string{networkName},
		},
		Started: true,
	})
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start RevDB")
	}
	testContainers.RevDBContainer = revdbContainer

	revdbHost, _ := revdbContainer.Host(ctx)
	revdbPort, _ := revdbContainer.MappedPort(ctx, tcpRevdbPort)
	logMessage(t, "BASE_URL=http://%s:%s", revdbHost, revdbPort.Port())

	logMessage(t, "RevDB testcontainers started successfully")
	return testContainers, nil
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, image := range images {
		for _, tag := range image.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
