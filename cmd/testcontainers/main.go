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
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/localnerve/jam-build-revdb/internal/database/dbtest"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var email string
	flag.StringVar(&email, "account", "", "email of an account to sign up once the authorizer is running")
	var roles string
	flag.StringVar(&roles, "roles", "editor", "comma separated roles for -account")
	flag.Parse()

	usage := `
Run the revdb testcontainers with the environment variables from the .env file.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH] [-account EMAIL [-roles ROLES]]

ENV_FILE_PATH: path to the .env file
EMAIL: sign up (or log in) this account and print its access token
ROLES: comma separated roles of the account, defaults to editor

example
  testcontainers -f /path/to/something/.env -account admin@example.com -roles admin
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGTSTP, syscall.SIGQUIT)

	started := make(chan *dbtest.TestContainers, 1)
	go func() {
		testContainers, err := dbtest.CreateAllTestContainers(nil)
		if err != nil {
			log.Fatalf("Failed to create test containers: %v\n", err)
		}
		started <- testContainers
		if email != "" {
			acquire(testContainers, email, strings.Split(roles, ","))
		}
	}()

	var testContainers *dbtest.TestContainers
	select {
	case sig := <-sigs:
		log.Printf("\nReceived signal: %v before the containers started\n", sig)
		return
	case testContainers = <-started:
	}

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating test containers...\n", sig)
	testContainers.Terminate(nil)
}

func acquire(tc *dbtest.TestContainers, email string, roles []string) {
	authzURL, err := tc.AuthorizerContainer.Endpoint(context.Background(), "http")
	if err != nil {
		log.Printf("Failed to resolve the authorizer endpoint: %v\n", err)
		return
	}

	password := dbtest.GeneratePassword()
	token, err := dbtest.AcquireAccount(os.Getenv("AUTHZ_CLIENT_ID"), authzURL, email, password, roles)
	if err != nil {
		log.Printf("Failed to acquire account %s: %v\n", email, err)
		return
	}
	log.Printf("Account %s (%s) password=%s\n", email, strings.Join(roles, ","), password)
	log.Printf("ACCESS_TOKEN=%s\n", token)
}
