/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package main

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/identity-reconciler/internal/identity/service"
	errors2 "github.com/wso2/identity-reconciler/internal/system/errors"
)

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func createCommunityDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "community.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	for _, statement := range []string{
		`CREATE TABLE "people" ("id" INTEGER PRIMARY KEY, "name" TEXT, "email" TEXT, "username" TEXT)`,
		`INSERT INTO "people" ("id", "name", "email", "username") VALUES
			(1, 'Ann', 'ann@x.com', NULL),
			(2, 'ann', 'ANN@x.com ', ''),
			(3, 'Bob', NULL, 'bob')`,
	} {
		_, err := db.Exec(statement)
		require.NoError(t, err)
	}
	return path
}

func TestFingerprintCommand(t *testing.T) {
	out, err := runCommand(t, "", "fingerprint", "-s", "git", "--email", "A@x.com ", "--name", "Ann")
	require.NoError(t, err)

	assert.Equal(t, service.Fingerprint("git", "a@x.com", "ann", "")+"\n", out)
}

func TestFingerprintCommand_RequiresSource(t *testing.T) {
	_, err := runCommand(t, "", "fingerprint", "--email", "a@x.com")
	assert.Error(t, err)
}

func TestExportAndLinkCommands(t *testing.T) {
	home := t.TempDir()
	dbPath := createCommunityDB(t)
	snapshotPath := filepath.Join(home, "snapshot.json")
	common := []string{"--home", home, "--driver", "sqlite", "-d", dbPath}

	_, err := runCommand(t, "", append([]string{"export", "-s", "mls", "-o", snapshotPath}, common...)...)
	require.NoError(t, err)

	snapshot, err := os.ReadFile(snapshotPath)
	require.NoError(t, err)
	registry, err := service.Parse(bytes.NewReader(snapshot))
	require.NoError(t, err)
	assert.Equal(t, "mls", registry.Source)
	assert.Len(t, registry.UniqueIdentities, 2)

	out, err := runCommand(t, "", append([]string{"link", "-s", "mls", snapshotPath}, common...)...)
	require.NoError(t, err)
	assert.Equal(t, "3 of 3 relationships created\n", out)

	// The snapshot can also come from stdin.
	out, err = runCommand(t, string(snapshot), append([]string{"link", "-s", "mls"}, common...)...)
	require.NoError(t, err)
	assert.Equal(t, "3 of 3 relationships created\n", out)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "people_uidentities"`).Scan(&count))
	assert.Equal(t, 3, count)

	// Rows 1 and 2 share a fingerprint and link to the same unique identity.
	var first, second string
	require.NoError(t, db.QueryRow(`SELECT "uuid" FROM "people_uidentities" WHERE "people_id" = '1'`).Scan(&first))
	require.NoError(t, db.QueryRow(`SELECT "uuid" FROM "people_uidentities" WHERE "people_id" = '2'`).Scan(&second))
	assert.Equal(t, service.Fingerprint("mls", "ann@x.com", "ann", ""), first)
	assert.Equal(t, first, second)
}

func TestExportCommand_ToStdout(t *testing.T) {
	dbPath := createCommunityDB(t)

	out, err := runCommand(t, "", "export", "-s", "mls", "--home", t.TempDir(), "--driver", "sqlite", "-d", dbPath)
	require.NoError(t, err)

	registry, err := service.Parse(strings.NewReader(out))
	require.NoError(t, err)
	assert.Len(t, registry.UniqueIdentities, 2)
}

func TestExportCommand_FailureLeavesNoFile(t *testing.T) {
	home := t.TempDir()
	snapshotPath := filepath.Join(home, "snapshot.json")
	emptyDB := filepath.Join(home, "empty.db")

	_, err := runCommand(t, "", "export", "-s", "mls", "-o", snapshotPath,
		"--home", home, "--driver", "sqlite", "-d", emptyDB)

	var serverErr *errors2.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, errors2.SOURCE_SCHEMA.Code, serverErr.Code)
	assert.NoFileExists(t, snapshotPath)
}

func TestLinkCommand_InvalidSnapshot(t *testing.T) {
	dbPath := createCommunityDB(t)

	_, err := runCommand(t, "not a snapshot", "link", "-s", "mls", "--home", t.TempDir(), "--driver", "sqlite", "-d", dbPath)

	var clientErr *errors2.ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, errors2.INVALID_SNAPSHOT.Code, clientErr.Code)
}

func TestLoad_ConfigFileAndOverrides(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, "repository", "conf"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(home, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, "config", "db.env"),
		[]byte("TEST_RECONCILER_CLI_USER=from-env\n"), 0o600))
	t.Setenv("TEST_RECONCILER_CLI_USER", "")
	require.NoError(t, os.Unsetenv("TEST_RECONCILER_CLI_USER"))
	require.NoError(t, os.WriteFile(filepath.Join(home, "repository", "conf", "deployment.yaml"), []byte(`
log:
  log_level: "ERROR"
source_database:
  driver: "postgres"
  host: "db.internal"
  user: "${TEST_RECONCILER_CLI_USER}"
  dbname: "community"
reconcile:
  timeout: "1m"
`), 0o600))

	opts := &rootOptions{home: home, configFile: "repository/conf/deployment.yaml", host: "override", port: "6543"}
	cfg, err := opts.load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.SourceDatabase.Driver)
	assert.Equal(t, "override", cfg.SourceDatabase.Host)
	assert.Equal(t, "6543", cfg.SourceDatabase.Port)
	assert.Equal(t, "from-env", cfg.SourceDatabase.User)
	assert.Equal(t, "postgres", cfg.MappingStore.Type)
	assert.Equal(t, "override", cfg.MappingStore.Host)
}
