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

package provider

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/glebarez/sqlite"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/wso2/identity-reconciler/internal/system/config"
	"github.com/wso2/identity-reconciler/internal/system/constants"
	"github.com/wso2/identity-reconciler/internal/system/database/client"
)

// DBConfig represents the local database configuration.
type DBConfig struct {
	dsn        string
	driverName string
}

// DBProviderInterface defines the interface for getting database clients.
type DBProviderInterface interface {
	GetDBClient(ctx context.Context) (client.DBClientInterface, error)
	GetDBType() string
}

// DBProvider is the implementation of DBProviderInterface.
type DBProvider struct {
	storeConfig config.MappingStoreConfig
}

// NewDBProvider creates a new instance of DBProvider for a SQL mapping store.
func NewDBProvider(storeConfig config.MappingStoreConfig) DBProviderInterface {

	return &DBProvider{storeConfig: storeConfig}
}

// GetDBClient opens and pings a connection to the configured database.
func (d *DBProvider) GetDBClient(ctx context.Context) (client.DBClientInterface, error) {

	dbConfig, err := getDBConfig(d.storeConfig)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dbConfig.driverName, dbConfig.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the database connection.
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return client.NewDBClient(db, d.storeConfig.Type), nil
}

// GetDBType returns the configured database type.
func (d *DBProvider) GetDBType() string {

	return d.storeConfig.Type
}

// getDBConfig returns the driver and connection string of the mapping store.
func getDBConfig(storeConfig config.MappingStoreConfig) (DBConfig, error) {

	var dbConfig DBConfig

	switch storeConfig.Type {
	case constants.PostgresDBType:
		dbConfig.driverName = "postgres"
	case constants.MySQLDBType:
		dbConfig.driverName = "mysql"
	case constants.SQLiteDBType:
		dbConfig.driverName = "sqlite"
	default:
		return dbConfig, fmt.Errorf("unsupported SQL mapping store type: %q", storeConfig.Type)
	}
	dbConfig.dsn = storeConfig.DSN()

	return dbConfig, nil
}
