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
	stdlog "log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/wso2/identity-reconciler/internal/system/config"
	"github.com/wso2/identity-reconciler/internal/system/constants"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenSourceDB opens the database holding the identities of a source. SQL issued by
// gorm is logged to stderr at warn level so snapshots on stdout stay clean.
func OpenSourceDB(ctx context.Context, dbConfig config.DatabaseConfig) (*gorm.DB, error) {

	var dialector gorm.Dialector
	switch dbConfig.Driver {
	case constants.MySQLDBType:
		dialector = mysql.Open(dbConfig.DSN())
	case constants.PostgresDBType:
		dialector = postgres.Open(dbConfig.DSN())
	case constants.SQLiteDBType:
		dialector = sqlite.Open(dbConfig.DSN())
	default:
		return nil, errors.Errorf("unsupported source database driver: %q", dbConfig.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(stdlog.New(os.Stderr, "", stdlog.LstdFlags), gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open source database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to access source database")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "failed to ping source database")
	}
	return db, nil
}

// CloseSourceDB releases the connections of a database opened with OpenSourceDB.
func CloseSourceDB(db *gorm.DB) error {

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
