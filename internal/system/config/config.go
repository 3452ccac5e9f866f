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

package config

import (
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/wso2/identity-reconciler/internal/system/constants"
)

type LogConfig struct {
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig describes the database holding the raw identities of a source.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DbName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	// Table forces the identities table instead of detecting it.
	Table string `yaml:"table"`
}

// MappingStoreConfig describes where identity correspondences are written.
type MappingStoreConfig struct {
	Type      string `yaml:"type"`
	Host      string `yaml:"host"`
	Port      string `yaml:"port"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	DbName    string `yaml:"dbname"`
	SSLMode   string `yaml:"sslmode"`
	URI       string `yaml:"uri"`
	Database  string `yaml:"database"`
	Table     string `yaml:"table"`
	BatchSize int    `yaml:"batch_size"`
}

type ReconcileConfig struct {
	Timeout string `yaml:"timeout"`
}

type Config struct {
	Log            LogConfig          `yaml:"log"`
	SourceDatabase DatabaseConfig     `yaml:"source_database"`
	MappingStore   MappingStoreConfig `yaml:"mapping_store"`
	Reconcile      ReconcileConfig    `yaml:"reconcile"`
}

// DefaultConfig returns the configuration used when no deployment file exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset values. The mapping store inherits the source database
// connection when it has no type of its own, like the original people_uidentities
// table living next to the identities it maps.
func (c *Config) ApplyDefaults() {

	if c.Log.LogLevel == "" {
		c.Log.LogLevel = "INFO"
	}

	db := &c.SourceDatabase
	if db.Driver == "" {
		db.Driver = constants.MySQLDBType
	}
	if db.Host == "" {
		db.Host = constants.DefaultDBHost
	}
	if db.Port == "" && db.Driver == constants.MySQLDBType {
		db.Port = constants.DefaultMySQLPort
	}
	if db.User == "" {
		db.User = constants.DefaultDBUser
	}

	ms := &c.MappingStore
	if ms.Type == "" {
		ms.Type = db.Driver
		ms.Host = db.Host
		ms.Port = db.Port
		ms.User = db.User
		ms.Password = db.Password
		ms.DbName = db.DbName
		ms.SSLMode = db.SSLMode
	}
	if ms.Table == "" {
		ms.Table = constants.DefaultMappingTable
	}
	if ms.BatchSize <= 0 {
		ms.BatchSize = constants.DefaultMappingBatchSize
	}
}

// RunTimeout returns the deadline applied around a whole reconciliation run.
func (c *Config) RunTimeout() (time.Duration, error) {

	if c.Reconcile.Timeout == "" {
		return constants.DefaultRunTimeout, nil
	}
	timeout, err := time.ParseDuration(c.Reconcile.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid reconcile timeout %q: %w", c.Reconcile.Timeout, err)
	}
	return timeout, nil
}

// DSN builds the driver specific connection string of the source database.
func (d DatabaseConfig) DSN() string {
	return buildDSN(d.Driver, d.Host, d.Port, d.User, d.Password, d.DbName, d.SSLMode)
}

// DSN builds the driver specific connection string of a SQL mapping store.
func (m MappingStoreConfig) DSN() string {
	return buildDSN(m.Type, m.Host, m.Port, m.User, m.Password, m.DbName, m.SSLMode)
}

func buildDSN(driver, host, port, user, password, dbName, sslMode string) string {

	switch driver {
	case constants.PostgresDBType:
		if port == "" {
			port = "5432"
		}
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbName, sslMode)
	case constants.MySQLDBType:
		mysqlConfig := mysql.NewConfig()
		mysqlConfig.User = user
		mysqlConfig.Passwd = password
		mysqlConfig.Net = "tcp"
		mysqlConfig.Addr = net.JoinHostPort(host, port)
		mysqlConfig.DBName = dbName
		mysqlConfig.ParseTime = true
		mysqlConfig.Params = map[string]string{"charset": "utf8mb4"}
		return mysqlConfig.FormatDSN()
	default:
		return dbName
	}
}
