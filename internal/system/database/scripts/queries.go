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

package scripts

// Mapping table statements. %[1]s is the already quoted table name and %[2]s the
// bare one, used to name indexes.

var DropMappingTable = map[string]string{
	"postgres": `DROP TABLE IF EXISTS %[1]s`,
	"mysql":    `DROP TABLE IF EXISTS %[1]s`,
	"sqlite":   `DROP TABLE IF EXISTS %[1]s`,
}

var CreateMappingTable = map[string]string{
	"postgres": `CREATE TABLE %[1]s (
		people_id VARCHAR(255) NOT NULL,
		uuid VARCHAR(128) NOT NULL,
		CONSTRAINT %[2]s_people_unique UNIQUE (people_id))`,
	"mysql": `CREATE TABLE %[1]s (
		people_id VARCHAR(255) NOT NULL,
		uuid VARCHAR(128) NOT NULL,
		UNIQUE KEY people_unique (people_id),
		KEY ix_%[2]s_uuid (uuid)) ENGINE=MyISAM DEFAULT CHARSET=utf8mb4`,
	"sqlite": `CREATE TABLE %[1]s (
		people_id VARCHAR(255) NOT NULL UNIQUE,
		uuid VARCHAR(128) NOT NULL)`,
}

// CreateMappingUUIDIndex is empty for databases creating the index inline.
var CreateMappingUUIDIndex = map[string]string{
	"postgres": `CREATE INDEX ix_%[2]s_uuid ON %[1]s (uuid)`,
	"mysql":    ``,
	"sqlite":   `CREATE INDEX ix_%[2]s_uuid ON %[1]s (uuid)`,
}

var InsertMappingRows = map[string]string{
	"postgres": `INSERT INTO %[1]s (people_id, uuid) VALUES `,
	"mysql":    `INSERT INTO %[1]s (people_id, uuid) VALUES `,
	"sqlite":   `INSERT INTO %[1]s (people_id, uuid) VALUES `,
}

var GetMappingRows = map[string]string{
	"postgres": `SELECT people_id, uuid FROM %[1]s ORDER BY people_id, uuid`,
	"mysql":    `SELECT people_id, uuid FROM %[1]s ORDER BY people_id, uuid`,
	"sqlite":   `SELECT people_id, uuid FROM %[1]s ORDER BY people_id, uuid`,
}
