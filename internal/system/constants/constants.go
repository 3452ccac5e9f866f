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

package constants

import "time"

const (
	DefaultHomeEnv    = "RECONCILER_HOME"
	DefaultConfigFile = "repository/conf/deployment.yaml"
	DefaultEnvGlob    = "config/*.env"
)

// Mapping store types.
const (
	PostgresDBType = "postgres"
	MySQLDBType    = "mysql"
	SQLiteDBType   = "sqlite"
	MongoDBType    = "mongo"
)

const (
	DefaultMappingTable     = "people_uidentities"
	DefaultMappingBatchSize = 50
	DefaultRunTimeout       = 10 * time.Minute
	DefaultMySQLPort        = "3306"
	DefaultDBHost           = "localhost"
	DefaultDBUser           = "root"
)

// SnapshotTimeLayout is the layout of the generation time written to snapshots.
const SnapshotTimeLayout = "2006-01-02 15:04:05.000000"

// SnapshotIndent is the indentation used by serialized snapshots.
const SnapshotIndent = "    "

// Known identity source tables and the columns they expose.
const (
	IRCLogTable             = "irclog"
	IRCLogNickColumn        = "nick"
	WikiRevisionsTable      = "wiki_pages_revs"
	WikiRevisionsUserColumn = "user"
	PeopleTable             = "people"
	MailingListPeopleTable  = "mailing_list_people"
)
