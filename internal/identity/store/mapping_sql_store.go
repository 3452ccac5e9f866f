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

package store

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/wso2/identity-reconciler/internal/identity/model"
	"github.com/wso2/identity-reconciler/internal/system/constants"
	"github.com/wso2/identity-reconciler/internal/system/database/client"
	"github.com/wso2/identity-reconciler/internal/system/database/scripts"
	errors2 "github.com/wso2/identity-reconciler/internal/system/errors"
	"github.com/wso2/identity-reconciler/internal/system/log"
)

// SQLMappingStore keeps correspondences in a relational table, one row per
// external person id.
type SQLMappingStore struct {
	dbClient  client.DBClientInterface
	table     string
	batchSize int
}

// NewSQLMappingStore creates a mapping store over dbClient writing to table.
func NewSQLMappingStore(dbClient client.DBClientInterface, table string, batchSize int) (*SQLMappingStore, error) {

	dbType := dbClient.GetDBType()
	if _, ok := scripts.CreateMappingTable[dbType]; !ok {
		return nil, errors2.NewClientError(errors2.INVALID_CONFIG.WithDescription(
			fmt.Sprintf("mapping store type %q is not supported", dbType)))
	}
	if table == "" {
		table = constants.DefaultMappingTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, errors2.NewClientError(errors2.INVALID_CONFIG.WithDescription(
			fmt.Sprintf("invalid mapping table name %q", table)))
	}
	if batchSize <= 0 {
		batchSize = constants.DefaultMappingBatchSize
	}
	return &SQLMappingStore{dbClient: dbClient, table: table, batchSize: batchSize}, nil
}

// ReplaceCorrespondences drops and recreates the mapping table and inserts rows
// batch by batch. Batches written before a failure stay in place.
func (s *SQLMappingStore) ReplaceCorrespondences(ctx context.Context,
	rows iter.Seq[model.Correspondence]) (int, error) {

	logger := log.GetLogger()
	dbType := s.dbClient.GetDBType()

	statements := []string{
		s.statement(scripts.DropMappingTable[dbType]),
		s.statement(scripts.CreateMappingTable[dbType]),
	}
	if index := scripts.CreateMappingUUIDIndex[dbType]; index != "" {
		statements = append(statements, s.statement(index))
	}
	for _, statement := range statements {
		if _, err := s.dbClient.Execute(ctx, statement); err != nil {
			return 0, toPersistenceError(fmt.Sprintf("failed to recreate mapping table %s", s.table), err)
		}
	}
	logger.Debug(fmt.Sprintf("Mapping table %s recreated", s.table))

	insertPrefix := s.statement(scripts.InsertMappingRows[dbType])
	written, err := writeInBatches(rows, s.batchSize, func(batch []model.Correspondence) error {
		query, args := buildInsert(insertPrefix, dbType, batch)
		if _, err := s.dbClient.Execute(ctx, query, args...); err != nil {
			return err
		}
		logger.Debug(fmt.Sprintf("Inserted %d rows into %s", len(batch), s.table))
		return nil
	})
	if err != nil {
		return written, toPersistenceError(
			fmt.Sprintf("failed to insert mapping rows after %d rows", written), err)
	}
	logger.Audit(log.AuditEvent{
		InitiatorID:   "reconciler",
		InitiatorType: log.InitiatorTypeSystem,
		TargetID:      s.table,
		TargetType:    log.TargetTypeMapping,
		ActionID:      log.ActionReplaceMapping,
		Data:          map[string]interface{}{"rows": written},
	})
	return written, nil
}

// GetCorrespondences returns the stored rows ordered by people id.
func (s *SQLMappingStore) GetCorrespondences(ctx context.Context) ([]model.Correspondence, error) {

	results, err := s.dbClient.ExecuteQuery(ctx, s.statement(scripts.GetMappingRows[s.dbClient.GetDBType()]))
	if err != nil {
		return nil, toPersistenceError(fmt.Sprintf("failed to read mapping table %s", s.table), err)
	}

	correspondences := make([]model.Correspondence, 0, len(results))
	for _, row := range results {
		correspondences = append(correspondences, model.Correspondence{
			PeopleID: columnString(row["people_id"]),
			UUID:     columnString(row["uuid"]),
		})
	}
	return correspondences, nil
}

func (s *SQLMappingStore) statement(template string) string {

	quoted := s.table
	switch s.dbClient.GetDBType() {
	case constants.PostgresDBType, constants.SQLiteDBType:
		quoted = pq.QuoteIdentifier(s.table)
	case constants.MySQLDBType:
		quoted = "`" + s.table + "`"
	}
	return fmt.Sprintf(template, quoted, s.table)
}

// buildInsert expands prefix into a multi-row insert with the placeholder style of
// dbType.
func buildInsert(prefix, dbType string, batch []model.Correspondence) (string, []interface{}) {

	var query strings.Builder
	query.WriteString(prefix)
	args := make([]interface{}, 0, len(batch)*2)
	for i, row := range batch {
		if i > 0 {
			query.WriteString(", ")
		}
		if dbType == constants.PostgresDBType {
			fmt.Fprintf(&query, "($%d, $%d)", 2*i+1, 2*i+2)
		} else {
			query.WriteString("(?, ?)")
		}
		args = append(args, row.PeopleID, row.UUID)
	}
	return query.String(), args
}

func columnString(value interface{}) string {

	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// toPersistenceError keeps the storage engine's error code and message as they
// were reported.
func toPersistenceError(description string, err error) *errors2.PersistenceError {

	msg := errors2.PERSIST_MAPPING.WithDescription(description)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return errors2.NewPersistenceError(msg, string(pqErr.Code), pqErr.Message, err)
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return errors2.NewPersistenceError(msg, strconv.Itoa(int(mysqlErr.Number)), mysqlErr.Message, err)
	}
	if code, message, ok := mongoErrorCode(err); ok {
		return errors2.NewPersistenceError(msg, code, message, err)
	}
	return errors2.NewPersistenceError(msg, "", errors.Cause(err).Error(), err)
}
