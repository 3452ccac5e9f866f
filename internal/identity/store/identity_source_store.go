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
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/wso2/identity-reconciler/internal/identity/model"
	"github.com/wso2/identity-reconciler/internal/system/constants"
	errors2 "github.com/wso2/identity-reconciler/internal/system/errors"
	"github.com/wso2/identity-reconciler/internal/system/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sourceShape describes how a known table stores people. Pseudonym shapes only
// record a nickname per row, so rows are grouped by that column.
type sourceShape struct {
	table           string
	pseudonymColumn string
	idColumns       []string
	nameColumns     []string
	emailColumns    []string
	usernameColumns []string
}

var genericShape = sourceShape{
	idColumns:       []string{"id", "user_id", "people_id"},
	nameColumns:     []string{"name", "user_name"},
	emailColumns:    []string{"email", "email_address"},
	usernameColumns: []string{"username", "user", "nick"},
}

// knownShapes are tried in order; the first table present wins.
var knownShapes = []sourceShape{
	{
		table:           constants.IRCLogTable,
		pseudonymColumn: constants.IRCLogNickColumn,
		idColumns:       []string{"id"},
	},
	{
		table:           constants.WikiRevisionsTable,
		pseudonymColumn: constants.WikiRevisionsUserColumn,
		idColumns:       []string{"id", "rev_id"},
	},
	{
		table:           constants.PeopleTable,
		idColumns:       genericShape.idColumns,
		nameColumns:     genericShape.nameColumns,
		emailColumns:    genericShape.emailColumns,
		usernameColumns: genericShape.usernameColumns,
	},
	{
		table:           constants.MailingListPeopleTable,
		idColumns:       []string{"email_address"},
		nameColumns:     []string{"name"},
		emailColumns:    []string{"email_address"},
		usernameColumns: []string{"username"},
	},
}

// resolvedShape is a shape bound to the columns a database actually has.
type resolvedShape struct {
	table     string
	pseudonym string
	id        string
	name      string
	email     string
	username  string
}

// GormSourceAdapter reads raw identities from a source database through gorm.
type GormSourceAdapter struct {
	db    *gorm.DB
	table string
}

// NewGormSourceAdapter creates an adapter over db. A non empty table forces the
// identities table instead of detecting it.
func NewGormSourceAdapter(db *gorm.DB, table string) *GormSourceAdapter {

	return &GormSourceAdapter{db: db, table: table}
}

// FetchRawIdentities returns the people stored in the source database labelled
// with source, ordered by their external id.
func (a *GormSourceAdapter) FetchRawIdentities(ctx context.Context, source string) ([]model.RawIdentity, error) {

	logger := log.GetLogger()
	shape, err := a.resolveShape(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug(fmt.Sprintf("Reading identities of source %s from table %s", source, shape.table),
		log.String("pseudonymColumn", shape.pseudonym))

	rows, err := a.query(ctx, shape).Rows()
	if err != nil {
		return nil, errors2.NewServerError(errors2.SOURCE_UNAVAILABLE.WithDescription(
			fmt.Sprintf("querying table %s", shape.table)), errors.Wrap(err, "source query failed"))
	}
	defer rows.Close()

	var identities []model.RawIdentity
	skipped := 0
	for rows.Next() {
		var id, name, email, username sql.NullString
		if err := rows.Scan(&id, &name, &email, &username); err != nil {
			return nil, errors2.NewServerError(errors2.SOURCE_SCHEMA.WithDescription(
				fmt.Sprintf("reading table %s", shape.table)), errors.Wrap(err, "source row scan failed"))
		}
		if !id.Valid || id.String == "" {
			skipped++
			continue
		}
		identities = append(identities, model.RawIdentity{
			Source:     source,
			ExternalID: id.String,
			Name:       nullToPtr(name),
			Email:      nullToPtr(email),
			Username:   nullToPtr(username),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors2.NewServerError(errors2.SOURCE_UNAVAILABLE.WithDescription(
			fmt.Sprintf("reading table %s", shape.table)), errors.Wrap(err, "source rows failed"))
	}
	if skipped > 0 {
		logger.Warn(fmt.Sprintf("Skipped %d rows without an id in table %s", skipped, shape.table))
	}
	return identities, nil
}

func (a *GormSourceAdapter) resolveShape(ctx context.Context) (*resolvedShape, error) {

	migrator := a.db.WithContext(ctx).Migrator()

	candidates := knownShapes
	if a.table != "" {
		if !tableNamePattern.MatchString(a.table) {
			return nil, errors2.NewClientError(errors2.INVALID_CONFIG.WithDescription(
				fmt.Sprintf("invalid source table name %q", a.table)))
		}
		candidates = []sourceShape{shapeForTable(a.table)}
	}

	for _, candidate := range candidates {
		if !migrator.HasTable(candidate.table) {
			continue
		}
		columnTypes, err := migrator.ColumnTypes(candidate.table)
		if err != nil {
			return nil, errors2.NewServerError(errors2.SOURCE_UNAVAILABLE.WithDescription(
				fmt.Sprintf("inspecting table %s", candidate.table)), errors.Wrap(err, "column lookup failed"))
		}
		columns := make(map[string]string, len(columnTypes))
		for _, columnType := range columnTypes {
			columns[strings.ToLower(columnType.Name())] = columnType.Name()
		}
		return bindShape(candidate, columns)
	}

	if a.table != "" {
		return nil, errors2.NewServerError(errors2.SOURCE_SCHEMA.WithDescription(
			fmt.Sprintf("table %s does not exist", a.table)), errors.New("source table not found"))
	}
	return nil, errors2.NewServerError(errors2.SOURCE_SCHEMA.WithDescription(
		"no known identities table found"), errors.New("source table not found"))
}

// shapeForTable returns the known shape of table, or the generic column shape.
func shapeForTable(table string) sourceShape {

	for _, shape := range knownShapes {
		if shape.table == table {
			return shape
		}
	}
	shape := genericShape
	shape.table = table
	return shape
}

// bindShape picks the columns of shape present in columns. A pseudonym table
// without its pseudonym column is read like any other people table.
func bindShape(shape sourceShape, columns map[string]string) (*resolvedShape, error) {

	resolved := &resolvedShape{table: shape.table}
	if shape.pseudonymColumn != "" {
		if column, ok := columns[shape.pseudonymColumn]; ok {
			resolved.pseudonym = column
			resolved.username = column
			resolved.id = firstColumn(columns, shape.idColumns)
			if resolved.id == "" {
				resolved.id = column
			}
			return resolved, nil
		}
		generic := genericShape
		generic.table = shape.table
		shape = generic
	}

	resolved.id = firstColumn(columns, shape.idColumns)
	if resolved.id == "" {
		return nil, errors2.NewServerError(errors2.SOURCE_SCHEMA.WithDescription(
			fmt.Sprintf("table %s has none of the id columns %v", shape.table, shape.idColumns)),
			errors.New("source id column not found"))
	}
	resolved.name = firstColumn(columns, shape.nameColumns)
	resolved.email = firstColumn(columns, shape.emailColumns)
	resolved.username = firstColumn(columns, shape.usernameColumns)
	return resolved, nil
}

func firstColumn(columns map[string]string, candidates []string) string {

	for _, candidate := range candidates {
		if column, ok := columns[candidate]; ok {
			return column
		}
	}
	return ""
}

// query selects id, name, email and username, in that order, for shape.
func (a *GormSourceAdapter) query(ctx context.Context, shape *resolvedShape) *gorm.DB {

	tx := a.db.WithContext(ctx).Table(shape.table)
	if shape.pseudonym != "" {
		pseudonym := clause.Column{Name: shape.pseudonym}
		return tx.
			Select("MIN(?) AS id, NULL AS name, NULL AS email, ? AS username",
				clause.Column{Name: shape.id}, pseudonym).
			Where("? IS NOT NULL", pseudonym).
			Group(shape.pseudonym).
			Order(clause.OrderByColumn{Column: pseudonym})
	}

	var selects []string
	var args []interface{}
	for _, field := range []struct{ alias, column string }{
		{"id", shape.id}, {"name", shape.name}, {"email", shape.email}, {"username", shape.username},
	} {
		if field.column == "" {
			selects = append(selects, "NULL AS "+field.alias)
			continue
		}
		selects = append(selects, "? AS "+field.alias)
		args = append(args, clause.Column{Name: field.column})
	}
	return tx.
		Select(strings.Join(selects, ", "), args...).
		Order(clause.OrderByColumn{Column: clause.Column{Name: shape.id}})
}

func nullToPtr(value sql.NullString) *string {

	if !value.Valid {
		return nil
	}
	return &value.String
}
