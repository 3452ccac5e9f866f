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
	"fmt"
	"slices"
	"time"

	"github.com/wso2/identity-reconciler/internal/identity/service"
	"github.com/wso2/identity-reconciler/internal/identity/store"
	"github.com/wso2/identity-reconciler/internal/system/config"
	"github.com/wso2/identity-reconciler/internal/system/constants"
	dbprovider "github.com/wso2/identity-reconciler/internal/system/database/provider"
	errors2 "github.com/wso2/identity-reconciler/internal/system/errors"
	"github.com/wso2/identity-reconciler/internal/system/log"
)

// IdentityProviderInterface defines the interface for the identity provider.
type IdentityProviderInterface interface {
	GetExportService(ctx context.Context) (service.ExportServiceInterface, error)
	GetLinkService(ctx context.Context) (service.LinkServiceInterface, error)
	Close() error
}

// IdentityProvider wires the services to the databases named in the configuration.
// Connections opened on the way are released by Close.
type IdentityProvider struct {
	cfg     *config.Config
	clock   func() time.Time
	closers []func() error
}

// NewIdentityProvider creates a new instance of IdentityProvider.
func NewIdentityProvider(cfg *config.Config, clock func() time.Time) IdentityProviderInterface {

	return &IdentityProvider{cfg: cfg, clock: clock}
}

// GetExportService returns an export service reading the source database.
func (p *IdentityProvider) GetExportService(ctx context.Context) (service.ExportServiceInterface, error) {

	adapter, err := p.sourceAdapter(ctx)
	if err != nil {
		return nil, err
	}
	return service.NewExportService(adapter, p.clock), nil
}

// GetLinkService returns a link service reading the source database and writing to
// the mapping store.
func (p *IdentityProvider) GetLinkService(ctx context.Context) (service.LinkServiceInterface, error) {

	adapter, err := p.sourceAdapter(ctx)
	if err != nil {
		return nil, err
	}
	mappingStore, err := p.mappingStore(ctx)
	if err != nil {
		return nil, err
	}
	return service.NewLinkService(adapter, mappingStore), nil
}

// Close releases every connection in reverse opening order.
func (p *IdentityProvider) Close() error {

	var firstErr error
	for _, closer := range slices.Backward(p.closers) {
		if err := closer(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.closers = nil
	return firstErr
}

func (p *IdentityProvider) sourceAdapter(ctx context.Context) (service.SourceAdapter, error) {

	dbConfig := p.cfg.SourceDatabase
	switch dbConfig.Driver {
	case constants.MySQLDBType, constants.PostgresDBType, constants.SQLiteDBType:
	default:
		return nil, errors2.NewClientError(errors2.INVALID_CONFIG.WithDescription(
			fmt.Sprintf("unsupported source database driver %q", dbConfig.Driver)))
	}

	db, err := dbprovider.OpenSourceDB(ctx, dbConfig)
	if err != nil {
		return nil, errors2.NewServerError(errors2.SOURCE_UNAVAILABLE.WithDescription(
			fmt.Sprintf("database %s on %s", dbConfig.DbName, dbConfig.Host)), err)
	}
	p.closers = append(p.closers, func() error { return dbprovider.CloseSourceDB(db) })
	log.GetLogger().Debug("Source database opened", log.String("driver", dbConfig.Driver),
		log.String("database", dbConfig.DbName))

	return store.NewGormSourceAdapter(db, dbConfig.Table), nil
}

func (p *IdentityProvider) mappingStore(ctx context.Context) (service.MappingStore, error) {

	storeConfig := p.cfg.MappingStore
	switch storeConfig.Type {
	case constants.MongoDBType:
		mongoClient, database, err := dbprovider.OpenMongoDatabase(ctx, storeConfig)
		if err != nil {
			return nil, errors2.NewServerError(errors2.MAPPING_STORE_INIT.WithDescription(
				fmt.Sprintf("mongo database %s", storeConfig.Database)), err)
		}
		p.closers = append(p.closers, func() error { return mongoClient.Disconnect(context.Background()) })
		return store.NewMongoMappingStore(database, storeConfig.Table, storeConfig.BatchSize), nil
	case constants.PostgresDBType, constants.MySQLDBType, constants.SQLiteDBType:
		dbClient, err := dbprovider.NewDBProvider(storeConfig).GetDBClient(ctx)
		if err != nil {
			return nil, errors2.NewServerError(errors2.MAPPING_STORE_INIT.WithDescription(
				fmt.Sprintf("%s database %s on %s", storeConfig.Type, storeConfig.DbName, storeConfig.Host)), err)
		}
		p.closers = append(p.closers, dbClient.Close)
		mappingStore, err := store.NewSQLMappingStore(dbClient, storeConfig.Table, storeConfig.BatchSize)
		if err != nil {
			return nil, err
		}
		return mappingStore, nil
	default:
		return nil, errors2.NewClientError(errors2.INVALID_CONFIG.WithDescription(
			fmt.Sprintf("unsupported mapping store type %q", storeConfig.Type)))
	}
}
