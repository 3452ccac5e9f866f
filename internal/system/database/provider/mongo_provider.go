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

	"github.com/pkg/errors"
	"github.com/wso2/identity-reconciler/internal/system/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// OpenMongoDatabase connects to the MongoDB deployment of a mapping store and
// returns the client together with the configured database.
func OpenMongoDatabase(ctx context.Context, storeConfig config.MappingStoreConfig) (*mongo.Client, *mongo.Database, error) {

	if storeConfig.URI == "" || storeConfig.Database == "" {
		return nil, nil, errors.New("mongo mapping store requires uri and database")
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(storeConfig.URI))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to mongodb")
	}
	if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		_ = mongoClient.Disconnect(ctx)
		return nil, nil, errors.Wrap(err, "failed to ping mongodb")
	}
	return mongoClient, mongoClient.Database(storeConfig.Database), nil
}
