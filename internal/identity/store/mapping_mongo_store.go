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

	"github.com/pkg/errors"
	"github.com/wso2/identity-reconciler/internal/identity/model"
	"github.com/wso2/identity-reconciler/internal/system/constants"
	"github.com/wso2/identity-reconciler/internal/system/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mappingCollection is the part of a MongoDB collection the mapping store needs.
type mappingCollection interface {
	Drop(ctx context.Context) error
	CreateIndexes(ctx context.Context, models []mongo.IndexModel) error
	InsertMany(ctx context.Context, documents []interface{}) error
	Find(ctx context.Context) ([]model.Correspondence, error)
}

type mongoCollection struct {
	collection *mongo.Collection
}

func (c *mongoCollection) Drop(ctx context.Context) error {
	return c.collection.Drop(ctx)
}

func (c *mongoCollection) CreateIndexes(ctx context.Context, models []mongo.IndexModel) error {
	_, err := c.collection.Indexes().CreateMany(ctx, models)
	return err
}

func (c *mongoCollection) InsertMany(ctx context.Context, documents []interface{}) error {
	_, err := c.collection.InsertMany(ctx, documents, options.InsertMany().SetOrdered(true))
	return err
}

func (c *mongoCollection) Find(ctx context.Context) ([]model.Correspondence, error) {

	cursor, err := c.collection.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "people_id", Value: 1}}).SetProjection(bson.D{{Key: "_id", Value: 0}}))
	if err != nil {
		return nil, err
	}
	var correspondences []model.Correspondence
	if err := cursor.All(ctx, &correspondences); err != nil {
		return nil, err
	}
	return correspondences, nil
}

// MongoMappingStore keeps correspondences as documents of one collection.
type MongoMappingStore struct {
	collection mappingCollection
	name       string
	batchSize  int
}

// NewMongoMappingStore creates a mapping store writing to the named collection.
func NewMongoMappingStore(db *mongo.Database, name string, batchSize int) *MongoMappingStore {

	if name == "" {
		name = constants.DefaultMappingTable
	}
	return newMongoMappingStore(&mongoCollection{collection: db.Collection(name)}, name, batchSize)
}

func newMongoMappingStore(collection mappingCollection, name string, batchSize int) *MongoMappingStore {

	if batchSize <= 0 {
		batchSize = constants.DefaultMappingBatchSize
	}
	return &MongoMappingStore{collection: collection, name: name, batchSize: batchSize}
}

// ReplaceCorrespondences drops the collection, recreates its indexes and inserts
// rows batch by batch. Batches written before a failure stay in place.
func (s *MongoMappingStore) ReplaceCorrespondences(ctx context.Context,
	rows iter.Seq[model.Correspondence]) (int, error) {

	logger := log.GetLogger()
	if err := s.collection.Drop(ctx); err != nil {
		return 0, toPersistenceError(fmt.Sprintf("failed to drop mapping collection %s", s.name), err)
	}

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "people_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("people_unique"),
		},
		{
			Keys:    bson.D{{Key: "uuid", Value: 1}},
			Options: options.Index().SetName("ix_" + s.name + "_uuid"),
		},
	}
	if err := s.collection.CreateIndexes(ctx, indexes); err != nil {
		return 0, toPersistenceError(fmt.Sprintf("failed to index mapping collection %s", s.name), err)
	}

	written, err := writeInBatches(rows, s.batchSize, func(batch []model.Correspondence) error {
		documents := make([]interface{}, len(batch))
		for i, row := range batch {
			documents[i] = row
		}
		if err := s.collection.InsertMany(ctx, documents); err != nil {
			return err
		}
		logger.Debug(fmt.Sprintf("Inserted %d documents into %s", len(batch), s.name))
		return nil
	})
	if err != nil {
		return written, toPersistenceError(
			fmt.Sprintf("failed to insert mapping documents after %d rows", written), err)
	}
	logger.Audit(log.AuditEvent{
		InitiatorID:   "reconciler",
		InitiatorType: log.InitiatorTypeSystem,
		TargetID:      s.name,
		TargetType:    log.TargetTypeMapping,
		ActionID:      log.ActionReplaceMapping,
		Data:          map[string]interface{}{"rows": written},
	})
	return written, nil
}

// GetCorrespondences returns the stored documents ordered by people id.
func (s *MongoMappingStore) GetCorrespondences(ctx context.Context) ([]model.Correspondence, error) {

	correspondences, err := s.collection.Find(ctx)
	if err != nil {
		return nil, toPersistenceError(fmt.Sprintf("failed to read mapping collection %s", s.name), err)
	}
	return correspondences, nil
}

// mongoErrorCode extracts the first server error code carried by err.
func mongoErrorCode(err error) (string, string, bool) {

	var bulkErr mongo.BulkWriteException
	if errors.As(err, &bulkErr) && len(bulkErr.WriteErrors) > 0 {
		return strconv.Itoa(bulkErr.WriteErrors[0].Code), bulkErr.WriteErrors[0].Message, true
	}
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) && len(writeErr.WriteErrors) > 0 {
		return strconv.Itoa(writeErr.WriteErrors[0].Code), writeErr.WriteErrors[0].Message, true
	}
	var commandErr mongo.CommandError
	if errors.As(err, &commandErr) {
		return strconv.Itoa(int(commandErr.Code)), commandErr.Message, true
	}
	return "", "", false
}
