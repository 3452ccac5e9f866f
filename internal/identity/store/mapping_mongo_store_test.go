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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/identity-reconciler/internal/identity/model"
	errors2 "github.com/wso2/identity-reconciler/internal/system/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeCollection struct {
	calls     []string
	indexes   []mongo.IndexModel
	documents [][]interface{}
	insertErr func(batch int) error
}

func (f *fakeCollection) Drop(context.Context) error {
	f.calls = append(f.calls, "drop")
	return nil
}

func (f *fakeCollection) CreateIndexes(_ context.Context, models []mongo.IndexModel) error {
	f.calls = append(f.calls, "index")
	f.indexes = models
	return nil
}

func (f *fakeCollection) InsertMany(_ context.Context, documents []interface{}) error {
	f.calls = append(f.calls, "insert")
	if f.insertErr != nil {
		if err := f.insertErr(len(f.documents) + 1); err != nil {
			return err
		}
	}
	f.documents = append(f.documents, documents)
	return nil
}

func (f *fakeCollection) Find(context.Context) ([]model.Correspondence, error) {
	var rows []model.Correspondence
	for _, batch := range f.documents {
		for _, document := range batch {
			rows = append(rows, document.(model.Correspondence))
		}
	}
	return rows, nil
}

func TestMongoMappingStore_ReplacesCollection(t *testing.T) {
	collection := &fakeCollection{}
	mappingStore := newMongoMappingStore(collection, "people_uidentities", 50)

	written, err := mappingStore.ReplaceCorrespondences(context.Background(), correspondences(120))
	require.NoError(t, err)
	assert.Equal(t, 120, written)

	assert.Equal(t, []string{"drop", "index", "insert", "insert", "insert"}, collection.calls)
	require.Len(t, collection.documents, 3)
	assert.Len(t, collection.documents[0], 50)
	assert.Len(t, collection.documents[1], 50)
	assert.Len(t, collection.documents[2], 20)

	require.Len(t, collection.indexes, 2)
	assert.Equal(t, bson.D{{Key: "people_id", Value: 1}}, collection.indexes[0].Keys)
	assert.True(t, *collection.indexes[0].Options.Unique)
	assert.Equal(t, bson.D{{Key: "uuid", Value: 1}}, collection.indexes[1].Keys)

	rows, err := mappingStore.GetCorrespondences(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 120)
}

func TestMongoMappingStore_DocumentsAreNotShared(t *testing.T) {
	collection := &fakeCollection{}
	mappingStore := newMongoMappingStore(collection, "people_uidentities", 2)

	_, err := mappingStore.ReplaceCorrespondences(context.Background(), correspondences(4))
	require.NoError(t, err)

	rows, err := mappingStore.GetCorrespondences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p000", "p001", "p002", "p003"},
		[]string{rows[0].PeopleID, rows[1].PeopleID, rows[2].PeopleID, rows[3].PeopleID})
}

func TestMongoMappingStore_KeepsServerErrorCodes(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    string
		message string
	}{
		{
			"bulk write",
			mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{
				{WriteError: mongo.WriteError{Index: 3, Code: 11000, Message: "E11000 duplicate key error"}},
			}},
			"11000", "E11000 duplicate key error",
		},
		{
			"write",
			mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}}},
			"11000", "E11000 duplicate key error",
		},
		{
			"command",
			mongo.CommandError{Code: 13, Message: "not authorized"},
			"13", "not authorized",
		},
		{
			"other",
			errors.New("server selection timeout"),
			"", "server selection timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collection := &fakeCollection{insertErr: func(batch int) error {
				if batch == 2 {
					return tt.err
				}
				return nil
			}}
			mappingStore := newMongoMappingStore(collection, "people_uidentities", 50)

			written, err := mappingStore.ReplaceCorrespondences(context.Background(), correspondences(120))

			var persistErr *errors2.PersistenceError
			require.ErrorAs(t, err, &persistErr)
			assert.Equal(t, tt.code, persistErr.StorageCode)
			assert.Equal(t, tt.message, persistErr.StorageMessage)
			assert.Equal(t, 50, written)
			assert.Len(t, collection.documents, 1)
		})
	}
}
