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
	"iter"
	"regexp"

	"github.com/wso2/identity-reconciler/internal/identity/model"
	"github.com/wso2/identity-reconciler/internal/system/constants"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// writeInBatches drains rows into flush, size rows at a time. The slice handed to
// flush is reused afterwards and must not be retained. It returns the number of
// rows in batches that were flushed successfully; the first failing batch stops
// the write.
func writeInBatches(rows iter.Seq[model.Correspondence], size int,
	flush func(batch []model.Correspondence) error) (int, error) {

	if size <= 0 {
		size = constants.DefaultMappingBatchSize
	}

	written := 0
	batch := make([]model.Correspondence, 0, size)
	for row := range rows {
		batch = append(batch, row)
		if len(batch) < size {
			continue
		}
		if err := flush(batch); err != nil {
			return written, err
		}
		written += len(batch)
		batch = batch[:0]
	}

	if len(batch) > 0 {
		if err := flush(batch); err != nil {
			return written, err
		}
		written += len(batch)
	}
	return written, nil
}
