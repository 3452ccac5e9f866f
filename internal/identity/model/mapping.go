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

package model

// IdentityRef is one element of a matching input: a record id and the canonical
// identifier it is compared on.
type IdentityRef struct {
	ID   string
	UUID string
}

// Correspondence links an external source record to a unique identity.
type Correspondence struct {
	PeopleID string `json:"people_id" bson:"people_id"`
	UUID     string `json:"uuid" bson:"uuid"`
}

// Ambiguity reports an external record linked to more than one unique identity,
// which means the source data is inconsistent.
type Ambiguity struct {
	PeopleID string   `json:"people_id"`
	UUIDs    []string `json:"uuids"`
}
