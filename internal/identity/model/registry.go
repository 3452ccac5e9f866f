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

// Domain is an internet domain owned by an organization.
type Domain struct {
	Domain string `json:"domain" bson:"domain"`
	IsTop  bool   `json:"is_top" bson:"is_top"`
}

// BlacklistEntry is a term excluded from matching.
type BlacklistEntry struct {
	Excluded string `json:"excluded" bson:"excluded"`
}

// Registry is the serialized identities snapshot of one source.
type Registry struct {
	Blacklist        []BlacklistEntry          `json:"blacklist"`
	Organizations    map[string][]Domain       `json:"organizations"`
	Source           string                    `json:"source"`
	Time             string                    `json:"time"`
	UniqueIdentities map[string]UniqueIdentity `json:"uidentities"`
}
