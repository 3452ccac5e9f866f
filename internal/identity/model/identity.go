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

// RawIdentity is one observation of a person in one source. ID and UUID are set
// to the canonical identifier once the identity is attached to a UniqueIdentity.
// Fields are declared in key order so snapshots come out sorted.
type RawIdentity struct {
	Email      *string `json:"email" bson:"email"`
	ExternalID string  `json:"external_id" bson:"external_id"`
	ID         string  `json:"id" bson:"id"`
	Name       *string `json:"name" bson:"name"`
	Source     string  `json:"source" bson:"source"`
	Username   *string `json:"username" bson:"username"`
	UUID       string  `json:"uuid" bson:"uuid"`
}

// Key identifies an observation inside a run: the same external id may exist in
// several sources.
func (r RawIdentity) Key() string {
	return r.Source + "\x1f" + r.ExternalID
}

// UniqueIdentity groups every raw identity sharing one canonical identifier.
type UniqueIdentity struct {
	Enrollments []Enrollment  `json:"enrollments" bson:"enrollments"`
	Identities  []RawIdentity `json:"identities" bson:"identities"`
	Profile     *Profile      `json:"profile" bson:"profile"`
	UUID        string        `json:"uuid" bson:"uuid"`
}

type Country struct {
	Alpha3 string `json:"alpha3" bson:"alpha3"`
	Code   string `json:"code" bson:"code"`
	Name   string `json:"name" bson:"name"`
}

// Profile is filled by the profile collaborators; the engine only carries it.
type Profile struct {
	Country   *Country `json:"country" bson:"country"`
	Email     *string  `json:"email" bson:"email"`
	Gender    *string  `json:"gender" bson:"gender"`
	GenderAcc *int     `json:"gender_acc" bson:"gender_acc"`
	IsBot     bool     `json:"is_bot" bson:"is_bot"`
	Name      *string  `json:"name" bson:"name"`
	UUID      string   `json:"uuid" bson:"uuid"`
}

// Enrollment is a time bounded affiliation of a unique identity to an organization.
type Enrollment struct {
	End          string `json:"end" bson:"end"`
	Organization string `json:"organization" bson:"organization"`
	Start        string `json:"start" bson:"start"`
	UUID         string `json:"uuid" bson:"uuid"`
}

// StrPtr returns nil for the empty string and a pointer to s otherwise.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StrVal dereferences p, returning "" for nil.
func StrVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
