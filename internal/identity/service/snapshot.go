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

package service

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/wso2/identity-reconciler/internal/identity/model"
	"github.com/wso2/identity-reconciler/internal/system/constants"
	errors2 "github.com/wso2/identity-reconciler/internal/system/errors"
)

// SnapshotOptions carries everything a snapshot needs besides the identities.
type SnapshotOptions struct {
	Source        string
	Clock         func() time.Time
	Organizations map[string][]model.Domain
	Blacklist     []model.BlacklistEntry
}

// BuildRegistry assembles the snapshot of a set of unique identities. Identities
// inside each unique identity are sorted by email (absent first), then source and
// external id. Enrollments keep the order they were supplied in.
func BuildRegistry(uidentities map[string]model.UniqueIdentity, opts SnapshotOptions) *model.Registry {

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	registry := &model.Registry{
		Blacklist:        opts.Blacklist,
		Organizations:    opts.Organizations,
		Source:           opts.Source,
		Time:             clock().Format(constants.SnapshotTimeLayout),
		UniqueIdentities: make(map[string]model.UniqueIdentity, len(uidentities)),
	}
	if registry.Blacklist == nil {
		registry.Blacklist = []model.BlacklistEntry{}
	}
	if registry.Organizations == nil {
		registry.Organizations = map[string][]model.Domain{}
	}

	for uuid, uidentity := range uidentities {
		identities := slices.Clone(uidentity.Identities)
		if identities == nil {
			identities = []model.RawIdentity{}
		}
		slices.SortStableFunc(identities, compareIdentities)
		uidentity.Identities = identities

		if uidentity.Enrollments == nil {
			uidentity.Enrollments = []model.Enrollment{}
		}
		registry.UniqueIdentities[uuid] = uidentity
	}
	return registry
}

// Serialize writes the snapshot of uidentities to w.
func Serialize(w io.Writer, uidentities map[string]model.UniqueIdentity, opts SnapshotOptions) error {
	return WriteRegistry(w, BuildRegistry(uidentities, opts))
}

// WriteRegistry encodes a snapshot with sorted keys and four space indentation so
// two snapshots of the same data are byte for byte identical.
func WriteRegistry(w io.Writer, registry *model.Registry) error {

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", constants.SnapshotIndent)
	if err := encoder.Encode(registry); err != nil {
		return errors2.NewServerError(errors2.WRITE_SNAPSHOT, err)
	}
	return nil
}

// Parse reads a snapshot. Unique identities keyed under a different uuid than the
// one they carry, and identities without an id, are rejected.
func Parse(r io.Reader) (*model.Registry, error) {

	var registry model.Registry
	if err := json.NewDecoder(r).Decode(&registry); err != nil {
		return nil, errors2.NewClientError(errors2.INVALID_SNAPSHOT.WithDescription(err.Error()))
	}

	if registry.UniqueIdentities == nil {
		registry.UniqueIdentities = map[string]model.UniqueIdentity{}
	}
	if registry.Organizations == nil {
		registry.Organizations = map[string][]model.Domain{}
	}
	if registry.Blacklist == nil {
		registry.Blacklist = []model.BlacklistEntry{}
	}

	for key, uidentity := range registry.UniqueIdentities {
		if uidentity.UUID == "" {
			uidentity.UUID = key
			registry.UniqueIdentities[key] = uidentity
		}
		if uidentity.UUID != key {
			return nil, errors2.NewClientError(errors2.INVALID_SNAPSHOT.WithDescription(
				fmt.Sprintf("Unique identity %s is stored under key %s.", uidentity.UUID, key)))
		}
		for _, identity := range uidentity.Identities {
			if identity.ID == "" {
				return nil, errors2.NewClientError(errors2.INVALID_SNAPSHOT.WithDescription(
					fmt.Sprintf("An identity of unique identity %s has no id.", key)))
			}
		}
	}
	return &registry, nil
}

func compareIdentities(a, b model.RawIdentity) int {

	if c := compareOptional(a.Email, b.Email); c != 0 {
		return c
	}
	if c := strings.Compare(a.Source, b.Source); c != 0 {
		return c
	}
	return strings.Compare(a.ExternalID, b.ExternalID)
}

func compareOptional(a, b *string) int {

	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return strings.Compare(*a, *b)
	}
}
