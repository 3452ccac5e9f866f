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
	"iter"
	"slices"
	"sort"

	"github.com/wso2/identity-reconciler/internal/identity/model"
)

// Match links canonical refs to external refs sharing a canonical identifier: a
// correspondence is emitted for every pair where the canonical id equals the
// external uuid. All pairs are emitted, in the order two nested loops over
// canonical and external would produce them, so duplicated or ambiguous data
// shows up in the output instead of being collapsed.
//
// The sequence is lazy; ranging over it again recomputes it.
func Match(canonical, external []model.IdentityRef) iter.Seq[model.Correspondence] {

	return func(yield func(model.Correspondence) bool) {
		peopleByUUID := make(map[string][]string, len(external))
		for _, ref := range external {
			peopleByUUID[ref.UUID] = append(peopleByUUID[ref.UUID], ref.ID)
		}

		for _, ref := range canonical {
			for _, peopleID := range peopleByUUID[ref.ID] {
				if !yield(model.Correspondence{PeopleID: peopleID, UUID: ref.UUID}) {
					return
				}
			}
		}
	}
}

// FindAmbiguities returns the external records linked to more than one unique
// identity, sorted by people id. Each record lists its distinct uuids in the
// order they were first seen.
func FindAmbiguities(correspondences []model.Correspondence) []model.Ambiguity {

	uuidsByPeople := make(map[string][]string)
	for _, c := range correspondences {
		if slices.Contains(uuidsByPeople[c.PeopleID], c.UUID) {
			continue
		}
		uuidsByPeople[c.PeopleID] = append(uuidsByPeople[c.PeopleID], c.UUID)
	}

	var ambiguities []model.Ambiguity
	for peopleID, uuids := range uuidsByPeople {
		if len(uuids) > 1 {
			ambiguities = append(ambiguities, model.Ambiguity{PeopleID: peopleID, UUIDs: uuids})
		}
	}
	sort.Slice(ambiguities, func(i, j int) bool {
		return ambiguities[i].PeopleID < ambiguities[j].PeopleID
	})
	return ambiguities
}

// CanonicalRefs lists the identities of source found in a snapshot, each as its
// identity id and the uuid of the unique identity owning it. Identities grouped
// under one unique identity share their id, so each (id, uuid) pair is listed once.
func CanonicalRefs(registry *model.Registry, source string) []model.IdentityRef {

	uuids := make([]string, 0, len(registry.UniqueIdentities))
	for uuid := range registry.UniqueIdentities {
		uuids = append(uuids, uuid)
	}
	sort.Strings(uuids)

	var refs []model.IdentityRef
	for _, uuid := range uuids {
		seen := make(map[model.IdentityRef]struct{})
		for _, identity := range registry.UniqueIdentities[uuid].Identities {
			if identity.Source != source {
				continue
			}
			ref := model.IdentityRef{ID: identity.ID, UUID: identity.UUID}
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			refs = append(refs, ref)
		}
	}
	return refs
}

// ExternalRefs lists raw identities as their external id and fingerprint.
func ExternalRefs(identities []model.RawIdentity) []model.IdentityRef {

	refs := make([]model.IdentityRef, 0, len(identities))
	for _, identity := range identities {
		refs = append(refs, model.IdentityRef{ID: identity.ExternalID, UUID: FingerprintIdentity(identity)})
	}
	return refs
}
