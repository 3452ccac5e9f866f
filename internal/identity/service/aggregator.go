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
	"fmt"

	"github.com/pkg/errors"
	"github.com/wso2/identity-reconciler/internal/identity/model"
	errors2 "github.com/wso2/identity-reconciler/internal/system/errors"
)

type identityLocation struct {
	uuid     string
	position int
}

// Aggregator folds raw identities into unique identities keyed by fingerprint.
// It is not safe for concurrent use; a run owns its aggregator.
type Aggregator struct {
	uidentities map[string]*model.UniqueIdentity
	locations   map[string]identityLocation
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		uidentities: make(map[string]*model.UniqueIdentity),
		locations:   make(map[string]identityLocation),
	}
}

// Add attaches an identity to the unique identity of its fingerprint, creating the
// unique identity on first sight. Adding an identity already seen (same source and
// external id) replaces the stored observation. When the new observation no longer
// fingerprints to the unique identity holding it, an error is returned.
func (a *Aggregator) Add(identity model.RawIdentity) error {

	if identity.ExternalID == "" {
		return errors2.NewClientError(errors2.NORMALIZATION.WithDescription(
			fmt.Sprintf("Identity of source %q has no external id.", identity.Source)))
	}

	uuid := FingerprintIdentity(identity)
	identity.ID = uuid
	identity.UUID = uuid

	key := identity.Key()
	if location, found := a.locations[key]; found {
		if location.uuid != uuid {
			return errors2.NewServerError(errors2.IDENTITY_MISMATCH.WithDescription(
				fmt.Sprintf("Identity %s of source %s.", identity.ExternalID, identity.Source)),
				errors.Errorf("identity fingerprints to %s but belongs to %s", uuid, location.uuid))
		}
		a.uidentities[uuid].Identities[location.position] = identity
		return nil
	}

	uidentity, found := a.uidentities[uuid]
	if !found {
		uidentity = &model.UniqueIdentity{
			UUID:        uuid,
			Profile:     nil,
			Enrollments: []model.Enrollment{},
			Identities:  []model.RawIdentity{},
		}
		a.uidentities[uuid] = uidentity
	}

	a.locations[key] = identityLocation{uuid: uuid, position: len(uidentity.Identities)}
	uidentity.Identities = append(uidentity.Identities, identity)
	return nil
}

// UniqueIdentities returns a copy of the unique identities built so far.
func (a *Aggregator) UniqueIdentities() map[string]model.UniqueIdentity {

	result := make(map[string]model.UniqueIdentity, len(a.uidentities))
	for uuid, uidentity := range a.uidentities {
		copied := *uidentity
		copied.Identities = append([]model.RawIdentity(nil), uidentity.Identities...)
		copied.Enrollments = append([]model.Enrollment{}, uidentity.Enrollments...)
		result[uuid] = copied
	}
	return result
}

// Aggregate groups raw identities into unique identities. The whole input is
// rejected when one identity cannot be attached.
func Aggregate(identities []model.RawIdentity) (map[string]model.UniqueIdentity, error) {

	aggregator := NewAggregator()
	for _, identity := range identities {
		if err := aggregator.Add(identity); err != nil {
			return nil, err
		}
	}
	return aggregator.UniqueIdentities(), nil
}
