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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/identity-reconciler/internal/identity/model"
	errors2 "github.com/wso2/identity-reconciler/internal/system/errors"
)

func rawIdentity(externalID, source string, email, name, username *string) model.RawIdentity {
	return model.RawIdentity{
		ExternalID: externalID,
		Source:     source,
		Email:      email,
		Name:       name,
		Username:   username,
	}
}

func TestAggregate_GroupsEquivalentIdentities(t *testing.T) {
	raws := []model.RawIdentity{
		rawIdentity("1", "git", model.StrPtr("a@x.com"), model.StrPtr("A"), model.StrPtr("")),
		rawIdentity("2", "git", model.StrPtr("A@X.com "), model.StrPtr("a"), nil),
	}

	uidentities, err := Aggregate(raws)
	require.NoError(t, err)
	require.Len(t, uidentities, 1)

	for uuid, uidentity := range uidentities {
		assert.Equal(t, uuid, uidentity.UUID)
		assert.Nil(t, uidentity.Profile)
		assert.NotNil(t, uidentity.Enrollments)
		assert.Empty(t, uidentity.Enrollments)
		require.Len(t, uidentity.Identities, 2)
		for _, identity := range uidentity.Identities {
			assert.Equal(t, uuid, identity.ID)
			assert.Equal(t, uuid, identity.UUID)
		}
	}
}

func TestAggregate_EveryIdentityBelongsToItsFingerprint(t *testing.T) {
	raws := []model.RawIdentity{
		rawIdentity("1", "git", model.StrPtr("a@x.com"), nil, nil),
		rawIdentity("2", "git", model.StrPtr("b@x.com"), nil, nil),
		rawIdentity("3", "git", nil, nil, model.StrPtr("carol")),
		rawIdentity("4", "git", model.StrPtr("B@x.com"), nil, nil),
		rawIdentity("5", "irc", nil, nil, model.StrPtr("carol")),
	}

	uidentities, err := Aggregate(raws)
	require.NoError(t, err)
	assert.Len(t, uidentities, 4)

	seen := map[string]int{}
	for uuid, uidentity := range uidentities {
		for _, identity := range uidentity.Identities {
			assert.Equal(t, uuid, FingerprintIdentity(identity))
			seen[identity.Key()]++
		}
	}
	assert.Len(t, seen, len(raws))
	for key, count := range seen {
		assert.Equal(t, 1, count, key)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	raws := []model.RawIdentity{
		rawIdentity("1", "git", model.StrPtr("a@x.com"), nil, nil),
		rawIdentity("2", "git", model.StrPtr("a@x.com"), nil, nil),
		rawIdentity("3", "git", nil, model.StrPtr("Bob"), nil),
	}

	once, err := Aggregate(raws)
	require.NoError(t, err)
	twice, err := Aggregate(append(append([]model.RawIdentity{}, raws...), raws...))
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestAggregator_ReaddReplacesObservation(t *testing.T) {
	aggregator := NewAggregator()
	require.NoError(t, aggregator.Add(rawIdentity("1", "git", model.StrPtr("a@x.com"), model.StrPtr("Ann"), nil)))
	require.NoError(t, aggregator.Add(rawIdentity("1", "git", model.StrPtr("A@x.com"), model.StrPtr("ann"), nil)))

	uidentities := aggregator.UniqueIdentities()
	require.Len(t, uidentities, 1)
	for _, uidentity := range uidentities {
		require.Len(t, uidentity.Identities, 1)
		assert.Equal(t, "A@x.com", model.StrVal(uidentity.Identities[0].Email))
		assert.Equal(t, "ann", model.StrVal(uidentity.Identities[0].Name))
	}
}

func TestAggregator_ReaddWithDifferentFingerprintFails(t *testing.T) {
	aggregator := NewAggregator()
	require.NoError(t, aggregator.Add(rawIdentity("1", "git", model.StrPtr("a@x.com"), nil, nil)))

	err := aggregator.Add(rawIdentity("1", "git", model.StrPtr("b@x.com"), nil, nil))

	var serverErr *errors2.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, errors2.IDENTITY_MISMATCH.Code, serverErr.Code)
	assert.Len(t, aggregator.UniqueIdentities(), 1)
}

func TestAggregator_MissingExternalID(t *testing.T) {
	err := NewAggregator().Add(rawIdentity("", "git", model.StrPtr("a@x.com"), nil, nil))

	var clientErr *errors2.ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, errors2.NORMALIZATION.Code, clientErr.Code)
}

func TestAggregator_UniqueIdentitiesReturnsCopies(t *testing.T) {
	aggregator := NewAggregator()
	require.NoError(t, aggregator.Add(rawIdentity("1", "git", model.StrPtr("a@x.com"), nil, nil)))

	for uuid, uidentity := range aggregator.UniqueIdentities() {
		uidentity.Identities[0].Source = "changed"
		assert.Equal(t, "git", aggregator.UniqueIdentities()[uuid].Identities[0].Source)
	}
}
