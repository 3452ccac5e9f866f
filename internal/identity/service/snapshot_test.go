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
	"bytes"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/identity-reconciler/internal/identity/model"
	errors2 "github.com/wso2/identity-reconciler/internal/system/errors"
)

func fixedClock() time.Time {
	return time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC)
}

const goldenSnapshot = `{
    "blacklist": [],
    "organizations": {},
    "source": "git",
    "time": "2024-01-02 03:04:05.000006",
    "uidentities": {
        "u1": {
            "enrollments": [],
            "identities": [
                {
                    "email": null,
                    "external_id": "3",
                    "id": "u1",
                    "name": "Bob <b>",
                    "source": "git",
                    "username": "bob",
                    "uuid": "u1"
                },
                {
                    "email": "bob@x.com",
                    "external_id": "1",
                    "id": "u1",
                    "name": null,
                    "source": "git",
                    "username": null,
                    "uuid": "u1"
                }
            ],
            "profile": null,
            "uuid": "u1"
        },
        "u2": {
            "enrollments": [],
            "identities": [],
            "profile": null,
            "uuid": "u2"
        }
    }
}
`

func goldenUniqueIdentities() map[string]model.UniqueIdentity {
	return map[string]model.UniqueIdentity{
		"u2": {UUID: "u2"},
		"u1": {
			UUID: "u1",
			Identities: []model.RawIdentity{
				{ID: "u1", UUID: "u1", ExternalID: "1", Source: "git", Email: model.StrPtr("bob@x.com")},
				{ID: "u1", UUID: "u1", ExternalID: "3", Source: "git", Name: model.StrPtr("Bob <b>"),
					Username: model.StrPtr("bob")},
			},
		},
	}
}

func TestSerialize_Golden(t *testing.T) {
	var buf bytes.Buffer
	err := Serialize(&buf, goldenUniqueIdentities(), SnapshotOptions{Source: "git", Clock: fixedClock})
	require.NoError(t, err)

	if diff := cmp.Diff(goldenSnapshot, buf.String()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSerialize_ByteIdenticalAcrossRuns(t *testing.T) {
	var first, second bytes.Buffer
	opts := SnapshotOptions{Source: "git", Clock: fixedClock}
	require.NoError(t, Serialize(&first, goldenUniqueIdentities(), opts))
	require.NoError(t, Serialize(&second, goldenUniqueIdentities(), opts))

	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestBuildRegistry_OrdersIdentities(t *testing.T) {
	uidentities := map[string]model.UniqueIdentity{
		"u": {UUID: "u", Identities: []model.RawIdentity{
			{ExternalID: "5", Source: "git", Email: model.StrPtr("bob@x.com")},
			{ExternalID: "4", Source: "git", Email: model.StrPtr("Bob@x.com")},
			{ExternalID: "3", Source: "irc"},
			{ExternalID: "2", Source: "git"},
			{ExternalID: "1", Source: "git"},
		}},
	}

	registry := BuildRegistry(uidentities, SnapshotOptions{Clock: fixedClock})

	var order []string
	for _, identity := range registry.UniqueIdentities["u"].Identities {
		order = append(order, identity.ExternalID)
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, order)
	// The input is left untouched.
	assert.Equal(t, "5", uidentities["u"].Identities[0].ExternalID)
}

func TestBuildRegistry_PassThroughSections(t *testing.T) {
	opts := SnapshotOptions{
		Source:        "git",
		Clock:         fixedClock,
		Organizations: map[string][]model.Domain{"Example": {{Domain: "example.com", IsTop: true}}},
		Blacklist:     []model.BlacklistEntry{{Excluded: "root"}},
	}
	uidentities := map[string]model.UniqueIdentity{
		"u": {UUID: "u", Enrollments: []model.Enrollment{
			{Organization: "Zeta", Start: "2010-01-01T00:00:00", End: "2100-01-01T00:00:00", UUID: "u"},
			{Organization: "Alpha", Start: "2000-01-01T00:00:00", End: "2010-01-01T00:00:00", UUID: "u"},
		}},
	}

	registry := BuildRegistry(uidentities, opts)

	assert.Equal(t, opts.Organizations, registry.Organizations)
	assert.Equal(t, opts.Blacklist, registry.Blacklist)
	assert.Equal(t, "2024-01-02 03:04:05.000006", registry.Time)
	assert.Equal(t, "Zeta", registry.UniqueIdentities["u"].Enrollments[0].Organization)
}

func TestParse_RoundTrip(t *testing.T) {
	raws := []model.RawIdentity{
		rawIdentity("1", "git", model.StrPtr("a@x.com"), model.StrPtr("A"), nil),
		rawIdentity("2", "git", model.StrPtr("A@x.com"), model.StrPtr("a"), nil),
		rawIdentity("3", "git", nil, nil, model.StrPtr("carol")),
		rawIdentity("4", "git", model.StrPtr("dave@x.com"), model.StrPtr("Dave"), model.StrPtr("dave")),
	}
	uidentities, err := Aggregate(raws)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Serialize(&buf, uidentities, SnapshotOptions{Source: "git", Clock: fixedClock}))

	registry, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, "git", registry.Source)
	assert.Equal(t, externalIDSets(uidentities), externalIDSets(registry.UniqueIdentities))
}

func externalIDSets(uidentities map[string]model.UniqueIdentity) map[string][]string {
	sets := make(map[string][]string, len(uidentities))
	for uuid, uidentity := range uidentities {
		ids := []string{}
		for _, identity := range uidentity.Identities {
			ids = append(ids, identity.ExternalID)
		}
		sort.Strings(ids)
		sets[uuid] = ids
	}
	return sets
}

func TestParse_AcceptsMinimalSnapshot(t *testing.T) {
	registry, err := Parse(strings.NewReader(`{"uidentities": {"u1": {"identities": [{"id": "i1", "source": "git"}]}}}`))
	require.NoError(t, err)

	assert.Equal(t, "u1", registry.UniqueIdentities["u1"].UUID)
	assert.NotNil(t, registry.Organizations)
	assert.NotNil(t, registry.Blacklist)
}

func TestParse_RejectsInvalidSnapshots(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed json", `{"uidentities": `},
		{"wrong type", `{"uidentities": []}`},
		{"key mismatch", `{"uidentities": {"u1": {"uuid": "u2"}}}`},
		{"identity without id", `{"uidentities": {"u1": {"uuid": "u1", "identities": [{"source": "git"}]}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))

			var clientErr *errors2.ClientError
			require.ErrorAs(t, err, &clientErr)
			assert.Equal(t, errors2.INVALID_SNAPSHOT.Code, clientErr.Code)
		})
	}
}
