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
	"context"
	"fmt"
	"io"
	"iter"
	"slices"
	"time"

	"github.com/wso2/identity-reconciler/internal/identity/model"
	syscontext "github.com/wso2/identity-reconciler/internal/system/context"
	"github.com/wso2/identity-reconciler/internal/system/log"
)

// SourceAdapter yields the raw identities of a named source. Schema differences
// between sources are the adapter's business; the engine only sees RawIdentity.
type SourceAdapter interface {
	FetchRawIdentities(ctx context.Context, source string) ([]model.RawIdentity, error)
}

// MappingStore replaces the stored correspondences with rows and returns how many
// rows were written.
type MappingStore interface {
	ReplaceCorrespondences(ctx context.Context, rows iter.Seq[model.Correspondence]) (int, error)
}

type ExportServiceInterface interface {
	Export(ctx context.Context, source string, w io.Writer) (int, error)
}

type LinkServiceInterface interface {
	Link(ctx context.Context, source string, snapshot io.Reader) (*LinkReport, error)
}

// ExportService turns the identities of a source into a registry snapshot.
type ExportService struct {
	adapter SourceAdapter
	clock   func() time.Time
}

// NewExportService creates an ExportService. A nil clock means time.Now.
func NewExportService(adapter SourceAdapter, clock func() time.Time) ExportServiceInterface {

	if clock == nil {
		clock = time.Now
	}
	return &ExportService{adapter: adapter, clock: clock}
}

// Export fetches, aggregates and serializes the identities of source. Nothing is
// written to w unless every step succeeded. It returns the number of unique
// identities written.
func (s *ExportService) Export(ctx context.Context, source string, w io.Writer) (int, error) {

	logger := log.GetLogger().With(log.String("traceId", syscontext.GetTraceID(ctx)))
	identities, err := s.adapter.FetchRawIdentities(ctx, source)
	if err != nil {
		logger.Debug(fmt.Sprintf("Failed to fetch identities of source: %s", source), log.Error(err))
		return 0, err
	}

	uidentities, err := Aggregate(identities)
	if err != nil {
		logger.Debug(fmt.Sprintf("Failed to aggregate identities of source: %s", source), log.Error(err))
		return 0, err
	}
	logger.Info(fmt.Sprintf("Aggregated identities of source: %s", source),
		log.Int("identities", len(identities)), log.Int("unique_identities", len(uidentities)))

	var buf bytes.Buffer
	err = Serialize(&buf, uidentities, SnapshotOptions{Source: source, Clock: s.clock})
	if err != nil {
		return 0, err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return 0, err
	}
	return len(uidentities), nil
}

// LinkReport summarizes a link run.
type LinkReport struct {
	Written       int
	ExternalTotal int
	Ambiguities   []model.Ambiguity
}

// LinkService links the unique identities of a snapshot to the records of a source
// and stores the resulting mapping.
type LinkService struct {
	adapter SourceAdapter
	store   MappingStore
}

// NewLinkService creates a LinkService.
func NewLinkService(adapter SourceAdapter, store MappingStore) LinkServiceInterface {

	return &LinkService{adapter: adapter, store: store}
}

// Link matches the identities of source in snapshot against the records of the
// source and replaces the stored mapping. Records linked to more than one unique
// identity are reported and logged, never dropped; whether the store accepts them
// is up to its constraints.
func (s *LinkService) Link(ctx context.Context, source string, snapshot io.Reader) (*LinkReport, error) {

	logger := log.GetLogger().With(log.String("traceId", syscontext.GetTraceID(ctx)))
	registry, err := Parse(snapshot)
	if err != nil {
		return nil, err
	}
	canonical := CanonicalRefs(registry, source)

	identities, err := s.adapter.FetchRawIdentities(ctx, source)
	if err != nil {
		logger.Debug(fmt.Sprintf("Failed to fetch identities of source: %s", source), log.Error(err))
		return nil, err
	}
	external := ExternalRefs(identities)

	correspondences := slices.Collect(Match(canonical, external))
	ambiguities := FindAmbiguities(correspondences)
	for _, ambiguity := range ambiguities {
		logger.Warn(fmt.Sprintf("Record %s of source %s matches more than one unique identity",
			ambiguity.PeopleID, source), log.Strings("uuids", ambiguity.UUIDs))
	}

	written, err := s.store.ReplaceCorrespondences(ctx, slices.Values(correspondences))
	if err != nil {
		return nil, err
	}

	logger.Info(fmt.Sprintf("Linked identities of source: %s", source),
		log.Int("canonical", len(canonical)), log.Int("external", len(external)),
		log.Int("written", written))
	return &LinkReport{Written: written, ExternalTotal: len(external), Ambiguities: ambiguities}, nil
}
