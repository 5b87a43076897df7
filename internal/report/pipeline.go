// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"

	"github.com/google/uuid"

	"github.com/pdiddy/heuler/internal/logger"
	"github.com/pdiddy/heuler/pkg/types"
)

// LinkDiscoverer finds candidate report links.
type LinkDiscoverer interface {
	Discover(ctx context.Context) ([]types.ReportLink, error)
}

// TableExtractor reads a report into a dataset.
type TableExtractor interface {
	Extract(ctx context.Context, src types.Source) (types.ReportDataset, types.ReportMetadata, error)
}

// Selector chooses which discovered link to extract.
type Selector func(links []types.ReportLink) (types.ReportLink, error)

// SelectFirst picks the first link in document order.
func SelectFirst(links []types.ReportLink) (types.ReportLink, error) {
	return SelectIndex(0)(links)
}

// SelectIndex picks the link at index i.
func SelectIndex(i int) Selector {
	return func(links []types.ReportLink) (types.ReportLink, error) {
		if i < 0 || i >= len(links) {
			return "", types.Errorf(types.KindMissingLinkState, "select", "link index %d out of range, %d links discovered", i, len(links))
		}
		return links[i], nil
	}
}

// Result is the outcome of one pipeline run.
type Result struct {
	Links    []types.ReportLink
	Chosen   types.ReportLink
	Dataset  types.ReportDataset
	Metadata types.ReportMetadata
}

// Pipeline discovers report links, selects one, and extracts it. The chosen
// link is passed explicitly; nothing is remembered between runs.
type Pipeline struct {
	Discoverer LinkDiscoverer
	Extractor  TableExtractor
	// Select defaults to SelectFirst.
	Select Selector
	Log    logger.Logger
}

// Run executes discovery, selection, and extraction once.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	log := p.Log
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With(logger.String("run_id", uuid.NewString()))
	sel := p.Select
	if sel == nil {
		sel = SelectFirst
	}

	log.Info("pipeline started")
	// Stages log their own failures; the run only records where it stopped.
	links, err := p.Discoverer.Discover(ctx)
	if err != nil {
		log.Info("pipeline stopped", logger.String("stage", "discover"))
		return Result{}, err
	}

	chosen, err := sel(links)
	if err != nil {
		log.Error("selecting report link failed", logger.Error(err))
		return Result{}, err
	}
	log.Info("report link selected", logger.String("link", chosen.String()), logger.Int("candidates", len(links)))

	ds, meta, err := p.Extractor.Extract(ctx, types.SourceFromLink(chosen))
	if err != nil {
		log.Info("pipeline stopped", logger.String("stage", "extract"))
		return Result{}, err
	}
	log.Info("pipeline finished", logger.Int("rows", len(ds)), logger.Time("modified", meta.Modified))

	return Result{Links: links, Chosen: chosen, Dataset: ds, Metadata: meta}, nil
}
