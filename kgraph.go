// Package kgraph builds knowledge graphs from unstructured text in
// four stages: extraction, ontology mapping, fusion and assembly.
package kgraph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kgraphdev/kgraph/extract"
	"github.com/kgraphdev/kgraph/fusion"
	"github.com/kgraphdev/kgraph/graph"
	"github.com/kgraphdev/kgraph/mapping"
	"github.com/kgraphdev/kgraph/ontology"
	"github.com/kgraphdev/kgraph/parser"
	"github.com/kgraphdev/kgraph/similarity"
)

// Pipeline is the main entry point.
type Pipeline interface {
	// Run processes a batch of documents into a knowledge graph.
	// Individual document failures are recorded in the report and
	// skipped; Run fails only when every document fails, when the
	// context ends, or on invalid input.
	Run(ctx context.Context, documents []string) (*graph.KnowledgeGraph, *Report, error)

	// RunFiles loads the given files through the parser registry and
	// runs the resulting texts. Unreadable files are recorded as
	// document failures.
	RunFiles(ctx context.Context, paths []string) (*graph.KnowledgeGraph, *Report, error)

	// Ontology returns the registry governing this pipeline.
	Ontology() *ontology.Registry
}

// Progress is one progress notification.
type Progress struct {
	Stage       string `json:"stage"`
	StagesDone  int    `json:"stages_done"`
	StagesTotal int    `json:"stages_total"`
	ItemsDone   int    `json:"items_done"`
	ItemsTotal  int    `json:"items_total"`
}

// ProgressFunc receives progress notifications. It must be safe for
// concurrent calls.
type ProgressFunc func(Progress)

// DocumentFailure records one skipped document.
type DocumentFailure struct {
	Doc   int    `json:"doc"`
	Error string `json:"error"`
}

// Report summarizes a run: stage counts, skipped documents and
// mapping diagnostics.
type Report struct {
	Documents        int               `json:"documents"`
	DocumentFailures []DocumentFailure `json:"document_failures,omitempty"`

	RawEntities        int `json:"raw_entities"`
	RawRelations       int `json:"raw_relations"`
	MappedEntities     int `json:"mapped_entities"`
	MappedRelations    int `json:"mapped_relations"`
	CanonicalEntities  int `json:"canonical_entities"`
	CanonicalRelations int `json:"canonical_relations"`

	UnmappedEntities         int `json:"unmapped_entities"`
	UnmappedRelations        int `json:"unmapped_relations"`
	InvalidRelationEndpoints int `json:"invalid_relation_endpoints"`
	ConflictsUnresolved      int `json:"conflicts_unresolved"`

	Diagnostics []mapping.Diagnostic `json:"diagnostics,omitempty"`
}

// Option configures a pipeline beyond Config.
type Option func(*pipeline)

// WithOntology replaces the default ontology.
func WithOntology(reg *ontology.Registry) Option {
	return func(p *pipeline) { p.reg = reg }
}

// WithSemanticScorer wires an embedding-based similarity signal,
// such as a lexicon.Store.
func WithSemanticScorer(s similarity.SemanticScorer) Option {
	return func(p *pipeline) { p.scorer = s }
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(p *pipeline) { p.progressFn = fn }
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *pipeline) { p.logger = l }
}

// WithParserRegistry replaces the default parser registry used by
// RunFiles.
func WithParserRegistry(r *parser.Registry) Option {
	return func(p *pipeline) { p.parsers = r }
}

type pipeline struct {
	cfg        Config
	reg        *ontology.Registry
	scorer     similarity.SemanticScorer
	sim        *similarity.Engine
	extractor  *extract.Extractor
	relMapper  *mapping.RelationMapper
	entFuser   *fusion.EntityFuser
	relFuser   *fusion.RelationFuser
	parsers    *parser.Registry
	logger     *slog.Logger
	progressFn ProgressFunc

	mapCfg mapping.Config
}

// New validates cfg and wires the pipeline.
func New(cfg Config, opts ...Option) (Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &pipeline{
		cfg:     cfg,
		reg:     ontology.Default(),
		parsers: parser.NewRegistry(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.sim = similarity.New(similarity.Config{
		FuzzyMatchThreshold: cfg.Mapping.FuzzyMatchThreshold,
		UseSemantic:         cfg.Mapping.UseSemanticMapping,
		UseContext:          cfg.Mapping.UseContextMapping,
	}, p.scorer)

	p.extractor = extract.New(extract.Config{
		SimilarityThreshold: cfg.Extraction.SimilarityThreshold,
		MinEntityLength:     cfg.Extraction.MinEntityLength,
		MinConfidence:       cfg.Extraction.MinConfidence,
		MaxContextWindow:    cfg.Extraction.MaxContextWindow,
		UsePatterns:         cfg.Extraction.UsePatterns,
		UsePOSTagging:       cfg.Extraction.UsePOSTagging,
		UseDictionary:       cfg.Extraction.UseDictionary,
		Dictionary:          cfg.Extraction.Dictionary,
	})

	p.mapCfg = mapping.Config{
		EntityThreshold:   cfg.Mapping.EntitySimilarityThreshold,
		RelationThreshold: cfg.Mapping.RelationSimilarityThreshold,
	}
	p.relMapper = mapping.NewRelationMapper(p.reg, p.sim, p.mapCfg)

	strategy, _ := fusion.ParseStrategy(cfg.Fusion.ConflictResolutionStrategy)
	fuseCfg := fusion.Config{
		EntityThreshold:    cfg.Fusion.EntityFusionThreshold,
		RelationThreshold:  cfg.Fusion.RelationFusionThreshold,
		Strategy:           strategy,
		MergeSimilar:       cfg.Fusion.MergeSimilarEntities,
		PreserveProvenance: cfg.Fusion.PreserveProvenance,
	}
	p.entFuser = fusion.NewEntityFuser(fuseCfg, p.sim)
	p.relFuser = fusion.NewRelationFuser(fuseCfg, p.sim)

	return p, nil
}

func (p *pipeline) Ontology() *ontology.Registry { return p.reg }

func (p *pipeline) concurrency() int {
	if p.cfg.Concurrency > 0 {
		return p.cfg.Concurrency
	}
	return 4
}

func (p *pipeline) progress(stage string, stagesDone, itemsDone, itemsTotal int) {
	if p.progressFn == nil {
		return
	}
	p.progressFn(Progress{
		Stage:       stage,
		StagesDone:  stagesDone,
		StagesTotal: 4,
		ItemsDone:   itemsDone,
		ItemsTotal:  itemsTotal,
	})
}

// docResult holds one document's mapped output.
type docResult struct {
	entities     []mapping.Entity
	relations    []mapping.Relation
	diags        []mapping.Diagnostic
	rawEntities  int
	rawRelations int
	err          error
}

func (p *pipeline) Run(ctx context.Context, documents []string) (*graph.KnowledgeGraph, *Report, error) {
	report := &Report{Documents: len(documents)}
	start := time.Now()
	p.logger.Info("pipeline run starting",
		"documents", len(documents), "concurrency", p.concurrency())

	results := make([]docResult, len(documents))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		processed int
	)
	sem := make(chan struct{}, p.concurrency())
	p.progress("extract", 0, 0, len(documents))

	for i := range documents {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results[i] = docResult{err: err}
				return
			}

			dctx := ctx
			if p.cfg.DocumentTimeout > 0 {
				var cancel context.CancelFunc
				dctx, cancel = context.WithTimeout(ctx,
					time.Duration(p.cfg.DocumentTimeout)*time.Second)
				defer cancel()
			}
			results[i] = p.processDocument(dctx, i, documents[i])

			mu.Lock()
			processed++
			p.progress("extract", 0, processed, len(documents))
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("kgraph: run aborted: %w", err)
	}

	// Collect per-document results in document order and rewrite
	// sequence numbers to a run-global ordering so fusion tie-breaks
	// are deterministic.
	var (
		entities  []mapping.Entity
		relations []mapping.Relation
		failures  int
		seq       int
	)
	for i := range results {
		r := &results[i]
		if r.err != nil {
			failures++
			report.DocumentFailures = append(report.DocumentFailures, DocumentFailure{
				Doc:   i,
				Error: r.err.Error(),
			})
			p.logger.Warn("document skipped", "doc", i, "error", r.err)
			continue
		}
		report.RawEntities += r.rawEntities
		report.RawRelations += r.rawRelations
		report.Diagnostics = append(report.Diagnostics, r.diags...)

		remap := make(map[int]int, len(r.entities))
		for j := range r.entities {
			remap[r.entities[j].Seq] = seq
			r.entities[j].Seq = seq
			seq++
			entities = append(entities, r.entities[j])
		}
		for j := range r.relations {
			rel := r.relations[j]
			rel.Seq = len(relations)
			rel.SourceSeq = remap[rel.SourceSeq]
			rel.TargetSeq = remap[rel.TargetSeq]
			relations = append(relations, rel)
		}
	}

	if len(documents) > 0 && failures == len(documents) {
		return nil, report, fmt.Errorf("%w: %d of %d", ErrAllDocumentsFailed, failures, len(documents))
	}
	if failures > 0 {
		p.logger.Warn("continuing without failed documents",
			"failed", failures, "total", len(documents))
	}

	for _, d := range report.Diagnostics {
		switch d.Kind {
		case mapping.DiagUnmappedEntity:
			report.UnmappedEntities++
		case mapping.DiagUnmappedRelation:
			report.UnmappedRelations++
		case mapping.DiagInvalidEndpoints:
			report.InvalidRelationEndpoints++
		}
	}
	report.MappedEntities = len(entities)
	report.MappedRelations = len(relations)

	p.progress("entity_fusion", 1, 0, len(entities))
	canonEntities, seqToID, entConflicts := p.entFuser.Fuse(entities)

	p.progress("relation_fusion", 2, 0, len(relations))
	canonRelations, relConflicts := p.relFuser.Fuse(relations, seqToID)

	report.CanonicalEntities = len(canonEntities)
	report.CanonicalRelations = len(canonRelations)
	report.ConflictsUnresolved = entConflicts + relConflicts

	p.progress("assemble", 3, 0, 1)
	g := graph.Build(canonEntities, canonRelations)
	if limit := p.cfg.Visualization.MaxNodes; limit > 0 {
		g = g.Truncate(limit)
	}
	p.progress("assemble", 4, 1, 1)

	p.logger.Info("pipeline run finished",
		"entities", g.Statistics.EntityCount,
		"relations", g.Statistics.RelationCount,
		"components", g.Statistics.ConnectedComponents,
		"skipped_documents", failures,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return g, report, nil
}

// processDocument runs extraction and mapping for a single document.
// Entity mapping state is per-document, so workers share nothing.
func (p *pipeline) processDocument(ctx context.Context, doc int, text string) docResult {
	rawEntities, rawRelations, err := p.extractor.Extract(text)
	if err != nil {
		return docResult{err: fmt.Errorf("extracting: %w", err)}
	}
	if err := ctx.Err(); err != nil {
		return docResult{err: err}
	}

	entityMapper := mapping.NewEntityMapper(p.reg, p.sim, p.mapCfg)
	entities, index, diags := entityMapper.Map(doc, rawEntities)

	relations, relDiags := p.relMapper.Map(doc, rawRelations, entities, index)
	diags = append(diags, relDiags...)

	return docResult{
		entities:     entities,
		relations:    relations,
		diags:        diags,
		rawEntities:  len(rawEntities),
		rawRelations: len(rawRelations),
	}
}

func (p *pipeline) RunFiles(ctx context.Context, paths []string) (*graph.KnowledgeGraph, *Report, error) {
	texts := make([]string, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency())
	for i, path := range paths {
		g.Go(func() error {
			res, err := p.parsers.Load(gctx, path)
			if err != nil {
				// Left empty, the document is recorded as failed by
				// Run and the batch continues.
				p.logger.Warn("failed to load document", "path", path, "error", err)
				return nil
			}
			texts[i] = res.Text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return p.Run(ctx, texts)
}
