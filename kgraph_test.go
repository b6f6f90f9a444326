package kgraph

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, mutate ...func(*Config)) Pipeline {
	t.Helper()
	cfg := DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	p, err := New(cfg)
	require.NoError(t, err)
	return p
}

func TestRunMergesEntitiesAcrossDocuments(t *testing.T) {
	p := newTestPipeline(t)
	docs := []string{
		"张三在北京大学工作。",
		"张三是北京大学的教授。",
	}

	g, report, err := p.Run(context.Background(), docs)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Documents)
	assert.Empty(t, report.DocumentFailures)
	assert.Equal(t, 2, report.CanonicalEntities)
	assert.Equal(t, 1, report.CanonicalRelations)

	require.Len(t, g.Entities, 2)
	require.Len(t, g.Relations, 1)

	byName := map[string]string{}
	for _, e := range g.Entities {
		byName[e.Name] = e.Type
		assert.Equal(t, 2, e.Mentions, e.Name)
		assert.Equal(t, []string{"doc_0", "doc_1"}, e.Provenance, e.Name)
	}
	assert.Equal(t, "Person", byName["张三"])
	assert.Equal(t, "Organization", byName["北京大学"])

	r := g.Relations[0]
	assert.Equal(t, "works_for", r.Type)
	assert.Equal(t, []string{"doc_0", "doc_1"}, r.Provenance)
	assert.Greater(t, r.Confidence, 0.9)
	assert.LessOrEqual(t, r.Confidence, 1.0)
}

func TestRunManualReviewQuietOnRepeatMentions(t *testing.T) {
	p := newTestPipeline(t, func(c *Config) {
		c.Fusion.ConflictResolutionStrategy = "manual_review"
	})
	docs := []string{
		"张三在北京大学工作。",
		"张三在北京大学工作。",
	}

	_, report, err := p.Run(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, 2, report.CanonicalEntities)
	assert.Zero(t, report.ConflictsUnresolved)
}

func TestRunEmptyBatch(t *testing.T) {
	p := newTestPipeline(t)

	g, report, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Documents)
	assert.Equal(t, 0, g.Statistics.EntityCount)
	assert.Equal(t, 0, g.Statistics.RelationCount)
	assert.Equal(t, 0, g.Statistics.ConnectedComponents)
}

func TestRunAllDocumentsFailed(t *testing.T) {
	p := newTestPipeline(t)

	_, report, err := p.Run(context.Background(), []string{"", "   "})
	require.ErrorIs(t, err, ErrAllDocumentsFailed)
	require.NotNil(t, report)
	assert.Len(t, report.DocumentFailures, 2)
}

func TestRunSkipsFailedDocument(t *testing.T) {
	p := newTestPipeline(t)
	docs := []string{
		"张三在北京大学工作。",
		"",
		"李四毕业于清华大学。",
	}

	g, report, err := p.Run(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, report.DocumentFailures, 1)
	assert.Equal(t, 1, report.DocumentFailures[0].Doc)
	assert.Equal(t, 4, g.Statistics.EntityCount)
}

func TestRunFusionThresholdOneKeepsVariantsApart(t *testing.T) {
	docs := []string{
		"腾讯公司位于深圳市。",
		"腾讯位于深圳市。",
	}

	countOrgs := func(threshold float64) int {
		p := newTestPipeline(t, func(c *Config) {
			c.Fusion.EntityFusionThreshold = threshold
		})
		g, _, err := p.Run(context.Background(), docs)
		require.NoError(t, err)
		return g.Statistics.EntityTypes["Organization"]
	}

	if got := countOrgs(0.8); got != 1 {
		t.Errorf("orgs at threshold 0.8 = %d, want 1 (variants merged)", got)
	}
	if got := countOrgs(1.0); got != 2 {
		t.Errorf("orgs at threshold 1.0 = %d, want 2 (exact matches only)", got)
	}
}

func TestRunRecordsInvalidEndpoints(t *testing.T) {
	// A Product cannot be the source of works_for; the candidate is
	// dropped and the run completes.
	p := newTestPipeline(t)

	g, report, err := p.Run(context.Background(), []string{"微信在腾讯公司工作。"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.InvalidRelationEndpoints)
	assert.Equal(t, 0, g.Statistics.RelationCount)
	assert.Equal(t, 2, g.Statistics.EntityCount)
}

func TestRunCancelledContext(t *testing.T) {
	p := newTestPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := p.Run(ctx, []string{"张三在北京大学工作。"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunDeterministic(t *testing.T) {
	p := newTestPipeline(t)
	docs := []string{
		"张三在北京大学工作。李四是清华大学的教授。",
		"腾讯公司推出了微信。腾讯公司位于深圳市。",
		"马云创立了阿里巴巴。",
	}

	a, _, err := p.Run(context.Background(), docs)
	require.NoError(t, err)
	b, _, err := p.Run(context.Background(), docs)
	require.NoError(t, err)

	if !reflect.DeepEqual(a, b) {
		t.Error("two runs over the same input produced different graphs")
	}
}

func TestRunProgress(t *testing.T) {
	var (
		mu     sync.Mutex
		stages []string
	)
	cfg := DefaultConfig()
	p, err := New(cfg, WithProgress(func(pr Progress) {
		mu.Lock()
		defer mu.Unlock()
		if len(stages) == 0 || stages[len(stages)-1] != pr.Stage {
			stages = append(stages, pr.Stage)
		}
	}))
	require.NoError(t, err)

	_, _, err = p.Run(context.Background(), []string{"张三在北京大学工作。"})
	require.NoError(t, err)
	assert.Equal(t, []string{"extract", "entity_fusion", "relation_fusion", "assemble"}, stages)
}

func TestRunTruncatesToMaxNodes(t *testing.T) {
	p := newTestPipeline(t, func(c *Config) {
		c.Visualization.MaxNodes = 2
	})
	g, _, err := p.Run(context.Background(), []string{
		"张三在北京大学工作。腾讯公司推出了微信。马云创立了阿里巴巴。",
	})
	require.NoError(t, err)
	assert.Len(t, g.Entities, 2)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fusion.EntityFusionThreshold = 1.5
	_, err := New(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Fusion.ConflictResolutionStrategy = "coin_flip"
	_, err = New(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestOntologyAccessor(t *testing.T) {
	p := newTestPipeline(t)
	reg := p.Ontology()
	require.NotNil(t, reg)
	if _, ok := reg.EntityType("Person"); !ok {
		t.Error("default ontology missing Person")
	}
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(good, []byte("张三在北京大学工作。"), 0o644))
	missing := filepath.Join(dir, "missing.txt")

	p := newTestPipeline(t)
	g, report, err := p.RunFiles(context.Background(), []string{good, missing})
	require.NoError(t, err)

	require.Len(t, report.DocumentFailures, 1)
	assert.Equal(t, 1, report.DocumentFailures[0].Doc)
	assert.Equal(t, 2, g.Statistics.EntityCount)
}
