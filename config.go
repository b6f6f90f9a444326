package kgraph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kgraphdev/kgraph/fusion"
)

// Config holds all configuration for the knowledge graph pipeline.
type Config struct {
	Extraction    ExtractionConfig    `json:"extraction" yaml:"extraction"`
	Mapping       MappingConfig       `json:"mapping" yaml:"mapping"`
	Fusion        FusionConfig        `json:"fusion" yaml:"fusion"`
	Visualization VisualizationConfig `json:"visualization" yaml:"visualization"`

	// Concurrency is the maximum number of documents processed in
	// parallel during extraction and mapping (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// DocumentTimeout bounds per-document processing, in seconds.
	// Zero disables the per-document timeout.
	DocumentTimeout int `json:"document_timeout" yaml:"document_timeout"`
}

// ExtractionConfig configures the text extraction stage.
type ExtractionConfig struct {
	// SimilarityThreshold gates approximate dictionary matching:
	// tokens within this lexical similarity of a dictionary entry are
	// accepted as fuzzy hits.
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`

	// MinEntityLength is the minimum entity name length in characters.
	MinEntityLength int `json:"min_entity_length" yaml:"min_entity_length"`

	// MinConfidence drops extraction candidates scored below it.
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`

	// MaxContextWindow is the maximum character distance between two
	// entities for a relation candidate to be proposed.
	MaxContextWindow int `json:"max_context_window" yaml:"max_context_window"`

	// Strategy toggles.
	UsePatterns   bool `json:"use_patterns" yaml:"use_patterns"`
	UsePOSTagging bool `json:"use_pos_tagging" yaml:"use_pos_tagging"`
	UseDictionary bool `json:"use_dictionary" yaml:"use_dictionary"`

	// Dictionary maps known entity names to entity type names. When
	// nil and UseDictionary is set, the built-in dictionary is used.
	Dictionary map[string]string `json:"dictionary,omitempty" yaml:"dictionary,omitempty"`
}

// MappingConfig configures ontology mapping thresholds.
type MappingConfig struct {
	EntitySimilarityThreshold   float64 `json:"entity_similarity_threshold" yaml:"entity_similarity_threshold"`
	RelationSimilarityThreshold float64 `json:"relation_similarity_threshold" yaml:"relation_similarity_threshold"`

	// FuzzyMatchThreshold short-circuits similarity scoring: name
	// pairs below it score zero before any weighted combination.
	FuzzyMatchThreshold float64 `json:"fuzzy_match_threshold" yaml:"fuzzy_match_threshold"`

	// UseSemanticMapping enables the semantic similarity signal when a
	// semantic scorer is configured on the pipeline.
	UseSemanticMapping bool `json:"use_semantic_mapping" yaml:"use_semantic_mapping"`

	// UseContextMapping enables the context-overlap similarity signal.
	UseContextMapping bool `json:"use_context_mapping" yaml:"use_context_mapping"`
}

// FusionConfig configures entity and relation fusion.
type FusionConfig struct {
	EntityFusionThreshold   float64 `json:"entity_fusion_threshold" yaml:"entity_fusion_threshold"`
	RelationFusionThreshold float64 `json:"relation_fusion_threshold" yaml:"relation_fusion_threshold"`

	// ConflictResolutionStrategy selects how conflicting property
	// values are resolved when records merge. One of
	// highest_confidence, latest, vote, manual_review.
	ConflictResolutionStrategy string `json:"conflict_resolution_strategy" yaml:"conflict_resolution_strategy"`

	// MergeSimilarEntities enables similarity-based merging. When
	// false only byte-identical names of the same type merge.
	MergeSimilarEntities bool `json:"merge_similar_entities" yaml:"merge_similar_entities"`

	// PreserveProvenance records contributing source documents on
	// fused entities, relations and properties.
	PreserveProvenance bool `json:"preserve_provenance" yaml:"preserve_provenance"`
}

// VisualizationConfig carries rendering parameters passed through to
// downstream consumers. MaxNodes, when positive, caps the graph size
// before handoff by truncating lowest-degree nodes.
type VisualizationConfig struct {
	MaxNodes     int     `json:"max_nodes" yaml:"max_nodes"`
	NodeSize     int     `json:"node_size" yaml:"node_size"`
	EdgeWidth    float64 `json:"edge_width" yaml:"edge_width"`
	Layout       string  `json:"layout" yaml:"layout"`
	OutputFormat string  `json:"output_format" yaml:"output_format"`
}

// DefaultConfig returns a Config with defaults suitable for mixed
// Chinese/English news-style text.
func DefaultConfig() Config {
	return Config{
		Extraction: ExtractionConfig{
			SimilarityThreshold: 0.8,
			MinEntityLength:     2,
			MinConfidence:       0.5,
			MaxContextWindow:    50,
			UsePatterns:         true,
			UsePOSTagging:       true,
			UseDictionary:       true,
		},
		Mapping: MappingConfig{
			EntitySimilarityThreshold:   0.8,
			RelationSimilarityThreshold: 0.7,
			FuzzyMatchThreshold:         0.6,
			UseSemanticMapping:          true,
			UseContextMapping:           true,
		},
		Fusion: FusionConfig{
			EntityFusionThreshold:      0.8,
			RelationFusionThreshold:    0.8,
			ConflictResolutionStrategy: string(fusion.HighestConfidence),
			MergeSimilarEntities:       true,
			PreserveProvenance:         true,
		},
		Visualization: VisualizationConfig{
			NodeSize:     500,
			EdgeWidth:    1.0,
			Layout:       "spring",
			OutputFormat: "png",
		},
		Concurrency: 4,
	}
}

// LoadConfig reads a YAML or JSON config file. Missing fields keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks all configuration values against their allowed
// ranges. It returns an error wrapping ErrInvalidConfig naming the
// first offending field.
func (c Config) Validate() error {
	checks := []struct {
		name     string
		val      float64
		min, max float64
	}{
		{"extraction.similarity_threshold", c.Extraction.SimilarityThreshold, 0, 1},
		{"extraction.min_confidence", c.Extraction.MinConfidence, 0, 1},
		{"mapping.entity_similarity_threshold", c.Mapping.EntitySimilarityThreshold, 0, 1},
		{"mapping.relation_similarity_threshold", c.Mapping.RelationSimilarityThreshold, 0, 1},
		{"mapping.fuzzy_match_threshold", c.Mapping.FuzzyMatchThreshold, 0, 1},
		{"fusion.entity_fusion_threshold", c.Fusion.EntityFusionThreshold, 0, 1},
		{"fusion.relation_fusion_threshold", c.Fusion.RelationFusionThreshold, 0, 1},
	}
	for _, ck := range checks {
		if ck.val < ck.min || ck.val > ck.max {
			return fmt.Errorf("%w: %s %.2f out of range [%.0f, %.0f]",
				ErrInvalidConfig, ck.name, ck.val, ck.min, ck.max)
		}
	}

	if n := c.Extraction.MinEntityLength; n < 1 || n > 10 {
		return fmt.Errorf("%w: extraction.min_entity_length %d out of range [1, 10]", ErrInvalidConfig, n)
	}
	if w := c.Extraction.MaxContextWindow; w < 10 || w > 200 {
		return fmt.Errorf("%w: extraction.max_context_window %d out of range [10, 200]", ErrInvalidConfig, w)
	}
	if _, err := fusion.ParseStrategy(c.Fusion.ConflictResolutionStrategy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must not be negative", ErrInvalidConfig)
	}
	if c.DocumentTimeout < 0 {
		return fmt.Errorf("%w: document_timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}
