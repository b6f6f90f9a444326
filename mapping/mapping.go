// Package mapping grounds raw extraction output in an ontology:
// entities get a registered type, relation candidates get a relation
// type checked against its domain and range. Rejected records become
// diagnostics, never errors.
package mapping

// Config holds the mapping acceptance thresholds.
type Config struct {
	EntityThreshold   float64
	RelationThreshold float64
}

// Entity is an extraction mention grounded in the ontology.
type Entity struct {
	// Seq is the mention's stable sequence number. Within one
	// document it is the extraction order; the pipeline rewrites it
	// to a run-global sequence before fusion.
	Seq int

	// Doc is the document's index in the batch.
	Doc int

	// Name is the surface form; Norm its normalized form used for
	// similarity comparison.
	Name string
	Norm string

	// Type is the registered entity type name.
	Type string

	// Score is the mapping similarity score; Confidence the carried
	// extraction confidence.
	Score      float64
	Confidence float64

	Start   int
	End     int
	Context string

	Properties map[string]string
}

// Relation is a relation candidate grounded in the ontology. Source
// and target reference mapped entities by sequence number.
type Relation struct {
	Seq int
	Doc int

	SourceSeq int
	TargetSeq int

	Type   string
	Phrase string

	Score      float64
	Confidence float64

	Properties map[string]string
}

// Diagnostic kinds.
const (
	DiagUnmappedEntity   = "unmapped_entity"
	DiagUnmappedRelation = "unmapped_relation"
	DiagInvalidEndpoints = "invalid_relation_endpoints"
)

// Diagnostic records one dropped record and why.
type Diagnostic struct {
	Kind   string `json:"kind"`
	Doc    int    `json:"doc"`
	Name   string `json:"name"`
	Detail string `json:"detail"`
}
