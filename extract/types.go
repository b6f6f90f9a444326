// Package extract finds entity and relation candidates in raw text
// using pattern, dictionary and part-of-speech heuristics. Output is
// untyped with respect to the ontology; mapping happens downstream.
package extract

import "errors"

// ErrEmptyDocument is returned for empty or whitespace-only input.
var ErrEmptyDocument = errors.New("kgraph: empty document")

// Strategy names, in descending priority order. When overlapping
// candidates tie on span length and confidence, the higher-priority
// strategy wins.
const (
	StrategyPattern    = "pattern"
	StrategyDictionary = "dictionary"
	StrategyPOS        = "pos"
)

// RawEntity is one extracted entity mention.
type RawEntity struct {
	// Seq is the entity's position in the document's extraction
	// order. The pipeline rewrites it to a run-global sequence.
	Seq int

	Name string

	// TypeHint is the extracting strategy's guess at the entity type,
	// advisory for the mapping stage.
	TypeHint string

	// Start and End are byte offsets of the mention in the document.
	Start int
	End   int

	// Confidence in [0, 1]. Mentions found by several strategies at
	// the same span combine as 1 - prod(1 - s_i).
	Confidence float64

	// Signals lists the strategies that produced this mention.
	Signals []string

	// Context is the text surrounding the mention.
	Context string
}

// RawRelation is one extracted relation candidate between two
// entities of the same document.
type RawRelation struct {
	Seq int

	// Source and Target index into the RawEntity slice returned
	// alongside this relation.
	Source int
	Target int

	// TypeHint names the relation type suggested by the matching
	// pattern, empty for proximity-only candidates.
	TypeHint string

	// Phrase is the connecting text between the two mentions.
	Phrase string

	Confidence float64
	Context    string
}
