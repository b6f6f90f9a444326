// Package similarity scores string pairs on a [0, 1] scale by
// combining a lexical signal with optional semantic and context
// signals. All scores are symmetric.
package similarity

import (
	"log/slog"
)

// SemanticScorer supplies an embedding-based similarity signal.
// Implementations return a score in [0, 1]; unknown terms score zero.
type SemanticScorer interface {
	Score(a, b string) (float64, error)
}

// Config controls signal selection and weighting.
type Config struct {
	// FuzzyMatchThreshold short-circuits scoring: pairs whose lexical
	// similarity falls below it score zero overall.
	FuzzyMatchThreshold float64

	// UseSemantic enables the semantic signal when a scorer is set.
	UseSemantic bool

	// UseContext enables the context-overlap signal when context
	// strings are supplied.
	UseContext bool

	// Signal weights. When all are zero the active signals are
	// weighted equally.
	LexicalWeight  float64
	SemanticWeight float64
	ContextWeight  float64
}

// Engine combines similarity signals per Config. The zero value is
// not usable; construct with New.
type Engine struct {
	cfg      Config
	semantic SemanticScorer
	logger   *slog.Logger
}

// New builds an Engine. scorer may be nil, in which case the semantic
// signal is skipped even when enabled.
func New(cfg Config, scorer SemanticScorer) *Engine {
	return &Engine{cfg: cfg, semantic: scorer, logger: slog.Default()}
}

// Similarity scores two strings without context.
func (e *Engine) Similarity(a, b string) float64 {
	return e.score(a, b, "", "")
}

// SimilarityInContext scores two strings, additionally weighing the
// keyword overlap of their surrounding contexts. Empty contexts
// disable the context signal for this pair.
func (e *Engine) SimilarityInContext(a, b, ctxA, ctxB string) float64 {
	return e.score(a, b, ctxA, ctxB)
}

func (e *Engine) score(a, b, ctxA, ctxB string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	lex := Lexical(a, b)
	if lex < e.cfg.FuzzyMatchThreshold {
		return 0
	}

	signals := []float64{lex}
	weights := []float64{e.cfg.LexicalWeight}

	if e.cfg.UseSemantic && e.semantic != nil {
		sem, err := e.semantic.Score(a, b)
		if err != nil {
			e.logger.Warn("semantic scoring failed, using lexical signals only",
				"error", err)
		} else {
			signals = append(signals, clamp01(sem))
			weights = append(weights, e.cfg.SemanticWeight)
		}
	}

	if e.cfg.UseContext && ctxA != "" && ctxB != "" {
		signals = append(signals, contextOverlap(ctxA, ctxB))
		weights = append(weights, e.cfg.ContextWeight)
	}

	var totalWeight float64
	for _, w := range weights {
		totalWeight += w
	}
	if totalWeight == 0 {
		// Equal weighting across active signals.
		var sum float64
		for _, s := range signals {
			sum += s
		}
		return clamp01(sum / float64(len(signals)))
	}

	var sum float64
	for i, s := range signals {
		sum += s * weights[i]
	}
	return clamp01(sum / totalWeight)
}

// contextOverlap is the Jaccard overlap of the keyword sets of two
// context strings.
func contextOverlap(a, b string) float64 {
	ka := keywords(a)
	kb := keywords(b)
	if len(ka) == 0 || len(kb) == 0 {
		return 0
	}
	inter := 0
	for k := range ka {
		if _, ok := kb[k]; ok {
			inter++
		}
	}
	union := len(ka) + len(kb) - inter
	return float64(inter) / float64(union)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
