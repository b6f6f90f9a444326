package extract

import (
	"errors"
	"reflect"
	"testing"
)

func newTestExtractor(t *testing.T, mutate ...func(*Config)) *Extractor {
	t.Helper()
	cfg := DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	return New(cfg)
}

func findEntity(entities []RawEntity, name string) *RawEntity {
	for i := range entities {
		if entities[i].Name == name {
			return &entities[i]
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Input validation
// ---------------------------------------------------------------------------

func TestExtractEmptyDocument(t *testing.T) {
	x := newTestExtractor(t)
	for _, doc := range []string{"", "   ", "\n\t"} {
		if _, _, err := x.Extract(doc); !errors.Is(err, ErrEmptyDocument) {
			t.Errorf("Extract(%q) err = %v, want ErrEmptyDocument", doc, err)
		}
	}
}

// ---------------------------------------------------------------------------
// Dictionary strategy
// ---------------------------------------------------------------------------

func TestDictionaryExtraction(t *testing.T) {
	doc := "张三在北京大学工作。"
	x := newTestExtractor(t)

	entities, _, err := x.Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	zs := findEntity(entities, "张三")
	if zs == nil {
		t.Fatalf("张三 not extracted; got %+v", entities)
	}
	if zs.TypeHint != "Person" {
		t.Errorf("张三 TypeHint = %q, want Person", zs.TypeHint)
	}
	if zs.Confidence < 1 {
		t.Errorf("dictionary hit confidence = %v, want 1", zs.Confidence)
	}
	if doc[zs.Start:zs.End] != "张三" {
		t.Errorf("span [%d, %d) = %q, want 张三", zs.Start, zs.End, doc[zs.Start:zs.End])
	}

	pku := findEntity(entities, "北京大学")
	if pku == nil {
		t.Fatalf("北京大学 not extracted; got %+v", entities)
	}
	if pku.TypeHint != "Organization" {
		t.Errorf("北京大学 TypeHint = %q, want Organization", pku.TypeHint)
	}
}

func TestDictionaryLongestSpanWins(t *testing.T) {
	// 北京大学 must win over the nested location 北京.
	x := newTestExtractor(t)
	entities, _, err := x.Extract("他毕业于北京大学。")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if findEntity(entities, "北京大学") == nil {
		t.Fatal("北京大学 not extracted")
	}
	if findEntity(entities, "北京") != nil {
		t.Fatal("nested 北京 should have been subsumed by 北京大学")
	}
}

func TestFuzzyMatchNeverDisplacesExactHit(t *testing.T) {
	// The tokenizer splits on 于 but not 位, so the run 腾讯公司位 is one
	// token. It must not fuzzy-match 腾讯公司 and shadow the exact hit.
	doc := "腾讯公司位于深圳市。"
	x := newTestExtractor(t)

	entities, _, err := x.Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if e := findEntity(entities, "腾讯公司位"); e != nil {
		t.Fatalf("fuzzy superstring span survived: %+v", e)
	}
	e := findEntity(entities, "腾讯公司")
	if e == nil {
		t.Fatalf("腾讯公司 not extracted; got %+v", entities)
	}
	if e.Confidence < 1 {
		t.Errorf("exact hit confidence = %v, want 1", e.Confidence)
	}
	if doc[e.Start:e.End] != "腾讯公司" {
		t.Errorf("span [%d, %d) = %q, want 腾讯公司", e.Start, e.End, doc[e.Start:e.End])
	}
	if findEntity(entities, "深圳市") == nil {
		t.Fatalf("深圳市 not extracted; got %+v", entities)
	}
}

func TestFuzzyMatchVariantToken(t *testing.T) {
	x := newTestExtractor(t, func(c *Config) {
		c.Dictionary = map[string]string{"星巴克咖啡": "Organization"}
		c.SimilarityThreshold = 0.6
		c.UsePatterns = false
		c.UsePOSTagging = false
	})
	entities, _, err := x.Extract("他提到星巴克咖费。")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(entities) != 1 {
		t.Fatalf("entities = %+v, want exactly the variant token", entities)
	}
	e := entities[0]
	if e.Name != "星巴克咖费" {
		t.Errorf("Name = %q, want 星巴克咖费", e.Name)
	}
	if e.TypeHint != "Organization" {
		t.Errorf("TypeHint = %q, want Organization", e.TypeHint)
	}
	if e.Confidence <= 0 || e.Confidence >= 1 {
		t.Errorf("fuzzy confidence = %v, want in (0, 1)", e.Confidence)
	}
}

func TestCustomDictionary(t *testing.T) {
	x := newTestExtractor(t, func(c *Config) {
		c.Dictionary = map[string]string{"量子实验室": "Organization"}
		c.UsePatterns = false
		c.UsePOSTagging = false
	})
	entities, _, err := x.Extract("量子实验室发布了新成果。")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(entities) != 1 || entities[0].Name != "量子实验室" {
		t.Fatalf("entities = %+v, want exactly 量子实验室", entities)
	}
}

// ---------------------------------------------------------------------------
// Pattern strategy
// ---------------------------------------------------------------------------

func TestPatternTitleExtraction(t *testing.T) {
	x := newTestExtractor(t, func(c *Config) {
		c.UseDictionary = false
		c.UsePOSTagging = false
	})
	entities, _, err := x.Extract("会上，王小明教授介绍了最新进展。")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	e := findEntity(entities, "王小明")
	if e == nil {
		t.Fatalf("王小明 not extracted; got %+v", entities)
	}
	if e.TypeHint != "Person" {
		t.Errorf("TypeHint = %q, want Person", e.TypeHint)
	}
}

func TestPatternOrgSuffixTrimsParticle(t *testing.T) {
	x := newTestExtractor(t, func(c *Config) {
		c.UseDictionary = false
		c.UsePOSTagging = false
	})
	entities, _, err := x.Extract("他任职于华信科技公司多年。")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	e := findEntity(entities, "华信科技公司")
	if e == nil {
		t.Fatalf("华信科技公司 not extracted; got %+v", entities)
	}
	if e.TypeHint != "Organization" {
		t.Errorf("TypeHint = %q, want Organization", e.TypeHint)
	}
}

// ---------------------------------------------------------------------------
// Candidate combination and filters
// ---------------------------------------------------------------------------

func TestSameSpanSignalsCombine(t *testing.T) {
	// 腾讯公司 is both a dictionary entry and an org-pattern match, so
	// the two signals combine on one mention.
	x := newTestExtractor(t)
	entities, _, err := x.Extract("腾讯公司推出了微信。")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	e := findEntity(entities, "腾讯公司")
	if e == nil {
		t.Fatalf("腾讯公司 not extracted; got %+v", entities)
	}
	if len(e.Signals) < 2 {
		t.Errorf("Signals = %v, want both dictionary and pattern", e.Signals)
	}
	if e.Confidence < 1 {
		t.Errorf("combined confidence = %v, want 1 (dictionary contributes 1.0)", e.Confidence)
	}
}

func TestMinConfidenceFilter(t *testing.T) {
	x := newTestExtractor(t, func(c *Config) {
		c.UseDictionary = false
		c.UsePatterns = false
		c.MinConfidence = 0.9 // above the pos strategy's 0.7
	})
	entities, _, err := x.Extract("他加入了星河动力公司。")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(entities) != 0 {
		t.Fatalf("entities = %+v, want none above confidence 0.9", entities)
	}
}

func TestMinEntityLengthFilter(t *testing.T) {
	x := newTestExtractor(t, func(c *Config) {
		c.MinEntityLength = 5
	})
	entities, _, err := x.Extract("张三在北京大学工作。")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, e := range entities {
		if len([]rune(e.Name)) < 5 {
			t.Errorf("entity %q shorter than min length survived", e.Name)
		}
	}
}

func TestDeterministicAcrossCalls(t *testing.T) {
	doc := "张三在北京大学工作。李四是清华大学的教授。腾讯公司位于深圳市。"
	x := newTestExtractor(t)

	e1, r1, err := x.Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	e2, r2, err := x.Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !reflect.DeepEqual(e1, e2) {
		t.Error("entity extraction is not deterministic")
	}
	if !reflect.DeepEqual(r1, r2) {
		t.Error("relation extraction is not deterministic")
	}
}

// ---------------------------------------------------------------------------
// Relation candidates
// ---------------------------------------------------------------------------

func TestRelationTemplateMatch(t *testing.T) {
	x := newTestExtractor(t)
	entities, relations, err := x.Extract("张三在北京大学工作。")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	var rel *RawRelation
	for i := range relations {
		if relations[i].TypeHint == "works_for" {
			rel = &relations[i]
		}
	}
	if rel == nil {
		t.Fatalf("no works_for candidate; got %+v", relations)
	}
	if entities[rel.Source].Name != "张三" {
		t.Errorf("source = %q, want 张三", entities[rel.Source].Name)
	}
	if entities[rel.Target].Name != "北京大学" {
		t.Errorf("target = %q, want 北京大学", entities[rel.Target].Name)
	}
	if rel.Confidence < 0.9 {
		t.Errorf("confidence = %v, want >= 0.9", rel.Confidence)
	}
}

func TestRelationReversedTemplate(t *testing.T) {
	x := newTestExtractor(t)
	entities, relations, err := x.Extract("阿里巴巴由马云创立。")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	var rel *RawRelation
	for i := range relations {
		if relations[i].TypeHint == "founder_of" {
			rel = &relations[i]
		}
	}
	if rel == nil {
		t.Fatalf("no founder_of candidate; got %+v", relations)
	}
	// 由 reverses the surface order: 马云 founded 阿里巴巴.
	if entities[rel.Source].Name != "马云" {
		t.Errorf("source = %q, want 马云", entities[rel.Source].Name)
	}
	if entities[rel.Target].Name != "阿里巴巴" {
		t.Errorf("target = %q, want 阿里巴巴", entities[rel.Target].Name)
	}
}

func TestRelationFallbackPhrase(t *testing.T) {
	x := newTestExtractor(t)
	_, relations, err := x.Extract("中关村坐落在北京市。")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	var found bool
	for _, r := range relations {
		if r.TypeHint == "" && r.Phrase == "坐落在" {
			found = true
			if r.Confidence != fallbackConfidence {
				t.Errorf("fallback confidence = %v, want %v", r.Confidence, fallbackConfidence)
			}
		}
	}
	if !found {
		t.Fatalf("no fallback candidate with phrase 坐落在; got %+v", relations)
	}
}

func TestRelationDistanceLimit(t *testing.T) {
	x := newTestExtractor(t, func(c *Config) {
		c.MaxContextWindow = 10
	})
	filler := ""
	for i := 0; i < 30; i++ {
		filler += "很"
	}
	_, relations, err := x.Extract("张三。" + filler + "。北京大学。")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, r := range relations {
		t.Errorf("unexpected relation across %d-char gap: %+v", 30, r)
	}
}
