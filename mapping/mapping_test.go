package mapping

import (
	"testing"

	"github.com/kgraphdev/kgraph/extract"
	"github.com/kgraphdev/kgraph/ontology"
	"github.com/kgraphdev/kgraph/similarity"
)

func newTestMapper(t *testing.T) *EntityMapper {
	t.Helper()
	sim := similarity.New(similarity.Config{}, nil)
	return NewEntityMapper(ontology.Default(), sim, Config{
		EntityThreshold:   0.8,
		RelationThreshold: 0.7,
	})
}

// ---------------------------------------------------------------------------
// Normalization
// ---------------------------------------------------------------------------

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"腾讯公司", "腾讯"},
		{"阿里巴巴集团", "阿里巴巴"},
		{"华信股份有限公司", "华信"},
		{"  OpenAI  ", "openai"},
		{"iPhone", "iphone"},
		{"公司", "公司"},   // too short after stripping, kept as is
		{"张三", "张三"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Entity mapping
// ---------------------------------------------------------------------------

func TestEntityMapByExemplar(t *testing.T) {
	m := newTestMapper(t)
	raws := []extract.RawEntity{
		{Seq: 0, Name: "阿里巴巴集团"},
	}
	out, index, diags := m.Map(0, raws)
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %+v, want none", diags)
	}
	if len(out) != 1 || out[0].Type != "Organization" {
		t.Fatalf("out = %+v, want one Organization", out)
	}
	if index[0] != 0 {
		t.Errorf("index[0] = %d, want 0", index[0])
	}
}

func TestEntityMapByHint(t *testing.T) {
	m := newTestMapper(t)
	raws := []extract.RawEntity{
		{Seq: 0, Name: "赵铁柱", TypeHint: "Person", Confidence: 0.85},
	}
	out, _, diags := m.Map(0, raws)
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %+v, want none", diags)
	}
	if len(out) != 1 || out[0].Type != "Person" {
		t.Fatalf("out = %+v, want one Person", out)
	}
	if out[0].Score != 0.85 {
		t.Errorf("Score = %v, want the hint strength 0.85", out[0].Score)
	}
}

func TestEntityMapUnmapped(t *testing.T) {
	m := newTestMapper(t)
	raws := []extract.RawEntity{
		{Seq: 0, Name: "Zzqx", Confidence: 0.3},
	}
	out, index, diags := m.Map(0, raws)
	if len(out) != 0 {
		t.Fatalf("out = %+v, want none", out)
	}
	if len(index) != 0 {
		t.Errorf("index = %v, want empty", index)
	}
	if len(diags) != 1 || diags[0].Kind != DiagUnmappedEntity {
		t.Fatalf("diags = %+v, want one %s", diags, DiagUnmappedEntity)
	}
	if diags[0].Name != "Zzqx" {
		t.Errorf("diagnostic names %q, want Zzqx", diags[0].Name)
	}
}

func TestEntityMapAdoptsEarlierMention(t *testing.T) {
	// A bare 腾讯 later in the document adopts the type of the fully
	// qualified mention mapped before it.
	m := newTestMapper(t)
	raws := []extract.RawEntity{
		{Seq: 0, Name: "腾讯公司", TypeHint: "Organization", Confidence: 1},
		{Seq: 1, Name: "腾讯"},
	}
	out, _, diags := m.Map(0, raws)
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %+v, want none", diags)
	}
	if len(out) != 2 {
		t.Fatalf("out = %+v, want 2 entities", out)
	}
	if out[1].Type != "Organization" {
		t.Errorf("repeat mention type = %q, want Organization", out[1].Type)
	}
	if out[1].Norm != out[0].Norm {
		t.Errorf("norms differ: %q vs %q", out[1].Norm, out[0].Norm)
	}
}

// ---------------------------------------------------------------------------
// Relation mapping
// ---------------------------------------------------------------------------

func testEntities() ([]Entity, map[int]int) {
	ents := []Entity{
		{Seq: 0, Name: "张三", Norm: "张三", Type: "Person"},
		{Seq: 1, Name: "北京大学", Norm: "北京大学", Type: "Organization"},
		{Seq: 2, Name: "腾讯公司", Norm: "腾讯", Type: "Organization"},
	}
	return ents, map[int]int{0: 0, 1: 1, 2: 2}
}

func newRelationMapper(t *testing.T) *RelationMapper {
	t.Helper()
	sim := similarity.New(similarity.Config{}, nil)
	return NewRelationMapper(ontology.Default(), sim, Config{
		EntityThreshold:   0.8,
		RelationThreshold: 0.7,
	})
}

func TestRelationMapAccepted(t *testing.T) {
	m := newRelationMapper(t)
	ents, index := testEntities()
	raws := []extract.RawRelation{
		{Seq: 0, Source: 0, Target: 1, TypeHint: "works_for", Phrase: "在 工作", Confidence: 0.9},
	}
	out, diags := m.Map(0, raws, ents, index)
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %+v, want none", diags)
	}
	if len(out) != 1 {
		t.Fatalf("out = %+v, want one relation", out)
	}
	r := out[0]
	if r.Type != "works_for" {
		t.Errorf("Type = %q, want works_for", r.Type)
	}
	if r.SourceSeq != 0 || r.TargetSeq != 1 {
		t.Errorf("endpoints = %d -> %d, want 0 -> 1", r.SourceSeq, r.TargetSeq)
	}
	if r.Properties["phrase"] != "在 工作" {
		t.Errorf("phrase property = %q", r.Properties["phrase"])
	}
}

func TestRelationMapInvalidEndpoints(t *testing.T) {
	// works_for requires a Person source. Organization -> Organization
	// must be rejected even though the type itself scores well.
	m := newRelationMapper(t)
	ents, index := testEntities()
	raws := []extract.RawRelation{
		{Seq: 0, Source: 1, Target: 2, TypeHint: "works_for", Phrase: "在", Confidence: 0.9},
	}
	out, diags := m.Map(0, raws, ents, index)
	if len(out) != 0 {
		t.Fatalf("out = %+v, want none", out)
	}
	if len(diags) != 1 || diags[0].Kind != DiagInvalidEndpoints {
		t.Fatalf("diags = %+v, want one %s", diags, DiagInvalidEndpoints)
	}
}

func TestRelationMapBelowThreshold(t *testing.T) {
	m := newRelationMapper(t)
	ents, index := testEntities()
	raws := []extract.RawRelation{
		{Seq: 0, Source: 0, Target: 1, Phrase: "随便看看", Confidence: 0.3},
	}
	out, diags := m.Map(0, raws, ents, index)
	if len(out) != 0 {
		t.Fatalf("out = %+v, want none", out)
	}
	if len(diags) != 1 || diags[0].Kind != DiagUnmappedRelation {
		t.Fatalf("diags = %+v, want one %s", diags, DiagUnmappedRelation)
	}
}

func TestRelationMapMissingEndpoint(t *testing.T) {
	m := newRelationMapper(t)
	ents, index := testEntities()
	raws := []extract.RawRelation{
		{Seq: 0, Source: 7, Target: 1, TypeHint: "works_for", Phrase: "在", Confidence: 0.9},
	}
	out, diags := m.Map(0, raws, ents, index)
	if len(out) != 0 {
		t.Fatalf("out = %+v, want none", out)
	}
	if len(diags) != 1 || diags[0].Kind != DiagUnmappedRelation {
		t.Fatalf("diags = %+v, want one %s", diags, DiagUnmappedRelation)
	}
	if diags[0].Detail != "endpoint entity was not mapped" {
		t.Errorf("detail = %q", diags[0].Detail)
	}
}
