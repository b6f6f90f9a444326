package ontology

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, et := range []EntityType{
		{Name: "Person", Exemplars: []string{"张三"}},
		{Name: "Organization", Exemplars: []string{"北京大学"}},
		{Name: "Location"},
	} {
		if err := r.RegisterEntityType(et); err != nil {
			t.Fatalf("registering %s: %v", et.Name, err)
		}
	}
	if err := r.RegisterRelationType(RelationType{
		Name:    "works_for",
		Domain:  []string{"Person"},
		Range:   []string{"Organization"},
		Phrases: []string{"工作"},
	}); err != nil {
		t.Fatalf("registering works_for: %v", err)
	}
	return r
}

// ---------------------------------------------------------------------------
// Registration
// ---------------------------------------------------------------------------

func TestRegisterDuplicateEntityType(t *testing.T) {
	r := testRegistry(t)
	err := r.RegisterEntityType(EntityType{Name: "Person"})
	if !errors.Is(err, ErrDuplicateType) {
		t.Fatalf("err = %v, want ErrDuplicateType", err)
	}
}

func TestRegisterRelationUnknownDomain(t *testing.T) {
	r := testRegistry(t)
	err := r.RegisterRelationType(RelationType{
		Name:   "owns",
		Domain: []string{"Company"},
		Range:  []string{"Organization"},
	})
	if !errors.Is(err, ErrUnknownTypeReference) {
		t.Fatalf("err = %v, want ErrUnknownTypeReference", err)
	}
}

func TestRegisterEntityUnknownParent(t *testing.T) {
	r := testRegistry(t)
	err := r.RegisterEntityType(EntityType{Name: "Company", ParentType: "LegalEntity"})
	if !errors.Is(err, ErrUnknownTypeReference) {
		t.Fatalf("err = %v, want ErrUnknownTypeReference", err)
	}
}

func TestRegisterEmptyName(t *testing.T) {
	r := NewRegistry()
	if err := r.RegisterEntityType(EntityType{}); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("err = %v, want ErrInvalidType", err)
	}
	if err := r.RegisterRelationType(RelationType{}); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("err = %v, want ErrInvalidType", err)
	}
}

func TestTypeNamesSorted(t *testing.T) {
	r := testRegistry(t)
	names := r.EntityTypeNames()
	want := []string{"Location", "Organization", "Person"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

// ---------------------------------------------------------------------------
// Domain / range validation
// ---------------------------------------------------------------------------

func TestValidateRelation(t *testing.T) {
	r := testRegistry(t)
	tests := []struct {
		relation, src, dst string
		want               bool
	}{
		{"works_for", "Person", "Organization", true},
		{"works_for", "Organization", "Person", false},
		{"works_for", "Person", "Location", false},
		{"unknown", "Person", "Organization", false},
	}
	for _, tt := range tests {
		if got := r.ValidateRelation(tt.relation, tt.src, tt.dst); got != tt.want {
			t.Errorf("ValidateRelation(%s, %s, %s) = %v, want %v",
				tt.relation, tt.src, tt.dst, got, tt.want)
		}
	}
}

func TestPossibleRelations(t *testing.T) {
	r := testRegistry(t)
	got := r.PossibleRelations("Person", "Organization")
	if len(got) != 1 || got[0] != "works_for" {
		t.Fatalf("PossibleRelations = %v, want [works_for]", got)
	}
	if got := r.PossibleRelations("Location", "Person"); len(got) != 0 {
		t.Fatalf("PossibleRelations = %v, want empty", got)
	}
}

// ---------------------------------------------------------------------------
// Built-in ontology
// ---------------------------------------------------------------------------

func TestDefaultOntology(t *testing.T) {
	r := Default()

	for _, name := range []string{"Person", "Organization", "Location", "Event", "Product", "Concept"} {
		if _, ok := r.EntityType(name); !ok {
			t.Errorf("default ontology missing entity type %s", name)
		}
	}
	for _, name := range []string{"works_for", "located_in", "founder_of", "graduated_from"} {
		if _, ok := r.RelationType(name); !ok {
			t.Errorf("default ontology missing relation type %s", name)
		}
	}

	if !r.ValidateRelation("works_for", "Person", "Organization") {
		t.Error("works_for should admit Person -> Organization")
	}
	if r.ValidateRelation("works_for", "Organization", "Person") {
		t.Error("works_for should reject Organization -> Person")
	}
}

// ---------------------------------------------------------------------------
// Load / export round trip
// ---------------------------------------------------------------------------

func TestExportLoadRoundTrip(t *testing.T) {
	for _, ext := range []string{"yaml", "json"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ontology."+ext)
			if err := Default().Export(path); err != nil {
				t.Fatalf("export: %v", err)
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}

			wantEnts := Default().EntityTypeNames()
			gotEnts := loaded.EntityTypeNames()
			if len(gotEnts) != len(wantEnts) {
				t.Fatalf("entity types = %v, want %v", gotEnts, wantEnts)
			}
			rt, ok := loaded.RelationType("works_for")
			if !ok {
				t.Fatal("works_for missing after round trip")
			}
			if len(rt.Phrases) == 0 {
				t.Error("works_for phrases lost in round trip")
			}
		})
	}
}

func TestLoadRejectsBadReferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := writeFile(path, `
entity_types:
  - name: Person
relation_types:
  - name: works_for
    domain: [Person]
    range: [Organization]
`); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrUnknownTypeReference) {
		t.Fatalf("err = %v, want ErrUnknownTypeReference", err)
	}
}
