// Package ontology defines the schema layer governing extraction and
// mapping: named entity types with exemplars, and relation types with
// domain/range constraints and trigger phrases.
package ontology

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

var (
	// ErrDuplicateType is returned when registering a type name twice.
	ErrDuplicateType = errors.New("kgraph: duplicate type name")

	// ErrUnknownTypeReference is returned when a relation type names
	// an entity type that is not registered.
	ErrUnknownTypeReference = errors.New("kgraph: unknown entity type reference")

	// ErrInvalidType is returned for structurally invalid type
	// definitions, such as a missing name.
	ErrInvalidType = errors.New("kgraph: invalid type definition")
)

// EntityType describes a class of entities.
type EntityType struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Properties  []string `json:"properties,omitempty" yaml:"properties,omitempty"`

	// Exemplars are representative entity names used as similarity
	// anchors during type-level mapping.
	Exemplars []string `json:"exemplars,omitempty" yaml:"exemplars,omitempty"`

	// ParentType optionally names a broader registered type.
	ParentType string `json:"parent_type,omitempty" yaml:"parent_type,omitempty"`
}

// RelationType describes a class of directed relations. Domain and
// Range list the entity type names admissible as source and target.
type RelationType struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Domain      []string `json:"domain" yaml:"domain"`
	Range       []string `json:"range" yaml:"range"`

	// Phrases are trigger phrases used as similarity anchors when
	// mapping extracted relation phrases onto this type.
	Phrases    []string `json:"phrases,omitempty" yaml:"phrases,omitempty"`
	Properties []string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Registry holds the entity and relation type inventory for one
// pipeline run. It is immutable once handed to a pipeline; register
// all types before use.
type Registry struct {
	entities  map[string]EntityType
	relations map[string]RelationType
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities:  make(map[string]EntityType),
		relations: make(map[string]RelationType),
	}
}

// RegisterEntityType adds an entity type. The name must be non-empty
// and unused, and ParentType, if set, must already be registered.
func (r *Registry) RegisterEntityType(et EntityType) error {
	if et.Name == "" {
		return fmt.Errorf("%w: entity type has no name", ErrInvalidType)
	}
	if _, ok := r.entities[et.Name]; ok {
		return fmt.Errorf("%w: entity type %q", ErrDuplicateType, et.Name)
	}
	if et.ParentType != "" {
		if _, ok := r.entities[et.ParentType]; !ok {
			return fmt.Errorf("%w: parent type %q of %q", ErrUnknownTypeReference, et.ParentType, et.Name)
		}
	}
	r.entities[et.Name] = et
	return nil
}

// RegisterRelationType adds a relation type. Every entity type named
// in Domain and Range must already be registered.
func (r *Registry) RegisterRelationType(rt RelationType) error {
	if rt.Name == "" {
		return fmt.Errorf("%w: relation type has no name", ErrInvalidType)
	}
	if _, ok := r.relations[rt.Name]; ok {
		return fmt.Errorf("%w: relation type %q", ErrDuplicateType, rt.Name)
	}
	if len(rt.Domain) == 0 || len(rt.Range) == 0 {
		return fmt.Errorf("%w: relation type %q needs a non-empty domain and range", ErrInvalidType, rt.Name)
	}
	for _, name := range rt.Domain {
		if _, ok := r.entities[name]; !ok {
			return fmt.Errorf("%w: domain type %q of %q", ErrUnknownTypeReference, name, rt.Name)
		}
	}
	for _, name := range rt.Range {
		if _, ok := r.entities[name]; !ok {
			return fmt.Errorf("%w: range type %q of %q", ErrUnknownTypeReference, name, rt.Name)
		}
	}
	r.relations[rt.Name] = rt
	return nil
}

// EntityType looks up a registered entity type by name.
func (r *Registry) EntityType(name string) (EntityType, bool) {
	et, ok := r.entities[name]
	return et, ok
}

// RelationType looks up a registered relation type by name.
func (r *Registry) RelationType(name string) (RelationType, bool) {
	rt, ok := r.relations[name]
	return rt, ok
}

// EntityTypeNames returns all registered entity type names, sorted.
func (r *Registry) EntityTypeNames() []string {
	names := make([]string, 0, len(r.entities))
	for name := range r.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RelationTypeNames returns all registered relation type names, sorted.
func (r *Registry) RelationTypeNames() []string {
	names := make([]string, 0, len(r.relations))
	for name := range r.relations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateRelation reports whether sourceType and targetType satisfy
// the domain and range of the named relation type. Unknown relation
// types validate false.
func (r *Registry) ValidateRelation(relation, sourceType, targetType string) bool {
	rt, ok := r.relations[relation]
	if !ok {
		return false
	}
	return slices.Contains(rt.Domain, sourceType) && slices.Contains(rt.Range, targetType)
}

// PossibleRelations returns the names of all relation types whose
// domain admits sourceType and whose range admits targetType, sorted.
func (r *Registry) PossibleRelations(sourceType, targetType string) []string {
	var names []string
	for name, rt := range r.relations {
		if slices.Contains(rt.Domain, sourceType) && slices.Contains(rt.Range, targetType) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
