package ontology

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the on-disk representation of an ontology, in YAML or JSON.
type File struct {
	EntityTypes   []EntityType   `json:"entity_types" yaml:"entity_types"`
	RelationTypes []RelationType `json:"relation_types" yaml:"relation_types"`
}

// Load reads an ontology definition file and builds a registry from
// it. Entity types are registered before relation types so that
// domain/range references resolve regardless of file order.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ontology: %w", err)
	}

	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &f)
	default:
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing ontology %s: %w", path, err)
	}

	r := NewRegistry()
	for _, et := range f.EntityTypes {
		if err := r.RegisterEntityType(et); err != nil {
			return nil, err
		}
	}
	for _, rt := range f.RelationTypes {
		if err := r.RegisterRelationType(rt); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Export writes the registry to path as YAML, or JSON for a .json
// extension. Types are written in sorted name order.
func (r *Registry) Export(path string) error {
	f := File{}
	for _, name := range r.EntityTypeNames() {
		et, _ := r.EntityType(name)
		f.EntityTypes = append(f.EntityTypes, et)
	}
	for _, name := range r.RelationTypeNames() {
		rt, _ := r.RelationType(name)
		f.RelationTypes = append(f.RelationTypes, rt)
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(f, "", "  ")
	default:
		data, err = yaml.Marshal(f)
	}
	if err != nil {
		return fmt.Errorf("encoding ontology: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
