package menu

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// comingSoonMarker may replace a program body in the table asset.
const comingSoonMarker = "coming_soon"

//go:embed data/programs.yaml
var defaultPrograms []byte

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// DefaultTable returns the table embedded in the binary. It is parsed once.
func DefaultTable() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = LoadTable(bytes.NewReader(defaultPrograms))
	})
	return defaultTable, defaultErr
}

// LoadTableFile reads a table asset from disk.
func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open program table: %w", err)
	}
	defer f.Close()
	t, err := LoadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// LoadTable parses a YAML table asset. Keys must be exact gender, location and
// frequency literals; an entry is either a program mapping or the scalar coming_soon.
func LoadTable(r io.Reader) (*Table, error) {
	var raw map[string]map[string]map[string]yaml.Node
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("program table is empty")
		}
		return nil, fmt.Errorf("decode program table: %w", err)
	}

	t := &Table{programs: map[Gender]map[Location]map[Frequency]*Program{}}
	for gKey, byLoc := range raw {
		g, ok := ParseGender(gKey)
		if !ok {
			return nil, fmt.Errorf("unknown gender key %q", gKey)
		}
		t.programs[g] = map[Location]map[Frequency]*Program{}
		for lKey, byFreq := range byLoc {
			l, ok := ParseLocation(lKey)
			if !ok {
				return nil, fmt.Errorf("%s: unknown location key %q", gKey, lKey)
			}
			entries := map[Frequency]*Program{}
			for fKey, node := range byFreq {
				f, ok := ParseFrequency(fKey)
				if !ok {
					return nil, fmt.Errorf("%s.%s: unknown frequency key %q", gKey, lKey, fKey)
				}
				p, err := decodeEntry(&node)
				if err != nil {
					return nil, fmt.Errorf("%s.%s.%s: %w", gKey, lKey, fKey, err)
				}
				if p != nil {
					entries[f] = p
				}
			}
			t.programs[g][l] = entries
		}
	}
	return t, nil
}

// decodeEntry returns nil for the coming-soon marker.
func decodeEntry(node *yaml.Node) (*Program, error) {
	n := node
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind == yaml.ScalarNode {
		if strings.TrimSpace(n.Value) == comingSoonMarker {
			return nil, nil
		}
		return nil, fmt.Errorf("unexpected scalar %q", n.Value)
	}
	if err := programSchema.check(n, ""); err != nil {
		return nil, err
	}
	var p Program
	if err := n.Decode(&p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, errors.New("program title is required")
	}
	if len(p.Days) == 0 {
		return nil, errors.New("program has no days")
	}
	for i, d := range p.Days {
		if len(d.Items) == 0 {
			return nil, fmt.Errorf("day %d (%s) has no items", i+1, d.Title)
		}
	}
	return &p, nil
}

// schema lists the mapping keys a program node may use. yaml.Node.Decode has no
// strict mode, so keys are checked by walking the node before decoding.
type schema struct {
	fields map[string]*schema
	elem   *schema
}

var (
	itemSchema    = &schema{fields: map[string]*schema{"name": nil, "reps": nil, "note": nil}}
	daySchema     = &schema{fields: map[string]*schema{"title": nil, "items": {elem: itemSchema}}}
	programSchema = &schema{fields: map[string]*schema{
		"title":      nil,
		"intro":      nil,
		"days":       {elem: daySchema},
		"principles": nil,
	}}
)

// check reports the first unknown key under n. Kind mismatches are left to Decode.
func (s *schema) check(n *yaml.Node, path string) error {
	if s == nil || n == nil {
		return nil
	}
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	switch {
	case s.elem != nil && n.Kind == yaml.SequenceNode:
		for i, c := range n.Content {
			if err := s.elem.check(c, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case s.fields != nil && n.Kind == yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			sub, ok := s.fields[key]
			if !ok {
				if path == "" {
					return fmt.Errorf("unknown field %q", key)
				}
				return fmt.Errorf("%s: unknown field %q", path, key)
			}
			next := key
			if path != "" {
				next = path + "." + key
			}
			if err := sub.check(n.Content[i+1], next); err != nil {
				return err
			}
		}
	}
	return nil
}
