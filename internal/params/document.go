// Package params reads ROS 2 parameter files. A parameter file is a YAML
// mapping keyed by node name (or the "/**" wildcard), each holding a
// "ros__parameters" mapping.
//
// Treat a Document as read-only; Merge returns a new one.
package params

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/peterbourgon/mergemap"
	"gopkg.in/yaml.v3"
)

const (
	// WildcardNode matches every node in a parameter file.
	WildcardNode = "/**"

	// ParametersKey holds the parameters of a node entry.
	ParametersKey = "ros__parameters"
)

// Document is a parsed parameter file.
type Document struct {
	data map[string]interface{}
}

// New returns an empty document.
func New() *Document {
	return &Document{data: make(map[string]interface{})}
}

// ErrMultipleDocuments is returned when a parameter stream holds more than one
// YAML document.
var ErrMultipleDocuments = errors.New("expected a single document in the stream")

// Parse decodes a parameter document from YAML. An empty input yields an
// empty document; a stream with several documents is rejected.
func Parse(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return New(), nil
		}
		return nil, fmt.Errorf("parsing parameters: %w", err)
	}
	var next yaml.Node
	if err := dec.Decode(&next); err != io.EOF {
		if err != nil {
			return nil, fmt.Errorf("parsing parameters: %w", err)
		}
		return nil, fmt.Errorf("parsing parameters: %w", ErrMultipleDocuments)
	}
	if raw == nil {
		return New(), nil
	}
	data, ok := normalize(raw).(map[string]interface{})
	if !ok {
		// A scalar or sequence at the top level has no keys to look up.
		return New(), nil
	}
	return &Document{data: data}, nil
}

// Load opens and parses the parameter file at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening parameter file: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// normalize converts every nested mapping to map[string]interface{} so that
// documents from any decoder can be walked and merged uniformly.
func normalize(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		res := make(map[string]interface{}, len(v))
		for key, value := range v {
			res[key] = normalize(value)
		}
		return res
	case map[interface{}]interface{}:
		res := make(map[string]interface{}, len(v))
		for key, value := range v {
			res[fmt.Sprint(key)] = normalize(value)
		}
		return res
	case []interface{}:
		res := make([]interface{}, len(v))
		for i, value := range v {
			res[i] = normalize(value)
		}
		return res
	}
	return value
}

// Get returns the value at the given key path. Missing keys and non-mapping
// intermediate values both report false.
func (d *Document) Get(path ...string) (interface{}, bool) {
	if d == nil || len(path) == 0 {
		return nil, false
	}
	var val interface{} = d.data
	for _, k := range path {
		m, ok := val.(map[string]interface{})
		if !ok {
			return nil, false
		}
		val, ok = m[k]
		if !ok {
			return nil, false
		}
	}
	return val, true
}

// String returns the string at the given key path. An absent key, a wrong
// type at any level and a non-string leaf all yield "".
func (d *Document) String(path ...string) string {
	val, ok := d.Get(path...)
	if !ok {
		return ""
	}
	s, _ := val.(string)
	return s
}

// Parameter reads a wildcard-node parameter, folding every failure into "".
func (d *Document) Parameter(name string) string {
	return d.String(WildcardNode, ParametersKey, name)
}

// Map returns a deep copy of the document contents.
func (d *Document) Map() map[string]interface{} {
	if d == nil {
		return map[string]interface{}{}
	}
	return normalize(d.data).(map[string]interface{})
}

// Merge layers other on top of d. Nested mappings are merged recursively and
// values from other win on collision. Neither input is modified.
func (d *Document) Merge(other *Document) *Document {
	return &Document{data: mergemap.Merge(d.Map(), other.Map())}
}

// MarshalYAML implements yaml.Marshaler.
func (d *Document) MarshalYAML() (interface{}, error) {
	return d.Map(), nil
}

// LoadLayered loads each parameter file in order and merges them, later files
// overriding earlier ones.
func LoadLayered(paths ...string) (*Document, error) {
	merged := New()
	for _, p := range paths {
		doc, err := Load(p)
		if err != nil {
			return nil, err
		}
		merged = merged.Merge(doc)
	}
	return merged, nil
}
