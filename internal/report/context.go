package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one top-level field of a template context.
type Entry struct {
	Key   string
	Value any
}

// Context is the ordered mapping handed to report templates: patient fields,
// then measurements, then stress-only fields.
type Context struct {
	entries []Entry
	index   map[string]int
}

func newContext() *Context { return &Context{index: make(map[string]int)} }

// Set stores a field; a key set twice keeps its first position.
func (c *Context) Set(key string, v any) {
	if i, ok := c.index[key]; ok {
		c.entries[i].Value = v
		return
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, Entry{Key: key, Value: v})
}

// Get returns the value of key.
func (c *Context) Get(key string) (any, bool) {
	i, ok := c.index[key]
	if !ok {
		return nil, false
	}
	return c.entries[i].Value, true
}

// Entries returns the fields in order.
func (c *Context) Entries() []Entry { return append([]Entry(nil), c.entries...) }

// Map returns the plain mapping.
func (c *Context) Map() map[string]any {
	m := make(map[string]any, len(c.entries))
	for _, e := range c.entries {
		m[e.Key] = e.Value
	}
	return m
}

// MarshalJSON writes an object whose members keep context order.
func (c *Context) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range c.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, _ := json.Marshal(e.Key)
		vb, err := json.Marshal(e.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", e.Key, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes a mapping whose entries keep context order.
func (c *Context) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range c.entries {
		var val yaml.Node
		if err := val.Encode(e.Value); err != nil {
			return nil, fmt.Errorf("marshal %s: %w", e.Key, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key}, &val)
	}
	return node, nil
}

// MotEntry is one wall motion segment as exposed to templates.
type MotEntry struct {
	Key       string `json:"key" yaml:"key"`
	Motilidad []any  `json:"motilidad" yaml:"motilidad"`
}

// Context builds the template context of r. Measurements override patient
// fields of the same name.
func (r *Result) Context() *Context {
	c := newContext()
	if r.Patient != nil {
		for _, k := range r.Patient.Keys() {
			c.Set(k, r.Patient.Get(k))
		}
	}
	if r.Measurements != nil {
		for _, k := range r.Measurements.Keys() {
			v, _ := r.Measurements.Get(k)
			c.Set(k, v.Interface())
		}
	}
	if r.Motility != nil {
		mot := make([]MotEntry, 0, len(r.Segments))
		for _, s := range r.Segments {
			mot = append(mot, MotEntry{Key: s.Name, Motilidad: s.Motilidad()})
		}
		c.Set("mot", mot)
		c.Set("reposo", r.Motility.Reposo)
		c.Set("esfuerzo", r.Motility.Esfuerzo)
		c.Set("mejoria", r.Motility.Mejoria)
	}
	return c
}

// Stem returns the output file stem "<Name>_<tipo>_<Exam_Date>", with
// "informe" and "fecha" standing in for a missing name or date.
func (r *Result) Stem() string {
	name, date := "informe", "fecha"
	if r.Patient != nil {
		if v := r.Patient.Name(); v != "" {
			name = v
		}
		if v := r.Patient.ExamDate(); v != "" {
			date = v
		}
	}
	return safeName(fmt.Sprintf("%s_%s_%s", name, r.Tipo, date))
}

var nameReplacer = strings.NewReplacer("/", "-", "\\", "-", ":", "-", "*", "", "?", "", "\"", "", "<", "", ">", "", "|", "")

func safeName(s string) string {
	s = nameReplacer.Replace(strings.TrimSpace(s))
	return filepath.Base(s)
}
