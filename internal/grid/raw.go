package grid

import (
	"fmt"

	"github.com/KaramelBytes/ecoreport/internal/measure"
)

// Raw is the uninterpreted output of a parser: field name to the text
// readings found for it, in document order.
type Raw struct {
	keys     []string
	vals     map[string][]string
	units    map[string]string
	Warnings []string
}

// NewRaw returns an empty Raw.
func NewRaw() *Raw {
	return &Raw{vals: make(map[string][]string), units: make(map[string]string)}
}

// Add stores the readings of a field seen for the first time. A key already
// present is left untouched and a warning is recorded.
func (r *Raw) Add(key string, values []string, unit string) bool {
	if _, ok := r.vals[key]; ok {
		r.Warnf("duplicate field %q ignored", key)
		return false
	}
	r.Set(key, values, unit)
	return true
}

// Set stores the readings of key, replacing any previous ones.
func (r *Raw) Set(key string, values []string, unit string) {
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = append([]string(nil), values...)
	if unit != "" {
		r.units[key] = unit
	}
}

// Warnf records a parse warning.
func (r *Raw) Warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Keys returns the field names in document order.
func (r *Raw) Keys() []string { return append([]string(nil), r.keys...) }

// Values returns the readings of key.
func (r *Raw) Values(key string) []string { return r.vals[key] }

// Has reports whether key was found.
func (r *Raw) Has(key string) bool {
	_, ok := r.vals[key]
	return ok
}

// Unit returns the unit token found next to key, if any.
func (r *Raw) Unit(key string) string { return r.units[key] }

// Len returns the number of fields.
func (r *Raw) Len() int { return len(r.keys) }

// Record converts the readings into a measurement record of text lists,
// ready for normalization.
func (r *Raw) Record() *measure.Record {
	rec := measure.NewRecord()
	for _, k := range r.keys {
		rec.Set(k, measure.Texts(r.vals[k]).WithUnit(r.units[k]))
	}
	return rec
}
