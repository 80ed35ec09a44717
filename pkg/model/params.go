package model

import (
	"maps"
	"sort"
	"strconv"
	"strings"
)

// Params is the typed parameter mapping passed to model construction, reset,
// and reconfiguration. Every model parameter in this system is numeric; the
// boundary layer validates shape before a Params reaches a model.
type Params map[string]float64

// Float returns the value for key, or def when the key is absent.
func (p Params) Float(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Clone returns an independent copy of p. Cloning nil yields nil.
func (p Params) Clone() Params {
	return maps.Clone(p)
}

// String renders the params as "key=value" pairs sorted by key, for event
// log entries.
func (p Params) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(p[k], 'g', -1, 64))
	}
	return b.String()
}
