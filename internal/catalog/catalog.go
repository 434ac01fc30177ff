// Package catalog maps every Receita Federal dataset type to the filename
// token that identifies its extracted files and to its fixed column layout.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDatasetType is returned when a type name matches no catalog entry.
var ErrUnknownDatasetType = errors.New("unknown dataset type")

type DatasetType string

const (
	Empresa         DatasetType = "empresa"
	Estabelecimento DatasetType = "estabelecimento"
	Socio           DatasetType = "socio"
	Cnae            DatasetType = "cnae"
	Natureza        DatasetType = "natureza"
	Municipio       DatasetType = "municipio"
	Simples         DatasetType = "simples"
	Motivo          DatasetType = "motivo"
	Pais            DatasetType = "pais"
	Qualificacao    DatasetType = "qualificacao"
)

func (t DatasetType) String() string { return string(t) }

// Entry is one dataset type with its associated data.
type Entry struct {
	Type DatasetType
	// Aliases are extra accepted names (plurals, English names).
	Aliases []string
	// Token is matched against the uppercased extracted filename.
	Token string
	// Archive is the stem of the remote zip name, e.g. "Empresas" for
	// Empresas0.zip .. Empresas9.zip.
	Archive string
	Columns []string
}

// Catalog is an immutable, ordered set of entries.
type Catalog struct {
	entries []Entry
	byName  map[string]int
	byType  map[string]int
}

// New validates entries and builds a catalog that keeps their order.
func New(entries ...Entry) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]int), byType: make(map[string]int)}
	tokens := make(map[string]DatasetType)
	for _, e := range entries {
		if strings.TrimSpace(string(e.Type)) == "" {
			return nil, fmt.Errorf("catalog: entry with empty type")
		}
		if strings.TrimSpace(e.Token) == "" {
			return nil, fmt.Errorf("catalog: %s has no recognition token", e.Type)
		}
		if len(e.Columns) == 0 {
			return nil, fmt.Errorf("catalog: %s has no columns", e.Type)
		}
		e.Token = strings.ToUpper(e.Token)
		if prev, ok := tokens[e.Token]; ok {
			return nil, fmt.Errorf("catalog: token %q used by %s and %s", e.Token, prev, e.Type)
		}
		tokens[e.Token] = e.Type

		idx := len(c.entries)
		c.byType[normalize(string(e.Type))] = idx
		for _, n := range append([]string{string(e.Type)}, e.Aliases...) {
			key := normalize(n)
			if _, dup := c.byName[key]; dup {
				return nil, fmt.Errorf("catalog: name %q registered twice", n)
			}
			c.byName[key] = idx
		}
		e.Aliases = append([]string(nil), e.Aliases...)
		e.Columns = append([]string(nil), e.Columns...)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// MustNew is New for package-level catalogs.
func MustNew(entries ...Entry) *Catalog {
	c, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return c
}

// Resolve finds the entry for a type name. Matching is case-insensitive.
// Names and aliases are tried as given; failing that, a single trailing "s"
// is removed and the result must be a type name. "empresas" and "CNAES"
// resolve, "pais" stays pais, "empresass" is unknown.
func (c *Catalog) Resolve(typeName string) (Entry, error) {
	key := normalize(typeName)
	if i, ok := c.byName[key]; ok {
		return c.entries[i], nil
	}
	if stripped := strings.TrimSuffix(key, "s"); stripped != key {
		if i, ok := c.byType[stripped]; ok {
			return c.entries[i], nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %q", ErrUnknownDatasetType, typeName)
}

// Entries returns a copy of the entries in enumeration order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Types returns the dataset types in enumeration order.
func (c *Catalog) Types() []DatasetType {
	out := make([]DatasetType, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.Type)
	}
	return out
}

// Subset returns a catalog restricted to the given names, keeping catalog
// order. An empty list returns c itself.
func (c *Catalog) Subset(names []string) (*Catalog, error) {
	if len(names) == 0 {
		return c, nil
	}
	keep := make(map[DatasetType]bool, len(names))
	for _, n := range names {
		e, err := c.Resolve(n)
		if err != nil {
			return nil, err
		}
		keep[e.Type] = true
	}
	var sel []Entry
	for _, e := range c.entries {
		if keep[e.Type] {
			sel = append(sel, e)
		}
	}
	return New(sel...)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
