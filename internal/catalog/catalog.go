// Package catalog holds the bundled list of known RIPE RIS and RouteViews
// collectors and the lookups built on top of it.
package catalog

import (
	"fmt"
	"sort"
)

// Project name constants, matching the values used throughout the store and API.
const (
	ProjectRIPERIS    = "riperis"
	ProjectRouteViews = "route-views"
)

// Catalog is a read-only view over the bundled collector list. It is safe
// for concurrent use since it never mutates after construction.
type Catalog struct {
	byName map[string]Collector
	all    []Collector
}

// New builds a Catalog from the bundled default collector list.
func New() *Catalog {
	return newFrom(defaultCollectors)
}

func newFrom(collectors []Collector) *Catalog {
	c := &Catalog{
		byName: make(map[string]Collector, len(collectors)),
		all:    make([]Collector, len(collectors)),
	}
	copy(c.all, collectors)
	sort.Slice(c.all, func(i, j int) bool { return c.all[i].Name < c.all[j].Name })
	for _, col := range c.all {
		c.byName[col.Name] = col
	}
	return c
}

// All returns every known collector, sorted alphabetically by name.
func (c *Catalog) All() []Collector {
	out := make([]Collector, len(c.all))
	copy(out, c.all)
	return out
}

// ByName looks up a single collector. ok is false if no collector with that
// name is bundled.
func (c *Catalog) ByName(name string) (Collector, bool) {
	col, ok := c.byName[name]
	return col, ok
}

// ByProject returns every collector belonging to the given project,
// sorted alphabetically by name. An unrecognized project returns an empty
// slice, not an error: callers validate the project name themselves via
// ValidProject.
func (c *Catalog) ByProject(project string) []Collector {
	var out []Collector
	for _, col := range c.all {
		if col.Project == project {
			out = append(out, col)
		}
	}
	return out
}

// ValidProject reports whether name is one of the two known projects.
func ValidProject(name string) bool {
	return name == ProjectRIPERIS || name == ProjectRouteViews
}

// MissingCollectors returns the names present in the catalog but absent
// from seen, sorted alphabetically. It backs the doctor report: seen is
// typically the set of collector_ids found in the store's latest_files
// table.
func (c *Catalog) MissingCollectors(seen map[string]struct{}) []string {
	var missing []string
	for _, col := range c.all {
		if _, ok := seen[col.Name]; !ok {
			missing = append(missing, col.Name)
		}
	}
	sort.Strings(missing)
	return missing
}

// errUnknownCollector is returned by ByNameOrErr for unrecognized names.
func errUnknownCollector(name string) error {
	return fmt.Errorf("catalog: unknown collector %q", name)
}

// ByNameOrErr is a convenience wrapper around ByName that returns an error
// instead of a boolean, for call sites that want to propagate it directly.
func (c *Catalog) ByNameOrErr(name string) (Collector, error) {
	col, ok := c.ByName(name)
	if !ok {
		return Collector{}, errUnknownCollector(name)
	}
	return col, nil
}
