package model

import (
	"fmt"
	"strings"
)

// TemplateName is a template folder name drawn from the allow-list.
type TemplateName string

// DefaultTemplateNames is the built-in allow-list.
var DefaultTemplateNames = []string{"react", "angular", "express", "nestjs"}

// TemplateNameError reports a name that is not in the allow-list.
type TemplateNameError struct {
	// Name is the rejected name.
	Name string
	// Available lists the accepted names in catalog order.
	Available []string
}

// Error implements the error interface.
func (e *TemplateNameError) Error() string {
	return fmt.Sprintf("template %q is not available (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// Catalog is the fixed set of template names a caller may request.
// It is built once and never mutated afterwards, so it is safe for concurrent use.
type Catalog struct {
	names []TemplateName
	index map[TemplateName]struct{}
}

// NewCatalog creates a catalog from names, dropping blanks and duplicates
// while keeping first-seen order.
func NewCatalog(names []string) *Catalog {
	c := &Catalog{index: make(map[TemplateName]struct{}, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		name := TemplateName(n)
		if _, dup := c.index[name]; dup {
			continue
		}
		c.index[name] = struct{}{}
		c.names = append(c.names, name)
	}
	return c
}

// Names returns the allow-listed names in order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	for i, n := range c.names {
		out[i] = string(n)
	}
	return out
}

// Len returns the number of allow-listed names.
func (c *Catalog) Len() int {
	return len(c.names)
}

// Contains reports whether name is allow-listed.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[TemplateName(name)]
	return ok
}

// Validate checks every name against the allow-list and returns them typed,
// in the order given with repeats removed. The first unknown name fails the
// whole batch.
func (c *Catalog) Validate(names []string) ([]TemplateName, error) {
	out := make([]TemplateName, 0, len(names))
	seen := make(map[TemplateName]struct{}, len(names))
	for _, n := range names {
		if !c.Contains(n) {
			return nil, &TemplateNameError{Name: n, Available: c.Names()}
		}
		name := TemplateName(n)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}
