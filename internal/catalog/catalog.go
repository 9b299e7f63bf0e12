// Package catalog holds the concept table the lexicon names: a fixed mapping
// of semantic categories to concept names, flattened for lookup.
package catalog

import (
	"errors"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Category is a semantic category of concepts.
type Category string

// The six semantic categories, in declaration order.
const (
	Natural  Category = "natural"
	Abstract Category = "abstract"
	Quality  Category = "quality"
	Action   Category = "action"
	Relation Category = "relation"
	Being    Category = "being"
)

// Categories lists every category in declaration order.
var Categories = []Category{Natural, Abstract, Quality, Action, Relation, Being}

// ErrInvalid is returned when a catalog table fails validation.
var ErrInvalid = errors.New("invalid catalog")

var defaultTable = map[Category][]string{
	Natural: {
		"water", "fire", "stone", "tree", "sun", "moon", "star", "river",
		"mountain", "wind", "rain", "earth", "sea", "cloud", "seed", "leaf",
	},
	Abstract: {
		"time", "death", "life", "dream", "truth", "memory", "fear", "hope",
		"spirit", "name",
	},
	Quality: {
		"big", "small", "hot", "cold", "bright", "dark", "old", "new",
		"good", "bad", "swift", "heavy",
	},
	Action: {
		"go", "come", "eat", "drink", "see", "speak", "sleep", "give",
		"take", "make", "strike", "sing", "hunt", "build",
	},
	Relation: {
		"in", "on", "with", "without", "before", "after", "toward", "from",
		"between",
	},
	Being: {
		"person", "child", "mother", "father", "friend", "animal", "bird",
		"fish", "dog", "wolf", "elder", "stranger",
	},
}

// Catalog is an immutable concept table.
type Catalog struct {
	concepts []string
	category map[string]Category
	byCat    map[Category][]string
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in table: %v", err))
	}
	return c
}

// New builds a catalog from a category table. Concept names must be globally
// unique, categories must be known, and at least one concept must exist.
func New(table map[Category][]string) (*Catalog, error) {
	c := &Catalog{
		category: make(map[string]Category),
		byCat:    make(map[Category][]string, len(table)),
	}
	known := make(map[Category]bool, len(Categories))
	for _, cat := range Categories {
		known[cat] = true
	}
	for cat := range table {
		if !known[cat] {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalid, cat)
		}
	}
	// Flatten in category declaration order so the concept list is stable.
	for _, cat := range Categories {
		for _, concept := range table[cat] {
			if concept == "" {
				return nil, fmt.Errorf("%w: empty concept in %q", ErrInvalid, cat)
			}
			if prev, dup := c.category[concept]; dup {
				return nil, fmt.Errorf("%w: concept %q listed under both %q and %q", ErrInvalid, concept, prev, cat)
			}
			c.category[concept] = cat
			c.concepts = append(c.concepts, concept)
			c.byCat[cat] = append(c.byCat[cat], concept)
		}
	}
	if len(c.concepts) == 0 {
		return nil, fmt.Errorf("%w: no concepts", ErrInvalid)
	}
	return c, nil
}

// Concepts returns the flattened concept list. Callers must not modify it.
func (c *Catalog) Concepts() []string {
	return c.concepts
}

// CategoryOf returns the category of concept.
func (c *Catalog) CategoryOf(concept string) (Category, bool) {
	cat, ok := c.category[concept]
	return cat, ok
}

// InCategory returns the concepts of cat in table order.
func (c *Catalog) InCategory(cat Category) []string {
	return c.byCat[cat]
}

// Len returns the number of concepts.
func (c *Catalog) Len() int {
	return len(c.concepts)
}

// file is the on-disk TOML layout:
//
//	[categories]
//	natural = ["water", "fire"]
type file struct {
	Categories map[string][]string `toml:"categories"`
}

// Load reads a catalog from a TOML file. An empty path yields the built-in
// catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parsing %s: %w", path, err)
	}
	table := make(map[Category][]string, len(f.Categories))
	for name, concepts := range f.Categories {
		table[Category(name)] = concepts
	}
	c, err := New(table)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, nil
}

// Table returns a copy of the catalog's category table, suitable for
// serialization.
func (c *Catalog) Table() map[string][]string {
	out := make(map[string][]string, len(c.byCat))
	for cat, concepts := range c.byCat {
		out[string(cat)] = append([]string(nil), concepts...)
	}
	return out
}
