package layout

import (
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/beltflow/pkg/errors"
	"github.com/matzehuels/beltflow/pkg/geom"
)

// Kind classifies an object by how it participates in item flow.
type Kind int

const (
	// KindNone objects occupy space but never carry items (walls, poles).
	KindNone Kind = iota
	// KindInserter picks items up behind it and drops them in front.
	KindInserter
	// KindAssembler produces the outputs of its configured recipe.
	KindAssembler
	// KindBelt carries items along two lanes.
	KindBelt
)

var kindNames = map[Kind]string{
	KindNone:      "none",
	KindInserter:  "inserter",
	KindAssembler: "assembler",
	KindBelt:      "belt",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind converts a catalog kind name into a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return k, nil
		}
	}
	return KindNone, errors.New(errors.ErrCodeInvalidCatalog, "unknown kind %q", s)
}

// Prototype describes every object placed under the same name.
type Prototype struct {
	Name string
	Kind Kind
	Size geom.Point
	// Reach is how many tiles an inserter looks in front of and behind itself.
	Reach int
	// NodeOffset and NodeDelta position the first item icon of each lane and
	// the step between icons, for an object facing north.
	NodeOffset *geom.Point
	NodeDelta  *geom.Point
}

// Catalog maps prototype names to prototypes and recipes to their outputs.
type Catalog struct {
	prototypes map[string]Prototype
	recipes    map[string][]string
}

var (
	beltOffset = geom.Pt(-1.0/8, 1.0/8)
	beltDelta  = geom.Pt(0, 1.0/8)
)

// DefaultCatalog returns the built-in prototypes. Recipes default to
// producing an item named after themselves.
func DefaultCatalog() *Catalog {
	c := &Catalog{prototypes: map[string]Prototype{}, recipes: map[string][]string{}}
	for _, p := range []Prototype{
		{Name: "inserter", Kind: KindInserter, Size: geom.Pt(1, 1), Reach: 1},
		{Name: "fast_inserter", Kind: KindInserter, Size: geom.Pt(1, 1), Reach: 1},
		{Name: "long_handed_inserter", Kind: KindInserter, Size: geom.Pt(1, 1), Reach: 2},
		{Name: "assembling_machine", Kind: KindAssembler, Size: geom.Pt(3, 3)},
		{Name: "transport_belt", Kind: KindBelt, Size: geom.Pt(1, 1), NodeOffset: &beltOffset, NodeDelta: &beltDelta},
		{Name: "wall", Kind: KindNone, Size: geom.Pt(1, 1)},
	} {
		c.prototypes[p.Name] = p
	}
	return c
}

// Prototype looks up a prototype by name.
func (c *Catalog) Prototype(name string) (Prototype, bool) {
	p, ok := c.prototypes[name]
	return p, ok
}

// Names returns all prototype names in sorted order.
func (c *Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c.prototypes))
}

// Recipes returns the names of recipes with explicit outputs, sorted.
func (c *Catalog) Recipes() []string {
	return slices.Sorted(maps.Keys(c.recipes))
}

// RecipeOutputs returns the items a recipe produces. An empty recipe
// produces nothing; a recipe missing from the catalog produces itself.
func (c *Catalog) RecipeOutputs(recipe string) []string {
	if recipe == "" {
		return nil
	}
	if out, ok := c.recipes[recipe]; ok {
		return slices.Clone(out)
	}
	return []string{recipe}
}

// catalogFile is the TOML shape accepted by [Catalog.Load].
//
//	[[prototype]]
//	name = "stack_inserter"
//	kind = "inserter"
//	reach = 1
//
//	[recipe]
//	"advanced-circuit" = ["advanced-circuit"]
//	"oil-processing" = ["petroleum-gas", "light-oil", "heavy-oil"]
type catalogFile struct {
	Prototypes []struct {
		Name   string    `toml:"name"`
		Kind   string    `toml:"kind"`
		Width  float64   `toml:"width"`
		Height float64   `toml:"height"`
		Reach  int       `toml:"reach"`
		Offset []float64 `toml:"offset"`
		Delta  []float64 `toml:"delta"`
	} `toml:"prototype"`
	Recipes map[string][]string `toml:"recipe"`
}

// Load decodes TOML from r and merges it over the current catalog.
// Later definitions replace earlier ones with the same name.
func (c *Catalog) Load(r io.Reader) error {
	var f catalogFile
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode catalog")
	}

	for i, p := range f.Prototypes {
		if p.Name == "" {
			return errors.New(errors.ErrCodeInvalidCatalog, "prototype %d: missing name", i)
		}
		kind, err := ParseKind(p.Kind)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidCatalog, err, "prototype %s", p.Name)
		}
		proto := Prototype{
			Name:  p.Name,
			Kind:  kind,
			Size:  geom.Pt(orDefault(p.Width, 1), orDefault(p.Height, 1)),
			Reach: p.Reach,
		}
		if kind == KindInserter && proto.Reach <= 0 {
			proto.Reach = 1
		}
		if proto.NodeOffset, err = pointField(p.Offset); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidCatalog, err, "prototype %s offset", p.Name)
		}
		if proto.NodeDelta, err = pointField(p.Delta); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidCatalog, err, "prototype %s delta", p.Name)
		}
		if kind == KindBelt && proto.NodeOffset == nil {
			proto.NodeOffset, proto.NodeDelta = &beltOffset, &beltDelta
		}
		c.prototypes[p.Name] = proto
	}

	for recipe, out := range f.Recipes {
		c.recipes[recipe] = slices.Clone(out)
	}
	return nil
}

// LoadFile merges the TOML catalog at path.
func (c *Catalog) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidCatalog, err, "open %s", path)
	}
	defer f.Close()
	return c.Load(f)
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

func pointField(v []float64) (*geom.Point, error) {
	if len(v) == 0 {
		return nil, nil
	}
	if len(v) != 2 {
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "want [x, y], got %d values", len(v))
	}
	p := geom.Pt(v[0], v[1])
	return &p, nil
}
