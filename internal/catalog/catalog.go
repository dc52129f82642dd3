// Package catalog holds the program tables the shell offers: families of
// programs (F25K, F210K) and the periodic interval durations.
//
// Catalogs are decoded from YAML. The built-in tables are embedded; a custom
// file can replace them at runtime.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lowaak/running-coach/internal/progression"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Style describes how a family's entries are run
type Style int

const (
	StyleSequence Style = iota // Walk the entry's intervals in order
	StylePeriodic              // Repeat the entry's single interval
)

func (s Style) String() string {
	switch s {
	case StyleSequence:
		return "sequence"
	case StylePeriodic:
		return "periodic"
	default:
		return fmt.Sprintf("style(%d)", int(s))
	}
}

// ParseStyle converts a style name back to a Style
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sequence":
		return StyleSequence, nil
	case "periodic":
		return StylePeriodic, nil
	}
	return 0, fmt.Errorf("unknown style %q", s)
}

// Entry is one selectable program
type Entry struct {
	Title    string
	Subtitle string
	Program  progression.Program
}

// Family groups entries under a main menu item
type Family struct {
	ID       string
	Title    string
	Subtitle string
	Style    Style
	Entries  []Entry
}

// RepeatFirstInterval maps the family style to the engine flag
func (f Family) RepeatFirstInterval() bool {
	return f.Style == StylePeriodic
}

// Selection is a resolved family/entry pair, ready to start
type Selection struct {
	Family Family
	Entry  Entry
}

func (s Selection) Program() progression.Program {
	return s.Entry.Program
}

func (s Selection) RepeatFirstInterval() bool {
	return s.Family.RepeatFirstInterval()
}

// Catalog is the full set of families. Treat it as read-only once built.
type Catalog struct {
	Families []Family
}

var ErrNotFound = errors.New("not found")

// Family looks a family up by ID
func (c *Catalog) Family(id string) (Family, int, error) {
	for i, f := range c.Families {
		if f.ID == id {
			return f, i, nil
		}
	}
	return Family{}, -1, fmt.Errorf("family %q: %w", id, ErrNotFound)
}

// Entry resolves a family/entry index pair
func (c *Catalog) Entry(familyIdx, entryIdx int) (Selection, error) {
	if familyIdx < 0 || familyIdx >= len(c.Families) {
		return Selection{}, fmt.Errorf("family index %d: %w", familyIdx, ErrNotFound)
	}
	family := c.Families[familyIdx]
	if entryIdx < 0 || entryIdx >= len(family.Entries) {
		return Selection{}, fmt.Errorf("family %q entry index %d: %w", family.ID, entryIdx, ErrNotFound)
	}
	return Selection{Family: family, Entry: family.Entries[entryIdx]}, nil
}

// Validate checks that every entry can be started
func (c *Catalog) Validate() error {
	if len(c.Families) == 0 {
		return errors.New("catalog has no families")
	}

	seen := make(map[string]bool, len(c.Families))
	for _, f := range c.Families {
		if f.ID == "" {
			return fmt.Errorf("family %q: missing id", f.Title)
		}
		if seen[f.ID] {
			return fmt.Errorf("family %q: duplicate id", f.ID)
		}
		seen[f.ID] = true

		if len(f.Entries) == 0 {
			return fmt.Errorf("family %q: no entries", f.ID)
		}
		for i, e := range f.Entries {
			if err := e.Program.Validate(); err != nil {
				return fmt.Errorf("family %q entry %d: %w", f.ID, i, err)
			}
			if f.Style == StylePeriodic && len(e.Program.Intervals) != 1 {
				return fmt.Errorf("family %q entry %d: periodic entries need exactly one interval, got %d",
					f.ID, i, len(e.Program.Intervals))
			}
		}
	}
	return nil
}

type catalogFile struct {
	Families []familyFile `yaml:"families"`
}

type familyFile struct {
	ID       string      `yaml:"id"`
	Title    string      `yaml:"title"`
	Subtitle string      `yaml:"subtitle"`
	Style    string      `yaml:"style"`
	Entries  []entryFile `yaml:"entries"`
}

type entryFile struct {
	Title     string   `yaml:"title"`
	Subtitle  string   `yaml:"subtitle"`
	Intervals []string `yaml:"intervals"`
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	c := &Catalog{Families: make([]Family, 0, len(file.Families))}
	for _, ff := range file.Families {
		style, err := ParseStyle(ff.Style)
		if err != nil {
			return nil, fmt.Errorf("family %q: %w", ff.ID, err)
		}

		family := Family{
			ID:       ff.ID,
			Title:    ff.Title,
			Subtitle: ff.Subtitle,
			Style:    style,
			Entries:  make([]Entry, 0, len(ff.Entries)),
		}
		for i, ef := range ff.Entries {
			intervals := make([]progression.Interval, 0, len(ef.Intervals))
			for _, raw := range ef.Intervals {
				interval, err := ParseInterval(raw)
				if err != nil {
					return nil, fmt.Errorf("family %q entry %d: %w", ff.ID, i, err)
				}
				intervals = append(intervals, interval)
			}
			family.Entries = append(family.Entries, Entry{
				Title:    ef.Title,
				Subtitle: ef.Subtitle,
				Program:  progression.Program{Title: ef.Title, Intervals: intervals},
			})
		}
		c.Families = append(c.Families, family)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseInterval reads the "<kind> <seconds>" form used in catalog files
func ParseInterval(s string) (progression.Interval, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return progression.Interval{}, fmt.Errorf("interval %q: want \"<kind> <seconds>\"", s)
	}
	kind, err := progression.ParseKind(fields[0])
	if err != nil {
		return progression.Interval{}, fmt.Errorf("interval %q: %w", s, err)
	}
	seconds, err := strconv.Atoi(fields[1])
	if err != nil {
		return progression.Interval{}, fmt.Errorf("interval %q: bad seconds: %w", s, err)
	}
	return progression.Interval{Kind: kind, Seconds: seconds}, nil
}

// Load reads a catalog file from disk
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

var builtin = mustParse(builtinYAML)

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("catalog: builtin tables are invalid: %v", err))
	}
	return c
}

// Builtin returns the embedded catalog
func Builtin() *Catalog {
	return builtin
}

// LoadOrBuiltin loads path, or returns the builtin catalog when path is empty
func LoadOrBuiltin(path string) (*Catalog, error) {
	if path == "" {
		return Builtin(), nil
	}
	return Load(path)
}
