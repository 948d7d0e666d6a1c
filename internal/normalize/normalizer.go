// Package normalize canonicalises team names so that odds and results from
// different providers join on the same key.
package normalize

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"github.com/yourusername/value-finder/internal/config"
)

// TeamAliases lists alternative spellings of one canonical team name
type TeamAliases struct {
	Canonical string
	Aliases   []string
}

// Normalizer maps raw team names onto canonical display names.
// Lookups are case, accent and whitespace insensitive.
type Normalizer struct {
	lookup map[string]string
	logger *logrus.Logger

	mu       sync.Mutex
	unmapped map[string]struct{}
}

// NewNormalizer builds a normalizer from alias tables. Later tables may add
// aliases to an existing canonical name but may not remap a key to another one.
func NewNormalizer(logger *logrus.Logger, tables ...[]TeamAliases) (*Normalizer, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	n := &Normalizer{
		lookup:   make(map[string]string),
		logger:   logger,
		unmapped: make(map[string]struct{}),
	}

	for _, table := range tables {
		for _, entry := range table {
			canonical := collapseWhitespace(strings.TrimSpace(entry.Canonical))
			if canonical == "" {
				return nil, fmt.Errorf("alias entry with empty canonical name")
			}
			if err := n.register(canonical, canonical); err != nil {
				return nil, err
			}
			for _, alias := range entry.Aliases {
				if err := n.register(alias, canonical); err != nil {
					return nil, err
				}
			}
		}
	}

	return n, nil
}

// Default returns a normalizer loaded with the built-in La Liga aliases
func Default(logger *logrus.Logger) *Normalizer {
	n, err := NewNormalizer(logger, DefaultAliases())
	if err != nil {
		panic(fmt.Sprintf("built-in alias table is inconsistent: %v", err))
	}
	return n
}

func (n *Normalizer) register(name, canonical string) error {
	key := Key(name)
	if key == "" {
		return nil
	}
	if existing, ok := n.lookup[key]; ok && existing != canonical {
		return fmt.Errorf("alias %q maps to both %q and %q", name, existing, canonical)
	}
	n.lookup[key] = canonical
	return nil
}

// Normalize returns the canonical name for raw. Unknown names pass through
// with accents stripped and whitespace collapsed; each is reported once.
func (n *Normalizer) Normalize(raw string) string {
	name, _ := n.resolve(raw)
	return name
}

// resolve reports whether raw hit the alias table
func (n *Normalizer) resolve(raw string) (string, bool) {
	key := Key(raw)
	if key == "" {
		return "", true
	}
	if canonical, ok := n.lookup[key]; ok {
		return canonical, true
	}

	fallback := collapseWhitespace(stripDiacritics(strings.TrimSpace(raw)))
	n.recordUnmapped(fallback)
	return fallback, false
}

// Scope normalizes through n and remembers only the unmapped names it saw itself.
// Use one per run so reports do not inherit names from earlier runs.
type Scope struct {
	parent *Normalizer

	mu       sync.Mutex
	unmapped map[string]struct{}
}

// Scope returns a fresh tracking scope over n
func (n *Normalizer) Scope() *Scope {
	return &Scope{parent: n, unmapped: make(map[string]struct{})}
}

// Normalize returns the canonical name for raw
func (s *Scope) Normalize(raw string) string {
	name, mapped := s.parent.resolve(raw)
	if !mapped {
		s.mu.Lock()
		s.unmapped[name] = struct{}{}
		s.mu.Unlock()
	}
	return name
}

// Unmapped returns the sorted unmapped names seen through this scope
func (s *Scope) Unmapped() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedNames(s.unmapped)
}

// Known reports whether raw resolves through the alias table
func (n *Normalizer) Known(raw string) bool {
	_, ok := n.lookup[Key(raw)]
	return ok
}

func (n *Normalizer) recordUnmapped(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, seen := n.unmapped[name]; seen {
		return
	}
	n.unmapped[name] = struct{}{}
	n.logger.WithFields(logrus.Fields{
		"component": "normalizer",
		"team":      name,
	}).Warn("Team name has no alias mapping")
}

// Unmapped returns the sorted names that passed through without an alias hit
// since n was built
func (n *Normalizer) Unmapped() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return sortedNames(n.unmapped)
}

func sortedNames(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Key folds a name to its lookup form: no accents, lower case, single spaces.
func Key(name string) string {
	if name == "" {
		return ""
	}
	s := stripDiacritics(name)
	s = strings.ToLower(strings.TrimSpace(s))
	return collapseWhitespace(s)
}

// AliasesFromConfig converts configured alias entries
func AliasesFromConfig(entries []config.TeamAliasConfig) []TeamAliases {
	out := make([]TeamAliases, 0, len(entries))
	for _, e := range entries {
		out = append(out, TeamAliases{Canonical: e.Canonical, Aliases: e.Aliases})
	}
	return out
}

func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}
	return norm.NFC.String(b.String())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
