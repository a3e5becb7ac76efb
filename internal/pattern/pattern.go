// Package pattern validates override-cycle patterns, adapter sequences and
// kit naming fields while they are being typed.
//
// Every grammar answers with one of three states: the input is Accepted as
// is, it is an Intermediate prefix that further typing could complete, or it
// is Rejected outright. The empty string is always Accepted so that an
// untouched field is never flagged.
package pattern

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
)

// State is the outcome of validating partial input
type State int

const (
	Rejected State = iota
	Intermediate
	Accepted
)

func (s State) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case Intermediate:
		return "intermediate"
	default:
		return "rejected"
	}
}

// Grammar validates one kind of field
type Grammar interface {
	Validate(input string) State
	// Complete reports whether input is a finished, non-empty value
	Complete(input string) bool
}

// Regex is a grammar backed by a strict expression and an optional relaxed
// expression that matches every valid prefix.
type Regex struct {
	name    string
	strict  *regexp2.Regexp
	relaxed *regexp2.Regexp
	// prefix, when set, replaces relaxed: input is Intermediate if
	// prefix(input) matches strict
	prefix func(string) string
}

func mustCompile(expr string) *regexp2.Regexp {
	return regexp2.MustCompile(expr, regexp2.None)
}

func match(re *regexp2.Regexp, s string) bool {
	ok, err := re.MatchString(s)
	return err == nil && ok
}

// Validate implements Grammar
func (g *Regex) Validate(input string) State {
	if input == "" || match(g.strict, input) {
		return Accepted
	}
	switch {
	case g.relaxed != nil && match(g.relaxed, input):
		return Intermediate
	case g.prefix != nil && match(g.strict, g.prefix(input)):
		return Intermediate
	}
	return Rejected
}

// Complete implements Grammar
func (g *Regex) Complete(input string) bool {
	return input != "" && match(g.strict, input)
}

func (g *Regex) String() string {
	return g.name
}

// cycles builds an override-cycle grammar over the given token letters.
// Tokens are <letter><digits> or <letter>x, and x may appear at most once in
// the whole pattern.
func cycles(name, letters string) *Regex {
	token := fmt.Sprintf(`[%s](?:[0-9]+|x)`, letters)
	open := fmt.Sprintf(`[%s](?:[0-9]*|x)`, letters)
	return &Regex{
		name:    name,
		strict:  mustCompile(`^(?!.*x.*x)(?:` + token + `)+\z`),
		relaxed: mustCompile(`^(?!.*x.*x)(?:` + open + `)*(?:[` + letters + `](?:[0-9]*|x)?)?\z`),
	}
}

var (
	// Read validates read override cycles, e.g. Y151, Yx, U8Y143
	Read = cycles("read", "YUN")
	// Index validates index override cycles, e.g. I8, I10N2, Ix
	Index = cycles("index", "IUN")
	// Name validates kit names: letters, digits and underscores
	Name = &Regex{name: "name", strict: mustCompile(`^[\p{L}\p{N}_]+\z`)}
	// Version validates up to three dot separated groups of 1-3 digits
	Version = &Regex{
		name:   "version",
		strict: mustCompile(`^(?:[0-9]{1,3}\.){0,2}[0-9]{1,3}\z`),
		prefix: func(s string) string { return s + "0" },
	}
	// Adapter validates adapter sequences
	Adapter Grammar = adapter{}
)

type adapter struct{}

func (adapter) Validate(input string) State {
	for _, r := range strings.ToUpper(input) {
		if !strings.ContainsRune("ACGT+", r) {
			return Rejected
		}
	}
	return Accepted
}

func (a adapter) Complete(input string) bool {
	return a.Validate(input) == Accepted
}

func (adapter) String() string {
	return "adapter"
}

var byName = map[string]Grammar{
	"read":    Read,
	"index":   Index,
	"adapter": Adapter,
	"name":    Name,
	"version": Version,
}

// Lookup returns a grammar by name
func Lookup(name string) (Grammar, error) {
	g, ok := byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown grammar %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return g, nil
}

// Names lists the grammar names accepted by Lookup
func Names() []string {
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
