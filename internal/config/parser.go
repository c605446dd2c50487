package config

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchField is the window property a Matcher tests
type MatchField string

const (
	FieldProcess MatchField = "process"
	FieldClass   MatchField = "class"
	FieldTitle   MatchField = "title"
)

// Matcher tests one window property. Supported forms:
//   - "process=firefox" - exact match
//   - "title~^Picture-in-Picture$" - regular expression
type Matcher struct {
	Field MatchField
	Value string
	re    *regexp.Regexp
}

var matchPattern = regexp.MustCompile(`^\s*(process|class|title)\s*([=~])\s*(.+?)\s*$`)

// ParseMatch parses a single match expression
func ParseMatch(s string) (Matcher, error) {
	m := matchPattern.FindStringSubmatch(s)
	if m == nil {
		return Matcher{}, fmt.Errorf("invalid match expression: %q", s)
	}

	matcher := Matcher{Field: MatchField(m[1]), Value: m[3]}
	if m[2] == "~" {
		re, err := regexp.Compile(m[3])
		if err != nil {
			return Matcher{}, fmt.Errorf("invalid regex in %q: %w", s, err)
		}
		matcher.re = re
	}
	return matcher, nil
}

// WindowProps are the properties window rules match against
type WindowProps struct {
	Process string
	Class   string
	Title   string
}

// Matches reports whether props satisfy the matcher
func (m Matcher) Matches(props WindowProps) bool {
	var v string
	switch m.Field {
	case FieldProcess:
		v = props.Process
	case FieldClass:
		v = props.Class
	case FieldTitle:
		v = props.Title
	}
	if m.re != nil {
		return m.re.MatchString(v)
	}
	return strings.EqualFold(v, m.Value)
}

// String returns the expression form of the matcher
func (m Matcher) String() string {
	op := "="
	if m.re != nil {
		op = "~"
	}
	return string(m.Field) + op + m.Value
}

// compile parses the rule's match expressions
func (r *WindowRule) compile() error {
	r.matchers = make([]Matcher, 0, len(r.Match))
	for _, expr := range r.Match {
		m, err := ParseMatch(expr)
		if err != nil {
			return err
		}
		r.matchers = append(r.matchers, m)
	}
	return nil
}

// Matches reports whether every expression in the rule matches props
func (r *WindowRule) Matches(props WindowProps) bool {
	if len(r.matchers) == 0 {
		return false
	}
	for _, m := range r.matchers {
		if !m.Matches(props) {
			return false
		}
	}
	return true
}
