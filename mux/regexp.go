package mux

import (
	"fmt"
	"regexp"
	"strings"
)

// defaultVarPattern matches a single path segment.
const defaultVarPattern = "[^/]+"

// patternMacros maps macro names usable as {name:macro} to their patterns.
var patternMacros = map[string]string{
	"uuid":     `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`,
	"int":      `[0-9]+`,
	"float":    `[0-9]*\.?[0-9]+`,
	"slug":     `[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*`,
	"alpha":    `[a-zA-Z]+`,
	"alphanum": `[a-zA-Z0-9]+`,
	"date":     `[0-9]{4}-[0-9]{2}-[0-9]{2}`,
	"hex":      `[0-9a-fA-F]+`,
}

// MacroNames returns the names of the built-in pattern macros.
func MacroNames() []string {
	names := make([]string, 0, len(patternMacros))
	for name := range patternMacros {
		names = append(names, name)
	}
	return names
}

// pathVar describes one {name} or {name:pattern} segment of a template.
type pathVar struct {
	name  string
	macro string
	group string
}

// pathRegexp is a compiled path template.
type pathRegexp struct {
	template string
	regexp   *regexp.Regexp
	vars     []pathVar
}

// newPathRegexp compiles a path template such as "/items/{id:uuid}".
// Unknown macro names are used as raw regular expressions.
func newPathRegexp(tpl string) (*pathRegexp, error) {
	if !strings.HasPrefix(tpl, "/") {
		return nil, fmt.Errorf("mux: path must start with a slash, got %q", tpl)
	}

	idxs, err := braceIndices(tpl)
	if err != nil {
		return nil, err
	}

	var (
		pattern strings.Builder
		vars    []pathVar
		end     int
	)

	pattern.WriteByte('^')

	for i := 0; i < len(idxs); i += 2 {
		raw := tpl[end:idxs[i]]
		end = idxs[i+1]

		name, macro, _ := strings.Cut(tpl[idxs[i]+1:end-1], ":")
		if name == "" {
			return nil, fmt.Errorf("mux: missing name in %q from %q", tpl[idxs[i]:end], tpl)
		}
		for _, v := range vars {
			if v.name == name {
				return nil, fmt.Errorf("mux: duplicated route variable %q", name)
			}
		}

		patt := defaultVarPattern
		if macro != "" {
			patt = macro
			if expanded, ok := patternMacros[macro]; ok {
				patt = expanded
			}
			if _, err := regexp.Compile(patt); err != nil {
				return nil, fmt.Errorf("mux: invalid pattern %q in variable %q: %w", patt, name, err)
			}
		}

		group := fmt.Sprintf("v%d", len(vars))
		fmt.Fprintf(&pattern, "%s(?P<%s>%s)", regexp.QuoteMeta(raw), group, patt)
		vars = append(vars, pathVar{name: name, macro: macro, group: group})
	}

	pattern.WriteString(regexp.QuoteMeta(tpl[end:]))
	pattern.WriteByte('$')

	reg, err := regexp.Compile(pattern.String())
	if err != nil {
		return nil, err
	}

	return &pathRegexp{
		template: tpl,
		regexp:   reg,
		vars:     vars,
	}, nil
}

// match reports whether path matches and returns the extracted variables.
// Templates without variables return a nil map.
func (p *pathRegexp) match(path string) (map[string]string, bool) {
	if len(p.vars) == 0 {
		return nil, p.regexp.MatchString(path)
	}

	matches := p.regexp.FindStringSubmatch(path)
	if matches == nil {
		return nil, false
	}

	vars := make(map[string]string, len(p.vars))
	for _, v := range p.vars {
		vars[v.name] = matches[p.regexp.SubexpIndex(v.group)]
	}
	return vars, true
}

// braceIndices returns the first level curly brace indices from a string.
// It returns an error in case of unbalanced braces.
func braceIndices(s string) ([]int, error) {
	var level, idx int
	var idxs []int
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if level++; level == 1 {
				idx = i
			}
		case '}':
			if level--; level == 0 {
				idxs = append(idxs, idx, i+1)
			} else if level < 0 {
				return nil, fmt.Errorf("mux: unbalanced braces in %q", s)
			}
		}
	}
	if level != 0 {
		return nil, fmt.Errorf("mux: unbalanced braces in %q", s)
	}
	return idxs, nil
}
