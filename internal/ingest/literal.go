// Package ingest loads the raw job-postings CSV into the staging table.
//
// The dataset's job_skills and job_type_skills columns hold Python literal
// reprs (single-quoted lists and dicts), not JSON, so they need a dedicated
// parser before they can be stored as TEXT[] / JSONB.
package ingest

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseSkillList parses a Python list literal like "['python', 'sql']" into
// a slice of strings. Empty input and "[]" yield nil. Elements that are not
// strings are skipped.
func ParseSkillList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "[]" {
		return nil, nil
	}

	p := &literalParser{input: []rune(raw)}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}

	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list literal, got %T", v)
	}

	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// ParseTypedSkills parses a Python dict literal like
// "{'programming': ['python', 'sql']}" into a category → skills map.
// Empty input and "{}" yield nil. Every string-keyed entry is kept: a value
// that is not a list of strings contributes an empty (non-nil) skill slice,
// so the category name itself always survives ingestion. The dict shape
// itself must hold.
func ParseTypedSkills(raw string) (map[string][]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "{}" {
		return nil, nil
	}

	p := &literalParser{input: []rune(raw)}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}

	dict, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a dict literal, got %T", v)
	}

	out := make(map[string][]string, len(dict))
	for category, val := range dict {
		skills := []string{}
		if list, ok := val.([]any); ok {
			for _, item := range list {
				if s, ok := item.(string); ok {
					skills = append(skills, s)
				}
			}
		}
		out[category] = skills
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// ─── Parser ──────────────────────────────────────────────────────────────────

// literalParser is a minimal recursive-descent parser for the subset of
// Python literals the dataset actually uses: strings, lists, dicts with
// string keys, None, True and False.
type literalParser struct {
	input []rune
	pos   int
}

func (p *literalParser) parseValue() (any, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("unexpected end of input at offset %d", p.pos)
	}

	switch c := p.input[p.pos]; {
	case c == '[':
		return p.parseList()
	case c == '{':
		return p.parseDict()
	case c == '\'' || c == '"':
		return p.parseString()
	default:
		return p.parseBareword()
	}
}

func (p *literalParser) parseList() ([]any, error) {
	p.pos++ // consume '['
	var items []any
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return nil, fmt.Errorf("unterminated list at offset %d", p.pos)
		}
		if p.input[p.pos] == ']' {
			p.pos++
			return items, nil
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		p.skipSpace()
		if p.pos < len(p.input) && p.input[p.pos] == ',' {
			p.pos++
		}
	}
}

func (p *literalParser) parseDict() (map[string]any, error) {
	p.pos++ // consume '{'
	out := map[string]any{}
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return nil, fmt.Errorf("unterminated dict at offset %d", p.pos)
		}
		if p.input[p.pos] == '}' {
			p.pos++
			return out, nil
		}
		key, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		keyStr, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf("dict key must be a string, got %T", key)
		}
		p.skipSpace()
		if p.pos >= len(p.input) || p.input[p.pos] != ':' {
			return nil, fmt.Errorf("expected ':' at offset %d", p.pos)
		}
		p.pos++
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out[keyStr] = val
		p.skipSpace()
		if p.pos < len(p.input) && p.input[p.pos] == ',' {
			p.pos++
		}
	}
}

func (p *literalParser) parseString() (string, error) {
	quote := p.input[p.pos]
	p.pos++
	var b strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch c {
		case quote:
			p.pos++
			return b.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.input) {
				return "", fmt.Errorf("dangling escape at offset %d", p.pos)
			}
			switch e := p.input[p.pos]; e {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			default:
				b.WriteRune(e) // \' \" \\ and anything exotic pass through
			}
			p.pos++
		default:
			b.WriteRune(c)
			p.pos++
		}
	}
	return "", fmt.Errorf("unterminated string at offset %d", p.pos)
}

// number is a numeric token. It is a distinct type, not string, so the
// string-only consumers drop numeric elements the way they drop None and
// booleans.
type number string

// parseBareword handles None, True, False and numbers.
func (p *literalParser) parseBareword() (any, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == ',' || c == ']' || c == '}' || c == ':' || unicode.IsSpace(c) {
			break
		}
		p.pos++
	}
	word := string(p.input[start:p.pos])
	switch word {
	case "None":
		return nil, nil
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "":
		return nil, fmt.Errorf("unexpected character %q at offset %d", p.input[start], start)
	}
	return number(word), nil
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(p.input[p.pos]) {
		p.pos++
	}
}

func (p *literalParser) expectEnd() error {
	p.skipSpace()
	if p.pos != len(p.input) {
		return fmt.Errorf("trailing data at offset %d", p.pos)
	}
	return nil
}
