// Package script parses plain-text migration scripts into column-add plans.
//
// The accepted script format is the one shipped with the original migration:
// semicolon-terminated statements, `--` comments, and nothing but
// ALTER TABLE ... ADD COLUMN statements. The parser is the enforcement point
// for the additive-only contract: any other statement is rejected rather than
// passed through to the engine.
package script

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mkarpenko/smig/internal/schema"
)

// statement is a raw SQL statement with the line it started on, for errors.
type statement struct {
	text string
	line int
}

// ParseFile reads and parses the script at path.
func ParseFile(path string) ([]schema.Plan, error) {
	f, err := os.Open(path) // #nosec G304 - operator-supplied script path
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer func() { _ = f.Close() }()

	plans, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return plans, nil
}

// Parse reads semicolon-terminated statements from r and returns the column
// additions they describe, grouped per table in order of first appearance.
func Parse(r io.Reader) ([]schema.Plan, error) {
	stmts, err := splitStatements(r)
	if err != nil {
		return nil, err
	}

	var plans []schema.Plan
	index := make(map[string]int)
	for _, st := range stmts {
		table, col, err := parseAddColumn(st.text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", st.line, err)
		}
		key := strings.ToLower(table)
		i, ok := index[key]
		if !ok {
			i = len(plans)
			index[key] = i
			plans = append(plans, schema.Plan{Table: table})
		}
		plans[i].Columns = append(plans[i].Columns, col)
	}

	for _, p := range plans {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return plans, nil
}

// splitStatements accumulates input into semicolon-terminated statements,
// dropping `--` comments and blank lines. Single-quoted strings are respected
// so a DEFAULT literal may contain `--` or `;`.
func splitStatements(r io.Reader) ([]statement, error) {
	var stmts []statement
	var buf strings.Builder
	startLine := 0
	inString := false

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		for i := 0; i < len(line); i++ {
			ch := line[i]
			if inString {
				buf.WriteByte(ch)
				if ch == '\'' {
					inString = false
				}
				continue
			}
			switch {
			case ch == '\'':
				inString = true
				if startLine == 0 {
					startLine = lineNo
				}
				buf.WriteByte(ch)
			case ch == '-' && i+1 < len(line) && line[i+1] == '-':
				i = len(line) // comment runs to end of line
			case ch == ';':
				text := strings.TrimSpace(buf.String())
				if text != "" {
					if startLine == 0 {
						startLine = lineNo
					}
					stmts = append(stmts, statement{text: text, line: startLine})
				}
				buf.Reset()
				startLine = 0
			default:
				if startLine == 0 && ch != ' ' && ch != '\t' {
					startLine = lineNo
				}
				buf.WriteByte(ch)
			}
		}
		buf.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	if inString {
		return nil, fmt.Errorf("line %d: unterminated string literal", startLine)
	}
	if text := strings.TrimSpace(buf.String()); text != "" {
		return nil, fmt.Errorf("line %d: statement not terminated with ';'", startLine)
	}
	return stmts, nil
}

// parseAddColumn parses a single ALTER TABLE ... ADD COLUMN statement.
func parseAddColumn(stmt string) (string, schema.Column, error) {
	var col schema.Column
	toks := tokenize(stmt)

	next := func() (string, bool) {
		if len(toks) == 0 {
			return "", false
		}
		t := toks[0]
		toks = toks[1:]
		return t, true
	}
	expect := func(kw string) error {
		t, ok := next()
		if !ok || !strings.EqualFold(t, kw) {
			return fmt.Errorf("unsupported statement (only ALTER TABLE ... ADD COLUMN is accepted): %q", stmt)
		}
		return nil
	}

	if err := expect("ALTER"); err != nil {
		return "", col, err
	}
	if err := expect("TABLE"); err != nil {
		return "", col, err
	}
	table, ok := next()
	if !ok {
		return "", col, fmt.Errorf("missing table name: %q", stmt)
	}
	table = unquote(table)

	if err := expect("ADD"); err != nil {
		return "", col, err
	}
	// COLUMN keyword is optional in SQLite.
	if len(toks) > 0 && strings.EqualFold(toks[0], "COLUMN") {
		toks = toks[1:]
	}

	name, ok := next()
	if !ok {
		return "", col, fmt.Errorf("missing column name: %q", stmt)
	}
	col.Name = unquote(name)

	typ, ok := next()
	if !ok {
		return "", col, fmt.Errorf("missing column type for %q", col.Name)
	}
	// Absorb a detached length spec, e.g. "VARCHAR (255)".
	if len(toks) > 0 && strings.HasPrefix(toks[0], "(") {
		typ += toks[0]
		toks = toks[1:]
	}
	col.Type = typ
	col.Nullable = true

	for len(toks) > 0 {
		t, _ := next()
		switch {
		case strings.EqualFold(t, "NULL"):
			col.Nullable = true
		case strings.EqualFold(t, "NOT"):
			t2, ok := next()
			if !ok || !strings.EqualFold(t2, "NULL") {
				return "", col, fmt.Errorf("malformed NOT NULL on column %q", col.Name)
			}
			col.Nullable = false
		case strings.EqualFold(t, "DEFAULT"):
			v, ok := next()
			if !ok {
				return "", col, fmt.Errorf("DEFAULT with no value on column %q", col.Name)
			}
			col.Default = v
		default:
			return "", col, fmt.Errorf("unsupported column constraint %q on column %q", t, col.Name)
		}
	}
	return table, col, nil
}

// tokenize splits a statement into words, keeping quoted identifiers, string
// literals, and parenthesized groups as single tokens.
func tokenize(s string) []string {
	var toks []string
	var cur strings.Builder
	depth := 0
	var quote byte

	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			cur.WriteByte(ch)
			if ch == quote || (quote == '[' && ch == ']') {
				quote = 0
			}
		case ch == '\'' || ch == '"' || ch == '`' || ch == '[':
			cur.WriteByte(ch)
			quote = ch
		case ch == '(':
			depth++
			cur.WriteByte(ch)
		case ch == ')':
			depth--
			cur.WriteByte(ch)
		case depth == 0 && (ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'):
			flush()
		default:
			cur.WriteByte(ch)
		}
	}
	flush()
	return toks
}

// unquote strips identifier quoting ("x", `x`, [x]) if present.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	switch {
	case first == '"' && last == '"':
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	case first == '`' && last == '`':
		return s[1 : len(s)-1]
	case first == '[' && last == ']':
		return s[1 : len(s)-1]
	}
	return s
}
