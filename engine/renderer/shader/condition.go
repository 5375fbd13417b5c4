package shader

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// evaluateCondition evaluates an #if/#elif expression over integer values. Supported: decimal literals,
// identifiers (a defined macro evaluates to its value, an undefined one to 0), defined(NAME),
// ! && || == != < <= > >= + - and parentheses.
func evaluateCondition(expr string, defines map[string]string) (bool, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return false, err
	}
	if len(toks) == 0 {
		return false, fmt.Errorf("empty condition")
	}
	e := &condEval{toks: toks, defines: defines}
	v, err := e.or()
	if err != nil {
		return false, err
	}
	if e.pos != len(e.toks) {
		return false, fmt.Errorf("unexpected %q in condition %q", e.toks[e.pos], expr)
	}
	return v != 0, nil
}

func tokenize(expr string) ([]string, error) {
	var toks []string
	for i := 0; i < len(expr); {
		c := rune(expr[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case unicode.IsLetter(c) || c == '_' || unicode.IsDigit(c):
			j := i
			for j < len(expr) && (unicode.IsLetter(rune(expr[j])) || unicode.IsDigit(rune(expr[j])) || expr[j] == '_') {
				j++
			}
			toks = append(toks, expr[i:j])
			i = j
		default:
			if i+1 < len(expr) {
				two := expr[i : i+2]
				switch two {
				case "&&", "||", "==", "!=", "<=", ">=":
					toks = append(toks, two)
					i += 2
					continue
				}
			}
			if !strings.ContainsRune("()!<>+-", c) {
				return nil, fmt.Errorf("unexpected character %q in condition", c)
			}
			toks = append(toks, string(c))
			i++
		}
	}
	return toks, nil
}

type condEval struct {
	toks    []string
	pos     int
	defines map[string]string
	depth   int
}

func (e *condEval) peek() string {
	if e.pos < len(e.toks) {
		return e.toks[e.pos]
	}
	return ""
}

func (e *condEval) next() string {
	t := e.peek()
	e.pos++
	return t
}

func (e *condEval) or() (int64, error) {
	l, err := e.and()
	if err != nil {
		return 0, err
	}
	for e.peek() == "||" {
		e.next()
		r, err := e.and()
		if err != nil {
			return 0, err
		}
		l = boolInt(l != 0 || r != 0)
	}
	return l, nil
}

func (e *condEval) and() (int64, error) {
	l, err := e.compare()
	if err != nil {
		return 0, err
	}
	for e.peek() == "&&" {
		e.next()
		r, err := e.compare()
		if err != nil {
			return 0, err
		}
		l = boolInt(l != 0 && r != 0)
	}
	return l, nil
}

func (e *condEval) compare() (int64, error) {
	l, err := e.additive()
	if err != nil {
		return 0, err
	}
	for {
		op := e.peek()
		switch op {
		case "==", "!=", "<", "<=", ">", ">=":
		default:
			return l, nil
		}
		e.next()
		r, err := e.additive()
		if err != nil {
			return 0, err
		}
		switch op {
		case "==":
			l = boolInt(l == r)
		case "!=":
			l = boolInt(l != r)
		case "<":
			l = boolInt(l < r)
		case "<=":
			l = boolInt(l <= r)
		case ">":
			l = boolInt(l > r)
		case ">=":
			l = boolInt(l >= r)
		}
	}
}

func (e *condEval) additive() (int64, error) {
	l, err := e.unary()
	if err != nil {
		return 0, err
	}
	for e.peek() == "+" || e.peek() == "-" {
		op := e.next()
		r, err := e.unary()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			l += r
		} else {
			l -= r
		}
	}
	return l, nil
}

func (e *condEval) unary() (int64, error) {
	switch e.peek() {
	case "!":
		e.next()
		v, err := e.unary()
		return boolInt(v == 0), err
	case "-":
		e.next()
		v, err := e.unary()
		return -v, err
	}
	return e.primary()
}

func (e *condEval) primary() (int64, error) {
	tok := e.next()
	switch {
	case tok == "":
		return 0, fmt.Errorf("unexpected end of condition")
	case tok == "(":
		v, err := e.or()
		if err != nil {
			return 0, err
		}
		if e.next() != ")" {
			return 0, fmt.Errorf("missing ')' in condition")
		}
		return v, nil
	case tok == "defined":
		paren := e.peek() == "("
		if paren {
			e.next()
		}
		name := e.next()
		if paren && e.next() != ")" {
			return 0, fmt.Errorf("missing ')' after defined(%s", name)
		}
		_, ok := e.defines[name]
		return boolInt(ok), nil
	case unicode.IsDigit(rune(tok[0])):
		v, err := strconv.ParseInt(tok, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q in condition", tok)
		}
		return v, nil
	default:
		value, ok := e.defines[tok]
		if !ok {
			return 0, nil
		}
		if value == "" {
			return 1, nil
		}
		if e.depth > maxSubstitutionDepth {
			return 0, fmt.Errorf("macro %s expands recursively", tok)
		}
		toks, err := tokenize(value)
		if err != nil {
			return 0, fmt.Errorf("macro %s: %w", tok, err)
		}
		sub := &condEval{toks: toks, defines: e.defines, depth: e.depth + 1}
		v, err := sub.or()
		if err != nil {
			return 0, fmt.Errorf("macro %s: %w", tok, err)
		}
		if sub.pos != len(sub.toks) {
			return 0, fmt.Errorf("macro %s does not expand to an integer expression", tok)
		}
		return v, nil
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
