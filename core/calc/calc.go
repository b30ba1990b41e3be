// Package calc evaluates arithmetic expressions for the calc builtin.
//
// Expressions are compiled to a single awk BEGIN action and run in a sandboxed
// interpreter, so operator precedence follows awk: ^ binds tightest, then
// unary minus, then * / %, then + -, then comparisons and logical operators.
package calc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/benhoyt/goawk/interp"
	"github.com/benhoyt/goawk/parser"
)

// ErrEvaluation is wrapped by every error returned from Eval.
var ErrEvaluation = errors.New("evaluation error")

var funcs = map[string]interface{}{
	"abs":   math.Abs,
	"ceil":  math.Ceil,
	"floor": math.Floor,
	"round": math.Round,
	"tan":   math.Tan,
	"ln":    math.Log,
	"max":   math.Max,
	"min":   math.Min,
}

// awk builtins that are pure functions of their numeric arguments.
var awkFuncs = map[string]bool{
	"atan2": true,
	"cos":   true,
	"exp":   true,
	"int":   true,
	"log":   true,
	"sin":   true,
	"sqrt":  true,
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// Eval computes the value of expr.
func Eval(expr string) (float64, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, fmt.Errorf("%w: empty expression", ErrEvaluation)
	}
	if err := check(expr); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEvaluation, err)
	}

	// Assign first so comparisons aren't parsed as print redirections.
	src := "BEGIN { __calc = (" + expr + "); print __calc }"
	prog, err := parser.ParseProgram([]byte(src), &parser.ParserConfig{Funcs: funcs})
	if err != nil {
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			return 0, fmt.Errorf("%w: %s", ErrEvaluation, pe.Message)
		}
		return 0, fmt.Errorf("%w: %v", ErrEvaluation, err)
	}

	vars := []string{"OFMT", "%.17g", "CONVFMT", "%.17g"}
	for name, value := range constants {
		vars = append(vars, name, strconv.FormatFloat(value, 'g', -1, 64))
	}

	var out bytes.Buffer
	_, err = interp.ExecProgram(prog, &interp.Config{
		Stdin:        strings.NewReader(""),
		Output:       &out,
		Error:        io.Discard,
		Args:         []string{},
		Environ:      []string{},
		Vars:         vars,
		Funcs:        funcs,
		NoExec:       true,
		NoFileReads:  true,
		NoFileWrites: true,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEvaluation, err)
	}

	result := strings.TrimSpace(out.String())
	value, err := strconv.ParseFloat(result, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric result %q", ErrEvaluation, result)
	}
	return value, nil
}

// Format renders v the way the calc builtin prints it: integers without a
// fraction and no exponent for everyday magnitudes.
func Format(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	if abs := math.Abs(v); v == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// check rejects anything that isn't plain arithmetic before it reaches the
// interpreter: awk would otherwise accept strings, fields, assignments, and
// juxtaposition (which concatenates).
func check(expr string) error {
	operand := false
	for i := 0; i < len(expr); {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++

		case isDigit(c) || c == '.':
			if operand {
				return fmt.Errorf("missing operator before %q", expr[i:])
			}
			i = scanNumber(expr, i)
			operand = true

		case isIdentStart(c):
			if operand {
				return fmt.Errorf("missing operator before %q", expr[i:])
			}
			start := i
			for i < len(expr) && isIdent(expr[i]) {
				i++
			}
			name := expr[start:i]
			switch {
			case funcs[name] != nil || awkFuncs[name]:
				if !strings.HasPrefix(strings.TrimLeft(expr[i:], " \t"), "(") {
					return fmt.Errorf("%s must be called with arguments", name)
				}
				operand = false
			case hasConstant(name):
				operand = true
			default:
				return fmt.Errorf("unknown name %q", name)
			}

		case c == '(':
			if operand {
				return fmt.Errorf("missing operator before %q", expr[i:])
			}
			operand = false
			i++

		case c == ')':
			operand = true
			i++

		case c == '=':
			// Only allow == so expressions can't assign.
			if i+1 < len(expr) && expr[i+1] == '=' {
				i += 2
				operand = false
				continue
			}
			if i > 0 && strings.ContainsRune("<>!", rune(expr[i-1])) {
				i++
				operand = false
				continue
			}
			return fmt.Errorf("assignment is not allowed")

		case strings.IndexByte("+-*/%^<>!&|?:,", c) >= 0:
			operand = false
			i++

		default:
			return fmt.Errorf("unexpected character %q", c)
		}
	}
	return nil
}

func hasConstant(name string) bool {
	_, ok := constants[name]
	return ok
}

func scanNumber(s string, i int) int {
	for i < len(s) && (isDigit(s[i]) || s[i] == '.') {
		i++
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			return j
		}
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdent(c byte) bool { return isIdentStart(c) || isDigit(c) }
