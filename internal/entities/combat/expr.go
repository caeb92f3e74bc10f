package combat

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-combat/internal/errors"
)

// ExprKind is the node type of a compiled stat expression.
type ExprKind int

const (
	ExprFlat ExprKind = iota + 1
	ExprMult
	ExprDice
)

// Expr is a compiled stat delta. On the wire it is a short string:
// "+3", "-2", "*1.5", "1d6", "-2d4". A missing sign means "+".
type Expr struct {
	Kind  ExprKind
	Neg   bool
	Value float64
	Count int
	Sides int
}

// Flat builds an additive expression; negative values subtract.
func Flat(v float64) Expr {
	if v < 0 {
		return Expr{Kind: ExprFlat, Neg: true, Value: -v}
	}
	return Expr{Kind: ExprFlat, Value: v}
}

// Mult builds a multiplicative expression.
func Mult(f float64) Expr {
	return Expr{Kind: ExprMult, Value: f}
}

// Dice expressions roll at most MaxDiceCount dice of at most MaxDiceSides
// sides.
const (
	MaxDiceCount = 100
	MaxDiceSides = 1000
)

// Dice builds a dice expression, NdM, subtracted when neg is true.
func Dice(count, sides int, neg bool) Expr {
	return Expr{Kind: ExprDice, Count: count, Sides: sides, Neg: neg}
}

// ParseExpr compiles the wire form.
func ParseExpr(raw string) (Expr, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Expr{}, errors.InvalidArgument("empty stat expression")
	}

	op := byte('+')
	switch s[0] {
	case '+', '-', '*':
		op = s[0]
		s = strings.TrimSpace(s[1:])
	}
	if s == "" {
		return Expr{}, errors.InvalidArgumentf("stat expression %q has no operand", raw)
	}

	if idx := strings.IndexByte(s, 'd'); idx >= 0 {
		if op == '*' {
			return Expr{}, errors.InvalidArgumentf("stat expression %q multiplies by dice", raw)
		}
		count := 1
		if idx > 0 {
			n, err := strconv.Atoi(s[:idx])
			if err != nil || n <= 0 {
				return Expr{}, errors.InvalidArgumentf("stat expression %q has a bad dice count", raw)
			}
			count = n
		}
		sides, err := strconv.Atoi(s[idx+1:])
		if err != nil || sides <= 0 {
			return Expr{}, errors.InvalidArgumentf("stat expression %q has bad dice sides", raw)
		}
		e := Dice(count, sides, op == '-')
		if err := e.checkDice(); err != nil {
			return Expr{}, err
		}
		return e, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return Expr{}, errors.InvalidArgumentf("stat expression %q has a bad number", raw)
	}
	if op == '*' {
		return Mult(v), nil
	}
	return Expr{Kind: ExprFlat, Neg: op == '-', Value: v}, nil
}

// MustExpr is ParseExpr for literals known to be valid.
func MustExpr(raw string) Expr {
	e, err := ParseExpr(raw)
	if err != nil {
		panic(err)
	}
	return e
}

// String renders the canonical wire form.
func (e Expr) String() string {
	sign := "+"
	if e.Neg {
		sign = "-"
	}
	switch e.Kind {
	case ExprFlat:
		return sign + strconv.FormatFloat(e.Value, 'f', -1, 64)
	case ExprMult:
		return "*" + strconv.FormatFloat(e.Value, 'f', -1, 64)
	case ExprDice:
		return fmt.Sprintf("%s%dd%d", sign, e.Count, e.Sides)
	default:
		return ""
	}
}

// IsZero reports an unset expression.
func (e Expr) IsZero() bool {
	return e.Kind == 0
}

// IsDice reports whether evaluation consumes randomness.
func (e Expr) IsDice() bool {
	return e.Kind == ExprDice
}

// FlatValue is the signed additive amount of a flat expression, 0 otherwise.
func (e Expr) FlatValue() float64 {
	if e.Kind != ExprFlat {
		return 0
	}
	if e.Neg {
		return -e.Value
	}
	return e.Value
}

// Apply folds the expression into acc. Dice terms are rolled on roller.
func (e Expr) Apply(acc float64, roller dice.Roller) (float64, error) {
	switch e.Kind {
	case ExprFlat:
		return acc + e.FlatValue(), nil
	case ExprMult:
		return acc * e.Value, nil
	case ExprDice:
		if err := e.checkDice(); err != nil {
			return acc, err
		}
		rolls, err := roller.RollN(e.Count, e.Sides)
		if err != nil {
			return acc, errors.Wrapf(err, "failed to roll %s", e.String())
		}
		sum := 0
		for _, r := range rolls {
			sum += r
		}
		if e.Neg {
			return acc - float64(sum), nil
		}
		return acc + float64(sum), nil
	default:
		return acc, errors.InvalidArgument("stat expression is unset")
	}
}

func (e Expr) checkDice() error {
	if e.Count < 1 || e.Count > MaxDiceCount {
		return errors.InvalidArgumentf("dice count of %s must be between 1 and %d", e.String(), MaxDiceCount)
	}
	if e.Sides < 1 || e.Sides > MaxDiceSides {
		return errors.InvalidArgumentf("dice sides of %s must be between 1 and %d", e.String(), MaxDiceSides)
	}
	return nil
}

// Resolve collapses a dice expression into a flat one by rolling it.
// Flat and multiplicative expressions are returned unchanged.
func (e Expr) Resolve(roller dice.Roller) (Expr, error) {
	if e.Kind != ExprDice {
		return e, nil
	}
	v, err := e.Apply(0, roller)
	if err != nil {
		return Expr{}, err
	}
	return Flat(v), nil
}

// MarshalJSON implements json.Marshaler
func (e Expr) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (e *Expr) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.InvalidArgumentf("stat expression must be a string: %v", err)
	}
	if raw == "" {
		*e = Expr{}
		return nil
	}
	parsed, err := ParseExpr(raw)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// UnmarshalYAML accepts both "+3" strings and bare numbers.
func (e *Expr) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return errors.InvalidArgumentf("stat expression at line %d: %v", node.Line, err)
	}
	parsed, err := ParseExpr(raw)
	if err != nil {
		return errors.Wrapf(err, "stat expression at line %d", node.Line)
	}
	*e = parsed
	return nil
}
