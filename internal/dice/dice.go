// Package dice provides random sources, parsed dice expressions and the
// roll-source contract used to resolve pending player actions.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
)

// ErrInvalidExpr indicates a dice expression could not be parsed.
var ErrInvalidExpr = errors.New("dice expression must look like NdM or NdM+K")

// Source is the randomness provider for dice rolls.
//
// Implementations must be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a pseudo-random source seeded with seed.
func NewSource(seed int64) Source {
	return &lockedSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Die rolls a single die with the given number of sides.
func Die(src Source, sides int) int {
	if sides <= 0 {
		return 0
	}
	return src.Intn(sides) + 1
}

// D20 rolls a twenty-sided die.
func D20(src Source) int { return Die(src, 20) }

// Between returns a uniform integer in [lo, hi].
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// Expr is a parsed NdM+K expression.
type Expr struct {
	Count int
	Sides int
	Bonus int
}

// ParseExpr parses expressions such as "1d8", "2d6+4" or "1d4-1".
func ParseExpr(s string) (Expr, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if raw == "" {
		return Expr{}, ErrInvalidExpr
	}
	var e Expr
	rest := raw
	if i := strings.IndexAny(raw, "+-"); i > 0 {
		bonus, err := strconv.Atoi(raw[i:])
		if err != nil {
			return Expr{}, fmt.Errorf("%w: %q", ErrInvalidExpr, s)
		}
		e.Bonus = bonus
		rest = raw[:i]
	}
	count, sides, ok := strings.Cut(rest, "d")
	if !ok {
		return Expr{}, fmt.Errorf("%w: %q", ErrInvalidExpr, s)
	}
	if count == "" {
		e.Count = 1
	} else {
		n, err := strconv.Atoi(count)
		if err != nil {
			return Expr{}, fmt.Errorf("%w: %q", ErrInvalidExpr, s)
		}
		e.Count = n
	}
	m, err := strconv.Atoi(sides)
	if err != nil {
		return Expr{}, fmt.Errorf("%w: %q", ErrInvalidExpr, s)
	}
	e.Sides = m
	if e.Count <= 0 || e.Sides <= 0 {
		return Expr{}, fmt.Errorf("%w: %q", ErrInvalidExpr, s)
	}
	return e, nil
}

// MustParse is ParseExpr for package-level tables; it panics on bad input.
func MustParse(s string) Expr {
	e, err := ParseExpr(s)
	if err != nil {
		panic(err)
	}
	return e
}

// IsZero reports whether the expression was never set.
func (e Expr) IsZero() bool { return e.Count == 0 && e.Sides == 0 && e.Bonus == 0 }

func (e Expr) String() string {
	if e.IsZero() {
		return ""
	}
	switch {
	case e.Bonus > 0:
		return fmt.Sprintf("%dd%d+%d", e.Count, e.Sides, e.Bonus)
	case e.Bonus < 0:
		return fmt.Sprintf("%dd%d%d", e.Count, e.Sides, e.Bonus)
	default:
		return fmt.Sprintf("%dd%d", e.Count, e.Sides)
	}
}

// UnmarshalText lets YAML and JSON decoders read expressions as strings.
func (e *Expr) UnmarshalText(b []byte) error {
	parsed, err := ParseExpr(string(b))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// MarshalText writes the expression back in NdM+K form.
func (e Expr) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// Result holds the individual dice and flat bonus of one evaluation.
type Result struct {
	Expr  Expr
	Dice  []int
	Bonus int
}

// Total returns the sum of all dice plus the bonus.
func (r Result) Total() int {
	total := r.Bonus
	for _, d := range r.Dice {
		total += d
	}
	return total
}

func (r Result) String() string {
	return fmt.Sprintf("%s → %v %+d = %d", r.Expr, r.Dice, r.Bonus, r.Total())
}

// Roll evaluates the expression against src.
func (e Expr) Roll(src Source) Result {
	res := Result{Expr: e, Dice: make([]int, e.Count), Bonus: e.Bonus}
	for i := 0; i < e.Count; i++ {
		res.Dice[i] = Die(src, e.Sides)
	}
	return res
}

// Higher returns the better of first and a fresh d20, for advantage.
func Higher(src Source, first int) int {
	second := D20(src)
	if second > first {
		return second
	}
	return first
}

// Lower returns the worse of first and a fresh d20, for disadvantage.
func Lower(src Source, first int) int {
	second := D20(src)
	if second < first {
		return second
	}
	return first
}
