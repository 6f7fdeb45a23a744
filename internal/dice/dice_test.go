package dice

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpr(t *testing.T) {
	tests := []struct {
		in   string
		want Expr
	}{
		{"1d8", Expr{Count: 1, Sides: 8}},
		{"2d6+4", Expr{Count: 2, Sides: 6, Bonus: 4}},
		{"3d4+3", Expr{Count: 3, Sides: 4, Bonus: 3}},
		{"1d4-1", Expr{Count: 1, Sides: 4, Bonus: -1}},
		{"d20", Expr{Count: 1, Sides: 20}},
		{" 1D10 ", Expr{Count: 1, Sides: 10}},
	}
	for _, tt := range tests {
		got, err := ParseExpr(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseExpr_Invalid(t *testing.T) {
	for _, in := range []string{"", "d", "2x6", "0d6", "1d0", "1d6+x", "abc"} {
		_, err := ParseExpr(in)
		if !errors.Is(err, ErrInvalidExpr) {
			t.Errorf("ParseExpr(%q): expected ErrInvalidExpr, got %v", in, err)
		}
	}
}

func TestExpr_StringRoundTrip(t *testing.T) {
	for _, s := range []string{"1d8", "2d6+4", "1d4-1"} {
		assert.Equal(t, s, MustParse(s).String())
	}
	assert.Equal(t, "", Expr{}.String())
}

func TestExpr_RollRange(t *testing.T) {
	src := NewSource(42)
	e := MustParse("2d6+4")
	for i := 0; i < 500; i++ {
		total := e.Roll(src).Total()
		if total < 6 || total > 16 {
			t.Fatalf("2d6+4 out of range: %d", total)
		}
	}
}

func TestExpr_RollScripted(t *testing.T) {
	res := MustParse("3d4+3").Roll(NewScript(1, 2, 4))
	assert.Equal(t, []int{1, 2, 4}, res.Dice)
	assert.Equal(t, 10, res.Total())
}

func TestD20_Distribution(t *testing.T) {
	src := NewSource(7)
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		v := D20(src)
		if v < 1 || v > 20 {
			t.Fatalf("d20 out of range: %d", v)
		}
		seen[v] = true
	}
	assert.Len(t, seen, 20)
}

func TestHigherLower(t *testing.T) {
	assert.Equal(t, 15, Higher(NewScript(15), 3))
	assert.Equal(t, 12, Higher(NewScript(4), 12))
	assert.Equal(t, 3, Lower(NewScript(15), 3))
	assert.Equal(t, 4, Lower(NewScript(4), 12))
}

func TestBetween(t *testing.T) {
	src := NewSource(1)
	for i := 0; i < 200; i++ {
		v := Between(src, 3, 5)
		if v < 3 || v > 5 {
			t.Fatalf("Between out of range: %d", v)
		}
	}
	assert.Equal(t, 9, Between(src, 9, 9))
}

func TestNewSeed(t *testing.T) {
	a, err := NewSeed()
	require.NoError(t, err)
	b, err := NewSeed()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
