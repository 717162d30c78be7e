// Package fixed implements the 8.8 unsigned fixed-point number used throughout the rules and
// scenario data ("0.5", "50%", ".25").
package fixed

import (
	"fmt"
	"strconv"
	"strings"
)

// Fixed holds a value in units of 1/256.
type Fixed uint16

const (
	precision = 256

	// Zero is 0.0.
	Zero Fixed = 0
	// One is 1.0.
	One Fixed = precision
	// Half is 0.5.
	Half Fixed = precision / 2
	// Max is the largest representable value.
	Max Fixed = 0xFFFF
)

// FromRatio returns num/den rounded to the nearest 1/256.
func FromRatio(num, den int) Fixed {
	if den == 0 {
		return Zero
	}
	v := (num*precision + den/2) / den
	return clamp(v)
}

// FromInt returns the fixed value of a whole number.
func FromInt(v int) Fixed {
	return clamp(v * precision)
}

// Parse reads a decimal ("1.5", ".25") or percentage ("75%") value.
func Parse(s string) (Fixed, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("empty fixed value")
	}

	if strings.HasSuffix(s, "%") {
		pct, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(s, "%")))
		if err != nil {
			return Zero, fmt.Errorf("invalid percentage %q: %w", s, err)
		}
		return FromRatio(pct, 100), nil
	}

	whole, frac, _ := strings.Cut(s, ".")
	w := 0
	if whole != "" {
		var err error
		w, err = strconv.Atoi(whole)
		if err != nil {
			return Zero, fmt.Errorf("invalid fixed value %q: %w", s, err)
		}
	}

	f := 0
	if frac != "" {
		if len(frac) > 4 {
			frac = frac[:4]
		}
		n, err := strconv.Atoi(frac)
		if err != nil {
			return Zero, fmt.Errorf("invalid fixed value %q: %w", s, err)
		}
		den := 1
		for range frac {
			den *= 10
		}
		f = (n*precision + den/2) / den
	}

	return clamp(w*precision + f), nil
}

func clamp(v int) Fixed {
	if v < 0 {
		return Zero
	}
	if v > int(Max) {
		return Max
	}
	return Fixed(v)
}

// Raw returns the underlying 1/256 units.
func (f Fixed) Raw() int { return int(f) }

// MulInt scales an integer by f with rounding.
func (f Fixed) MulInt(v int) int {
	if v < 0 {
		return -((-v*int(f) + precision/2) / precision)
	}
	return (v*int(f) + precision/2) / precision
}

// Mul multiplies two fixed values.
func (f Fixed) Mul(o Fixed) Fixed {
	return clamp((int(f)*int(o) + precision/2) / precision)
}

// Int truncates to the whole part.
func (f Fixed) Int() int { return int(f) / precision }

// Saturate clamps f to at most cap.
func (f Fixed) Saturate(cap Fixed) Fixed {
	if f > cap {
		return cap
	}
	return f
}

func (f Fixed) String() string {
	return strconv.FormatFloat(float64(f)/precision, 'f', -1, 64)
}
