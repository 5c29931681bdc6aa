package course

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadUnits is returned for unit text that is neither a decimal nor a
// "min-max" range.
var ErrBadUnits = errors.New("invalid units")

// Amount is a unit count in hundredths. Fixed point keeps ledger sums exact.
type Amount int64

// AmountOf converts a float unit count, rounding to the nearest hundredth.
func AmountOf(f float64) Amount {
	if f < 0 {
		return -AmountOf(-f)
	}
	return Amount(f*100 + 0.5)
}

// ParseAmount parses a decimal such as "4", "4.5" or "76.5".
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrBadUnits)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadUnits, s)
	}
	return AmountOf(f), nil
}

// Float64 returns the amount as a unit count.
func (a Amount) Float64() float64 { return float64(a) / 100 }

func (a Amount) String() string {
	if a%100 == 0 {
		return strconv.FormatInt(int64(a/100), 10)
	}
	return strconv.FormatFloat(a.Float64(), 'f', -1, 64)
}

// MarshalJSON writes the amount as a plain unit number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a unit number or a numeric string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*a = AmountOf(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrBadUnits, data)
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

type unitsKind uint8

const (
	unitsFixed unitsKind = iota
	unitsRange
)

// Units is either a fixed amount or a variable min-max range.
type Units struct {
	kind     unitsKind
	min, max Amount
}

// Fixed returns a fixed unit value.
func Fixed(a Amount) Units { return Units{kind: unitsFixed, min: a, max: a} }

// Range returns a variable unit range. Bounds are swapped if reversed.
func Range(lo, hi Amount) Units {
	if lo > hi {
		lo, hi = hi, lo
	}
	return Units{kind: unitsRange, min: lo, max: hi}
}

// ParseUnits parses "4", "4.5" or "1-4".
func ParseUnits(s string) (Units, error) {
	s = strings.TrimSpace(s)
	if lo, hi, ok := strings.Cut(s, "-"); ok {
		a, err := ParseAmount(lo)
		if err != nil {
			return Units{}, err
		}
		b, err := ParseAmount(hi)
		if err != nil {
			return Units{}, err
		}
		return Range(a, b), nil
	}
	a, err := ParseAmount(s)
	if err != nil {
		return Units{}, err
	}
	return Fixed(a), nil
}

// IsRange reports whether the units are variable.
func (u Units) IsRange() bool { return u.kind == unitsRange }

// Bounds returns the minimum and maximum amounts.
func (u Units) Bounds() (Amount, Amount) { return u.min, u.max }

// Resolve picks a concrete amount. A zero choice selects the default,
// which is the range maximum; other choices are clamped into the range.
func (u Units) Resolve(choice Amount) Amount {
	if u.kind == unitsFixed {
		return u.max
	}
	switch {
	case choice <= 0:
		return u.max
	case choice < u.min:
		return u.min
	case choice > u.max:
		return u.max
	}
	return choice
}

func (u Units) String() string {
	if u.kind == unitsRange {
		return u.min.String() + "-" + u.max.String()
	}
	return u.max.String()
}

// MarshalJSON writes the catalog text form.
func (u Units) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON accepts the catalog text form or a bare number.
func (u *Units) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var f float64
		if ferr := json.Unmarshal(data, &f); ferr != nil {
			return fmt.Errorf("%w: %s", ErrBadUnits, data)
		}
		*u = Fixed(AmountOf(f))
		return nil
	}
	v, err := ParseUnits(s)
	if err != nil {
		return err
	}
	*u = v
	return nil
}
