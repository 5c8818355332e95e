package countdown

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Digit positions
const (
	PosHourTens = iota
	PosHourOnes
	PosMinuteTens
	PosMinuteOnes
	PosSecondTens
	PosSecondOnes
	NumDigits
)

// MaxSeconds is the largest duration the wheels can show, 99:59:59
const MaxSeconds = 99*3600 + 59*60 + 59

var (
	// ErrInvalidDuration is returned for unparseable or out-of-range durations
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrInvalidDigit is returned for digits outside their wheel
	ErrInvalidDigit = errors.New("invalid digit")
)

// Digits holds H-tens, H-ones, M-tens, M-ones, S-tens, S-ones
type Digits [NumDigits]int

// DefaultDigits is the duration shown on a fresh timer, 00:05:00
var DefaultDigits = Digits{0, 0, 0, 5, 0, 0}

// MaxDigits returns the largest value each wheel accepts for d. H-ones is
// capped at 3 while H-tens is 2.
func MaxDigits(d Digits) Digits {
	limits := Digits{9, 9, 5, 9, 5, 9}
	if d[PosHourTens] == 2 {
		limits[PosHourOnes] = 3
	}
	return limits
}

// Validate checks every digit against its wheel
func (d Digits) Validate() error {
	limits := MaxDigits(d)
	for pos, v := range d {
		if v < 0 || v > limits[pos] {
			return fmt.Errorf("%w: position %d is %d, max %d", ErrInvalidDigit, pos, v, limits[pos])
		}
	}
	return nil
}

// String formats the digits as HH:MM:SS
func (d Digits) String() string {
	return fmt.Sprintf("%d%d:%d%d:%d%d", d[0], d[1], d[2], d[3], d[4], d[5])
}

// DigitsToSeconds decodes d into a total, applying the H-tens=2 clamp
func DigitsToSeconds(d Digits) int {
	hourOnes := d[PosHourOnes]
	if d[PosHourTens] == 2 && hourOnes > 3 {
		hourOnes = 3
	}
	hours := d[PosHourTens]*10 + hourOnes
	minutes := d[PosMinuteTens]*10 + d[PosMinuteOnes]
	seconds := d[PosSecondTens]*10 + d[PosSecondOnes]
	return hours*3600 + minutes*60 + seconds
}

// SecondsToDigits encodes a total. Negative totals become zero, hours clamp
// to 99 and the H-tens=2 constraint is applied.
func SecondsToDigits(total int) Digits {
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := total % 3600 / 60
	seconds := total % 60
	if hours > 99 {
		hours = 99
	}
	d := Digits{hours / 10, hours % 10, minutes / 10, minutes % 10, seconds / 10, seconds % 10}
	if d[PosHourTens] == 2 && d[PosHourOnes] > 3 {
		d[PosHourOnes] = 3
	}
	return d
}

// Representable reports whether total survives encoding unchanged. Hours
// 24 to 29 do not, as the wheels clamp them to 23.
func Representable(total int) bool {
	return total >= 0 && total <= MaxSeconds && DigitsToSeconds(SecondsToDigits(total)) == total
}

// Format renders a total as HH:MM:SS
func Format(total int) string {
	return SecondsToDigits(total).String()
}

// ParseDuration accepts "HH:MM:SS", "MM:SS" or "SS". The leading field may
// exceed its usual range; later fields must be below 60.
func ParseDuration(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidDuration)
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	total := 0
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		if i > 0 && v >= 60 {
			return 0, fmt.Errorf("%w: %q field %d out of range", ErrInvalidDuration, s, i+1)
		}
		total = total*60 + v
	}
	if total > MaxSeconds {
		return 0, fmt.Errorf("%w: %q exceeds %s", ErrInvalidDuration, s, Format(MaxSeconds))
	}
	if !Representable(total) {
		return 0, fmt.Errorf("%w: %q cannot be shown on the timer", ErrInvalidDuration, s)
	}
	return total, nil
}
