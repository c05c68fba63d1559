// Package chapters parses chapter selections and turns them into download
// targets. Chapter numbers are kept as the strings the source reports;
// numeric parsing is only used for ordering and canonical comparison.
package chapters

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var ErrInvalidNumber = errors.New("invalid chapter number")

var digitRun = regexp.MustCompile(`\d+`)

// Key returns the sort key of a chapter number. Oneshots (empty numbers)
// sort as 0. NaN and infinities are rejected since they do not order.
func Key(number string) (float64, error) {
	if number == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(number, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, number)
	}
	return f, nil
}

// Canonical returns the numeric form used to match records against a
// selection: "01" -> "1", "5.0" -> "5", "12.50" -> "12.5". Oneshots stay "".
func Canonical(number string) (string, error) {
	// An empty number is a oneshot, not a parse failure: it stays
	// selectable and resolves to a target like any other chapter.
	if number == "" {
		return "", nil
	}
	f, err := Key(number)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

// ZeroPad pads the integer part of a chapter number to three digits and
// keeps any fractional part as is.
func ZeroPad(number string) string {
	if whole, frac, ok := strings.Cut(number, "."); ok {
		return pad3(whole) + "." + frac
	}
	return pad3(number)
}

// PadFilename drops the leading character of name and pads its first run
// of digits to three places. A run starting at the very first character is
// kept whole, so "3.jpg" becomes "003.jpg".
func PadFilename(name string) string {
	loc := digitRun.FindStringIndex(name)
	if loc == nil {
		if name == "" {
			return name
		}
		return name[1:]
	}

	prefix := ""
	if loc[0] > 1 {
		prefix = name[1:loc[0]]
	}
	return prefix + pad3(name[loc[0]:loc[1]]) + name[loc[1]:]
}

func pad3(s string) string {
	if len(s) >= 3 {
		return s
	}
	return strings.Repeat("0", 3-len(s)) + s
}
