package provider

import (
	"strconv"
	"strings"
)

// blankCells are cell texts the site uses for "no value".
var blankCells = map[string]bool{
	"":  true,
	"—": true,
	"–": true,
	"-": true,
}

// IsBlank reports whether a cell's text means "no value".
func IsBlank(cell string) bool {
	return blankCells[strings.TrimSpace(cell)]
}

// ExtractInt normalizes an integer stat cell.
//
// The site renders counts plainly ("42"), signed ("+7"), or with thousands
// separators in attendance columns ("18,064"). Blank cells yield Absent; ok is
// false only for text that is not an integer.
func ExtractInt(cell string) (Value, bool) {
	s := strings.TrimSpace(cell)
	if IsBlank(s) {
		return Absent(), true
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "+")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Absent(), false
	}
	return Int(n), true
}

// ExtractFloat normalizes a rate or average cell.
//
// Percentages come without a leading zero (".456"), margins are signed
// ("+3.2"). Blank cells yield Absent; ok is false for non-numeric text.
func ExtractFloat(cell string) (Value, bool) {
	s := strings.TrimSpace(cell)
	if IsBlank(s) {
		return Absent(), true
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "+")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Absent(), false
	}
	return Float(f), true
}

// ExtractString trims a text cell; blank cells become Absent.
func ExtractString(cell string) Value {
	s := strings.TrimSpace(cell)
	if s == "" {
		return Absent()
	}
	return String(s)
}
