package scraper

import (
	"fmt"
	"strconv"
	"strings"
)

var currencyGlyphs = []string{"₹", "$", "€", "£", "Rs.", "Rs", "INR"}

// ParsePrice normalizes raw price text into a non-negative amount.
// Thousands separators and currency glyphs are stripped before parsing;
// any non-numeric residue makes the text malformed.
func ParsePrice(text string) (float64, error) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty", ErrMalformedPrice)
	}

	for _, glyph := range currencyGlyphs {
		cleaned = strings.ReplaceAll(cleaned, glyph, "")
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedPrice, text)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: negative amount %q", ErrMalformedPrice, text)
	}

	return value, nil
}
