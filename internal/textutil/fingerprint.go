package textutil

import (
	"math"
	"strings"
)

// Fingerprint is a character-trigram frequency vector. Trigrams tolerate the
// dropped or swapped letters typical of a mistyped folder name.
type Fingerprint struct {
	grams map[string]float64
	norm  float64
}

// NewFingerprint creates a fingerprint from text. Returns nil for text without
// letters or digits.
func NewFingerprint(text string) *Fingerprint {
	grams := Trigrams(text)
	if len(grams) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(grams))
	for _, gram := range grams {
		counts[gram]++
	}
	var sum float64
	for _, count := range counts {
		sum += count * count
	}
	return &Fingerprint{grams: counts, norm: math.Sqrt(sum)}
}

// Trigrams lowercases text, treats separators as word boundaries, and returns the
// padded character trigrams of every word.
func Trigrams(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	var out []string
	for _, word := range words {
		padded := []rune(" " + word + " ")
		for i := 0; i+3 <= len(padded); i++ {
			out = append(out, string(padded[i:i+3]))
		}
	}
	return out
}

// Len returns the number of distinct trigrams.
func (f *Fingerprint) Len() int {
	if f == nil {
		return 0
	}
	return len(f.grams)
}
