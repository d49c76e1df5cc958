// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codehost

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"unicode/utf8"
)

// ExcerptRunes is the length of the stored README excerpt.
const ExcerptRunes = 1000

var weightsPattern = regexp.MustCompile(`(?i)checkpoint|weights|\.(?:safetensors|pt|pth|bin|ckpt)\b`)

// HasWeights reports whether a README mentions distributed model weights:
// checkpoint or weights anywhere in the text (also inside identifiers such
// as pretrained_weights.zip), or a weights file extension.
func HasWeights(readme string) bool {
	return weightsPattern.MatchString(readme)
}

// Excerpt returns the first ExcerptRunes runes of readme and the hex SHA-256
// of the full text.
func Excerpt(readme string) (excerpt, hash string) {
	sum := sha256.Sum256([]byte(readme))
	hash = hex.EncodeToString(sum[:])

	if utf8.RuneCountInString(readme) <= ExcerptRunes {
		return readme, hash
	}
	n := 0
	for i := range readme {
		if n == ExcerptRunes {
			return readme[:i], hash
		}
		n++
	}
	return readme, hash
}
