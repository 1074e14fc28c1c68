package service

import (
	"crypto/rand"
	"encoding/binary"
	"strings"
)

// phraseWordCount is the number of words in a recovery phrase. Twelve words
// at 11 bits each give roughly 132 bits of entropy.
const phraseWordCount = 12

// WordPhraseGenerator implements PhraseGenerator over the fixed 2048-word list.
type WordPhraseGenerator struct{}

// NewWordPhraseGenerator creates a new WordPhraseGenerator.
func NewWordPhraseGenerator() *WordPhraseGenerator {
	return &WordPhraseGenerator{}
}

// Generate returns a fresh 12-word recovery phrase.
//
// Each word index is drawn by reducing a 16-bit read from crypto/rand modulo
// 2048. Because 2048 divides 65536 exactly, the reduction is uniform; no
// rejection sampling is needed and there is no modulo bias.
func (g *WordPhraseGenerator) Generate() (string, error) {
	buf := make([]byte, 2*phraseWordCount)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	words := make([]string, phraseWordCount)
	for i := range words {
		idx := binary.BigEndian.Uint16(buf[2*i:]) % uint16(len(phraseWords))
		words[i] = phraseWords[idx]
	}

	return strings.Join(words, " "), nil
}

// NormalizePhrase canonicalizes a user-supplied recovery phrase before
// derivation: surrounding whitespace is trimmed, the phrase is lowercased,
// and internal runs of whitespace collapse to single spaces. Derivation from
// a transcribed phrase must not depend on how the user typed it.
func NormalizePhrase(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}
