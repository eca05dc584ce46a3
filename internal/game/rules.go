package game

import (
	"errors"
	"strings"
)

var (
	ErrEmptyPhrase = errors.New("phrase is empty")
	ErrShape       = errors.New("phrase has wrong word count")
	ErrMismatch    = errors.New("phrase does not chain from the link word")
	ErrOveruse     = errors.New("phrase used too many times")
)

// Normalize trims surrounding whitespace and case-folds the submission.
// All rule checks and the usage history operate on the normalized form.
func Normalize(text string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return "", ErrEmptyPhrase
	}
	return s, nil
}

// WordCount reports the number of whitespace-delimited tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// LinkKey returns the last token of a normalized phrase, the word the next
// submission must open with. Empty input yields an empty key.
func LinkKey(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// FirstWord returns the first token of a normalized phrase.
func FirstWord(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// ValidateOpening checks the round's first phrase. It only has to be
// non-empty after normalization; shape, if enforced, is checked separately.
func ValidateOpening(candidate string) error {
	if strings.TrimSpace(candidate) == "" {
		return ErrEmptyPhrase
	}
	return nil
}

// ValidateShape enforces a fixed token count when the ruleset demands one.
// requiredWordCount <= 0 disables the check.
func ValidateShape(candidate string, requiredWordCount int) error {
	if requiredWordCount <= 0 {
		return nil
	}
	if WordCount(candidate) != requiredWordCount {
		return ErrShape
	}
	return nil
}

// ValidateContinuation checks that candidate opens with the current phrase's
// link word. Both arguments must already be normalized.
func ValidateContinuation(currentPhrase, candidate string) error {
	if FirstWord(candidate) != LinkKey(currentPhrase) {
		return ErrMismatch
	}
	return nil
}

// ValidateNovelty checks the candidate against the usage history. It never
// mutates history; the engine bumps the count only after every check passed.
func ValidateNovelty(history map[string]int, candidate string, reuseLimit int) error {
	if history[candidate] >= reuseLimit {
		return ErrOveruse
	}
	return nil
}
