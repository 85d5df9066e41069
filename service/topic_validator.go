package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxTopicLength is the longest topic accepted, in characters
const MaxTopicLength = 200

// User-facing validation messages
const (
	ReasonTopicRequired     = "Topic is required."
	ReasonTopicTooLong      = "Query too long (max 200 chars)."
	ReasonInvalidCharacters = "Invalid characters detected."
)

var forbiddenTopicChars = regexp.MustCompile(`[<>{}]`)

var suggestedTopics = []string{
	"AI Liability Law",
	"Discrimination in Smart Contracts",
	"Digital Identity Rights",
	"Neural Privacy Acts",
}

// SuggestedTopics returns the example topics offered to new users
func SuggestedTopics() []string {
	return append([]string{}, suggestedTopics...)
}

// ValidateTopic guards a raw topic before anything is sent out.
// The topic itself is never modified.
func ValidateTopic(topic string) error {
	if strings.TrimSpace(topic) == "" {
		return &ValidationError{Reason: ReasonTopicRequired}
	}
	if utf8.RuneCountInString(topic) > MaxTopicLength {
		return &ValidationError{Reason: ReasonTopicTooLong}
	}
	if forbiddenTopicChars.MatchString(topic) {
		return &ValidationError{Reason: ReasonInvalidCharacters}
	}
	return nil
}
