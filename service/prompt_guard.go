package service

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/blake2b"
)

var (
	overridePhrases = regexp.MustCompile(`(?i)(ignore previous|system prompt|your instructions)`)
	// Alphanumerics, whitespace and the punctuation common in legal terms
	promptTopicDisallowed = regexp.MustCompile(`[^a-zA-Z0-9\s\-.,?&]`)
)

// GuardTopic prepares a topic for embedding in a prompt. It rejects
// instruction-override attempts and strips every character outside the
// allowed set.
func GuardTopic(topic string) (string, error) {
	if topic == "" || utf8.RuneCountInString(topic) > MaxTopicLength {
		return "", fmt.Errorf("%w: topic exceeds maximum length", ErrSecurityViolation)
	}
	if overridePhrases.MatchString(topic) {
		return "", fmt.Errorf("%w: potential prompt injection detected", ErrSecurityViolation)
	}

	clean := promptTopicDisallowed.ReplaceAllString(topic, "")
	if strings.TrimSpace(clean) == "" {
		return "", fmt.Errorf("%w: input contains no valid characters", ErrSecurityViolation)
	}
	return clean, nil
}

// TopicFingerprint identifies a topic in audit logs without revealing it
func TopicFingerprint(topic string) string {
	sum := blake2b.Sum256([]byte(topic))
	return hex.EncodeToString(sum[:8])
}
