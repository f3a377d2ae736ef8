// Package redact scrubs chat message text before it reaches log sinks.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Level controls how much of a message survives redaction.
type Level string

const (
	// LevelNone replaces the whole text.
	LevelNone Level = "none"
	// LevelHashed keeps the text but swaps personal data for salted hashes.
	LevelHashed Level = "hashed"
	// LevelFull logs text untouched.
	LevelFull Level = "full"
)

// ParseLevel maps a config value to a Level, defaulting to LevelHashed.
func ParseLevel(raw string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(raw))) {
	case LevelNone:
		return LevelNone
	case LevelFull:
		return LevelFull
	default:
		return LevelHashed
	}
}

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	cardPattern  = regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`)
	phonePattern = regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	ipv4Pattern  = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
)

const maxLoggedRunes = 120

// Redactor applies a Level to message text.
type Redactor struct {
	level Level
	salt  string
}

func New(level Level, salt string) *Redactor {
	return &Redactor{level: level, salt: salt}
}

// Text returns a log-safe rendition of a chat message.
func (r *Redactor) Text(input string) string {
	if r == nil {
		return "[REDACTED]"
	}
	switch r.level {
	case LevelFull:
		return clip(input)
	case LevelNone:
		return "[REDACTED]"
	default:
		return clip(r.scrub(input))
	}
}

// UserID hashes a user id unless the level is full.
func (r *Redactor) UserID(userID string) string {
	if userID == "" || r == nil {
		return ""
	}
	if r.level == LevelFull {
		return userID
	}
	return r.hash(userID)
}

func (r *Redactor) scrub(input string) string {
	out := emailPattern.ReplaceAllStringFunc(input, func(m string) string {
		return fmt.Sprintf("[EMAIL:%s]", r.hash(m))
	})
	// cards before phones, a card number contains phone-shaped runs
	out = cardPattern.ReplaceAllString(out, "[CC:REDACTED]")
	out = phonePattern.ReplaceAllStringFunc(out, func(m string) string {
		return fmt.Sprintf("[PHONE:%s]", r.hash(m))
	})
	return ipv4Pattern.ReplaceAllStringFunc(out, func(m string) string {
		return fmt.Sprintf("[IP:%s]", r.hash(m))
	})
}

func (r *Redactor) hash(data string) string {
	sum := sha256.Sum256([]byte(data + r.salt))
	return hex.EncodeToString(sum[:])[:8]
}

func clip(s string) string {
	if utf8.RuneCountInString(s) <= maxLoggedRunes {
		return s
	}
	return string([]rune(s)[:maxLoggedRunes]) + "…"
}
