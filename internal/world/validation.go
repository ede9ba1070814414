// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Validation limits for world entities.
const (
	MaxNameLength = 100
	MaxKindLength = 64
	MaxSlots      = 256
	MaxStackSize  = 64
)

// ValidationError represents an input validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateName checks that a display name is valid.
// Names must be non-empty, valid UTF-8, no control characters, and within length limit.
func ValidateName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if !utf8.ValidString(name) {
		return &ValidationError{Field: "name", Message: "must be valid UTF-8"}
	}
	if len(name) > MaxNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("exceeds maximum length of %d", MaxNameLength)}
	}
	if hasControlChars(name) {
		return &ValidationError{Field: "name", Message: "cannot contain control characters"}
	}
	return nil
}

// ValidateKind checks a block kind or item identifier. Identifiers may carry
// a namespace ("minecraft:chest"); each part must be a valid identifier.
func ValidateKind(field, kind string) error {
	if kind == "" {
		return &ValidationError{Field: field, Message: "cannot be empty"}
	}
	if len(kind) > MaxKindLength {
		return &ValidationError{Field: field, Message: fmt.Sprintf("exceeds maximum length of %d", MaxKindLength)}
	}
	parts := strings.Split(kind, ":")
	if len(parts) > 2 {
		return &ValidationError{Field: field, Message: "at most one namespace separator allowed"}
	}
	for _, part := range parts {
		if !isValidIdentifier(part) {
			return &ValidationError{Field: field, Message: fmt.Sprintf("%q is not a valid identifier", part)}
		}
	}
	return nil
}

// ValidateSlots checks an inventory size.
func ValidateSlots(n int) error {
	if n < 0 || n > MaxSlots {
		return &ValidationError{Field: "slots", Message: fmt.Sprintf("must be between 0 and %d", MaxSlots)}
	}
	return nil
}

// ValidateStack checks a stack placed into a slot.
func ValidateStack(s Stack) error {
	if s.Count < 0 || s.Count > MaxStackSize {
		return &ValidationError{Field: "count", Message: fmt.Sprintf("must be between 0 and %d", MaxStackSize)}
	}
	if s.Count > 0 {
		return ValidateKind("item", s.Item)
	}
	return nil
}

// hasControlChars returns true if the string contains any control characters.
func hasControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

// isValidIdentifier returns true if s is a valid identifier (alphanumeric + underscore, starting with letter).
func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
		} else {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
				return false
			}
		}
	}
	return true
}
