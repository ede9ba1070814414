// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package reference provides durable locators for live world objects.
//
// A Reference owns only the identity of its referent (for example a
// position plus the ULID expected to occupy it), never the object itself.
// Resolving a reference yields the live object as it exists right now;
// callers must resolve again on every entry to the world goroutine rather
// than caching a previous result.
package reference

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/oops"
)

// Error codes for resolution failures.
const (
	CodeGone     = "REFERENCE_GONE"
	CodeReplaced = "REFERENCE_REPLACED"
)

// ErrGone is matched (errors.Is) by every resolution failure caused by the
// referent no longer existing.
var ErrGone = errors.New("referent no longer exists")

// ErrReplaced is matched (errors.Is) by every resolution failure caused by a
// different entity now occupying the referent's locator.
var ErrReplaced = errors.New("referent was replaced")

// Reference is a durable locator that re-resolves to a live value.
type Reference[T any] interface {
	// Resolve returns the live referent. It must only be called on the
	// world goroutine.
	Resolve(ctx context.Context) (T, error)

	// Locator describes the referent for logs and error context.
	Locator() string
}

// Any is a type-erased reference, used for ambient chain entries.
type Any = Reference[any]

// Gone creates a resolution error for a referent that no longer exists.
func Gone(locator string) error {
	return oops.Code(CodeGone).
		With("locator", locator).
		Wrapf(ErrGone, "%s", locator)
}

// Replaced creates a resolution error for a referent whose locator is now
// occupied by a different entity.
func Replaced(locator string, want, got any) error {
	return oops.Code(CodeReplaced).
		With("locator", locator).
		With("expected", fmt.Sprint(want)).
		With("actual", fmt.Sprint(got)).
		Wrapf(ErrReplaced, "%s", locator)
}

// IsGone reports whether err is a "referent gone" resolution failure.
func IsGone(err error) bool {
	return errors.Is(err, ErrGone)
}

// IsReplaced reports whether err is a "referent replaced" resolution failure.
func IsReplaced(err error) bool {
	return errors.Is(err, ErrReplaced)
}

// IsResolution reports whether err is any resolution failure.
func IsResolution(err error) bool {
	return IsGone(err) || IsReplaced(err)
}

type erased[T any] struct {
	ref Reference[T]
}

func (e erased[T]) Resolve(ctx context.Context) (any, error) {
	return e.ref.Resolve(ctx)
}

func (e erased[T]) Locator() string {
	return e.ref.Locator()
}

// Erase converts a typed reference into an ambient chain entry.
func Erase[T any](ref Reference[T]) Any {
	if a, ok := any(ref).(Any); ok {
		return a
	}
	return erased[T]{ref: ref}
}

// Func adapts a resolver function into a Reference.
type Func[T any] struct {
	Name string
	Fn   func(ctx context.Context) (T, error)
}

// Resolve calls the wrapped function.
func (f Func[T]) Resolve(ctx context.Context) (T, error) {
	return f.Fn(ctx)
}

// Locator returns the configured name.
func (f Func[T]) Locator() string {
	return f.Name
}

// Static is a reference to a value that is not owned by the world, such as
// a scripting host's agent handle. It always resolves to the same value.
type Static[T any] struct {
	Value T
	Name  string
}

// Of creates a Static reference.
func Of[T any](name string, value T) Static[T] {
	return Static[T]{Value: value, Name: name}
}

// Resolve returns the wrapped value.
func (s Static[T]) Resolve(_ context.Context) (T, error) {
	return s.Value, nil
}

// Locator returns the configured name.
func (s Static[T]) Locator() string {
	return s.Name
}
