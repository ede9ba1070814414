// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package method

import (
	"errors"

	"github.com/samber/oops"

	"github.com/holomush/periscope/internal/cost"
	"github.com/holomush/periscope/internal/reference"
	"github.com/holomush/periscope/pkg/errutil"
)

// Error codes for context and dispatch failures.
const (
	CodeLinkFailed        = "CONTEXT_LINK_FAILED"
	CodeNotFullyFleshed   = "NOT_FULLY_FLESHED"
	CodeInvalidBinding    = "INVALID_BINDING"
	CodeInvalidDescriptor = "INVALID_DESCRIPTOR"
	CodeUnknownMethod     = "UNKNOWN_METHOD"
	CodeBadArgument       = "BAD_ARGUMENT"
	CodeNotApplicable     = "METHOD_NOT_APPLICABLE"
)

// ErrNilRegistry is returned when a runtime is built without a method registry.
var ErrNilRegistry = errors.New("method registry is required")

// ErrNilTransfers is returned when a runtime is built without a transfer registry.
var ErrNilTransfers = errors.New("transfer registry is required")

// ErrNilExecutor is returned when a runtime is built without an executor.
var ErrNilExecutor = errors.New("executor is required")

// ErrLinkFailed wraps the resolution failure of one link of a context.
// link is "target" or the chain index of the failed reference.
func ErrLinkFailed(link any, locator string, cause error) error {
	return oops.Code(CodeLinkFailed).
		With("link", link).
		With("locator", locator).
		Wrapf(cause, "resolve %v (%s)", link, locator)
}

// ErrNotFullyFleshed is returned when an operation needing durable lineage
// is attempted on a context built from live objects.
func ErrNotFullyFleshed(operation string) error {
	return oops.Code(CodeNotFullyFleshed).
		With("operation", operation).
		Errorf("%s: this is not a fully fleshed context", operation)
}

// ErrInvalidBinding reports an unsupported parameter binding at registration.
func ErrInvalidBinding(methodName, param, reason string) error {
	return oops.Code(CodeInvalidBinding).
		With("method", methodName).
		With("param", param).
		Errorf("method %s: parameter %q: %s", methodName, param, reason)
}

// ErrInvalidDescriptor reports a malformed descriptor at registration.
func ErrInvalidDescriptor(methodName, reason string) error {
	return oops.Code(CodeInvalidDescriptor).
		With("method", methodName).
		Errorf("method %q: %s", methodName, reason)
}

// ErrUnknownMethod is returned when calling a name the object does not expose.
func ErrUnknownMethod(name string) error {
	return oops.Code(CodeUnknownMethod).
		With("method", name).
		Errorf("no such method %s", name)
}

// ErrBadArgument reports an argument that does not satisfy its binding.
func ErrBadArgument(methodName string, index int, param, reason string) error {
	return oops.Code(CodeBadArgument).
		With("method", methodName).
		With("index", index).
		With("param", param).
		Errorf("bad argument #%d (%s) to %s: %s", index+1, param, methodName, reason)
}

// ErrNotApplicable is returned when a method no longer applies to the
// freshly resolved target.
func ErrNotApplicable(methodName string) error {
	return oops.Code(CodeNotApplicable).
		With("method", methodName).
		Errorf("method %s is no longer applicable to its target", methodName)
}

// Recoverable reports whether err should surface to a script as a failed
// call (resolution failures, exhausted quota, bad arguments). Illegal state
// and configuration errors are defects and are not recoverable.
func Recoverable(err error) bool {
	if reference.IsResolution(err) || cost.IsQuotaExceeded(err) {
		return true
	}
	return !errutil.HasCode(err, CodeNotFullyFleshed) &&
		!errutil.HasCode(err, CodeInvalidBinding) &&
		!errutil.HasCode(err, CodeInvalidDescriptor)
}
