// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package catalog

import "github.com/samber/oops"

// Error codes returned to scripts by catalog methods.
const (
	CodeNoInventory      = "NO_INVENTORY"
	CodeNoEndpoint       = "NO_TRANSFER_ENDPOINT"
	CodeEndpointMismatch = "TRANSFER_ENDPOINT_MISMATCH"
)

// ErrNoInventory is returned by inventory methods on a container without one.
func ErrNoInventory() error {
	return oops.Code(CodeNoInventory).Errorf("target has no inventory")
}

// ErrNoEndpoint is returned when a transfer path does not resolve.
func ErrNoEndpoint(path string) error {
	return oops.Code(CodeNoEndpoint).
		With("path", path).
		Errorf("no transfer endpoint %q", path)
}

// ErrEndpointMismatch is returned when a transfer path resolves to something
// that cannot take part in the requested transfer.
func ErrEndpointMismatch(path, want string) error {
	return oops.Code(CodeEndpointMismatch).
		With("path", path).
		With("want", want).
		Errorf("transfer endpoint %q is not a %s", path, want)
}
