/* SPDX-License-Identifier: GPL-3.0
 *
 * Copyright (C) 2026 Mullvad VPN AB. All Rights Reserved.
 */

package adapter

import (
	"errors"
	"fmt"
)

// ErrNoMoreDevices is returned by DeviceList.Device when iteration
// has passed the end of the list. It is the terminal condition of an
// enumeration, not a failure.
var ErrNoMoreDevices = errors.New("no more devices")

// ErrAdapterNotFound indicates that no adapter matched the product's
// identification policy.
var ErrAdapterNotFound = errors.New("adapter not found")

// DeviceQueryError reports an unexpected failure of a device property
// or registry query. An absent optional property is not a
// DeviceQueryError.
type DeviceQueryError struct {
	Op  string
	Err error
}

func (e *DeviceQueryError) Error() string {
	return fmt.Sprintf("device query %s: %v", e.Op, e.Err)
}

func (e *DeviceQueryError) Unwrap() error {
	return e.Err
}

// EnumerationError reports that the device list could not be acquired
// or iterated.
type EnumerationError struct {
	Err error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("enumerating network adapters: %v", e.Err)
}

func (e *EnumerationError) Unwrap() error {
	return e.Err
}

// AmbiguousAdapterError reports that more adapters matched than the
// installer can meaningfully handle. Candidates carries the full
// details of every match.
type AmbiguousAdapterError struct {
	Candidates []Adapter
}

func (e *AmbiguousAdapterError) Error() string {
	return fmt.Sprintf("identified %d adapters, expected exactly one", len(e.Candidates))
}

// DeviceRemovalError reports that the system refused to remove an
// identified device node.
type DeviceRemovalError struct {
	Adapter Adapter
	Err     error
}

func (e *DeviceRemovalError) Error() string {
	return fmt.Sprintf("removing device %s: %v", e.Adapter.DeviceInstanceID, e.Err)
}

func (e *DeviceRemovalError) Unwrap() error {
	return e.Err
}
