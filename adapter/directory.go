/* SPDX-License-Identifier: GPL-3.0
 *
 * Copyright (C) 2026 Mullvad VPN AB. All Rights Reserved.
 */

package adapter

// DeviceDirectory provides access to the system's registry of present
// network-class devices. The live implementation lives in the sysdev
// package; tests use adaptertest.FakeDirectory.
//
// An implementation that holds process-wide resources may
// additionally implement io.Closer; session.Close releases it.
type DeviceDirectory interface {
	// NetDevices acquires the current list of present network-class
	// devices. The caller must close the returned list on every path.
	NetDevices() (DeviceList, error)

	// Alias resolves the connection display name for a network
	// configuration ID.
	Alias(configID string) (string, error)

	// SetAlias renames the connection identified by a network
	// configuration ID.
	SetAlias(configID, alias string) error
}

// DeviceList is a snapshot handle over network-class devices,
// iterated by index.
type DeviceList interface {
	// Device returns the device at the given index, or
	// ErrNoMoreDevices once the index is past the end of the list.
	Device(index int) (Device, error)

	// Close releases the list handle.
	Close() error
}

// Device is a single device node in the list.
type Device interface {
	// HardwareID returns the first hardware ID reported for the
	// device. ok is false when the device carries no hardware ID
	// property at all, which is normal and not an error.
	HardwareID() (id string, ok bool, err error)

	// ConfigID returns the device's network configuration instance
	// ID.
	ConfigID() (string, error)

	// Description returns the driver-reported device description.
	Description() (string, error)

	// InstanceID returns the device tree instance path.
	InstanceID() (string, error)

	// Remove removes the device node from the system.
	Remove() error
}
