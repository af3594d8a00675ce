/* SPDX-License-Identifier: GPL-3.0
 *
 * Copyright (C) 2026 Mullvad VPN AB. All Rights Reserved.
 */

// Package adaptertest provides an in-memory DeviceDirectory for
// exercising enumeration and lifecycle logic without a live device
// database. Individual calls can be made to fail for testing error
// paths, and the directory counts list opens and closes so tests can
// verify strict handle pairing.
package adaptertest

import (
	"fmt"

	"github.com/mullvad/tapctl/adapter"
)

// FakeDevice is a scripted device node.
type FakeDevice struct {
	HardwareID   string
	NoHardwareID bool // hardware ID property absent
	ConfigID     string
	Description  string
	InstanceID   string
	Removed      bool

	HardwareIDErr  error
	ConfigIDErr    error
	DescriptionErr error
	InstanceIDErr  error
	RemoveErr      error
}

// FakeDirectory implements adapter.DeviceDirectory over a fixed slice
// of devices.
type FakeDirectory struct {
	Devices []*FakeDevice

	// Aliases maps configuration IDs to connection names.
	Aliases map[string]string

	NetDevicesErr error
	AliasErrs     map[string]error
	SetAliasErr   error

	// DeviceErrAt injects an iteration failure at a given index.
	DeviceErrAt map[int]error

	Opens  int
	Closes int
}

var _ adapter.DeviceDirectory = (*FakeDirectory)(nil)

// NetDevices snapshots the non-removed devices, the way a real device
// information set is a snapshot of the bus at acquisition time.
func (d *FakeDirectory) NetDevices() (adapter.DeviceList, error) {
	if d.NetDevicesErr != nil {
		return nil, d.NetDevicesErr
	}
	snapshot := make([]*FakeDevice, 0, len(d.Devices))
	for _, dev := range d.Devices {
		if !dev.Removed {
			snapshot = append(snapshot, dev)
		}
	}
	d.Opens++
	return &fakeList{dir: d, devices: snapshot}, nil
}

func (d *FakeDirectory) Alias(configID string) (string, error) {
	if err := d.AliasErrs[configID]; err != nil {
		return "", err
	}
	alias, ok := d.Aliases[configID]
	if !ok {
		return "", fmt.Errorf("no connection name for %s", configID)
	}
	return alias, nil
}

func (d *FakeDirectory) SetAlias(configID, alias string) error {
	if d.SetAliasErr != nil {
		return d.SetAliasErr
	}
	if _, ok := d.Aliases[configID]; !ok {
		return fmt.Errorf("no connection name for %s", configID)
	}
	d.Aliases[configID] = alias
	return nil
}

type fakeList struct {
	dir     *FakeDirectory
	devices []*FakeDevice
	closed  bool
}

func (l *fakeList) Device(index int) (adapter.Device, error) {
	if err := l.dir.DeviceErrAt[index]; err != nil {
		return nil, err
	}
	if index >= len(l.devices) {
		return nil, adapter.ErrNoMoreDevices
	}
	return &fakeDevice{dev: l.devices[index]}, nil
}

func (l *fakeList) Close() error {
	if !l.closed {
		l.closed = true
		l.dir.Closes++
	}
	return nil
}

type fakeDevice struct {
	dev *FakeDevice
}

func (f *fakeDevice) HardwareID() (string, bool, error) {
	if f.dev.HardwareIDErr != nil {
		return "", false, f.dev.HardwareIDErr
	}
	if f.dev.NoHardwareID {
		return "", false, nil
	}
	return f.dev.HardwareID, true, nil
}

func (f *fakeDevice) ConfigID() (string, error) {
	if f.dev.ConfigIDErr != nil {
		return "", f.dev.ConfigIDErr
	}
	return f.dev.ConfigID, nil
}

func (f *fakeDevice) Description() (string, error) {
	if f.dev.DescriptionErr != nil {
		return "", f.dev.DescriptionErr
	}
	return f.dev.Description, nil
}

func (f *fakeDevice) InstanceID() (string, error) {
	if f.dev.InstanceIDErr != nil {
		return "", f.dev.InstanceIDErr
	}
	return f.dev.InstanceID, nil
}

func (f *fakeDevice) Remove() error {
	if f.dev.RemoveErr != nil {
		return f.dev.RemoveErr
	}
	f.dev.Removed = true
	return nil
}
