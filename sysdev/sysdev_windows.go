/* SPDX-License-Identifier: GPL-3.0
 *
 * Copyright (C) 2026 Mullvad VPN AB. All Rights Reserved.
 */

// Package sysdev implements adapter.DeviceDirectory over SetupAPI and
// the network configuration interface.
package sysdev

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/mullvad/tapctl/adapter"
	"github.com/mullvad/tapctl/nci"
)

var deviceClassNetGUID = windows.GUID{Data1: 0x4d36e972, Data2: 0xe325, Data3: 0x11ce, Data4: [8]byte{0xbf, 0xc1, 0x08, 0x00, 0x2b, 0xe1, 0x03, 0x18}}

// DEVPKEY_Device_DriverDesc, devpkey.h.
var devpkeyDeviceDriverDesc = windows.DEVPROPKEY{
	FmtID: windows.DEVPROPGUID{Data1: 0xa45c254e, Data2: 0xdf1c, Data3: 0x4efd, Data4: [8]byte{0x80, 0x20, 0x67, 0xd1, 0x46, 0xa8, 0x50, 0xe0}},
	PID:   4,
}

// Directory is the live Windows device directory.
type Directory struct{}

var _ adapter.DeviceDirectory = (*Directory)(nil)

// New returns a directory reading the local machine's device
// database.
func New() *Directory {
	return &Directory{}
}

// NetDevices acquires the list of present network-class devices.
func (*Directory) NetDevices() (adapter.DeviceList, error) {
	devInfo, err := windows.SetupDiGetClassDevsEx(&deviceClassNetGUID, "", 0, windows.DIGCF_PRESENT, 0, "")
	if err != nil {
		return nil, fmt.Errorf("SetupDiGetClassDevsEx: %w", err)
	}
	return &deviceList{devInfo: devInfo}, nil
}

// Alias resolves the connection name recorded for a configuration ID.
func (*Directory) Alias(configID string) (string, error) {
	guid, err := windows.GUIDFromString(configID)
	if err != nil {
		return "", fmt.Errorf("configuration ID %q is not a GUID: %w", configID, err)
	}
	name, err := nci.ConnectionName(&guid)
	if err != nil {
		return "", &adapter.DeviceQueryError{Op: "NciGetConnectionName", Err: err}
	}
	return name, nil
}

// SetAlias renames the connection recorded for a configuration ID.
func (*Directory) SetAlias(configID, alias string) error {
	guid, err := windows.GUIDFromString(configID)
	if err != nil {
		return fmt.Errorf("configuration ID %q is not a GUID: %w", configID, err)
	}
	return nci.SetConnectionName(&guid, alias)
}

type deviceList struct {
	devInfo windows.DevInfo
}

func (l *deviceList) Device(index int) (adapter.Device, error) {
	data, err := l.devInfo.EnumDeviceInfo(index)
	if err != nil {
		if err == windows.ERROR_NO_MORE_ITEMS {
			return nil, adapter.ErrNoMoreDevices
		}
		return nil, fmt.Errorf("SetupDiEnumDeviceInfo: %w", err)
	}
	return &device{devInfo: l.devInfo, data: data}, nil
}

func (l *deviceList) Close() error {
	return l.devInfo.Close()
}

type device struct {
	devInfo windows.DevInfo
	data    *windows.DevInfoData
}

// HardwareID reads the SPDRP_HARDWAREID registry property. The value
// is a string list; the first entry is the one driver installation
// matched on, so that is the entry exposed for filtering.
// ERROR_INVALID_DATA means the device carries no hardware ID at all,
// which is normal for devices not installed from a driver package.
func (d *device) HardwareID() (string, bool, error) {
	value, err := d.devInfo.DeviceRegistryProperty(d.data, windows.SPDRP_HARDWAREID)
	if err != nil {
		if err == windows.ERROR_INVALID_DATA {
			return "", false, nil
		}
		return "", false, &adapter.DeviceQueryError{Op: "SetupDiGetDeviceRegistryProperty", Err: err}
	}
	switch v := value.(type) {
	case string:
		return v, true, nil
	case []string:
		if len(v) == 0 {
			return "", false, nil
		}
		return v[0], true, nil
	}
	return "", false, &adapter.DeviceQueryError{Op: "SetupDiGetDeviceRegistryProperty", Err: fmt.Errorf("unexpected value type %T", value)}
}

// ConfigID reads the NetCfgInstanceId value from the device's driver
// registry key. The value must parse as a GUID; anything else marks
// the device as malformed.
func (d *device) ConfigID() (string, error) {
	handle, err := d.devInfo.OpenDevRegKey(d.data, windows.DICS_FLAG_GLOBAL, 0, windows.DIREG_DRV, windows.KEY_READ)
	if err != nil {
		return "", &adapter.DeviceQueryError{Op: "SetupDiOpenDevRegKey", Err: err}
	}
	key := registry.Key(handle)
	defer key.Close()

	value, _, err := key.GetStringValue("NetCfgInstanceId")
	if err != nil {
		return "", &adapter.DeviceQueryError{Op: `RegQueryValueEx("NetCfgInstanceId")`, Err: err}
	}
	if _, err := windows.GUIDFromString(value); err != nil {
		return "", fmt.Errorf("NetCfgInstanceId %q is not a GUID: %w", value, err)
	}
	return value, nil
}

// Description reads the structured driver description property, which
// is expected to exist on every enumerated device.
func (d *device) Description() (string, error) {
	value, err := windows.SetupDiGetDeviceProperty(d.devInfo, d.data, &devpkeyDeviceDriverDesc)
	if err != nil {
		return "", &adapter.DeviceQueryError{Op: "SetupDiGetDeviceProperty", Err: err}
	}
	desc, ok := value.(string)
	if !ok {
		return "", &adapter.DeviceQueryError{Op: "SetupDiGetDeviceProperty", Err: fmt.Errorf("unexpected value type %T", value)}
	}
	return desc, nil
}

func (d *device) InstanceID() (string, error) {
	id, err := d.devInfo.DeviceInstanceID(d.data)
	if err != nil {
		return "", &adapter.DeviceQueryError{Op: "SetupDiGetDeviceInstanceId", Err: err}
	}
	return id, nil
}

// Remove issues a global DIF_REMOVE for the device node.
func (d *device) Remove() error {
	params := windows.RemoveDeviceParams{
		ClassInstallHeader: *windows.MakeClassInstallHeader(windows.DIF_REMOVE),
		Scope:              windows.DI_REMOVEDEVICE_GLOBAL,
	}
	if err := d.devInfo.SetClassInstallParams(d.data, &params.ClassInstallHeader, uint32(unsafe.Sizeof(params))); err != nil {
		return fmt.Errorf("SetupDiSetClassInstallParams: %w", err)
	}
	if err := d.devInfo.CallClassInstaller(windows.DIF_REMOVE, d.data); err != nil {
		return fmt.Errorf("SetupDiCallClassInstaller(DIF_REMOVE): %w", err)
	}
	return nil
}
