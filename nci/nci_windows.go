/* SPDX-License-Identifier: GPL-3.0
 *
 * Copyright (C) 2026 Mullvad VPN AB. All Rights Reserved.
 */

// Package nci wraps the undocumented network configuration interface
// used to read and write the connection name associated with a
// network configuration GUID.
package nci

import "golang.org/x/sys/windows"

//sys	nciSetConnectionName(guid *windows.GUID, newName *uint16) (ret error) = nci.NciSetConnectionName
//sys	nciGetConnectionName(guid *windows.GUID, destName *uint16, inDestNameBytes uint32, outDestNameBytes *uint32) (ret error) = nci.NciGetConnectionName

// SetConnectionName renames the connection identified by guid.
func SetConnectionName(guid *windows.GUID, newName string) error {
	newName16, err := windows.UTF16PtrFromString(newName)
	if err != nil {
		return err
	}
	return nciSetConnectionName(guid, newName16)
}

// ConnectionName returns the connection name for guid. Connection
// names are bounded well below the buffer size; a name the interface
// reports as longer is truncated rather than retried.
func ConnectionName(guid *windows.GUID) (string, error) {
	var name [0x400]uint16
	var outBytes uint32
	err := nciGetConnectionName(guid, &name[0], uint32(len(name)*2), &outBytes)
	if err != nil {
		return "", err
	}
	if n := int(outBytes / 2); n < len(name) {
		return windows.UTF16ToString(name[:n]), nil
	}
	return windows.UTF16ToString(name[:]), nil
}
