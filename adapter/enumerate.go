/* SPDX-License-Identifier: GPL-3.0
 *
 * Copyright (C) 2026 Mullvad VPN AB. All Rights Reserved.
 */

package adapter

import (
	"errors"

	"github.com/rs/zerolog"
)

// Enumerator builds adapter sets from a device directory.
type Enumerator struct {
	dir DeviceDirectory
	log zerolog.Logger
}

// NewEnumerator returns an enumerator reading from dir.
func NewEnumerator(dir DeviceDirectory, log zerolog.Logger) *Enumerator {
	return &Enumerator{dir: dir, log: log}
}

// Enumerate returns every present network adapter whose hardware ID
// equals hardwareID exactly. A matching device that fails to yield a
// complete record is logged and excluded, so that one malformed
// adapter cannot prevent identification of the others. Hard failures
// of the list itself abort with an EnumerationError.
func (e *Enumerator) Enumerate(hardwareID string) (*Set, error) {
	devices, err := e.dir.NetDevices()
	if err != nil {
		return nil, &EnumerationError{Err: err}
	}
	defer devices.Close()

	set := &Set{}

	for index := 0; ; index++ {
		dev, err := devices.Device(index)
		if err != nil {
			if errors.Is(err, ErrNoMoreDevices) {
				break
			}
			return nil, &EnumerationError{Err: err}
		}

		id, ok, err := dev.HardwareID()
		if err != nil {
			return nil, err
		}
		if !ok || id != hardwareID {
			continue
		}

		a, err := e.buildRecord(dev)
		if err != nil {
			e.log.Warn().
				Err(err).
				Str("hardwareID", hardwareID).
				Str("configID", a.ConfigID).
				Msg("Skipping TAP adapter that could not be fully resolved")
			continue
		}

		set.Add(a)
	}

	return set, nil
}

// buildRecord resolves the full adapter record for a device. On
// failure it returns whatever partial record it had assembled so the
// caller can log it.
func (e *Enumerator) buildRecord(dev Device) (Adapter, error) {
	var a Adapter
	var err error

	if a.ConfigID, err = dev.ConfigID(); err != nil {
		return a, err
	}
	if a.Description, err = dev.Description(); err != nil {
		return a, err
	}
	if a.Alias, err = e.dir.Alias(a.ConfigID); err != nil {
		return a, err
	}
	if a.DeviceInstanceID, err = dev.InstanceID(); err != nil {
		return a, err
	}

	return a, nil
}
