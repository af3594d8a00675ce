/* SPDX-License-Identifier: GPL-3.0
 *
 * Copyright (C) 2026 Mullvad VPN AB. All Rights Reserved.
 */

package adapter

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// RemovalOutcome reports whether adapters of the legacy driver
// generation remain after a removal pass.
type RemovalOutcome int

const (
	// NoneRemaining means no legacy-generation adapters are left, so
	// the legacy driver package itself can be uninstalled.
	NoneRemaining RemovalOutcome = iota

	// SomeRemaining means other legacy-generation adapters are still
	// present and the legacy driver must stay.
	SomeRemaining
)

func (o RemovalOutcome) String() string {
	switch o {
	case NoneRemaining:
		return "none-remaining"
	case SomeRemaining:
		return "some-remaining"
	}
	return fmt.Sprintf("RemovalOutcome(%d)", int(o))
}

// Lifecycle implements the two installer-facing adapter operations:
// finding the single current-generation adapter, and removing the
// product's legacy-generation adapter.
type Lifecycle struct {
	dir  DeviceDirectory
	enum *Enumerator
	cfg  Config
	log  zerolog.Logger
}

// NewLifecycle returns a lifecycle controller over dir.
func NewLifecycle(dir DeviceDirectory, cfg Config, log zerolog.Logger) *Lifecycle {
	return &Lifecycle{
		dir:  dir,
		enum: NewEnumerator(dir, log),
		cfg:  cfg,
		log:  log,
	}
}

// Current returns the single adapter of the current driver
// generation. Zero matches fail with ErrAdapterNotFound. More than
// one match indicates an inconsistent system state that must not be
// silently resolved: every candidate is logged in full and the call
// fails with an AmbiguousAdapterError.
func (l *Lifecycle) Current() (Adapter, error) {
	set, err := l.enum.Enumerate(l.cfg.HardwareID)
	if err != nil {
		return Adapter{}, err
	}

	adapters := set.Adapters()
	switch {
	case len(adapters) == 0:
		return Adapter{}, fmt.Errorf("no %s adapter present: %w", l.cfg.HardwareID, ErrAdapterNotFound)
	case len(adapters) > 1:
		l.logAdapters("Enumerable network TAP adapters", adapters)
		return Adapter{}, &AmbiguousAdapterError{Candidates: adapters}
	}

	return adapters[0], nil
}

// DeleteOld removes the product's adapter of the legacy driver
// generation and reports whether other legacy-generation adapters
// remain. It fails with ErrAdapterNotFound when no legacy adapter
// carries one of the product's display names, and with a
// DeviceRemovalError when the system refuses to remove the identified
// device node.
func (l *Lifecycle) DeleteOld() (RemovalOutcome, error) {
	set, err := l.enum.Enumerate(l.cfg.LegacyHardwareID)
	if err != nil {
		return NoneRemaining, err
	}

	target, ok := set.Find(l.cfg.BaseAlias)
	if !ok {
		return NoneRemaining, fmt.Errorf("legacy %s adapter: %w", l.cfg.BaseAlias, ErrAdapterNotFound)
	}

	devices, err := l.dir.NetDevices()
	if err != nil {
		return NoneRemaining, &EnumerationError{Err: err}
	}
	defer devices.Close()

	remaining := 0

	for index := 0; ; index++ {
		dev, err := devices.Device(index)
		if err != nil {
			if errors.Is(err, ErrNoMoreDevices) {
				break
			}
			return NoneRemaining, &EnumerationError{Err: err}
		}

		id, ok, err := dev.HardwareID()
		if err != nil {
			return NoneRemaining, err
		}
		if !ok || id != l.cfg.LegacyHardwareID {
			continue
		}

		configID, err := dev.ConfigID()
		if err != nil {
			return NoneRemaining, err
		}
		if configID != target.ConfigID {
			remaining++
			continue
		}

		if err := dev.Remove(); err != nil {
			return NoneRemaining, &DeviceRemovalError{Adapter: target, Err: err}
		}

		l.log.Info().
			Str("configID", target.ConfigID).
			Str("alias", target.Alias).
			Str("deviceInstanceID", target.DeviceInstanceID).
			Msg("Removed legacy TAP adapter")
	}

	if remaining > 0 {
		return SomeRemaining, nil
	}
	return NoneRemaining, nil
}

func (l *Lifecycle) logAdapters(msg string, adapters []Adapter) {
	arr := zerolog.Arr()
	for _, a := range adapters {
		arr.Dict(zerolog.Dict().
			Str("configID", a.ConfigID).
			Str("description", a.Description).
			Str("alias", a.Alias).
			Str("deviceInstanceID", a.DeviceInstanceID))
	}
	l.log.Error().Array("adapters", arr).Msg(msg)
}
