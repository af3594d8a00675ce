/* SPDX-License-Identifier: GPL-3.0
 *
 * Copyright (C) 2026 Mullvad VPN AB. All Rights Reserved.
 */

// Package adapter identifies the product's TAP adapters among the
// network devices present on a system. It knows nothing about the
// underlying device database; all access goes through the
// DeviceDirectory interface.
package adapter

import (
	"fmt"
	"sort"
	"strings"
)

// Default identification values for the Mullvad TAP driver.
const (
	DefaultHardwareID       = "tapmullvad0901"
	DefaultLegacyHardwareID = "tap0901"
	DefaultBaseAlias        = "Mullvad"
)

// Config identifies the product's driver generations and the display
// name the installer assigns to its adapter.
type Config struct {
	// HardwareID is the hardware ID of the current driver generation.
	HardwareID string

	// LegacyHardwareID is the hardware ID of the deprecated driver
	// generation that may still be present during an upgrade.
	LegacyHardwareID string

	// BaseAlias is the display name given to the first installed
	// adapter. Windows resolves name collisions by appending "-0"
	// through "-9", so those variants also identify the product.
	BaseAlias string
}

// DefaultConfig returns the released driver's identification values.
func DefaultConfig() Config {
	return Config{
		HardwareID:       DefaultHardwareID,
		LegacyHardwareID: DefaultLegacyHardwareID,
		BaseAlias:        DefaultBaseAlias,
	}
}

// Adapter describes a single network adapter instance. Values are
// immutable once constructed; an Adapter only exists if every field
// was successfully resolved.
type Adapter struct {
	// ConfigID is the NetCfgInstanceId, the stable identifier of the
	// adapter's network configuration instance. It is unique across
	// the system for as long as the device exists.
	ConfigID string

	// Description is the driver-reported device description.
	Description string

	// Alias is the user-visible connection name. This is the field
	// the naming policy inspects.
	Alias string

	// DeviceInstanceID is the device tree instance path, used to
	// re-locate the exact device node. Distinct from ConfigID, which
	// is a logical configuration ID rather than a device path.
	DeviceInstanceID string
}

func (a Adapter) String() string {
	return fmt.Sprintf("%s (%q, %s)", a.ConfigID, a.Alias, a.Description)
}

// Set is a collection of adapters with unique configuration IDs,
// ordered by configuration ID. The zero value is an empty set.
type Set struct {
	adapters []Adapter
}

// Add inserts an adapter, keeping the set ordered. An adapter whose
// configuration ID is already present is ignored.
func (s *Set) Add(a Adapter) {
	i := sort.Search(len(s.adapters), func(i int) bool {
		return s.adapters[i].ConfigID >= a.ConfigID
	})
	if i < len(s.adapters) && s.adapters[i].ConfigID == a.ConfigID {
		return
	}
	s.adapters = append(s.adapters, Adapter{})
	copy(s.adapters[i+1:], s.adapters[i:])
	s.adapters[i] = a
}

// Len returns the number of adapters in the set.
func (s *Set) Len() int {
	return len(s.adapters)
}

// Adapters returns the members in configuration ID order.
func (s *Set) Adapters() []Adapter {
	out := make([]Adapter, len(s.adapters))
	copy(out, s.adapters)
	return out
}

// Get returns the adapter with the given configuration ID.
func (s *Set) Get(configID string) (Adapter, bool) {
	i := sort.Search(len(s.adapters), func(i int) bool {
		return s.adapters[i].ConfigID >= configID
	})
	if i < len(s.adapters) && s.adapters[i].ConfigID == configID {
		return s.adapters[i], true
	}
	return Adapter{}, false
}

// Diff returns the adapters in s whose configuration ID does not
// appear in base.
func (s *Set) Diff(base *Set) []Adapter {
	var added []Adapter
	for _, a := range s.adapters {
		if _, ok := base.Get(a.ConfigID); !ok {
			added = append(added, a)
		}
	}
	return added
}

// Find locates the product's adapter among the members by display
// name. It first looks for an alias equal to baseName, then probes
// the collision-resolved variants baseName-0 through baseName-9 in
// ascending order. Comparisons are case-insensitive, the way Windows
// treats connection names. More than ten colliding adapters is
// outside normal operating conditions and reports no match.
func (s *Set) Find(baseName string) (Adapter, bool) {
	if len(s.adapters) == 0 {
		return Adapter{}, false
	}

	if a, ok := s.findAlias(baseName); ok {
		return a, true
	}

	for i := 0; i < 10; i++ {
		if a, ok := s.findAlias(fmt.Sprintf("%s-%d", baseName, i)); ok {
			return a, true
		}
	}

	return Adapter{}, false
}

func (s *Set) findAlias(alias string) (Adapter, bool) {
	for _, a := range s.adapters {
		if strings.EqualFold(a.Alias, alias) {
			return a, true
		}
	}
	return Adapter{}, false
}
