/* SPDX-License-Identifier: GPL-3.0
 *
 * Copyright (C) 2026 Mullvad VPN AB. All Rights Reserved.
 */

// Package session exposes the installer-facing operations over a
// device directory. A Session is an explicit handle created once per
// installer run; it carries the adapter baseline between the
// operations that need one and holds no other state.
package session

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/mullvad/tapctl/adapter"
)

// BaselineStatus classifies the system before the driver is
// installed.
type BaselineStatus int

const (
	// NoTapAdaptersPresent means no adapter of the current driver
	// generation exists yet.
	NoTapAdaptersPresent BaselineStatus = iota

	// SomeTapAdaptersPresent means adapters of the current generation
	// exist, but none carries the product's display name.
	SomeTapAdaptersPresent

	// MullvadAdapterPresent means the product's own adapter already
	// exists.
	MullvadAdapterPresent
)

func (s BaselineStatus) String() string {
	switch s {
	case NoTapAdaptersPresent:
		return "no-tap-adapters"
	case SomeTapAdaptersPresent:
		return "some-tap-adapters"
	case MullvadAdapterPresent:
		return "mullvad-adapter-present"
	}
	return fmt.Sprintf("BaselineStatus(%d)", int(s))
}

// ErrNoBaseline is returned by operations that require
// EstablishBaseline to have been called first.
var ErrNoBaseline = errors.New("no baseline recorded")

// Session is the handle threaded through installer invocations.
type Session struct {
	dir       adapter.DeviceDirectory
	enum      *adapter.Enumerator
	lifecycle *adapter.Lifecycle
	cfg       adapter.Config
	log       zerolog.Logger

	baseline *adapter.Set
	state    *adapter.Set
}

// New creates a session over dir. Zero-valued cfg fields fall back to
// the released driver's identification values.
func New(dir adapter.DeviceDirectory, cfg adapter.Config, log zerolog.Logger) *Session {
	if cfg.HardwareID == "" {
		cfg.HardwareID = adapter.DefaultHardwareID
	}
	if cfg.LegacyHardwareID == "" {
		cfg.LegacyHardwareID = adapter.DefaultLegacyHardwareID
	}
	if cfg.BaseAlias == "" {
		cfg.BaseAlias = adapter.DefaultBaseAlias
	}
	return &Session{
		dir:       dir,
		enum:      adapter.NewEnumerator(dir, log),
		lifecycle: adapter.NewLifecycle(dir, cfg, log),
		cfg:       cfg,
		log:       log,
	}
}

// Close releases the session and, if the directory holds resources,
// those as well.
func (s *Session) Close() error {
	if c, ok := s.dir.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// IdentifyCurrentAdapter returns the display name of the single
// current-generation adapter.
func (s *Session) IdentifyCurrentAdapter() (string, error) {
	a, err := s.lifecycle.Current()
	if err != nil {
		return "", err
	}
	return a.Alias, nil
}

// RemoveLegacyAdapter removes the product's legacy-generation adapter
// and reports whether sibling legacy adapters remain.
func (s *Session) RemoveLegacyAdapter() (adapter.RemovalOutcome, error) {
	return s.lifecycle.DeleteOld()
}

// EstablishBaseline snapshots the current-generation adapters before
// the driver is installed and classifies what is already present.
func (s *Session) EstablishBaseline() (BaselineStatus, error) {
	set, err := s.enum.Enumerate(s.cfg.HardwareID)
	if err != nil {
		return NoTapAdaptersPresent, err
	}
	s.baseline = set

	if set.Len() == 0 {
		return NoTapAdaptersPresent, nil
	}
	if _, ok := set.Find(s.cfg.BaseAlias); ok {
		return MullvadAdapterPresent, nil
	}
	return SomeTapAdaptersPresent, nil
}

// Baseline returns the established baseline snapshot, or nil when
// none has been taken. The installer persists it between single-shot
// invocations.
func (s *Session) Baseline() []adapter.Adapter {
	if s.baseline == nil {
		return nil
	}
	return s.baseline.Adapters()
}

// LoadBaseline installs a previously captured baseline snapshot in
// place of calling EstablishBaseline.
func (s *Session) LoadBaseline(adapters []adapter.Adapter) {
	set := &adapter.Set{}
	for _, a := range adapters {
		set.Add(a)
	}
	s.baseline = set
}

// RecordState snapshots the current-generation adapters after the
// driver has been installed.
func (s *Session) RecordState() error {
	set, err := s.enum.Enumerate(s.cfg.HardwareID)
	if err != nil {
		return err
	}
	s.state = set
	return nil
}

// IdentifyNewAdapter compares the recorded state against the baseline
// and returns the single adapter the installation added.
func (s *Session) IdentifyNewAdapter() (adapter.Adapter, error) {
	if s.baseline == nil || s.state == nil {
		return adapter.Adapter{}, ErrNoBaseline
	}

	added := s.state.Diff(s.baseline)
	switch {
	case len(added) == 0:
		return adapter.Adapter{}, fmt.Errorf("no new adapter appeared: %w", adapter.ErrAdapterNotFound)
	case len(added) > 1:
		return adapter.Adapter{}, &adapter.AmbiguousAdapterError{Candidates: added}
	}
	return added[0], nil
}

// RollbackAliases restores the display names of baseline adapters
// that are still present but have been renamed since the baseline was
// taken. A single adapter that refuses to rename is logged and
// skipped.
func (s *Session) RollbackAliases() error {
	if s.baseline == nil {
		return ErrNoBaseline
	}

	current, err := s.enum.Enumerate(s.cfg.HardwareID)
	if err != nil {
		return err
	}

	for _, want := range s.baseline.Adapters() {
		got, ok := current.Get(want.ConfigID)
		if !ok || got.Alias == want.Alias {
			continue
		}
		if err := s.dir.SetAlias(want.ConfigID, want.Alias); err != nil {
			s.log.Warn().
				Err(err).
				Str("configID", want.ConfigID).
				Str("alias", want.Alias).
				Msg("Failed to restore adapter alias")
			continue
		}
		s.log.Info().
			Str("configID", want.ConfigID).
			Str("from", got.Alias).
			Str("to", want.Alias).
			Msg("Restored adapter alias")
	}

	return nil
}
