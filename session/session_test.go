/* SPDX-License-Identifier: GPL-3.0
 *
 * Copyright (C) 2026 Mullvad VPN AB. All Rights Reserved.
 */

package session_test

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mullvad/tapctl/adapter"
	"github.com/mullvad/tapctl/adapter/adaptertest"
	"github.com/mullvad/tapctl/session"
)

func addTap(dir *adaptertest.FakeDirectory, configID, alias string) *adaptertest.FakeDevice {
	dev := &adaptertest.FakeDevice{
		HardwareID:  adapter.DefaultHardwareID,
		ConfigID:    configID,
		Description: "Mullvad TAP Adapter",
		InstanceID:  `ROOT\NET\` + configID,
	}
	dir.Devices = append(dir.Devices, dev)
	dir.Aliases[configID] = alias
	return dev
}

func newSession(dir *adaptertest.FakeDirectory) *session.Session {
	return session.New(dir, adapter.Config{}, zerolog.Nop())
}

func TestIdentifyCurrentAdapter(t *testing.T) {
	dir := &adaptertest.FakeDirectory{Aliases: map[string]string{}}
	addTap(dir, "{1}", "Mullvad")

	alias, err := newSession(dir).IdentifyCurrentAdapter()
	require.NoError(t, err)
	assert.Equal(t, "Mullvad", alias)
}

func TestRemoveLegacyAdapter(t *testing.T) {
	dir := &adaptertest.FakeDirectory{Aliases: map[string]string{}}
	legacy := &adaptertest.FakeDevice{
		HardwareID:  adapter.DefaultLegacyHardwareID,
		ConfigID:    "{1}",
		Description: "TAP-Windows Adapter V9",
		InstanceID:  `ROOT\NET\{1}`,
	}
	dir.Devices = append(dir.Devices, legacy)
	dir.Aliases["{1}"] = "Mullvad"

	outcome, err := newSession(dir).RemoveLegacyAdapter()
	require.NoError(t, err)
	assert.Equal(t, adapter.NoneRemaining, outcome)
	assert.True(t, legacy.Removed)
}

func TestEstablishBaselineEmpty(t *testing.T) {
	dir := &adaptertest.FakeDirectory{Aliases: map[string]string{}}

	status, err := newSession(dir).EstablishBaseline()
	require.NoError(t, err)
	assert.Equal(t, session.NoTapAdaptersPresent, status)
}

func TestEstablishBaselineForeignAdapters(t *testing.T) {
	dir := &adaptertest.FakeDirectory{Aliases: map[string]string{}}
	addTap(dir, "{1}", "Local Area Connection")

	status, err := newSession(dir).EstablishBaseline()
	require.NoError(t, err)
	assert.Equal(t, session.SomeTapAdaptersPresent, status)
}

func TestEstablishBaselineProductPresent(t *testing.T) {
	dir := &adaptertest.FakeDirectory{Aliases: map[string]string{}}
	addTap(dir, "{1}", "Mullvad-1")

	status, err := newSession(dir).EstablishBaseline()
	require.NoError(t, err)
	assert.Equal(t, session.MullvadAdapterPresent, status)
}

func TestIdentifyNewAdapter(t *testing.T) {
	dir := &adaptertest.FakeDirectory{Aliases: map[string]string{}}
	addTap(dir, "{1}", "Mullvad")
	sess := newSession(dir)

	_, err := sess.EstablishBaseline()
	require.NoError(t, err)

	addTap(dir, "{2}", "Mullvad-0")
	require.NoError(t, sess.RecordState())

	a, err := sess.IdentifyNewAdapter()
	require.NoError(t, err)
	assert.Equal(t, "{2}", a.ConfigID)
	assert.Equal(t, "Mullvad-0", a.Alias)
}

func TestIdentifyNewAdapterNothingAdded(t *testing.T) {
	dir := &adaptertest.FakeDirectory{Aliases: map[string]string{}}
	addTap(dir, "{1}", "Mullvad")
	sess := newSession(dir)

	_, err := sess.EstablishBaseline()
	require.NoError(t, err)
	require.NoError(t, sess.RecordState())

	_, err = sess.IdentifyNewAdapter()
	assert.ErrorIs(t, err, adapter.ErrAdapterNotFound)
}

func TestIdentifyNewAdapterAmbiguous(t *testing.T) {
	dir := &adaptertest.FakeDirectory{Aliases: map[string]string{}}
	sess := newSession(dir)

	_, err := sess.EstablishBaseline()
	require.NoError(t, err)

	addTap(dir, "{1}", "Mullvad")
	addTap(dir, "{2}", "Mullvad-0")
	require.NoError(t, sess.RecordState())

	_, err = sess.IdentifyNewAdapter()

	var ambiguous *adapter.AmbiguousAdapterError
	require.ErrorAs(t, err, &ambiguous)
	assert.Len(t, ambiguous.Candidates, 2)
}

func TestIdentifyNewAdapterRequiresBaseline(t *testing.T) {
	dir := &adaptertest.FakeDirectory{Aliases: map[string]string{}}

	_, err := newSession(dir).IdentifyNewAdapter()
	assert.ErrorIs(t, err, session.ErrNoBaseline)
}

func TestRollbackAliases(t *testing.T) {
	dir := &adaptertest.FakeDirectory{Aliases: map[string]string{}}
	addTap(dir, "{1}", "Mullvad")
	addTap(dir, "{2}", "Ethernet")
	sess := newSession(dir)

	_, err := sess.EstablishBaseline()
	require.NoError(t, err)

	// Driver upgrade renamed the product adapter.
	dir.Aliases["{1}"] = "Mullvad-3"

	require.NoError(t, sess.RollbackAliases())
	assert.Equal(t, "Mullvad", dir.Aliases["{1}"])
	assert.Equal(t, "Ethernet", dir.Aliases["{2}"])
}

func TestRollbackAliasesRequiresBaseline(t *testing.T) {
	dir := &adaptertest.FakeDirectory{Aliases: map[string]string{}}

	err := newSession(dir).RollbackAliases()
	assert.ErrorIs(t, err, session.ErrNoBaseline)
}

func TestRollbackAliasesSkipsFailedRename(t *testing.T) {
	dir := &adaptertest.FakeDirectory{Aliases: map[string]string{}}
	addTap(dir, "{1}", "Mullvad")
	sess := newSession(dir)

	_, err := sess.EstablishBaseline()
	require.NoError(t, err)

	dir.Aliases["{1}"] = "Mullvad-3"
	dir.SetAliasErr = errors.New("access denied")

	// A rename that the system refuses is logged and skipped; the
	// operation itself still succeeds.
	require.NoError(t, sess.RollbackAliases())
	assert.Equal(t, "Mullvad-3", dir.Aliases["{1}"])
}

func TestBaselineSnapshotRoundTrip(t *testing.T) {
	dir := &adaptertest.FakeDirectory{Aliases: map[string]string{}}
	addTap(dir, "{1}", "Mullvad")

	first := newSession(dir)
	_, err := first.EstablishBaseline()
	require.NoError(t, err)

	snapshot := first.Baseline()
	require.Len(t, snapshot, 1)

	addTap(dir, "{2}", "Mullvad-0")

	// A later invocation resumes from the persisted snapshot.
	second := newSession(dir)
	second.LoadBaseline(snapshot)
	require.NoError(t, second.RecordState())

	a, err := second.IdentifyNewAdapter()
	require.NoError(t, err)
	assert.Equal(t, "{2}", a.ConfigID)
	assert.Equal(t, "Mullvad-0", a.Alias)
}

func TestBaselineNilBeforeEstablish(t *testing.T) {
	dir := &adaptertest.FakeDirectory{Aliases: map[string]string{}}

	assert.Nil(t, newSession(dir).Baseline())
}

type closingDirectory struct {
	*adaptertest.FakeDirectory
	closed bool
}

func (d *closingDirectory) Close() error {
	d.closed = true
	return nil
}

func TestCloseReleasesDirectory(t *testing.T) {
	dir := &closingDirectory{FakeDirectory: &adaptertest.FakeDirectory{Aliases: map[string]string{}}}
	sess := session.New(dir, adapter.Config{}, zerolog.Nop())

	require.NoError(t, sess.Close())
	assert.True(t, dir.closed)
}

func TestCloseStatelessDirectory(t *testing.T) {
	dir := &adaptertest.FakeDirectory{Aliases: map[string]string{}}

	assert.NoError(t, newSession(dir).Close())
}
