//go:build windows

/* SPDX-License-Identifier: GPL-3.0
 *
 * Copyright (C) 2026 Mullvad VPN AB. All Rights Reserved.
 */

// tapctl is the installer-side tool for identifying and cleaning up
// Mullvad TAP adapters. Every invocation is a single isolated
// operation; the process exit code and stdout form the status surface
// the installer consumes.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mullvad/tapctl/adapter"
	"github.com/mullvad/tapctl/session"
	"github.com/mullvad/tapctl/sysdev"
)

var (
	hardwareID       string
	legacyHardwareID string
	baseAlias        string
	stateFile        string
	verbose          bool

	rootCmd = &cobra.Command{
		Use:           "tapctl",
		Short:         "Identify and clean up Mullvad TAP adapters",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&hardwareID, "hardware-id", adapter.DefaultHardwareID, "hardware ID of the current driver generation")
	rootCmd.PersistentFlags().StringVar(&legacyHardwareID, "legacy-hardware-id", adapter.DefaultLegacyHardwareID, "hardware ID of the deprecated driver generation")
	rootCmd.PersistentFlags().StringVar(&baseAlias, "alias", adapter.DefaultBaseAlias, "base display name assigned by the installer")
	rootCmd.PersistentFlags().StringVar(&stateFile, "state-file", filepath.Join(os.TempDir(), "tapctl-baseline.json"), "path of the baseline snapshot carried between invocations")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "identify",
		Short: "Print the display name of the single current-generation adapter",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := newSession()
			defer sess.Close()

			alias, err := sess.IdentifyCurrentAdapter()
			if err != nil {
				return err
			}
			fmt.Println(alias)
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "remove-legacy",
		Short: "Remove the product's legacy-generation adapter",
		Long: `Remove the product's legacy-generation adapter and report whether
other legacy-generation adapters remain. Prints "none-remaining" when
the legacy driver package can also be uninstalled, "some-remaining"
otherwise.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := newSession()
			defer sess.Close()

			outcome, err := sess.RemoveLegacyAdapter()
			if err != nil {
				return err
			}
			fmt.Println(outcome)
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "baseline",
		Short: "Snapshot the current-generation adapters before driver installation",
		Long: `Snapshot the current-generation adapters and classify what is
already present. The snapshot is written to the state file so that a
later "new" or "rollback" invocation can resume from it, the way the
resident installer plugin carried it in memory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := newSession()
			defer sess.Close()

			status, err := sess.EstablishBaseline()
			if err != nil {
				return err
			}
			if err := writeBaseline(stateFile, sess.Baseline()); err != nil {
				return err
			}
			fmt.Println(status)
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Print the display name of the adapter added since the baseline",
		RunE: func(cmd *cobra.Command, args []string) error {
			baseline, err := readBaseline(stateFile)
			if err != nil {
				return err
			}
			sess := newSession()
			defer sess.Close()

			sess.LoadBaseline(baseline)
			if err := sess.RecordState(); err != nil {
				return err
			}
			a, err := sess.IdentifyNewAdapter()
			if err != nil {
				return err
			}
			fmt.Println(a.Alias)
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "rollback",
		Short: "Restore the display names recorded in the baseline snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			baseline, err := readBaseline(stateFile)
			if err != nil {
				return err
			}
			sess := newSession()
			defer sess.Close()

			sess.LoadBaseline(baseline)
			return sess.RollbackAliases()
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List adapters matching the current hardware ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			enum := adapter.NewEnumerator(sysdev.New(), newLogger())
			set, err := enum.Enumerate(hardwareID)
			if err != nil {
				return err
			}
			for _, a := range set.Adapters() {
				fmt.Printf("%s\t%s\t%s\t%s\n", a.ConfigID, a.Alias, a.Description, a.DeviceInstanceID)
			}
			return nil
		},
	})
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func writeBaseline(path string, adapters []adapter.Adapter) error {
	data, err := json.Marshal(adapters)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing baseline snapshot: %w", err)
	}
	return nil
}

func readBaseline(path string) ([]adapter.Adapter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading baseline snapshot: %w", err)
	}
	var adapters []adapter.Adapter
	if err := json.Unmarshal(data, &adapters); err != nil {
		return nil, fmt.Errorf("parsing baseline snapshot %s: %w", path, err)
	}
	return adapters, nil
}

func newSession() *session.Session {
	cfg := adapter.Config{
		HardwareID:       hardwareID,
		LegacyHardwareID: legacyHardwareID,
		BaseAlias:        baseAlias,
	}
	return session.New(sysdev.New(), cfg, newLogger())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var ambiguous *adapter.AmbiguousAdapterError
		switch {
		case errors.Is(err, adapter.ErrAdapterNotFound):
			fmt.Fprintln(os.Stderr, "tapctl:", err)
			os.Exit(2)
		case errors.As(err, &ambiguous):
			fmt.Fprintln(os.Stderr, "tapctl:", err)
			os.Exit(3)
		}
		fmt.Fprintln(os.Stderr, "tapctl:", err)
		os.Exit(1)
	}
}
