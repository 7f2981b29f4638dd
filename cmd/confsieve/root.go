/*
 * root.go, part of confsieve.
 *
 * Copyright 2024 The confsieve authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	chem "github.com/confsieve/confsieve"
	"github.com/confsieve/confsieve/cache"
	"github.com/confsieve/confsieve/config"
	"github.com/confsieve/confsieve/ensemble"
	"github.com/confsieve/confsieve/superpose"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time.
var Version = "dev"

// rootOptions holds the global flags.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// app carries what every subcommand needs, once the root command has set it up.
type app struct {
	cfg *config.Config
	log *zap.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	a := &app{}
	cmd := &cobra.Command{
		Use:   "confsieve",
		Short: "Remove near-duplicate conformers from a conformer ensemble",
		Long: "confsieve compares every pair of conformers of an ensemble by best-fit RMSD, water-amide\n" +
			"contact distances and energy, and discards the higher-energy member of each duplicate pair.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format (console, json)")
	cmd.AddCommand(newDedupCommand(a), newMatrixCommand(a), newSplitCommand(a), newAlignCommand(a))
	return cmd
}

func (a *app) init(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = opts.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log.With(zap.String("cmd", cmd.Name()))
	return nil
}

// readEnsemble reads the conformers in paths: one multi-record SD file or multi-frame
// xyz file, or one molfile per conformer if several paths are given.
func (a *app) readEnsemble(paths []string) (*ensemble.Ensemble, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	var E *ensemble.Ensemble
	var err error
	if len(paths) > 1 {
		E, err = ensemble.FromFiles(paths, a.cfg.Prefix, a.cfg.EnergyTag)
	} else if strings.EqualFold(filepath.Ext(chem.TrimCompressionExt(paths[0])), ".xyz") {
		var mol *chem.Molecule
		if mol, err = chem.XYZFileRead(paths[0]); err == nil {
			E, err = ensemble.FromXYZ(mol, a.cfg.Prefix)
		}
	} else {
		E, err = ensemble.FromSDFFile(paths[0], a.cfg.Prefix, a.cfg.EnergyTag)
	}
	if err != nil {
		return nil, err
	}
	a.log.Info("ensemble read", zap.Strings("files", paths), zap.Int("conformers", E.Len()))
	return E, nil
}

// superposer returns the best-fit superposer set by the configuration, wrapped by the
// RMSD cache if one is set, and the function that releases it.
func (a *app) superposer() (superpose.Superposer, func() error, error) {
	bf := superpose.NewBestFit()
	bf.MaxMatches = a.cfg.MaxMatches
	if a.cfg.Cache.Path == "" {
		return bf, func() error { return nil }, nil
	}
	c, err := cache.Open(a.cfg.Cache.Path, bf, a.log)
	if err != nil {
		return nil, nil, err
	}
	return c, func() error {
		hits, misses := c.Stats()
		a.log.Info("rmsd cache", zap.String("path", a.cfg.Cache.Path), zap.Int64("hits", hits), zap.Int64("misses", misses))
		return c.Close()
	}, nil
}
