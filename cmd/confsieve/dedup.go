/*
 * dedup.go, part of confsieve.
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
	"os"
	"path/filepath"
	"strings"

	"github.com/confsieve/confsieve/dedup"
	"github.com/confsieve/confsieve/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type dedupOptions struct {
	out        string
	similarity float64
	energy     float64
	distance   float64
	workers    int
	cache      string
	kept       bool
	plots      bool
	metrics    bool
}

func newDedupCommand(a *app) *cobra.Command {
	o := &dedupOptions{}
	cmd := &cobra.Command{
		Use:   "dedup [flags] ENSEMBLE.sdf|ENSEMBLE.xyz|MOLFILE...",
		Short: "Find and remove near-duplicate conformers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDedup(cmd, a, o, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.out, "out", "o", "confsieve_out", "directory for the report")
	f.Float64Var(&o.similarity, "similarity", 0, "similarity (RMSD) threshold, A")
	f.Float64Var(&o.energy, "energy", 0, "energy threshold, kcal/mol")
	f.Float64Var(&o.distance, "distance", 0, "contact distance threshold, A")
	f.IntVarP(&o.workers, "workers", "w", 0, "pairs superimposed concurrently")
	f.StringVar(&o.cache, "cache", "", "bbolt file to keep computed RMSDs in")
	f.BoolVar(&o.kept, "kept", true, "write the kept conformers to "+report.KeptFile)
	f.BoolVar(&o.plots, "plots", false, "write PNG plots")
	f.BoolVar(&o.metrics, "metrics", false, "write prometheus metrics to metrics.prom")
	return cmd
}

// applyFlags overrides the configuration with the flags given in the command line.
func (o *dedupOptions) applyFlags(cmd *cobra.Command, a *app) error {
	f := cmd.Flags()
	if f.Changed("similarity") {
		a.cfg.Thresholds.Similarity = o.similarity
	}
	if f.Changed("energy") {
		a.cfg.Thresholds.Energy = o.energy
	}
	if f.Changed("distance") {
		a.cfg.Thresholds.Distance = o.distance
	}
	if f.Changed("workers") {
		a.cfg.Workers = o.workers
	}
	if f.Changed("cache") {
		a.cfg.Cache.Path = o.cache
	}
	if f.Changed("metrics") {
		a.cfg.Metrics.Enabled = o.metrics
	}
	return a.cfg.Validate()
}

func runDedup(cmd *cobra.Command, a *app, o *dedupOptions, args []string) error {
	if err := o.applyFlags(cmd, a); err != nil {
		return err
	}
	E, err := a.readEnsemble(args)
	if err != nil {
		return err
	}
	sp, closeSp, err := a.superposer()
	if err != nil {
		return err
	}
	defer closeSp()
	P := &dedup.Pipeline{Superposer: sp, Thresholds: a.cfg.Thresholds, Workers: a.cfg.Workers, Logger: a.log}
	var reg *prometheus.Registry
	if a.cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		if P.Metrics, err = dedup.NewMetrics(reg); err != nil {
			return err
		}
	}
	R, err := P.Run(cmd.Context(), E)
	if err != nil {
		return err
	}
	if _, err := report.WriteDir(o.out, R, E, report.Options{Kept: o.kept, Plots: o.plots, EnergyTag: a.cfg.EnergyTag}); err != nil {
		return err
	}
	if reg != nil {
		if err := writeMetrics(filepath.Join(o.out, "metrics.prom"), reg); err != nil {
			return err
		}
	}
	a.log.Info("report written", zap.String("dir", o.out))
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "run %s: %d conformers, %d pairs\n", R.RunID, E.Len(), R.Matrix.Len())
	fmt.Fprintf(w, "kept (%d): %s\n", len(R.Kept), strings.Join(R.KeptNames(), " "))
	fmt.Fprintf(w, "discarded (%d): %s\n", len(R.Unique), strings.Join(R.Unique, " "))
	return nil
}

// writeMetrics writes the metrics gathered by reg in the prometheus text format.
func writeMetrics(name string, reg *prometheus.Registry) error {
	mfs, err := reg.Gather()
	if err != nil {
		return err
	}
	out, err := os.Create(name)
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			out.Close()
			return err
		}
	}
	return out.Close()
}
