/*
 * align.go, part of confsieve.
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

	"github.com/confsieve/confsieve/align"
	"github.com/confsieve/confsieve/report"
	"github.com/spf13/cobra"
)

func newAlignCommand(a *app) *cobra.Command {
	var out string
	var core []int
	var noH bool
	var lessThan float64
	cmd := &cobra.Command{
		Use:   "align [flags] ENSEMBLE.sdf|ENSEMBLE.xyz|MOLFILE...",
		Short: "Superimpose all conformers onto the lowest-energy one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			if f.Changed("core") {
				a.cfg.Align.Core = core
			}
			if f.Changed("no-h") {
				a.cfg.Align.NoHydrogens = noH
			}
			if f.Changed("less-than") {
				a.cfg.Align.LessThanRMSD = lessThan
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			E, err := a.readEnsemble(args)
			if err != nil {
				return err
			}
			o := align.DefaultOptions()
			o.Core(a.cfg.Align.Core)
			o.NoHydrogens(a.cfg.Align.NoHydrogens)
			o.LessThanRMSD(a.cfg.Align.LessThanRMSD)
			R, err := align.ToLowest(cmd.Context(), E, o)
			if err != nil {
				return err
			}
			if err := report.WriteConformers(out, R.Conformers(), a.cfg.EnergyTag); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), R.String())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "aligned.sdf", "SD file for the aligned conformers (.gz and .zst are compressed)")
	f.IntSliceVar(&core, "core", nil, "0-based indexes of the atoms to superimpose (default: all)")
	f.BoolVar(&noH, "no-h", false, "leave hydrogens out of the superposition")
	f.Float64Var(&lessThan, "less-than", 0, "refine the superposition to atoms deviating less than this, A")
	return cmd
}
