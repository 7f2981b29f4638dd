/*
 * matrix.go, part of confsieve.
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
	"github.com/confsieve/confsieve/report"
	"github.com/confsieve/confsieve/similarity"
	"github.com/spf13/cobra"
)

func newMatrixCommand(a *app) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "matrix [flags] ENSEMBLE.sdf|ENSEMBLE.xyz|MOLFILE...",
		Short: "Print the pairwise RMSD matrix, sorted by RMSD",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("workers") {
				a.cfg.Workers = workers
				if err := a.cfg.Validate(); err != nil {
					return err
				}
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
			o := similarity.DefaultOptions()
			o.Workers(a.cfg.Workers)
			o.Logger(a.log)
			M, err := similarity.Build(cmd.Context(), E.Conformers(), sp, o)
			if err != nil {
				return err
			}
			return report.WriteMatrix(cmd.OutOrStdout(), M)
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "pairs superimposed concurrently")
	return cmd
}
