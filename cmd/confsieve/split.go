/*
 * split.go, part of confsieve.
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

	chem "github.com/confsieve/confsieve"
	"github.com/confsieve/confsieve/ensemble"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSplitCommand(a *app) *cobra.Command {
	var dir, prefix, marker string
	cmd := &cobra.Command{
		Use:   "split [flags] STRUCTURES.sdf",
		Short: "Split a multi-structure SD file into one file per structure plus energy.csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := chem.OpenCompressed(args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			if prefix == "" {
				prefix = a.cfg.Prefix
			}
			n, err := ensemble.Split(in, dir, prefix, marker)
			if err != nil {
				return err
			}
			a.log.Info("structures written", zap.String("dir", dir), zap.Int("n", n))
			fmt.Fprintf(cmd.OutOrStdout(), "%d structures written to %s\n", n, dir)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&dir, "dir", "d", ".", "output directory")
	f.StringVarP(&prefix, "prefix", "p", "", "prefix of the output files (default: the configured prefix)")
	f.StringVarP(&marker, "marker", "m", "", "text found in the title line of every structure")
	_ = cmd.MarkFlagRequired("marker")
	return cmd
}
