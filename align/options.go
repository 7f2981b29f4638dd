/*
 * options.go, part of confsieve.
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

package align

import "runtime"

// Options contains the options for ToLowest.
type Options struct {
	cpus         int
	core         []int
	noHydrogens  bool
	lessThanRMSD float64
	minimumN     int
	maxIter      int
}

// DefaultOptions returns options that superimpose on all atoms, in one step,
// with all logical CPUs.
func DefaultOptions() *Options {
	r := new(Options)
	r.cpus = runtime.NumCPU()
	r.minimumN = 3 //the fewest atoms that fix a rotation
	r.maxIter = 20
	return r
}

// Cpus returns the number of conformers aligned concurrently,
// and sets it to a new value, if given.
func (O *Options) Cpus(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		O.cpus = n[0]
	}
	return O.cpus
}

// Core returns the indexes of the atoms used for the superposition,
// and sets them to new values, if given. An empty core means all atoms.
func (O *Options) Core(idx ...[]int) []int {
	if len(idx) > 0 {
		O.core = append([]int(nil), idx[0]...)
	}
	return O.core
}

// NoHydrogens returns whether hydrogens are left out of the superposition,
// and sets it to a new value, if given.
func (O *Options) NoHydrogens(b ...bool) bool {
	if len(b) > 0 {
		O.noHydrogens = b[0]
	}
	return O.noHydrogens
}

// LessThanRMSD returns the largest deviation, in A, for an atom to remain in the
// superposition set after each refinement step, and sets it to a new value, if given.
// If it is 0 or less, no refinement is done.
func (O *Options) LessThanRMSD(rmsd ...float64) float64 {
	if len(rmsd) > 0 {
		O.lessThanRMSD = rmsd[0]
	}
	return O.lessThanRMSD
}

// MinimumN returns the smallest acceptable number of atoms in the refined
// superposition set, and sets it to a new value, if given.
func (O *Options) MinimumN(n ...int) int {
	if len(n) > 0 && n[0] >= 3 {
		O.minimumN = n[0]
	}
	return O.minimumN
}

// MaxIter returns the maximum number of refinement steps,
// and sets it to a new value, if given.
func (O *Options) MaxIter(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		O.maxIter = n[0]
	}
	return O.maxIter
}
