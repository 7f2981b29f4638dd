/*
 * molfixture.go, part of confsieve.
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

// Package molfixture builds small synthetic molecules for tests.
package molfixture

import (
	chem "github.com/confsieve/confsieve"
	v3 "github.com/confsieve/confsieve/v3"
)

// Atom indexes of the complex built by Complex.
const (
	CarbonylC = iota
	AmideN
	AmideH
	AmideO
	MethylC
	RingC
	AromaticN
	RingC2
	WaterO
	WaterH1
	WaterH2
)

var complexSymbols = []string{"C", "N", "H", "O", "C", "C", "N", "C", "O", "H", "H"}

var complexCoords = []float64{
	0.00, 0.00, 0.00,
	1.33, 0.00, 0.00,
	1.83, 0.87, 0.00,
	-0.60, 1.05, 0.00,
	-0.75, -1.30, 0.00,
	2.10, -1.20, 0.00,
	3.50, -1.00, 0.00,
	4.20, -2.10, 0.00,
	2.00, 2.90, 0.30,
	2.90, 3.20, 0.30,
	1.50, 3.60, 0.60,
}

var complexBonds = [][2]int{
	{CarbonylC, AmideN},
	{CarbonylC, AmideO},
	{CarbonylC, MethylC},
	{AmideN, AmideH},
	{AmideN, RingC},
	{RingC, AromaticN},
	{AromaticN, RingC2},
	{WaterO, WaterH1},
	{WaterO, WaterH2},
}

// Complex returns a water-amide complex of 11 atoms: a small amide with an
// aromatic-like nitrogen, plus one water molecule displaced by waterShift from its
// reference position. Atom indexes are given by the constants of this package.
func Complex(title string, waterShift [3]float64) *chem.Molecule {
	coords := make([]float64, len(complexCoords))
	copy(coords, complexCoords)
	for _, i := range []int{WaterO, WaterH1, WaterH2} {
		for j := 0; j < 3; j++ {
			coords[3*i+j] += waterShift[j]
		}
	}
	return Build(title, complexSymbols, coords, complexBonds)
}

// Build returns a single-frame molecule with the given symbols, flat coordinates
// and bonds. It panics on inconsistent input.
func Build(title string, symbols []string, coords []float64, bonds [][2]int) *chem.Molecule {
	top := chem.NewTopology(0, 1)
	for i, s := range symbols {
		top.AppendAtom(&chem.Atom{Name: s, Symbol: s, ID: i + 1, Index: i})
	}
	if err := top.FillElementData(); err != nil {
		panic(err)
	}
	for _, b := range bonds {
		top.AddBond(b[0], b[1], 1)
	}
	m, err := v3.NewMatrix(coords)
	if err != nil {
		panic(err)
	}
	mol, err := chem.NewMolecule([]*v3.Matrix{m}, top)
	if err != nil {
		panic(err)
	}
	mol.Title = title
	return mol
}

// Rotated returns a copy of mol rotated by 90 degrees around the z axis and
// translated by shift.
func Rotated(mol *chem.Molecule, shift [3]float64) *chem.Molecule {
	ret := mol.Copy()
	c := ret.Coords[0]
	for i := 0; i < c.NVecs(); i++ {
		x, y, z := c.At(i, 0), c.At(i, 1), c.At(i, 2)
		c.Set(i, 0, -y+shift[0])
		c.Set(i, 1, x+shift[1])
		c.Set(i, 2, z+shift[2])
	}
	return ret
}
