/*
 * handy.go, part of confsieve.
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

package chem

import (
	v3 "github.com/confsieve/confsieve/v3"
)

// Super determines the best rotation and translations to superimpose the coords in test
// listed in testlst on the atoms of templa listed in templalst (all atoms, if the lists are empty).
// It applies those rotation and translations to the whole test, in place, and also returns it.
// testlst and templalst must have the same number of elements.
func Super(test, templa *v3.Matrix, testlst, templalst []int) (*v3.Matrix, error) {
	if len(templalst) != len(testlst) {
		return nil, newCError("Super", "Mismatched template and test atom numbers: %d, %d", len(templalst), len(testlst))
	}
	ctest, ctempla := test, templa
	if len(testlst) != 0 {
		ctest = v3.Zeros(len(testlst))
		if err := ctest.SomeVecsSafe(test, testlst); err != nil {
			return nil, errDecorate(err, "Super")
		}
		ctempla = v3.Zeros(len(templalst))
		if err := ctempla.SomeVecsSafe(templa, templalst); err != nil {
			return nil, errDecorate(err, "Super")
		}
	}
	_, rotation, trans1, trans2, err := RotatorTranslatorToSuper(ctest, ctempla)
	if err != nil {
		return nil, errDecorate(err, "Super")
	}
	test.AddVec(test, trans1)
	rotated := v3.Zeros(test.NVecs())
	rotated.Mul(test, rotation)
	test.Copy(rotated)
	test.AddVec(test, trans2)
	return test, nil
}

// SuperRMSD superimposes a copy of test on templa and returns the RMSD between them,
// over the atoms in the lists (all atoms if the lists are empty). Neither matrix is modified.
func SuperRMSD(test, templa *v3.Matrix, testlst, templalst []int) (float64, error) {
	if len(testlst) != 0 {
		if len(templalst) != len(testlst) {
			return 0, newCError("SuperRMSD", "Mismatched template and test atom numbers: %d, %d", len(templalst), len(testlst))
		}
		ctest := v3.Zeros(len(testlst))
		if err := ctest.SomeVecsSafe(test, testlst); err != nil {
			return 0, errDecorate(err, "SuperRMSD")
		}
		ctempla := v3.Zeros(len(templalst))
		if err := ctempla.SomeVecsSafe(templa, templalst); err != nil {
			return 0, errDecorate(err, "SuperRMSD")
		}
		test, templa = ctest, ctempla
	}
	transformed, _, _, _, err := RotatorTranslatorToSuper(test, templa)
	if err != nil {
		return 0, errDecorate(err, "SuperRMSD")
	}
	rmsd, err := RMSD(transformed, templa)
	return rmsd, errDecorate(err, "SuperRMSD")
}
