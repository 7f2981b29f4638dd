/*
 * geometric.go, part of confsieve.
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
	"math"

	v3 "github.com/confsieve/confsieve/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CenterOfMass returns the center of mass the atoms represented by the coordinates in geometry
// and the masses in mass, and an error. If no mass is given, it calculates the geometric center.
func CenterOfMass(geometry *v3.Matrix, mass ...[]float64) (*v3.Matrix, error) {
	if geometry == nil {
		return nil, newCError("CenterOfMass", "nil matrix to get the center of mass")
	}
	n := geometry.NVecs()
	var m []float64
	if len(mass) > 0 && mass[0] != nil {
		m = mass[0]
		if len(m) != n {
			return nil, newCError("CenterOfMass", "%d masses for %d coordinates", len(m), n)
		}
	} else {
		m = make([]float64, n)
		for i := range m {
			m[i] = 1
		}
	}
	tot := floats.Sum(m)
	if tot == 0 {
		return nil, newCError("CenterOfMass", "Total mass is zero")
	}
	ret := v3.Zeros(1)
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			ret.Set(0, j, ret.At(0, j)+geometry.At(i, j)*m[i])
		}
	}
	ret.Dense.Scale(1/tot, ret.Dense)
	return ret, nil
}

// MassCenter centers in, using the center of mass of oref (with masses mass, or
// unit masses if mass is nil). It returns the centered copy of in and the center.
func MassCenter(in, oref *v3.Matrix, mass []float64) (*v3.Matrix, *v3.Matrix, error) {
	center, err := CenterOfMass(oref, mass)
	if err != nil {
		return nil, nil, errDecorate(err, "MassCenter")
	}
	ret := v3.Zeros(in.NVecs())
	ret.SubVec(in, center)
	return ret, center, nil
}

// RotatorTranslatorToSuper superimposes the set of cartesian coordinates given as the rows of the matrix test on the ones of the rows
// of the matrix templa (Kabsch algorithm). Returns the transformed matrix, the rotation matrix, 2 translation row vectors
// for the superposition plus an error. In order to perform the superposition, without using the transformed,
// the first translation vector has to be added first to the moving matrix, then the rotation must be performed
// and finally the second translation has to be added.
// If the optimal orthogonal transformation is a reflection, the closest proper rotation is returned instead,
// so the chirality of test is always kept.
func RotatorTranslatorToSuper(test, templa *v3.Matrix) (*v3.Matrix, *v3.Matrix, *v3.Matrix, *v3.Matrix, error) {
	tmr := templa.NVecs()
	tsr := test.NVecs()
	if tmr != tsr || tmr == 0 {
		return nil, nil, nil, nil, newCError("RotatorTranslatorToSuper", "Ill-formed matrices: %d and %d vectors", tsr, tmr)
	}
	ctest, distest, err := MassCenter(test, test, nil)
	if err != nil {
		return nil, nil, nil, nil, errDecorate(err, "RotatorTranslatorToSuper")
	}
	ctempla, distempla, err := MassCenter(templa, templa, nil)
	if err != nil {
		return nil, nil, nil, nil, errDecorate(err, "RotatorTranslatorToSuper")
	}
	//covariance
	H := mat.NewDense(3, 3, nil)
	H.Mul(ctest.Dense.T(), ctempla.Dense)
	var svd mat.SVD
	if ok := svd.Factorize(H, mat.SVDFull); !ok {
		return nil, nil, nil, nil, newCError("RotatorTranslatorToSuper", "SVD factorization failed")
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	d := 1.0
	if mat.Det(&U)*mat.Det(&V) < 0 {
		d = -1.0 //reflection, flip the axis of the smallest singular value.
	}
	D := mat.NewDiagDense(3, []float64{1, 1, d})
	UD := mat.NewDense(3, 3, nil)
	UD.Mul(&U, D)
	Rotation := v3.Zeros(3)
	Rotation.Dense.Mul(UD, V.T())
	transformed := v3.Zeros(tsr)
	transformed.Mul(ctest, Rotation)
	transformed.AddVec(transformed, distempla)
	for i := 0; i < tsr; i++ {
		for j := 0; j < 3; j++ {
			if math.IsNaN(transformed.At(i, j)) {
				return nil, nil, nil, nil, newCError("RotatorTranslatorToSuper", "NaN in the superimposed coordinates")
			}
		}
	}
	distest.Dense.Scale(-1, distest.Dense)
	return transformed, Rotation, distest, distempla, nil
}

// RMSD returns the RSMD (root of the mean square deviation) for the sets of cartesian
// coordinates in test and template. Only the atoms in indexes, if given, are considered.
// No superposition is performed.
func RMSD(test, template *v3.Matrix, indexes ...[]int) (float64, error) {
	if test.NVecs() != template.NVecs() {
		return 0, newCError("RMSD", "Ill formed matrices: %d and %d vectors", test.NVecs(), template.NVecs())
	}
	var idx []int
	if len(indexes) > 0 && len(indexes[0]) > 0 {
		idx = indexes[0]
	} else {
		idx = make([]int, test.NVecs())
		for i := range idx {
			idx[i] = i
		}
	}
	if len(idx) == 0 {
		return 0, newCError("RMSD", "No coordinates given")
	}
	var sum float64
	for _, i := range idx {
		if i < 0 || i >= test.NVecs() {
			return 0, newCError("RMSD", "Index %d out of range", i)
		}
		for j := 0; j < 3; j++ {
			d := test.At(i, j) - template.At(i, j)
			sum += d * d
		}
	}
	return math.Sqrt(sum / float64(len(idx))), nil
}
