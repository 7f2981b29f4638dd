/*
 * v3_test.go, part of confsieve.
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

package v3

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewMatrix(Te *testing.T) {
	A, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.NoError(Te, err)
	assert.Equal(Te, 3, A.NVecs())

	_, err = NewMatrix([]float64{1, 2, 3, 4})
	require.Error(Te, err)
	var e Error
	require.True(Te, errors.As(err, &e))
	assert.True(Te, e.Critical())
	assert.Equal(Te, []string{"NewMatrix", "TestNewMatrix"}, e.Decorate("TestNewMatrix"))

	_, err = NewMatrix(nil)
	assert.Error(Te, err)
}

func TestViews(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	row := A.VecView(1)
	assert.Equal(Te, 1, row.NVecs())
	row.Set(0, 0, 40)
	assert.Equal(Te, 40.0, A.At(1, 0), "VecView must share storage")

	v := A.View(1, 2)
	assert.Equal(Te, 2, v.NVecs())
	assert.Equal(Te, 9.0, v.At(1, 2))
}

func TestVecOps(Te *testing.T) {
	A, _ := NewMatrix([]float64{0, 0, 0, 3, 4, 0})
	assert.InDelta(Te, 5.0, A.Dist(0, 1), 1e-12)
	assert.InDelta(Te, 5.0, A.Dist(1, 0), 1e-12)
	assert.InDelta(Te, 5.0, A.VecNorm(1), 1e-12)

	shift, _ := NewMatrix([]float64{1, 1, 1})
	B := Zeros(2)
	B.AddVec(A, shift)
	assert.Equal(Te, []float64{1, 1, 1, 4, 5, 1}, B.RawMatrix().Data)
	C := Zeros(2)
	C.SubVec(B, shift)
	assert.True(Te, mat.Equal(A, C))

	C.SwapVecs(0, 1)
	assert.Equal(Te, 3.0, C.At(0, 0))

	D := Zeros(1)
	D.SomeVecs(A, []int{1})
	assert.Equal(Te, 4.0, D.At(0, 1))
	err := D.SomeVecsSafe(A, []int{5})
	assert.Error(Te, err)
	assert.Panics(Te, func() { D.SomeVecs(A, []int{0, 1}) })
}

func TestCloneAndMul(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, 0, 0, 0, 1, 0})
	B := Clone(A)
	B.Set(0, 0, 7)
	assert.Equal(Te, 1.0, A.At(0, 0))

	rot := mat.NewDense(3, 3, []float64{0, 1, 0, -1, 0, 0, 0, 0, 1})
	C := Zeros(2)
	C.Mul(A, rot)
	assert.InDelta(Te, 1.0, C.At(0, 1), 1e-12)
	assert.InDelta(Te, -1.0, C.At(1, 0), 1e-12)
	assert.InDelta(Te, 1.0, Det(rot), 1e-12)
	assert.Equal(Te, 1.0, KronekerDelta(math.Pi, math.Pi, -1))
}
