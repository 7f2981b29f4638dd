/*
 * gonum.go, part of confsieve.
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

//gonum.go holds the Matrix type itself and the thin wrappers needed
//so it plays well with gonum's mat package.

package v3

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

//Matrix is a set of vectors in 3D space, i.e. a Nx3 row-major matrix.
//Within the package a "vector" is a row: the cartesian coordinates of one point.
type Matrix struct {
	*mat.Dense
}

//Matrix2Dense returns the gonum Dense underlying A.
func Matrix2Dense(A *Matrix) *mat.Dense {
	return A.Dense
}

//Dense2Matrix wraps A, which must have 3 columns, in a Matrix.
func Dense2Matrix(A *mat.Dense) *Matrix {
	_, c := A.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return &Matrix{A}
}

//NewMatrix returns a Matrix with 3 columns built from data, which is
//used as the backing slice.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d", l, cols), []string{"NewMatrix"}, true}
	}
	if rows == 0 {
		return nil, Error{"Input slice is empty", []string{"NewMatrix"}, true}
	}
	return &Matrix{mat.NewDense(rows, cols, data)}, nil
}

//VecView returns a view of the ith vector of F. Changes in the view
//are reflected in F.
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)
	return &Matrix{r}
}

//View returns a view of r vectors of F, starting from the ith.
func (F *Matrix) View(i, r int) *Matrix {
	ret := F.Dense.Slice(i, i+r, 0, 3).(*mat.Dense)
	return &Matrix{ret}
}

//Mul wraps mat.Dense.Mul so a Matrix can be given as any of the operands.
//As with gonum, the receiver must not alias A or B.
func (F *Matrix) Mul(A, B mat.Matrix) {
	F.Dense.Mul(unwrap(A), unwrap(B))
}

//Copy wraps mat.Dense.Copy so a Matrix can be given as the source.
func (F *Matrix) Copy(A mat.Matrix) (int, int) {
	return F.Dense.Copy(unwrap(A))
}

func unwrap(A mat.Matrix) mat.Matrix {
	if M, ok := A.(*Matrix); ok {
		return M.Dense
	}
	return A
}

//det returns the determinant of a 3x3 matrix. Panics if the matrix is not 3x3.
func det(A mat.Matrix) float64 {
	r, c := A.Dims()
	if r != 3 || c != 3 {
		panic(ErrDeterminant)
	}
	return A.At(0, 0)*(A.At(1, 1)*A.At(2, 2)-A.At(2, 1)*A.At(1, 2)) - A.At(1, 0)*(A.At(0, 1)*A.At(2, 2)-A.At(2, 1)*A.At(0, 2)) + A.At(2, 0)*(A.At(0, 1)*A.At(1, 2)-A.At(1, 1)*A.At(0, 2))
}

//Det returns the determinant of a 3x3 matrix. Panics if the matrix is not 3x3.
func Det(A mat.Matrix) float64 {
	return det(unwrap(A))
}

//Errors

//the same as chem.Error but avoids a circular import.
type errorInt interface {
	Error() string
	Critical() bool
	Decorate(string) []string
}

//Error is the error type returned by functions in this package.
type Error struct {
	message  string
	deco     []string
	critical bool
}

//Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

//Critical return whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

//errDecorate decorates err with the caller's name, if err implements
//the decoration interface. Other errors are returned unchanged.
func errDecorate(err error, caller string) error {
	if err2, ok := err.(errorInt); ok {
		err2.Decorate(caller)
		return err2
	}
	return err
}

//PanicMsg is a message used for panics, even though it does satisfy the error interface.
//for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix      = PanicMsg("confsieve/v3: A Matrix should have 3 columns")
	ErrNotEnoughElements = PanicMsg("confsieve/v3: not enough elements in Matrix")
	ErrDeterminant       = PanicMsg("confsieve/v3: Determinants are only available for 3x3 matrices")
	ErrShape             = PanicMsg("confsieve/v3: Dimension mismatch")
	ErrIndexOutOfRange   = PanicMsg("confsieve/v3: index out of range")
)
