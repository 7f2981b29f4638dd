/*
 * features_test.go, part of confsieve.
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

package features

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/confsieve/confsieve/internal/molfixture"
	"github.com/confsieve/confsieve/roles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(Te *testing.T) {
	mol := molfixture.Complex("c", [3]float64{})
	c := mol.Coords[0]
	p, err := Extract(c, roles.Classify(mol))
	require.NoError(Te, err)

	require.Equal(Te, 1, p.Len(OwHa))
	assert.InDelta(Te, c.Dist(molfixture.WaterO, molfixture.AmideH), p.List(OwHa)[0], 1e-12)
	for _, k := range []Kind{HwNar, HwNam, HwOam} {
		assert.Equal(Te, 2, p.Len(k), k.String())
		assert.True(Te, sort.Float64sAreSorted(p.List(k)), k.String())
	}
	want := []float64{c.Dist(molfixture.WaterH1, molfixture.AromaticN), c.Dist(molfixture.WaterH2, molfixture.AromaticN)}
	sort.Float64s(want)
	assert.InDeltaSlice(Te, want, p.List(HwNar), 1e-12)

	lo, hi, err := p.Bounds(HwOam)
	require.NoError(Te, err)
	assert.LessOrEqual(Te, lo, hi)
}

func TestDistanceMatrix(Te *testing.T) {
	c := molfixture.Complex("c", [3]float64{}).Coords[0]
	d := DistanceMatrix(c)
	n, _ := d.Dims()
	require.Equal(Te, 11, n)
	for i := 0; i < n; i++ {
		assert.Equal(Te, 0.0, d.At(i, i))
		for j := 0; j < n; j++ {
			assert.Equal(Te, d.At(i, j), d.At(j, i))
		}
	}
	assert.InDelta(Te, 1.33, d.At(molfixture.CarbonylC, molfixture.AmideN), 1e-12)
}

func TestExtractMissingWaterOxygen(Te *testing.T) {
	mol := molfixture.Complex("c", [3]float64{})
	s := roles.Classify(mol)
	s.WaterO = nil
	_, err := Extract(mol.Coords[0], s)
	var mre *roles.MissingRoleError
	require.True(Te, errors.As(err, &mre))
	assert.Equal(Te, roles.WaterOxygen, mre.Role)

	//without amide hydrogens the water oxygen is not needed.
	s.AmideH = nil
	p, err := Extract(mol.Coords[0], s)
	require.NoError(Te, err)
	_, _, err = p.Bounds(OwHa)
	var dpe *DegenerateProfileError
	require.True(Te, errors.As(err, &dpe))
	assert.Equal(Te, OwHa, dpe.List)
}

func TestExtractBadIndex(Te *testing.T) {
	mol := molfixture.Complex("c", [3]float64{})
	s := roles.Classify(mol)
	s.AmideN = []int{40}
	_, err := Extract(mol.Coords[0], s)
	assert.Error(Te, err)
}

func TestNewProfile(Te *testing.T) {
	in := []float64{3, 1, 2}
	p := NewProfile(in, nil, []float64{math.Pi}, []float64{1})
	assert.Equal(Te, []float64{3, 1, 2}, in, "input must not be sorted in place")
	lo, hi, err := p.Bounds(OwHa)
	require.NoError(Te, err)
	assert.Equal(Te, 1.0, lo)
	assert.Equal(Te, 3.0, hi)
	_, _, err = p.Bounds(HwNar)
	assert.Error(Te, err)
	lo, hi, _ = p.Bounds(HwNam)
	assert.Equal(Te, lo, hi)
}
