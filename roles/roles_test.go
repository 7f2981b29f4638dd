/*
 * roles_test.go, part of confsieve.
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

package roles

import (
	"errors"
	"testing"

	chem "github.com/confsieve/confsieve"
	"github.com/confsieve/confsieve/internal/molfixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyComplex(Te *testing.T) {
	s := Classify(molfixture.Complex("c", [3]float64{}))
	assert.Equal(Te, []int{molfixture.WaterO}, s.WaterO)
	assert.Equal(Te, []int{molfixture.WaterH1, molfixture.WaterH2}, s.WaterH)
	assert.Equal(Te, []int{molfixture.AmideO}, s.AmideO)
	assert.Equal(Te, []int{molfixture.AmideH}, s.AmideH)
	assert.Equal(Te, []int{molfixture.AmideN}, s.AmideN)
	assert.Equal(Te, []int{molfixture.AromaticN}, s.AromaticN)
	o, err := s.WaterOxygen()
	require.NoError(Te, err)
	assert.Equal(Te, molfixture.WaterO, o)
}

func TestClassifyWater(Te *testing.T) {
	w := molfixture.Build("w", []string{"O", "H", "H"}, []float64{0, 0, 0, 0.96, 0, 0, -0.24, 0.93, 0}, [][2]int{{0, 1}, {0, 2}})
	s := Classify(w)
	assert.Equal(Te, []int{0}, s.WaterO)
	assert.Equal(Te, []int{1, 2}, s.WaterH)
	for _, r := range []Role{AmideOxygen, AmideHydrogen, AmideNitrogen, AromaticNitrogen} {
		assert.Empty(Te, s.Get(r), r.String())
	}
}

func TestClassifyEdgeCases(Te *testing.T) {
	//an isolated atom counts as "every neighbor matches".
	iso := molfixture.Build("iso", []string{"O", "H", "N", "C"}, []float64{0, 0, 0, 5, 0, 0, 10, 0, 0, 15, 0, 0}, nil)
	s := Classify(iso)
	assert.Equal(Te, []int{0}, s.WaterO)
	assert.Equal(Te, []int{1}, s.WaterH)
	assert.Equal(Te, []int{2}, s.AromaticN)
	assert.Empty(Te, s.AmideN)

	//methyl-like hydrogen: bonded to C, no role.
	ch := molfixture.Build("ch", []string{"C", "H"}, []float64{0, 0, 0, 1.09, 0, 0}, [][2]int{{0, 1}})
	s = Classify(ch)
	assert.Empty(Te, s.WaterH)
	assert.Empty(Te, s.AmideH)

	//hydroxyl oxygen: not every neighbor is H.
	oh := molfixture.Build("oh", []string{"C", "O", "H"}, []float64{0, 0, 0, 1.43, 0, 0, 1.75, 0.9, 0}, [][2]int{{0, 1}, {1, 2}})
	s = Classify(oh)
	assert.Equal(Te, []int{1}, s.AmideO)
	assert.Equal(Te, []int{2}, s.WaterH)
}

func TestWaterOxygenMissingAndMultiple(Te *testing.T) {
	s := Sets{}
	_, err := s.WaterOxygen()
	var mre *MissingRoleError
	require.True(Te, errors.As(err, &mre))
	assert.Equal(Te, WaterOxygen, mre.Role)
	mre.Conformer = "conf3"
	assert.Contains(Te, err.Error(), "conf3")
	assert.Equal(Te, []string{"WaterOxygen", "Test"}, mre.Decorate("Test"))

	s.WaterO = []int{2, 7}
	o, err := s.WaterOxygen()
	require.NoError(Te, err)
	assert.Equal(Te, 7, o)
}

func TestClassifyUsesSymbolWithoutZ(Te *testing.T) {
	top := chem.NewTopology(0, 1)
	top.AppendAtom(&chem.Atom{Symbol: "O"})
	top.AppendAtom(&chem.Atom{Symbol: "H"})
	top.AddBond(0, 1, 1)
	s := Classify(top)
	assert.Equal(Te, []int{0}, s.WaterO)
	assert.Equal(Te, []int{1}, s.WaterH)
}
