/*
 * histo_test.go, part of confsieve.
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

package histo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHisto(Te *testing.T) {
	rawdata := []float64{1, 6, 3, 2, 4, 5, 7, 6, 3.5, 3, 5, 1, 1, 0, 0, 5, 8, 1, 2, 3, 44, 3, 7, 3, 1, 3, 5, 32, 1}
	D := NewData([]float64{0, 1, 2, 3, 4, 8}, rawdata)
	assert.Equal(Te, []float64{2, 6, 2, 7, 9}, D.View())
	assert.Equal(Te, 26, D.Total())
	assert.Equal(Te, 29, len(rawdata))
	assert.Equal(Te, 1.0, rawdata[0], "raw data must not be sorted in place")

	D.Normalize()
	assert.InDelta(Te, 1, D.Sum(), 1e-12)
	D.AddData(0.5, 100)
	assert.True(Te, D.Normalized())
	D.UnNormalize()
	assert.InDeltaSlice(Te, []float64{3, 6, 2, 7, 9}, D.View(), 1e-9)
	assert.Equal(Te, 27, D.Total())

	j, err := json.Marshal(D)
	require.NoError(Te, err)
	assert.Contains(Te, string(j), `"total":27`)
	assert.Contains(Te, D.String(), "0.00-1.00")
}

func TestDividers(Te *testing.T) {
	d := Dividers(0, 2, 4)
	require.Len(Te, d, 5)
	assert.Equal(Te, 0.5, d[1])
	D := NewData(d, []float64{0, 2, 2})
	assert.Equal(Te, 3, D.Total())
	assert.Equal(Te, 2.0, D.View()[3])
}

func TestSummarize(Te *testing.T) {
	s := Summarize([]float64{4, 1, 3, 2, 5})
	assert.Equal(Te, 5, s.N)
	assert.Equal(Te, 1.0, s.Min)
	assert.Equal(Te, 5.0, s.Max)
	assert.InDelta(Te, 3, s.Mean, 1e-12)
	assert.Equal(Te, 3.0, s.Median)
	assert.InDelta(Te, 1.5811388, s.StdDev, 1e-6)
	assert.Equal(Te, Summary{}, Summarize(nil))
	assert.Equal(Te, 0.0, Summarize([]float64{2}).StdDev)
}
