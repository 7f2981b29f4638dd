/*
 * cache_test.go, part of confsieve.
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

package cache

import (
	"errors"
	"path/filepath"
	"testing"

	chem "github.com/confsieve/confsieve"
	"github.com/confsieve/confsieve/internal/molfixture"
	"github.com/confsieve/confsieve/superpose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counting(calls *int) superpose.Func {
	bf := superpose.NewBestFit()
	return func(test, ref *chem.Molecule, m ...[][2]int) (float64, error) {
		*calls++
		return bf.BestRMSD(test, ref, m...)
	}
}

func TestBoltCache(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "rmsd.db")
	calls := 0
	B, err := Open(path, counting(&calls), nil)
	require.NoError(Te, err)
	a := molfixture.Complex("a", [3]float64{})
	b := molfixture.Complex("b", [3]float64{0.7, 0.2, 0})

	r1, err := B.BestRMSD(b, a)
	require.NoError(Te, err)
	r2, err := B.BestRMSD(a, b)
	require.NoError(Te, err)
	assert.Equal(Te, r1, r2)
	assert.Equal(Te, 1, calls)
	hits, misses := B.Stats()
	assert.Equal(Te, int64(1), hits)
	assert.Equal(Te, int64(1), misses)
	require.NoError(Te, B.Close())

	//the values survive reopening.
	B, err = Open(path, counting(&calls), nil)
	require.NoError(Te, err)
	defer B.Close()
	r3, err := B.BestRMSD(b, a)
	require.NoError(Te, err)
	assert.Equal(Te, r1, r3)
	assert.Equal(Te, 1, calls)

	//explicit maps go to the inner superposer.
	m := make([][2]int, a.Len())
	for i := range m {
		m[i] = [2]int{i, i}
	}
	_, err = B.BestRMSD(b, a, m)
	require.NoError(Te, err)
	assert.Equal(Te, 2, calls)
}

func TestBoltCacheErrors(Te *testing.T) {
	fail := superpose.Func(func(test, ref *chem.Molecule, _ ...[][2]int) (float64, error) {
		return 0, errors.New("boom")
	})
	B, err := Open(filepath.Join(Te.TempDir(), "rmsd.db"), fail, nil)
	require.NoError(Te, err)
	defer B.Close()
	a := molfixture.Complex("a", [3]float64{})
	_, err = B.BestRMSD(a, a)
	assert.Error(Te, err)
	_, misses := B.Stats()
	assert.Equal(Te, int64(1), misses)

	_, err = Open(filepath.Join(Te.TempDir(), "x.db"), nil, nil)
	assert.Error(Te, err)
}

func TestFingerprint(Te *testing.T) {
	a := molfixture.Complex("a", [3]float64{})
	assert.Equal(Te, Fingerprint(a), Fingerprint(molfixture.Complex("other title", [3]float64{})))
	assert.NotEqual(Te, Fingerprint(a), Fingerprint(molfixture.Complex("a", [3]float64{1e-3, 0, 0})))
	assert.Equal(Te, Fingerprint(a), Fingerprint(molfixture.Complex("a", [3]float64{1e-9, 0, 0})))
	assert.Equal(Te, PairKey(1, 2), PairKey(2, 1))
	assert.NotEqual(Te, PairKey(1, 2), PairKey(1, 3))
}

func TestFingerprintBonds(Te *testing.T) {
	sym := []string{"O", "H", "H"}
	xyz := []float64{0, 0, 0, 0.96, 0, 0, -0.24, 0.93, 0}
	w := molfixture.Build("w", sym, xyz, [][2]int{{0, 1}, {0, 2}})
	reordered := molfixture.Build("w", sym, xyz, [][2]int{{2, 0}, {1, 0}})
	assert.Equal(Te, Fingerprint(w), Fingerprint(reordered))
	fewer := molfixture.Build("w", sym, xyz, [][2]int{{0, 1}})
	assert.NotEqual(Te, Fingerprint(w), Fingerprint(fewer))
	other := molfixture.Build("w", sym, xyz, [][2]int{{0, 1}, {1, 2}})
	assert.NotEqual(Te, Fingerprint(w), Fingerprint(other))
}
