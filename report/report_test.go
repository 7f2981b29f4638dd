/*
 * report_test.go, part of confsieve.
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

package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	chem "github.com/confsieve/confsieve"
	"github.com/confsieve/confsieve/dedup"
	"github.com/confsieve/confsieve/ensemble"
	"github.com/confsieve/confsieve/internal/molfixture"
	"github.com/confsieve/confsieve/superpose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(Te *testing.T) (*dedup.Result, *ensemble.Ensemble) {
	E, err := ensemble.New(
		&ensemble.Conformer{Name: "A", Mol: molfixture.Complex("A", [3]float64{}), Energy: -10},
		&ensemble.Conformer{Name: "B", Mol: molfixture.Complex("B", [3]float64{0.05, 0, 0}), Energy: -7},
		&ensemble.Conformer{Name: "C", Mol: molfixture.Complex("C", [3]float64{0, 4, 0}), Energy: -10},
	)
	require.NoError(Te, err)
	values := map[string]float64{"AB": 0.2, "AC": 2, "BC": 2.5}
	sp := superpose.Func(func(test, ref *chem.Molecule, _ ...[][2]int) (float64, error) {
		if v, ok := values[ref.Title+test.Title]; ok {
			return v, nil
		}
		return 0, fmt.Errorf("no value for %s%s", ref.Title, test.Title)
	})
	R, err := (&dedup.Pipeline{Superposer: sp}).Run(context.Background(), E)
	require.NoError(Te, err)
	return R, E
}

func TestSummarize(Te *testing.T) {
	R, E := run(Te)
	S, err := Summarize(R, E)
	require.NoError(Te, err)
	assert.Equal(Te, "A", S.Lowest)
	assert.Equal(Te, []string{"B"}, S.Discards)
	assert.Equal(Te, []string{"A", "C"}, S.Kept)
	require.Len(Te, S.Conformers, 3)
	assert.Equal(Te, Conformer{Name: "B", Energy: -7, RelEnergy: 3, RMSD: 0.2, Discarded: true}, S.Conformers[1])
	assert.Equal(Te, 2.0, S.Conformers[2].RMSD)
	assert.Equal(Te, 3, S.PairRMSD.N)
	assert.Equal(Te, 2.5, S.PairRMSD.Max)
	assert.Equal(Te, 3, S.Histogram.Total())

	var buf bytes.Buffer
	require.NoError(Te, WriteJSON(&buf, S))
	var back map[string]any
	require.NoError(Te, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(Te, R.RunID.String(), back["run_id"])
	assert.Equal(Te, 1.0, back["thresholds"].(map[string]any)["similarity"])
}

func TestWriteMatrix(Te *testing.T) {
	R, _ := run(Te)
	var buf bytes.Buffer
	require.NoError(Te, WriteMatrix(&buf, R.Matrix))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(Te, []string{"a\tb\trmsd", "A\tB\t0.200000", "A\tC\t2.000000", "B\tC\t2.500000"}, lines)
}

func TestWriteDir(Te *testing.T) {
	R, E := run(Te)
	dir := filepath.Join(Te.TempDir(), "out")
	_, err := WriteDir(dir, R, E, Options{Kept: true, Plots: true})
	require.NoError(Te, err)
	for _, f := range []string{SummaryFile, MatrixFile, KeptFile, EnergyPlot, HistogramPlot} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(Te, err, f)
	}
	kept, err := ensemble.FromSDFFile(filepath.Join(dir, KeptFile), "k", "")
	require.NoError(Te, err)
	assert.Equal(Te, 2, kept.Len())
	assert.Equal(Te, "C", kept.At(1).Mol.Title)
	assert.Equal(Te, -10.0, kept.At(1).Energy)
	//the conformers in the result are untouched.
	assert.Empty(Te, R.Kept[0].Mol.Props["ENERGY"])
}
