/*
 * dedup_test.go, part of confsieve.
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

package dedup

import (
	"context"
	"errors"
	"fmt"
	"testing"

	chem "github.com/confsieve/confsieve"
	"github.com/confsieve/confsieve/ensemble"
	"github.com/confsieve/confsieve/features"
	"github.com/confsieve/confsieve/internal/molfixture"
	"github.com/confsieve/confsieve/similarity"
	"github.com/confsieve/confsieve/superpose"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatProfile(v float64) *features.Profile {
	l := []float64{v, v + 1}
	return features.NewProfile(l, l, l, l)
}

func profilesFor(names ...string) map[string]*features.Profile {
	ret := make(map[string]*features.Profile, len(names))
	for _, n := range names {
		ret[n] = flatProfile(2)
	}
	return ret
}

func entry(a, b string, r float64) similarity.Entry {
	return similarity.Entry{Key: similarity.Key{A: a, B: b}, RMSD: r}
}

func TestTieBreak(Te *testing.T) {
	th := DefaultThresholds()
	d, err := FindDuplicates([]similarity.Entry{entry("c1", "c2", 0.1)}, map[string]float64{"c1": 10, "c2": 12}, profilesFor("c1", "c2"), th)
	require.NoError(Te, err)
	assert.Equal(Te, DiscardList{"c2"}, d)

	d, err = FindDuplicates([]similarity.Entry{entry("c1", "c2", 0.1)}, map[string]float64{"c1": 12, "c2": 10}, profilesFor("c1", "c2"), th)
	require.NoError(Te, err)
	assert.Equal(Te, DiscardList{"c1"}, d)

	//equal energies: the first member goes.
	d, err = FindDuplicates([]similarity.Entry{entry("c1", "c2", 0.1)}, map[string]float64{"c1": 3, "c2": 3}, profilesFor("c1", "c2"), th)
	require.NoError(Te, err)
	assert.Equal(Te, DiscardList{"c1"}, d)
}

func TestEnergyBoundary(Te *testing.T) {
	th := DefaultThresholds()
	pairs := []similarity.Entry{entry("a", "b", 0)}
	d, err := FindDuplicates(pairs, map[string]float64{"a": 10, "b": 15}, profilesFor("a", "b"), th)
	require.NoError(Te, err)
	assert.Empty(Te, d)

	d, err = FindDuplicates(pairs, map[string]float64{"a": 10, "b": 14.99}, profilesFor("a", "b"), th)
	require.NoError(Te, err)
	assert.Equal(Te, DiscardList{"b"}, d)
}

func TestSimilarityBoundary(Te *testing.T) {
	th := DefaultThresholds()
	e := map[string]float64{"a": 0, "b": 1}
	var c Counts
	d, err := FindDuplicates([]similarity.Entry{entry("a", "b", 1.0)}, e, profilesFor("a", "b"), th, &c)
	require.NoError(Te, err)
	assert.Empty(Te, d)
	assert.Equal(Te, 0, c.Evaluated)

	d, err = FindDuplicates([]similarity.Entry{entry("a", "b", 0.999)}, e, profilesFor("a", "b"), th, &c)
	require.NoError(Te, err)
	assert.Equal(Te, DiscardList{"b"}, d)
	assert.Equal(Te, 1, c.Evaluated)
}

func TestDistanceBoundary(Te *testing.T) {
	th := DefaultThresholds()
	e := map[string]float64{"a": 0, "b": 1}
	pairs := []similarity.Entry{entry("a", "b", 0.2)}
	for _, tc := range []struct {
		shift float64
		dup   bool
	}{{0.5, true}, {0.99, true}, {1.0, false}, {1.5, false}} {
		p := map[string]*features.Profile{"a": flatProfile(2), "b": flatProfile(2)}
		//only the maximum of one list moves.
		p["b"] = features.NewProfile([]float64{2, 3}, []float64{2, 3}, []float64{2, 3 + tc.shift}, []float64{2, 3})
		var c Counts
		d, err := FindDuplicates(pairs, e, p, th, &c)
		require.NoError(Te, err)
		assert.Equal(Te, tc.dup, d.Contains("b"), "shift %v", tc.shift)
		if !tc.dup {
			assert.Equal(Te, 1, c.GeometryRejections)
		}
	}
}

func TestEarlyTermination(Te *testing.T) {
	names := []string{"a", "b", "c", "d", "e"}
	energies := map[string]float64{"a": 0, "b": 1, "c": 2, "d": 3, "e": 4}
	profiles := profilesFor(names...)
	profiles["e"] = flatProfile(10)
	sorted := []similarity.Entry{
		entry("a", "b", 0.1),
		entry("c", "e", 0.2),
		entry("b", "c", 0.5),
		entry("a", "c", 1.0),
		entry("a", "d", 0.3), //out of order: after the crossing, never seen
		entry("d", "e", 2.0),
	}
	var c Counts
	d, err := FindDuplicates(sorted, energies, profiles, DefaultThresholds(), &c)
	require.NoError(Te, err)
	assert.Equal(Te, 3, c.Evaluated)
	assert.Equal(Te, 1, c.GeometryRejections)
	assert.Equal(Te, 2, c.Discards)
	assert.Equal(Te, DiscardList{"b", "c"}, d)

	//the sub-threshold prefix, in any order, gives the same discard set.
	shuffled := []similarity.Entry{sorted[2], sorted[0], sorted[1]}
	d2, err := FindDuplicates(shuffled, energies, profiles, DefaultThresholds())
	require.NoError(Te, err)
	assert.ElementsMatch(Te, d.Unique(), d2.Unique())
}

func TestDegenerateAndMissing(Te *testing.T) {
	th := DefaultThresholds()
	pairs := []similarity.Entry{entry("a", "b", 0.1)}
	p := profilesFor("a", "b")
	p["b"] = features.NewProfile([]float64{1}, nil, []float64{1}, []float64{1})
	_, err := FindDuplicates(pairs, map[string]float64{"a": 0, "b": 0}, p, th)
	var dpe *features.DegenerateProfileError
	require.True(Te, errors.As(err, &dpe))
	assert.Equal(Te, "b", dpe.Conformer)
	assert.Equal(Te, features.HwNar, dpe.List)

	_, err = FindDuplicates(pairs, map[string]float64{"a": 0}, profilesFor("a", "b"), th)
	var mde *MissingDataError
	require.True(Te, errors.As(err, &mde))
	assert.Equal(Te, "b", mde.Conformer)
	assert.Equal(Te, "energy", mde.What)

	_, err = FindDuplicates(pairs, map[string]float64{"a": 0, "b": 0}, profilesFor("b"), th)
	require.True(Te, errors.As(err, &mde))
	assert.Equal(Te, "a", mde.Conformer)

	//pairs past the threshold are never looked at, so their data can be missing.
	d, err := FindDuplicates([]similarity.Entry{entry("x", "y", 3)}, nil, nil, th)
	require.NoError(Te, err)
	assert.Empty(Te, d)
}

func TestUniqueAndApply(Te *testing.T) {
	d := DiscardList{"c", "b", "c", "b", "d"}
	assert.Equal(Te, []string{"c", "b", "d"}, d.Unique())
	var confs []*ensemble.Conformer
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		confs = append(confs, &ensemble.Conformer{Name: n})
	}
	kept, discarded := Apply(confs, d)
	assert.Equal(Te, []*ensemble.Conformer{confs[0], confs[4]}, kept)
	assert.Equal(Te, []*ensemble.Conformer{confs[1], confs[2], confs[3]}, discarded)
}

func TestThresholdsValidate(Te *testing.T) {
	assert.NoError(Te, DefaultThresholds().Validate())
	bad := DefaultThresholds()
	bad.Energy = 0
	assert.Error(Te, bad.Validate())
	bad = DefaultThresholds()
	bad.Distance = -1
	assert.Error(Te, bad.Validate())
}

// stub returns a superposer that reads pair RMSDs from values, keyed by title pairs in any order.
func stub(values map[[2]string]float64) superpose.Superposer {
	return superpose.Func(func(test, ref *chem.Molecule, _ ...[][2]int) (float64, error) {
		if v, ok := values[[2]string{ref.Title, test.Title}]; ok {
			return v, nil
		}
		if v, ok := values[[2]string{test.Title, ref.Title}]; ok {
			return v, nil
		}
		return 0, fmt.Errorf("no RMSD for %s %s", ref.Title, test.Title)
	})
}

func abcEnsemble(Te *testing.T) *ensemble.Ensemble {
	a := &ensemble.Conformer{Name: "A", Mol: molfixture.Complex("A", [3]float64{}), Energy: 0}
	b := &ensemble.Conformer{Name: "B", Mol: molfixture.Complex("B", [3]float64{0.05, 0, 0}), Energy: 3}
	c := &ensemble.Conformer{Name: "C", Mol: molfixture.Complex("C", [3]float64{0, 4, 0}), Energy: 0}
	E, err := ensemble.New(a, b, c)
	require.NoError(Te, err)
	return E
}

func TestPipelineABC(Te *testing.T) {
	sp := stub(map[[2]string]float64{{"A", "B"}: 0.2, {"A", "C"}: 2, {"B", "C"}: 2})
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(Te, err)
	P := &Pipeline{Superposer: sp, Metrics: m, Workers: 2}
	R, err := P.Run(context.Background(), abcEnsemble(Te))
	require.NoError(Te, err)
	assert.Equal(Te, DiscardList{"B"}, R.Discards)
	assert.Equal(Te, []string{"B"}, R.Unique)
	assert.Equal(Te, []string{"A", "C"}, R.KeptNames())
	assert.Equal(Te, 3, R.Matrix.Len())
	assert.Equal(Te, 1, R.Counts.Evaluated)
	assert.Equal(Te, 1.0, testutil.ToFloat64(m.PairsEvaluated))
	assert.Equal(Te, 1.0, testutil.ToFloat64(m.Discards))
	assert.Equal(Te, 0.0, testutil.ToFloat64(m.EnergyRejections))
	assert.Len(Te, R.Profiles, 3)

	//registering twice on the same registry fails.
	_, err = NewMetrics(reg)
	assert.Error(Te, err)
}

func TestPipelineIdempotent(Te *testing.T) {
	a := &ensemble.Conformer{Name: "A", Mol: molfixture.Complex("A", [3]float64{}), Energy: 0}
	b := &ensemble.Conformer{Name: "B", Mol: molfixture.Rotated(a.Mol, [3]float64{1, -2, 0.5}), Energy: 3}
	c := &ensemble.Conformer{Name: "C", Mol: molfixture.Complex("C", [3]float64{0, 6, 0}), Energy: 0}
	E, err := ensemble.New(a, b, c)
	require.NoError(Te, err)
	P := &Pipeline{Workers: 3}
	R1, err := P.Run(context.Background(), E)
	require.NoError(Te, err)
	R2, err := P.Run(context.Background(), E)
	require.NoError(Te, err)
	assert.Equal(Te, R1.Discards, R2.Discards)
	assert.Equal(Te, R1.Matrix.Entries(), R2.Matrix.Entries())
	assert.NotEqual(Te, R1.RunID, R2.RunID)
	assert.Equal(Te, DiscardList{"B"}, R1.Discards)
	assert.Equal(Te, []string{"A", "C"}, R1.KeptNames())
}

func TestPipelineErrors(Te *testing.T) {
	failing := superpose.Func(func(test, ref *chem.Molecule, _ ...[][2]int) (float64, error) {
		return 0, errors.New("boom")
	})
	_, err := (&Pipeline{Superposer: failing}).Run(context.Background(), abcEnsemble(Te))
	var sce *similarity.SimilarityComputationError
	require.True(Te, errors.As(err, &sce))
	assert.Equal(Te, "A", sce.A)
	assert.Equal(Te, "B", sce.B)

	_, err = (&Pipeline{Thresholds: Thresholds{Similarity: 1}}).Run(context.Background(), abcEnsemble(Te))
	assert.Error(Te, err)
}
