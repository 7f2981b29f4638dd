/*
 * pipeline.go, part of confsieve.
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
	"time"

	"github.com/confsieve/confsieve/ensemble"
	"github.com/confsieve/confsieve/features"
	"github.com/confsieve/confsieve/roles"
	"github.com/confsieve/confsieve/similarity"
	"github.com/confsieve/confsieve/superpose"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pipeline runs the whole deduplication of an ensemble. The zero value is usable:
// it uses a BestFit superposer, the default thresholds, one worker and no logging.
type Pipeline struct {
	Superposer superpose.Superposer
	Thresholds Thresholds
	Workers    int
	Logger     *zap.Logger
	Metrics    *Metrics //may be nil
}

// Result is the outcome of a Pipeline run.
type Result struct {
	RunID      uuid.UUID
	Thresholds Thresholds
	Matrix     *similarity.Matrix
	Profiles   map[string]*features.Profile
	Discards   DiscardList //as flagged, with repetitions
	Unique     []string
	Kept       []*ensemble.Conformer
	Discarded  []*ensemble.Conformer
	Counts     Counts
}

// KeptNames returns the names of the kept conformers, in ensemble order.
func (R *Result) KeptNames() []string {
	ret := make([]string, len(R.Kept))
	for i, c := range R.Kept {
		ret[i] = c.Name
	}
	return ret
}

// Profiles computes the feature distance profile of every conformer in ens, keyed by name.
func Profiles(ens *ensemble.Ensemble) (map[string]*features.Profile, error) {
	ret := make(map[string]*features.Profile, ens.Len())
	for _, c := range ens.Conformers() {
		p, err := features.Extract(c.Coords(), roles.Classify(c.Mol))
		if err != nil {
			var mre *roles.MissingRoleError
			if errors.As(err, &mre) {
				mre.Conformer = c.Name
				mre.Decorate("Profiles")
			}
			return nil, err
		}
		ret[c.Name] = p
	}
	return ret, nil
}

// Run deduplicates ens. Discards are applied only after the whole scan, so a conformer
// flagged by any pair is discarded.
func (P *Pipeline) Run(ctx context.Context, ens *ensemble.Ensemble) (*Result, error) {
	th := P.Thresholds
	if th == (Thresholds{}) {
		th = DefaultThresholds()
	}
	if err := th.Validate(); err != nil {
		return nil, err
	}
	sp := P.Superposer
	if sp == nil {
		sp = superpose.NewBestFit()
	}
	log := P.Logger
	if log == nil {
		log = zap.NewNop()
	}
	R := &Result{RunID: uuid.New(), Thresholds: th}
	log = log.With(zap.String("run", R.RunID.String()))
	log.Info("deduplication started", zap.Int("conformers", ens.Len()),
		zap.Float64("similarity", th.Similarity), zap.Float64("energy", th.Energy), zap.Float64("distance", th.Distance))

	var err error
	stage := P.timer("profiles")
	R.Profiles, err = Profiles(ens)
	stage()
	if err != nil {
		return nil, fmt.Errorf("dedup: %w", err)
	}

	o := similarity.DefaultOptions()
	o.Workers(P.Workers)
	o.Logger(log)
	stage = P.timer("matrix")
	R.Matrix, err = similarity.Build(ctx, ens.Conformers(), sp, o)
	stage()
	if err != nil {
		return nil, fmt.Errorf("dedup: %w", err)
	}

	obs := []Observer{&R.Counts}
	if P.Metrics != nil {
		obs = append(obs, P.Metrics)
	}
	stage = P.timer("decision")
	R.Discards, err = FindDuplicates(R.Matrix.Sorted(), ens.Energies(), R.Profiles, th, obs...)
	stage()
	if err != nil {
		return nil, fmt.Errorf("dedup: %w", err)
	}
	R.Unique = R.Discards.Unique()
	R.Kept, R.Discarded = Apply(ens.Conformers(), R.Discards)
	log.Info("deduplication finished", zap.Int("pairs", R.Matrix.Len()), zap.Int("evaluated", R.Counts.Evaluated),
		zap.Int("kept", len(R.Kept)), zap.Strings("discarded", R.Unique))
	return R, nil
}

// timer starts timing a stage and returns the function that stops it.
func (P *Pipeline) timer(stage string) func() {
	if P.Metrics == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		P.Metrics.StageSeconds.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}
