/*
 * metrics.go, part of confsieve.
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
	"fmt"

	"github.com/confsieve/confsieve/features"
	"github.com/confsieve/confsieve/similarity"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "confsieve"

// Metrics holds the prometheus collectors of a deduplication run. It is an Observer.
type Metrics struct {
	PairsEvaluated     prometheus.Counter
	GeometryRejections *prometheus.CounterVec
	EnergyRejections   prometheus.Counter
	Discards           prometheus.Counter
	PairRMSD           prometheus.Histogram
	StageSeconds       *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them in reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	M := &Metrics{
		PairsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dedup",
			Name:      "pairs_evaluated_total",
			Help:      "Pairs below the similarity threshold that were checked for duplication.",
		}),
		GeometryRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dedup",
			Name:      "geometry_rejections_total",
			Help:      "Evaluated pairs whose distance profiles differ, by first differing list.",
		}, []string{"list"}),
		EnergyRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dedup",
			Name:      "energy_rejections_total",
			Help:      "Geometrically equivalent pairs whose energies differ too much.",
		}),
		Discards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dedup",
			Name:      "discards_total",
			Help:      "Conformers flagged for removal, counted once per flagging pair.",
		}),
		PairRMSD: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dedup",
			Name:      "evaluated_pair_rmsd_angstrom",
			Help:      "Best-fit RMSD of the evaluated pairs.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
		StageSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
	}
	for _, c := range []prometheus.Collector{M.PairsEvaluated, M.GeometryRejections, M.EnergyRejections, M.Discards, M.PairRMSD, M.StageSeconds} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("dedup: registering metrics: %w", err)
		}
	}
	return M, nil
}

func (M *Metrics) PairEvaluated(p similarity.Entry) {
	M.PairsEvaluated.Inc()
	M.PairRMSD.Observe(p.RMSD)
}

func (M *Metrics) GeometryRejected(_ similarity.Entry, list features.Kind) {
	M.GeometryRejections.WithLabelValues(list.String()).Inc()
}

func (M *Metrics) EnergyRejected(similarity.Entry) { M.EnergyRejections.Inc() }

func (M *Metrics) Discarded(similarity.Entry, string) { M.Discards.Inc() }
