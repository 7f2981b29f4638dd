/*
 * dedup.go, part of confsieve.
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

/*Package dedup decides which conformers of an ensemble are near-duplicates of a
lower-energy conformer and should be discarded.

A pair of conformers is a duplicate when their best-fit RMSD is below the similarity
threshold, the four intermolecular distance profiles of both agree at their
minimum and maximum within the distance threshold, and their energies differ by less
than the energy threshold. The higher-energy member of each duplicate pair is
discarded.*/
package dedup

import (
	"fmt"
	"math"

	"github.com/confsieve/confsieve/ensemble"
	"github.com/confsieve/confsieve/features"
	"github.com/confsieve/confsieve/similarity"
)

// Thresholds are the calibration knobs of the duplicate search. All comparisons against them are strict.
type Thresholds struct {
	Similarity float64 `json:"similarity"` //best-fit RMSD, A
	Energy     float64 `json:"energy"`     //kcal/mol
	Distance   float64 `json:"distance"`   //A
}

// DefaultThresholds returns 1.0 A, 5.0 kcal/mol and 1.0 A.
func DefaultThresholds() Thresholds {
	return Thresholds{Similarity: 1.0, Energy: 5.0, Distance: 1.0}
}

// Validate returns an error if a threshold is not a positive, finite number.
func (t Thresholds) Validate() error {
	for _, v := range []struct {
		name string
		val  float64
	}{{"similarity", t.Similarity}, {"energy", t.Energy}, {"distance", t.Distance}} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) || v.val <= 0 {
			return fmt.Errorf("dedup: invalid %s threshold %v", v.name, v.val)
		}
	}
	return nil
}

// DiscardList is the ordered list of conformers flagged for removal. A name appears
// once per pair that flagged it.
type DiscardList []string

// Unique returns the names in the list without repetitions, in order of first appearance.
func (D DiscardList) Unique() []string {
	seen := make(map[string]bool, len(D))
	ret := make([]string, 0, len(D))
	for _, n := range D {
		if !seen[n] {
			seen[n] = true
			ret = append(ret, n)
		}
	}
	return ret
}

// Contains returns true if name is in the list.
func (D DiscardList) Contains(name string) bool {
	for _, n := range D {
		if n == name {
			return true
		}
	}
	return false
}

// Observer is notified of each decision taken by FindDuplicates.
type Observer interface {
	PairEvaluated(p similarity.Entry)
	GeometryRejected(p similarity.Entry, list features.Kind)
	EnergyRejected(p similarity.Entry)
	Discarded(p similarity.Entry, name string)
}

// Counts is an Observer that counts decisions.
type Counts struct {
	Evaluated          int
	GeometryRejections int
	EnergyRejections   int
	Discards           int
}

func (C *Counts) PairEvaluated(similarity.Entry)                   { C.Evaluated++ }
func (C *Counts) GeometryRejected(similarity.Entry, features.Kind) { C.GeometryRejections++ }
func (C *Counts) EnergyRejected(similarity.Entry)                  { C.EnergyRejections++ }
func (C *Counts) Discarded(similarity.Entry, string)               { C.Discards++ }

// FindDuplicates scans pairs, which must be sorted by increasing RMSD, and returns the
// names of the higher-energy member of every duplicate pair. The scan stops at the first
// pair with an RMSD not below th.Similarity. When both energies are equal, the first member of the
// pair is discarded. It returns a *MissingDataError if a conformer of an evaluated pair has
// no energy or no profile, and a *features.DegenerateProfileError if one of its distance lists is empty.
func FindDuplicates(pairs []similarity.Entry, energies map[string]float64, profiles map[string]*features.Profile, th Thresholds, obs ...Observer) (DiscardList, error) {
	var ret DiscardList
	for _, p := range pairs {
		if p.RMSD >= th.Similarity {
			break
		}
		for _, o := range obs {
			o.PairEvaluated(p)
		}
		e1, b1, err := dataOf(p.A, energies, profiles)
		if err != nil {
			return nil, err
		}
		e2, b2, err := dataOf(p.B, energies, profiles)
		if err != nil {
			return nil, err
		}
		if k, ok := sameGeometry(b1, b2, th.Distance); !ok {
			for _, o := range obs {
				o.GeometryRejected(p, k)
			}
			continue
		}
		if math.Abs(e1-e2) >= th.Energy {
			for _, o := range obs {
				o.EnergyRejected(p)
			}
			continue
		}
		discard := p.A
		if e1 < e2 {
			discard = p.B
		}
		ret = append(ret, discard)
		for _, o := range obs {
			o.Discarded(p, discard)
		}
	}
	return ret, nil
}

// bounds holds the first and last element of each distance list of a profile.
type bounds [4][2]float64

// dataOf returns the energy and profile bounds of the conformer name.
func dataOf(name string, energies map[string]float64, profiles map[string]*features.Profile) (float64, *bounds, error) {
	e, ok := energies[name]
	if !ok {
		return 0, nil, &MissingDataError{Conformer: name, What: "energy", deco: []string{"FindDuplicates"}}
	}
	p, ok := profiles[name]
	if !ok || p == nil {
		return 0, nil, &MissingDataError{Conformer: name, What: "distance profile", deco: []string{"FindDuplicates"}}
	}
	b := new(bounds)
	for i, k := range features.Kinds {
		lo, hi, err := p.Bounds(k)
		if err != nil {
			if dpe, ok := err.(*features.DegenerateProfileError); ok {
				dpe.Conformer = name
				dpe.Decorate("FindDuplicates")
			}
			return 0, nil, err
		}
		b[i] = [2]float64{lo, hi}
	}
	return e, b, nil
}

// sameGeometry returns true if the minimum and maximum of every list of b1 and b2
// differ by less than tol. Otherwise, it also returns the first list that failed.
func sameGeometry(b1, b2 *bounds, tol float64) (features.Kind, bool) {
	for i, k := range features.Kinds {
		if math.Abs(b1[i][0]-b2[i][0]) >= tol || math.Abs(b1[i][1]-b2[i][1]) >= tol {
			return k, false
		}
	}
	return 0, true
}

// Apply splits confs into the kept and the discarded ones, keeping the input order.
// A conformer in discards is discarded regardless of how many pairs flagged it.
func Apply(confs []*ensemble.Conformer, discards DiscardList) (kept, discarded []*ensemble.Conformer) {
	out := make(map[string]bool, len(discards))
	for _, n := range discards {
		out[n] = true
	}
	for _, c := range confs {
		if out[c.Name] {
			discarded = append(discarded, c)
		} else {
			kept = append(kept, c)
		}
	}
	return kept, discarded
}

// MissingDataError is returned when a conformer lacks the energy or the distance
// profile needed to decide on one of its pairs.
type MissingDataError struct {
	Conformer string
	What      string
	deco      []string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("dedup: conformer %s: no %s", e.Conformer, e.What)
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (e *MissingDataError) Decorate(dec string) []string {
	if dec == "" {
		return e.deco
	}
	e.deco = append(e.deco, dec)
	return e.deco
}
