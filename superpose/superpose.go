/*
 * superpose.go, part of confsieve.
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

/*Package superpose provides the best-fit RMSD between two conformers: the smallest
RMSD over every chemically equivalent correspondence of their atoms, each after an
optimal rigid superposition (rotation and translation only).*/
package superpose

import (
	"fmt"
	"math"

	chem "github.com/confsieve/confsieve"
	"github.com/confsieve/confsieve/chemgraph"
	v3 "github.com/confsieve/confsieve/v3"
)

// DefaultMaxMatches caps the atom correspondences tried by BestFit.
const DefaultMaxMatches = 1000000

// Superposer returns the RMSD between test and ref after the best rigid superposition.
// If atomMap is given, atomMap[0][k] = {i, j} pairs atom i of test with atom j of ref,
// and only that correspondence is used.
type Superposer interface {
	BestRMSD(test, ref *chem.Molecule, atomMap ...[][2]int) (float64, error)
}

// Func adapts a function to the Superposer interface.
type Func func(test, ref *chem.Molecule, atomMap ...[][2]int) (float64, error)

func (f Func) BestRMSD(test, ref *chem.Molecule, atomMap ...[][2]int) (float64, error) {
	return f(test, ref, atomMap...)
}

// BestFit is the default Superposer. Without an atom map it tries every mapping of the
// atoms of test onto those of ref that keeps elements and bonds, and keeps the smallest RMSD.
// Only the first frame of each molecule is used. A BestFit is safe for concurrent use.
type BestFit struct {
	MaxMatches int //0 means DefaultMaxMatches.
}

// NewBestFit returns a BestFit with the default settings.
func NewBestFit() *BestFit {
	return &BestFit{MaxMatches: DefaultMaxMatches}
}

// BestRMSD implements Superposer.
func (B *BestFit) BestRMSD(test, ref *chem.Molecule, atomMap ...[][2]int) (float64, error) {
	if test == nil || ref == nil || test.LenFrames() == 0 || ref.LenFrames() == 0 {
		return 0, &Error{msg: "molecule without coordinates", deco: []string{"BestRMSD"}}
	}
	if test.Len() != ref.Len() {
		return 0, &Error{msg: fmt.Sprintf("atom count mismatch: %d and %d", test.Len(), ref.Len()), deco: []string{"BestRMSD"}}
	}
	tc, rc := test.Coords[0], ref.Coords[0]
	if len(atomMap) > 0 && atomMap[0] != nil {
		r, err := mappedRMSD(test, ref, atomMap[0])
		return r, decorate(err, "BestRMSD")
	}
	max := B.MaxMatches
	if max <= 0 {
		max = DefaultMaxMatches
	}
	rg := chemgraph.TopologyFromChem(ref.Topology)
	tg := chemgraph.TopologyFromChem(test.Topology)
	best := math.Inf(1)
	var ferr error
	tsel := v3.Zeros(test.Len())
	n := chemgraph.Isomorphisms(rg, tg, max, func(m []int) bool {
		//m[i] is the test atom mapped on ref atom i.
		tsel.SomeVecs(tc, m)
		r, err := chem.SuperRMSD(tsel, rc, nil, nil)
		if err != nil {
			ferr = err
			return false
		}
		if r < best {
			best = r
		}
		return true
	})
	if ferr != nil {
		return 0, decorate(ferr, "BestRMSD")
	}
	if n == 0 {
		return 0, &Error{msg: "no correspondence between the atoms of the molecules: different elements or bonds", deco: []string{"BestRMSD"}}
	}
	if math.IsNaN(best) || math.IsInf(best, 0) {
		return 0, &Error{msg: "non-finite RMSD", deco: []string{"BestRMSD"}}
	}
	return best, nil
}

func mappedRMSD(test, ref *chem.Molecule, amap [][2]int) (float64, error) {
	if len(amap) == 0 {
		return 0, &Error{msg: "empty atom map", deco: []string{"mappedRMSD"}}
	}
	tl := make([]int, len(amap))
	rl := make([]int, len(amap))
	for k, p := range amap {
		if p[0] < 0 || p[0] >= test.Len() || p[1] < 0 || p[1] >= ref.Len() {
			return 0, &Error{msg: fmt.Sprintf("atom map pair %d (%d,%d) out of range", k, p[0], p[1]), deco: []string{"mappedRMSD"}}
		}
		if atomicNumber(test.Atom(p[0])) != atomicNumber(ref.Atom(p[1])) {
			return 0, &Error{msg: fmt.Sprintf("atom map pair %d maps %s onto %s", k, test.Atom(p[0]).Symbol, ref.Atom(p[1]).Symbol), deco: []string{"mappedRMSD"}}
		}
		tl[k], rl[k] = p[0], p[1]
	}
	r, err := chem.SuperRMSD(test.Coords[0], ref.Coords[0], tl, rl)
	if err != nil {
		return 0, decorate(err, "mappedRMSD")
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, &Error{msg: "non-finite RMSD", deco: []string{"mappedRMSD"}}
	}
	return r, nil
}

func atomicNumber(at *chem.Atom) int {
	if at.Z != 0 {
		return at.Z
	}
	z, _ := chem.SymbolZ(at.Symbol)
	return z
}

// Error is returned when the RMSD can't be computed.
type Error struct {
	msg  string
	deco []string
}

func (err *Error) Error() string { return "superpose: " + err.msg }

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err *Error) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

func decorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(chem.Error); ok {
		e.Decorate(caller)
		return e
	}
	return err
}
