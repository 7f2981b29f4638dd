/*
 * align.go, part of confsieve.
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

/*Package align superimposes the conformers of an ensemble onto its lowest-energy
conformer. The superposition can be restricted to a core of atoms, and iteratively
refined to the atoms that actually overlap, in the spirit of the LOVO procedure.*/
package align

import (
	"context"
	"fmt"
	"sort"

	chem "github.com/confsieve/confsieve"
	"github.com/confsieve/confsieve/ensemble"
	v3 "github.com/confsieve/confsieve/v3"
	"golang.org/x/sync/errgroup"
)

// Aligned is one superimposed conformer.
type Aligned struct {
	*ensemble.Conformer         //a copy of the original, with the superimposed coordinates
	Set                 []int   //atoms used in the final superposition
	RMSD                float64 //over Set
}

// Return contains the results of ToLowest.
type Return struct {
	Reference string
	Aligned   []*Aligned //in ensemble order
}

// String returns one line per conformer with its name, RMSD to the reference and
// number of atoms superimposed.
func (R *Return) String() string {
	s := fmt.Sprintf("reference: %s\n", R.Reference)
	for _, a := range R.Aligned {
		s += fmt.Sprintf("%-20s %8.4f %4d\n", a.Name, a.RMSD, len(a.Set))
	}
	return s
}

// Conformers returns the aligned conformers.
func (R *Return) Conformers() []*ensemble.Conformer {
	ret := make([]*ensemble.Conformer, len(R.Aligned))
	for i, a := range R.Aligned {
		ret[i] = a.Conformer
	}
	return ret
}

// ToLowest superimposes copies of all the conformers in ens onto the one with the lowest
// energy. The conformers in ens are not modified.
func ToLowest(ctx context.Context, ens *ensemble.Ensemble, o *Options) (*Return, error) {
	if o == nil {
		o = DefaultOptions()
	}
	low, err := ens.LowestEnergy()
	if err != nil {
		return nil, fmt.Errorf("align: %w", err)
	}
	base, err := selection(low.Mol, o)
	if err != nil {
		return nil, err
	}
	ref := low.Coords()
	confs := ens.Conformers()
	ret := &Return{Reference: low.Name, Aligned: make([]*Aligned, len(confs))}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Cpus())
	for i, c := range confs {
		i, c := i, c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := alignOne(c, ref, base, o)
			if err != nil {
				return fmt.Errorf("align: conformer %s: %w", c.Name, err)
			}
			ret.Aligned[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ret, nil
}

// selection returns the atoms of mol that can take part in the superposition.
func selection(mol *chem.Molecule, o *Options) ([]int, error) {
	var idx []int
	if core := o.Core(); len(core) > 0 {
		for _, i := range core {
			if i < 0 || i >= mol.Len() {
				return nil, fmt.Errorf("align: core atom %d out of range", i)
			}
		}
		idx = append(idx, core...)
	} else {
		idx = make([]int, mol.Len())
		for i := range idx {
			idx[i] = i
		}
	}
	if !o.NoHydrogens() {
		return idx, nil
	}
	ret := idx[:0]
	for _, i := range idx {
		if mol.Atom(i).Symbol != "H" {
			ret = append(ret, i)
		}
	}
	if len(ret) < 3 {
		return nil, fmt.Errorf("align: only %d atoms to superimpose", len(ret))
	}
	return ret, nil
}

func alignOne(c *ensemble.Conformer, ref *v3.Matrix, base []int, o *Options) (*Aligned, error) {
	mol := c.Mol.Copy()
	coords := mol.Coords[0]
	set := base
	if _, err := chem.Super(coords, ref, set, set); err != nil {
		return nil, err
	}
	if o.LessThanRMSD() > 0 {
		for iter := 0; iter < o.MaxIter(); iter++ {
			next := overlapping(coords, ref, base, o.LessThanRMSD(), o.MinimumN())
			if sameElements(next, set) {
				break
			}
			set = next
			if _, err := chem.Super(coords, ref, set, set); err != nil {
				return nil, err
			}
		}
	}
	rmsd, err := chem.RMSD(coords, ref, set)
	if err != nil {
		return nil, err
	}
	return &Aligned{
		Conformer: &ensemble.Conformer{Name: c.Name, Mol: mol, Energy: c.Energy},
		Set:       append([]int(nil), set...),
		RMSD:      rmsd,
	}, nil
}

// overlapping returns the atoms in base that deviate less than cutoff between test
// and ref, or the minimumN least deviating ones, if fewer than that qualify.
// The result is sorted.
func overlapping(test, ref *v3.Matrix, base []int, cutoff float64, minimumN int) []int {
	type dev struct {
		i int
		d float64
	}
	devs := make([]dev, len(base))
	for k, i := range base {
		diff := v3.Zeros(1)
		diff.Sub(test.VecView(i), ref.VecView(i))
		devs[k] = dev{i, diff.VecNorm(0)}
	}
	sort.SliceStable(devs, func(a, b int) bool { return devs[a].d < devs[b].d })
	var ret []int
	for k, d := range devs {
		if d.d >= cutoff && k >= minimumN {
			break
		}
		ret = append(ret, d.i)
	}
	sort.Ints(ret)
	return ret
}

func sameElements(t1, t2 []int) bool {
	if len(t1) != len(t2) {
		return false
	}
	in := make(map[int]bool, len(t1))
	for _, v := range t1 {
		in[v] = true
	}
	for _, v := range t2 {
		if !in[v] {
			return false
		}
	}
	return true
}
