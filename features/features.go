/*
 * features.go, part of confsieve.
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

// Package features computes the feature distance profile of a conformer: sorted
// lists of distances between atoms of the water and of the amide, which work as
// a cheap local fingerprint of how the water sits on the amide.
package features

import (
	"errors"
	"fmt"
	"sort"

	v3 "github.com/confsieve/confsieve/v3"
	"github.com/confsieve/confsieve/roles"
	"gonum.org/v1/gonum/mat"
)

// Kind identifies one of the distance lists of a Profile.
type Kind int

const (
	OwHa  Kind = iota //water oxygen - amide hydrogens
	HwNar             //water hydrogens - aromatic nitrogens
	HwNam             //water hydrogens - amide nitrogens
	HwOam             //water hydrogens - amide oxygens
)

// Kinds lists every Kind, in the order they are compared.
var Kinds = []Kind{OwHa, HwNar, HwNam, HwOam}

var kindNames = [...]string{
	OwHa:  "Ow-Ha",
	HwNar: "Hw-Nar",
	HwNam: "Hw-Nam",
	HwOam: "Hw-Oam",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Profile is the feature distance profile of a conformer. Each list is sorted
// in ascending order, and may be empty. A Profile is not changed after Extract returns it.
type Profile struct {
	lists [4][]float64
}

// NewProfile builds a profile from the four lists, sorting copies of them.
// It is mostly useful to build profiles by hand.
func NewProfile(owha, hwnar, hwnam, hwoam []float64) *Profile {
	p := new(Profile)
	for i, l := range [][]float64{owha, hwnar, hwnam, hwoam} {
		c := append([]float64{}, l...)
		sort.Float64s(c)
		p.lists[i] = c
	}
	return p
}

// List returns a copy of the list of kind k.
func (p *Profile) List(k Kind) []float64 {
	return append([]float64(nil), p.lists[k]...)
}

// Len returns the number of distances in the list of kind k.
func (p *Profile) Len(k Kind) int {
	return len(p.lists[k])
}

// Bounds returns the first (smallest) and last (largest) values of the list of kind k.
// It returns a *DegenerateProfileError if the list is empty.
func (p *Profile) Bounds(k Kind) (float64, float64, error) {
	l := p.lists[k]
	if len(l) == 0 {
		return 0, 0, &DegenerateProfileError{List: k, deco: []string{"Bounds"}}
	}
	return l[0], l[len(l)-1], nil
}

// DistanceMatrix returns the symmetric matrix of euclidean distances between
// all the atoms in coords.
func DistanceMatrix(coords *v3.Matrix) *mat.SymDense {
	n := coords.NVecs()
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d.SetSym(i, j, coords.Dist(i, j))
		}
	}
	return d
}

// Extract computes the feature distance profile for the conformer with coordinates coords
// and role sets s. The distance matrix is computed once, and the lists gathered from it
// using the indexes in s. If there are amide hydrogens but no water oxygen, it returns a
// *roles.MissingRoleError.
func Extract(coords *v3.Matrix, s roles.Sets) (*Profile, error) {
	n := coords.NVecs()
	for _, r := range []roles.Role{roles.WaterOxygen, roles.WaterHydrogen, roles.AmideOxygen, roles.AmideHydrogen, roles.AmideNitrogen, roles.AromaticNitrogen} {
		for _, i := range s.Get(r) {
			if i < 0 || i >= n {
				return nil, fmt.Errorf("features: %s index %d out of range for %d atoms", r, i, n)
			}
		}
	}
	d := DistanceMatrix(coords)
	p := new(Profile)
	if len(s.AmideH) > 0 {
		ow, err := s.WaterOxygen()
		if err != nil {
			var mre *roles.MissingRoleError
			if errors.As(err, &mre) {
				mre.Decorate("Extract")
			}
			return nil, err
		}
		p.lists[OwHa] = gather(d, []int{ow}, s.AmideH)
	} else {
		p.lists[OwHa] = []float64{}
	}
	p.lists[HwNar] = gather(d, s.WaterH, s.AromaticN)
	p.lists[HwNam] = gather(d, s.WaterH, s.AmideN)
	p.lists[HwOam] = gather(d, s.WaterH, s.AmideO)
	return p, nil
}

// gather returns the sorted distances between every atom in a and every atom in b.
func gather(d *mat.SymDense, a, b []int) []float64 {
	ret := make([]float64, 0, len(a)*len(b))
	for _, i := range a {
		for _, j := range b {
			ret = append(ret, d.At(i, j))
		}
	}
	sort.Float64s(ret)
	return ret
}

// DegenerateProfileError is returned when the first or last element of an empty
// distance list is needed.
type DegenerateProfileError struct {
	Conformer string
	List      Kind
	deco      []string
}

func (e *DegenerateProfileError) Error() string {
	if e.Conformer == "" {
		return fmt.Sprintf("empty %s distance list", e.List)
	}
	return fmt.Sprintf("conformer %s: empty %s distance list", e.Conformer, e.List)
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (e *DegenerateProfileError) Decorate(dec string) []string {
	if dec == "" {
		return e.deco
	}
	e.deco = append(e.deco, dec)
	return e.deco
}
