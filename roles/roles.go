/*
 * roles.go, part of confsieve.
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

/*Package roles classifies the atoms of a water-amide complex into the
functional roles used to compare conformers: water oxygen and hydrogens,
amide oxygen, hydrogen and nitrogen, and aromatic nitrogen.

Classification only looks at the element of each atom and the elements of its
bonded neighbors, so it is a pure function of the topology.*/
package roles

import (
	"fmt"

	chem "github.com/confsieve/confsieve"
)

const (
	zH = 1
	zC = 6
	zN = 7
	zO = 8
)

// Role identifies one of the atom role sets.
type Role int

const (
	WaterOxygen Role = iota
	WaterHydrogen
	AmideOxygen
	AmideHydrogen
	AmideNitrogen
	AromaticNitrogen
)

var roleNames = [...]string{
	WaterOxygen:      "water-oxygen",
	WaterHydrogen:    "water-hydrogen",
	AmideOxygen:      "amide-oxygen",
	AmideHydrogen:    "amide-hydrogen",
	AmideNitrogen:    "amide-nitrogen",
	AromaticNitrogen: "aromatic-nitrogen",
}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// Sets holds the atom indexes, in ascending order, of each role in one conformer.
// A role with no atoms has an empty set.
type Sets struct {
	WaterO    []int
	WaterH    []int
	AmideO    []int
	AmideH    []int
	AmideN    []int
	AromaticN []int
}

// Get returns the index set for role r.
func (s Sets) Get(r Role) []int {
	switch r {
	case WaterOxygen:
		return s.WaterO
	case WaterHydrogen:
		return s.WaterH
	case AmideOxygen:
		return s.AmideO
	case AmideHydrogen:
		return s.AmideH
	case AmideNitrogen:
		return s.AmideN
	case AromaticNitrogen:
		return s.AromaticN
	}
	return nil
}

// WaterOxygen returns the index of the water oxygen. When several atoms qualify,
// the last one wins. It returns a *MissingRoleError if there is none.
func (s Sets) WaterOxygen() (int, error) {
	if len(s.WaterO) == 0 {
		return -1, &MissingRoleError{Role: WaterOxygen, deco: []string{"WaterOxygen"}}
	}
	return s.WaterO[len(s.WaterO)-1], nil
}

// Classify returns the role sets of the atoms in mol. Atoms that match no rule are
// left out. "Every neighbor" is vacuously true for an atom without bonds, so an
// isolated O or H is taken as water, and an isolated N as aromatic.
func Classify(mol chem.Atomer) Sets {
	s := Sets{
		WaterO:    []int{},
		WaterH:    []int{},
		AmideO:    []int{},
		AmideH:    []int{},
		AmideN:    []int{},
		AromaticN: []int{},
	}
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		switch atomicNumber(at) {
		case zO:
			if allNeighbors(at, zH) {
				s.WaterO = append(s.WaterO, i)
			} else {
				s.AmideO = append(s.AmideO, i)
			}
		case zH:
			if allNeighbors(at, zO) {
				s.WaterH = append(s.WaterH, i)
			} else if allNeighbors(at, zN) {
				s.AmideH = append(s.AmideH, i)
			}
		case zN:
			if allNeighbors(at, zC) {
				s.AromaticN = append(s.AromaticN, i)
			} else {
				s.AmideN = append(s.AmideN, i)
			}
		}
	}
	return s
}

func allNeighbors(at *chem.Atom, z int) bool {
	for _, n := range at.Neighbors() {
		if atomicNumber(n) != z {
			return false
		}
	}
	return true
}

// atomicNumber falls back to the symbol when Z was not filled.
func atomicNumber(at *chem.Atom) int {
	if at.Z != 0 {
		return at.Z
	}
	z, _ := chem.SymbolZ(at.Symbol)
	return z
}

// MissingRoleError is returned when an operation needs an atom of a role
// the conformer doesn't have.
type MissingRoleError struct {
	Conformer string
	Role      Role
	deco      []string
}

func (e *MissingRoleError) Error() string {
	if e.Conformer == "" {
		return fmt.Sprintf("no %s atom found", e.Role)
	}
	return fmt.Sprintf("conformer %s: no %s atom found", e.Conformer, e.Role)
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (e *MissingRoleError) Decorate(dec string) []string {
	if dec == "" {
		return e.deco
	}
	e.deco = append(e.deco, dec)
	return e.deco
}
