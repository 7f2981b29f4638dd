/*
 * chem.go, part of confsieve.
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

package chem

import (
	"fmt"
	"sort"
	"strings"

	v3 "github.com/confsieve/confsieve/v3"
)

/**Note: Many functions here panic instead of returning errors. This is because they are "fundamental"
 * functions. If something goes wrong here, the program is most likely wrong and should
 * crash. Most panics are related to using the function on a nil object or trying to access out-of bounds
 * fields**/

// Atom contains the information of an atom, except for the coordinates,
// which live in the Coords field of a Molecule.
type Atom struct {
	Name    string
	ID      int //the number of the atom in the file it was read from, usually 1-based.
	Index   int //the position of the atom in its Topology, 0-based. Filled by FillIndexes.
	MolName string
	MolID   int
	Mass    float64
	Charge  float64
	Symbol  string
	Z       int //atomic number
	Bonds   []*Bond
}

//Atom methods

// Copy returns a copy of the Atom object. Bonds are not copied,
// as they point to other atoms.
func (N *Atom) Copy() *Atom {
	if N == nil {
		panic(ErrNilData)
	}
	return &Atom{
		Name:    N.Name,
		ID:      N.ID,
		Index:   N.Index,
		MolName: N.MolName,
		MolID:   N.MolID,
		Mass:    N.Mass,
		Charge:  N.Charge,
		Symbol:  N.Symbol,
		Z:       N.Z,
	}
}

// Neighbors returns the atoms bonded to N, in the order the bonds were added.
func (N *Atom) Neighbors() []*Atom {
	ret := make([]*Atom, 0, len(N.Bonds))
	for _, b := range N.Bonds {
		ret = append(ret, b.Cross(N))
	}
	return ret
}

/*****Topology type***/

// Topology contains information about a molecule which is not expected to change in time (i.e. everything except for coordinates)
type Topology struct {
	Atoms  []*Atom
	charge int
	multi  int
}

// NewTopology returns a topology with charge charge and multiplicity multi,
// holding the atoms in ats, if given.
func NewTopology(charge, multi int, ats ...[]*Atom) *Topology {
	top := new(Topology)
	if len(ats) > 0 && ats[0] != nil {
		top.Atoms = ats[0]
	} else {
		top.Atoms = make([]*Atom, 0)
	}
	top.charge = charge
	top.multi = multi
	return top
}

/*Topology methods*/

// Charge gets the total charge of the topology
func (T *Topology) Charge() int {
	return T.charge
}

// Multi returns the multiplicity in the topology
func (T *Topology) Multi() int {
	return T.multi
}

// SetCharge sets the total charge of the topology to i
func (T *Topology) SetCharge(i int) {
	T.charge = i
}

// SetMulti sets the multiplicity in the topology to i
func (T *Topology) SetMulti(i int) {
	T.multi = i
}

// FillIndexes sets the Index value of each atom to that corresponding to its
// place in the molecule.
func (T *Topology) FillIndexes() {
	for key, val := range T.Atoms {
		val.Index = key
	}
}

// FillElementData fills the atomic number and the mass of each atom from
// its symbol, normalizing the symbol's capitalization. It returns an error
// naming the first unknown element.
func (T *Topology) FillElementData() error {
	for i, at := range T.Atoms {
		at.Symbol = NormalizeSymbol(at.Symbol)
		z, ok := symbolZ[at.Symbol]
		if !ok {
			return newCError("FillElementData", "Unknown element %q for atom %d", at.Symbol, i)
		}
		at.Z = z
		if at.Mass == 0 {
			at.Mass = symbolMass[at.Symbol]
		}
	}
	return nil
}

// CopyAtoms replaces the atoms of T with copies of the atoms of A,
// including the bonds between them. The charge and multiplicity of A are
// copied if it implements AtomMultiCharger.
func (T *Topology) CopyAtoms(A Atomer) {
	n := A.Len()
	T.Atoms = make([]*Atom, n)
	pos := make(map[*Atom]int, n)
	for i := 0; i < n; i++ {
		at := A.Atom(i)
		pos[at] = i
		T.Atoms[i] = at.Copy()
		T.Atoms[i].Index = i
	}
	for i := 0; i < n; i++ {
		at := A.Atom(i)
		for _, b := range at.Bonds {
			if b.At1 != at {
				continue //each bond is copied once, from its first atom.
			}
			j, ok := pos[b.At2]
			if !ok {
				continue //bond to an atom outside A.
			}
			nb := &Bond{Index: b.Index, At1: T.Atoms[i], At2: T.Atoms[j], Dist: b.Dist, Order: b.Order}
			T.Atoms[i].Bonds = append(T.Atoms[i].Bonds, nb)
			T.Atoms[j].Bonds = append(T.Atoms[j].Bonds, nb)
		}
	}
	if mc, ok := A.(AtomMultiCharger); ok {
		T.charge = mc.Charge()
		T.multi = mc.Multi()
	}
}

// Atom returns the Atom corresponding to the index i
// of the Atom slice in the Topology. Panics if
// out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() || i < 0 {
		panic(ErrAtomOutOfRange)
	}
	return T.Atoms[i]
}

// AppendAtom appends an atom at the end of the reference
func (T *Topology) AppendAtom(at *Atom) {
	T.Atoms = append(T.Atoms, at)
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

// Masses returns a slice of float64 with the masses of the atoms in the topology, or nil and an error if they have not been calculated
func (T *Topology) Masses() ([]float64, error) {
	mass := make([]float64, T.Len())
	for i := 0; i < T.Len(); i++ {
		thisatom := T.Atom(i)
		if thisatom.Mass == 0 {
			return nil, newCError("Masses", "Not all the masses have been obtained: %d %v", i, thisatom)
		}
		mass[i] = thisatom.Mass
	}
	return mass, nil
}

// Bonds returns every bond in the topology once, ordered by bond Index.
func (T *Topology) Bonds() []*Bond {
	ret := make([]*Bond, 0, T.Len())
	for _, at := range T.Atoms {
		for _, b := range at.Bonds {
			if b.At1 == at {
				ret = append(ret, b)
			}
		}
	}
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Index < ret[j].Index })
	return ret
}

// AddBond bonds the atoms i and j with the given order and returns the new bond.
// The bond gets the next free bond index.
func (T *Topology) AddBond(i, j int, order float64) *Bond {
	if i == j {
		panic(ErrAtomOutOfRange)
	}
	next := 0
	for _, b := range T.Bonds() {
		if b.Index >= next {
			next = b.Index + 1
		}
	}
	at1, at2 := T.Atom(i), T.Atom(j)
	b := &Bond{Index: next, At1: at1, At2: at2, Order: order}
	at1.Bonds = append(at1.Bonds, b)
	at2.Bonds = append(at2.Bonds, b)
	return b
}

/**Type Molecule**/

// Molecule contains all the info for a molecule in many states. The info that is expected to change between states,
// Coordinates, is stored separately from other atomic info. Properties read from the
// file (e.g. SD data items) are kept in Props, with the original key case.
type Molecule struct {
	*Topology
	Coords   []*v3.Matrix
	Title    string
	Comments []string          //one per frame, when the format has them.
	Props    map[string]string //data items of the record.
	Trailer  []string          //untagged lines between the end of the connection table and the next record.
}

// NewMolecule makes a molecule with ats atoms, coords coordinates, and returns it.
// It returns error if the number of atoms and coordinates don't match.
func NewMolecule(coords []*v3.Matrix, ats AtomMultiCharger) (*Molecule, error) {
	if ats == nil {
		return nil, newCError("NewMolecule", "Supplied a nil Topology")
	}
	mol := new(Molecule)
	if top, ok := ats.(*Topology); ok {
		mol.Topology = top
	} else {
		mol.Topology = NewTopology(ats.Charge(), ats.Multi())
		for i := 0; i < ats.Len(); i++ {
			mol.Atoms = append(mol.Atoms, ats.Atom(i))
		}
	}
	mol.Coords = coords
	mol.Props = make(map[string]string)
	if err := mol.Corrupted(); err != nil {
		return nil, errDecorate(err, "NewMolecule")
	}
	return mol, nil
}

//The molecule methods:

// Copy returns a deep copy of the molecule, bonds and coordinates included.
func (M *Molecule) Copy() *Molecule {
	if err := M.Corrupted(); err != nil {
		panic(err.Error())
	}
	mol := new(Molecule)
	mol.Topology = new(Topology)
	mol.CopyAtoms(M.Topology)
	mol.Coords = make([]*v3.Matrix, 0, len(M.Coords))
	for _, val := range M.Coords {
		mol.Coords = append(mol.Coords, v3.Clone(val))
	}
	mol.Title = M.Title
	mol.Comments = append([]string(nil), M.Comments...)
	mol.Trailer = append([]string(nil), M.Trailer...)
	mol.Props = make(map[string]string, len(M.Props))
	for k, v := range M.Props {
		mol.Props[k] = v
	}
	return mol
}

// AddFrame appends the matrix of coordinates newframe at the end of the Coords.
// It panics if the number of coordinates doesn't match the number of atoms.
func (M *Molecule) AddFrame(newframe *v3.Matrix) {
	if newframe == nil {
		panic(ErrNilFrame)
	}
	if M.Len() != newframe.NVecs() {
		panic(ErrInconsistentData)
	}
	M.Coords = append(M.Coords, newframe)
}

// Coord returns a view of the coordinates of the atom atom in the frame frame.
// panics if frame or atom are out of range.
func (M *Molecule) Coord(atom, frame int) *v3.Matrix {
	if frame >= len(M.Coords) || frame < 0 {
		panic(ErrFrameOutOfRange)
	}
	if atom >= M.Coords[frame].NVecs() || atom < 0 {
		panic(ErrAtomOutOfRange)
	}
	return M.Coords[frame].VecView(atom)
}

// Corrupted checks whether the molecule is corrupted, i.e. the
// coordinates don't match the number of atoms.
func (M *Molecule) Corrupted() error {
	if M.Topology == nil {
		return newCError("Corrupted", "Molecule without topology")
	}
	for i := range M.Coords {
		if M.Coords[i] == nil {
			return newCError("Corrupted", "Nil coordinates in frame %d", i)
		}
		if M.Len() != M.Coords[i].NVecs() {
			return newCError("Corrupted", "Inconsistent coordinates/atoms in frame %d: Atoms %d, coords: %d", i, M.Len(), M.Coords[i].NVecs())
		}
	}
	return nil
}

// LenFrames returns the number of frames in the molecule
func (M *Molecule) LenFrames() int {
	return len(M.Coords)
}

// Prop returns the value of the property key. Keys are matched without regard to case.
func (M *Molecule) Prop(key string) (string, bool) {
	if v, ok := M.Props[key]; ok {
		return v, true
	}
	for k, v := range M.Props {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// SetProp sets the property key to value.
func (M *Molecule) SetProp(key, value string) {
	if M.Props == nil {
		M.Props = make(map[string]string)
	}
	M.Props[key] = value
}

// String returns a short description of the molecule.
func (M *Molecule) String() string {
	return fmt.Sprintf("Molecule %q: %d atoms, %d frames", M.Title, M.Len(), M.LenFrames())
}
