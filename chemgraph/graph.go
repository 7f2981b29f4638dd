/*
 * graph.go, part of confsieve.
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

package chemgraph

import (
	"sort"

	chem "github.com/confsieve/confsieve"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Atom is a chem.Atom that can be used as a node in a gonum graph.
type Atom struct {
	*chem.Atom
	idx int
}

// ID returns the node ID, the position of the atom in the graph's molecule.
func (A *Atom) ID() int64 {
	return int64(A.idx)
}

// AtID returns the ID field of the underlying chem.Atom.
func (A *Atom) AtID() int {
	return A.Atom.ID
}

// atomicNumber returns Z, or the atomic number for the symbol if Z was not filled.
func (A *Atom) atomicNumber() int {
	if A.Z != 0 {
		return A.Z
	}
	z, _ := chem.SymbolZ(A.Symbol)
	return z
}

// Bond is an undirected edge between two Atoms.
type Bond struct {
	*chem.Bond
	At1, At2 *Atom
}

func (B *Bond) From() graph.Node {
	return B.At1
}

func (B *Bond) To() graph.Node {
	return B.At2
}

// ReversedEdge returns a copy of B with the atoms swapped. B itself is not changed.
func (B *Bond) ReversedEdge() graph.Edge {
	return &Bond{Bond: B.Bond, At1: B.At2, At2: B.At1}
}

// Topology is the bond graph of a molecule. It implements gonum's graph.Undirected
// through the embedded simple.UndirectedGraph.
type Topology struct {
	*simple.UndirectedGraph
	atoms  []*Atom
	nbonds int
}

// TopologyFromChem builds the bond graph of mol. Node IDs are the positions of the
// atoms in mol, whatever their Index field says. mol is not modified, so graphs for
// the same molecule can be built concurrently. Bonds to atoms outside mol are ignored.
func TopologyFromChem(mol chem.Atomer) *Topology {
	T := &Topology{UndirectedGraph: simple.NewUndirectedGraph(), atoms: make([]*Atom, mol.Len())}
	pos := make(map[*chem.Atom]int, mol.Len())
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		pos[at] = i
		T.atoms[i] = &Atom{Atom: at, idx: i}
		T.AddNode(T.atoms[i])
	}
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		for _, b := range at.Bonds {
			j, ok := pos[b.Cross(at)]
			if !ok || j <= i {
				continue //each bond once, from its lowest-index atom
			}
			if T.HasEdgeBetween(int64(i), int64(j)) {
				continue
			}
			T.SetEdge(&Bond{Bond: b, At1: T.atoms[i], At2: T.atoms[j]})
			T.nbonds++
		}
	}
	return T
}

// Len returns the number of atoms in the graph.
func (T *Topology) Len() int {
	return len(T.atoms)
}

// NBonds returns the number of bonds in the graph.
func (T *Topology) NBonds() int {
	return T.nbonds
}

// Atom returns the ith atom of the graph. Panics if out of range.
func (T *Topology) Atom(i int) *Atom {
	return T.atoms[i]
}

// Neighbors returns the indexes of the atoms bonded to atom i, in ascending order.
func (T *Topology) Neighbors(i int) []int {
	nodes := T.From(int64(i))
	ret := make([]int, 0, nodes.Len())
	for nodes.Next() {
		ret = append(ret, int(nodes.Node().ID()))
	}
	sort.Ints(ret)
	return ret
}

// Degree returns the number of bonds of atom i.
func (T *Topology) Degree(i int) int {
	return T.From(int64(i)).Len()
}

// Bonded returns true if atoms i and j are bonded.
func (T *Topology) Bonded(i, j int) bool {
	return T.HasEdgeBetween(int64(i), int64(j))
}
