/*
 * iso.go, part of confsieve.
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
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Classes returns an invariant for each atom of T, obtained by iterative refinement
// (Weisfeiler-Lehman style) of the atomic number and degree of each atom with the
// sorted invariants of its neighbors. Atoms with different invariants can't be mapped
// onto each other by any graph isomorphism. Invariants are comparable between graphs.
func (T *Topology) Classes() []uint64 {
	n := T.Len()
	cur := make([]uint64, n)
	buf := make([]byte, 8)
	h := xxhash.New()
	for i := 0; i < n; i++ {
		h.Reset()
		binary.LittleEndian.PutUint64(buf, uint64(T.atoms[i].atomicNumber()))
		h.Write(buf)
		binary.LittleEndian.PutUint64(buf, uint64(T.Degree(i)))
		h.Write(buf)
		cur[i] = h.Sum64()
	}
	neigh := make([][]int, n)
	for i := range neigh {
		neigh[i] = T.Neighbors(i)
	}
	ndistinct := countDistinct(cur)
	//n rounds always suffice, usually it converges much faster.
	for round := 0; round < n; round++ {
		next := make([]uint64, n)
		for i := 0; i < n; i++ {
			nc := make([]uint64, 0, len(neigh[i]))
			for _, j := range neigh[i] {
				nc = append(nc, cur[j])
			}
			sort.Slice(nc, func(a, b int) bool { return nc[a] < nc[b] })
			h.Reset()
			binary.LittleEndian.PutUint64(buf, cur[i])
			h.Write(buf)
			for _, c := range nc {
				binary.LittleEndian.PutUint64(buf, c)
				h.Write(buf)
			}
			next[i] = h.Sum64()
		}
		nd := countDistinct(next)
		cur = next
		if nd == ndistinct {
			break
		}
		ndistinct = nd
	}
	return cur
}

func countDistinct(c []uint64) int {
	m := make(map[uint64]struct{}, len(c))
	for _, v := range c {
		m[v] = struct{}{}
	}
	return len(m)
}

// searchOrder returns the atoms of T in an order where, within each connected
// component, every atom after the first is bonded to an earlier one. Components start
// from their lowest-index atom.
func searchOrder(T *Topology) []int {
	n := T.Len()
	seen := make([]bool, n)
	order := make([]int, 0, n)
	for s := 0; s < n; s++ {
		if seen[s] {
			continue
		}
		seen[s] = true
		queue := []int{s}
		for len(queue) > 0 {
			a := queue[0]
			queue = queue[1:]
			order = append(order, a)
			for _, b := range T.Neighbors(a) {
				if !seen[b] {
					seen[b] = true
					queue = append(queue, b)
				}
			}
		}
	}
	return order
}

// Isomorphisms enumerates the bijections between the atoms of ref and those of test that
// keep atomic numbers and bonds. For each one, visit is called with a slice m where m[i] is
// the index in test of the atom mapped to the atom i of ref. The slice is reused between calls.
// The enumeration stops when visit returns false or after max mappings (no limit if max < 1).
// It returns the number of mappings visited.
func Isomorphisms(ref, test *Topology, max int, visit func(m []int) bool) int {
	n := ref.Len()
	if n != test.Len() || ref.NBonds() != test.NBonds() || n == 0 {
		return 0
	}
	rc := ref.Classes()
	tc := test.Classes()
	byClass := make(map[uint64][]int)
	for j, c := range tc {
		byClass[c] = append(byClass[c], j)
	}
	for _, c := range rc {
		if len(byClass[c]) == 0 {
			return 0
		}
	}
	order := searchOrder(ref)
	m := make([]int, n)
	for i := range m {
		m[i] = -1
	}
	used := make([]bool, n)
	refNeigh := make([][]int, n)
	for i := range refNeigh {
		refNeigh[i] = ref.Neighbors(i)
	}
	count := 0
	stop := false
	var rec func(k int)
	rec = func(k int) {
		if stop {
			return
		}
		if k == n {
			count++
			if !visit(m) || (max > 0 && count >= max) {
				stop = true
			}
			return
		}
		a := order[k]
		var cands []int
		anchor := -1
		for _, b := range refNeigh[a] {
			if m[b] >= 0 {
				anchor = b
				break
			}
		}
		if anchor >= 0 {
			cands = test.Neighbors(m[anchor])
		} else {
			cands = byClass[rc[a]]
		}
	candidates:
		for _, c := range cands {
			if used[c] || tc[c] != rc[a] {
				continue
			}
			for _, b := range refNeigh[a] {
				if m[b] >= 0 && !test.Bonded(c, m[b]) {
					continue candidates
				}
			}
			m[a] = c
			used[c] = true
			rec(k + 1)
			m[a] = -1
			used[c] = false
			if stop {
				return
			}
		}
	}
	rec(0)
	return count
}

// Equivalent returns true if ref and test have the same bond graph up to
// a renumbering of the atoms.
func Equivalent(ref, test *Topology) bool {
	return Isomorphisms(ref, test, 1, func([]int) bool { return false }) > 0
}
