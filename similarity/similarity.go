/*
 * similarity.go, part of confsieve.
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

/*Package similarity builds the pairwise similarity matrix of a conformer ensemble:
the best-fit RMSD for every unordered pair of distinct conformers, each pair computed once.*/
package similarity

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/confsieve/confsieve/ensemble"
	"github.com/confsieve/confsieve/superpose"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Key identifies an unordered pair of conformers. In a Matrix, A is always the
// conformer that came first in the input.
type Key struct {
	A, B string
}

// Entry is one element of the matrix.
type Entry struct {
	Key
	RMSD float64
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %s %.6f", e.A, e.B, e.RMSD)
}

// Matrix maps each unordered pair of conformer names to their best-fit RMSD.
// It never holds self pairs, nor both (a,b) and (b,a).
type Matrix struct {
	names   []string
	entries []Entry
	index   map[Key]int
}

// NewMatrix returns an empty matrix for the conformers in names.
func NewMatrix(names []string) (*Matrix, error) {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return nil, fmt.Errorf("similarity: duplicate conformer name %q", n)
		}
		seen[n] = true
	}
	n := len(names)
	return &Matrix{
		names:   append([]string(nil), names...),
		entries: make([]Entry, 0, n*(n-1)/2),
		index:   make(map[Key]int, n*(n-1)/2),
	}, nil
}

// Set stores the RMSD for the pair a, b. If the pair, in any order, is already
// in the matrix, its value is replaced. It returns an error for self pairs.
func (M *Matrix) Set(a, b string, rmsd float64) error {
	if a == b {
		return fmt.Errorf("similarity: self pair %q", a)
	}
	if i, ok := M.lookup(a, b); ok {
		M.entries[i].RMSD = rmsd
		return nil
	}
	k := Key{a, b}
	M.index[k] = len(M.entries)
	M.entries = append(M.entries, Entry{Key: k, RMSD: rmsd})
	return nil
}

func (M *Matrix) lookup(a, b string) (int, bool) {
	if i, ok := M.index[Key{a, b}]; ok {
		return i, true
	}
	i, ok := M.index[Key{b, a}]
	return i, ok
}

// Get returns the RMSD between a and b, which doesn't depend on the order of the arguments.
func (M *Matrix) Get(a, b string) (float64, bool) {
	i, ok := M.lookup(a, b)
	if !ok {
		return 0, false
	}
	return M.entries[i].RMSD, true
}

// Len returns the number of pairs in the matrix.
func (M *Matrix) Len() int {
	return len(M.entries)
}

// Names returns the conformer names the matrix was built for.
func (M *Matrix) Names() []string {
	return append([]string(nil), M.names...)
}

// Entries returns a copy of the entries, in the order the pairs were enumerated.
func (M *Matrix) Entries() []Entry {
	return append([]Entry(nil), M.entries...)
}

// Sorted returns a copy of the entries sorted by increasing RMSD.
// Pairs with equal RMSD keep their enumeration order.
func (M *Matrix) Sorted() []Entry {
	ret := M.Entries()
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].RMSD < ret[j].RMSD })
	return ret
}

// Build computes the similarity matrix of confs with the primitive sp. Pairs are
// enumerated as (confs[i], confs[j]) for i < j, so each pair is computed exactly once.
// A failure of sp on any pair fails the whole build with a *SimilarityComputationError.
// With more than one worker, pairs are computed concurrently; the result is the same.
func Build(ctx context.Context, confs []*ensemble.Conformer, sp superpose.Superposer, o *Options) (*Matrix, error) {
	if o == nil {
		o = DefaultOptions()
	}
	log := o.Logger()
	names := make([]string, len(confs))
	for i, c := range confs {
		if c == nil {
			return nil, fmt.Errorf("similarity: nil conformer at position %d", i)
		}
		names[i] = c.Name
	}
	M, err := NewMatrix(names)
	if err != nil {
		return nil, err
	}
	type pair struct{ i, j int }
	pairs := make([]pair, 0, len(confs)*(len(confs)-1)/2)
	for i := range confs {
		for j := i + 1; j < len(confs); j++ {
			pairs = append(pairs, pair{i, j})
		}
	}
	rmsds := make([]float64, len(pairs))
	compute := func(ctx context.Context, k int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		a, b := confs[pairs[k].i], confs[pairs[k].j]
		r, err := sp.BestRMSD(b.Mol, a.Mol)
		if err == nil && (math.IsNaN(r) || math.IsInf(r, 0) || r < 0) {
			err = fmt.Errorf("invalid RMSD %v", r)
		}
		if err != nil {
			return &SimilarityComputationError{A: a.Name, B: b.Name, Err: err, deco: []string{"Build"}}
		}
		log.Debug("pair computed", zap.String("a", a.Name), zap.String("b", b.Name), zap.Float64("rmsd", r))
		rmsds[k] = r
		return nil
	}
	workers := o.Workers()
	if workers <= 1 {
		for k := range pairs {
			if err := compute(ctx, k); err != nil {
				return nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for k := range pairs {
			k := k
			g.Go(func() error { return compute(gctx, k) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	for k, p := range pairs {
		M.entries = append(M.entries, Entry{Key: Key{names[p.i], names[p.j]}, RMSD: rmsds[k]})
		M.index[Key{names[p.i], names[p.j]}] = k
	}
	log.Info("similarity matrix built", zap.Int("conformers", len(confs)), zap.Int("pairs", len(pairs)), zap.Int("workers", workers))
	return M, nil
}

// SimilarityComputationError is returned when the RMSD of a pair can't be computed.
type SimilarityComputationError struct {
	A, B string
	Err  error
	deco []string
}

func (e *SimilarityComputationError) Error() string {
	return fmt.Sprintf("similarity: pair (%s, %s): %v", e.A, e.B, e.Err)
}

func (e *SimilarityComputationError) Unwrap() error { return e.Err }

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (e *SimilarityComputationError) Decorate(dec string) []string {
	if dec == "" {
		return e.deco
	}
	e.deco = append(e.deco, dec)
	return e.deco
}
