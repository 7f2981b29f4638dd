/*
 * cache.go, part of confsieve.
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

/*Package cache keeps the results of a superposer in a bbolt database, so repeated
runs over the same structures don't recompute their pair RMSDs.*/
package cache

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	chem "github.com/confsieve/confsieve"
	"github.com/confsieve/confsieve/superpose"
	"github.com/cespare/xxhash/v2"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var bucketRMSD = []byte("rmsd")

// Precision is the resolution, in A, at which coordinates are fingerprinted.
const Precision = 1e-6

// Bolt is a Superposer that returns stored RMSDs for pairs of structures it has
// seen before, and asks its inner Superposer for the rest.
// Calls with an explicit atom map are not cached.
type Bolt struct {
	db     *bbolt.DB
	inner  superpose.Superposer
	log    *zap.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// Open opens, or creates, the cache database in path.
func Open(path string, inner superpose.Superposer, log *zap.Logger) (*Bolt, error) {
	if inner == nil {
		return nil, fmt.Errorf("cache: nil superposer")
	}
	if log == nil {
		log = zap.NewNop()
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRMSD)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &Bolt{db: db, inner: inner, log: log}, nil
}

// Close closes the database.
func (B *Bolt) Close() error {
	B.log.Debug("cache closed", zap.Int64("hits", B.hits.Load()), zap.Int64("misses", B.misses.Load()))
	return B.db.Close()
}

// Stats returns the number of cache hits and misses so far.
func (B *Bolt) Stats() (hits, misses int64) {
	return B.hits.Load(), B.misses.Load()
}

// BestRMSD implements superpose.Superposer.
func (B *Bolt) BestRMSD(test, ref *chem.Molecule, atomMap ...[][2]int) (float64, error) {
	if (len(atomMap) > 0 && atomMap[0] != nil) || test == nil || ref == nil || test.LenFrames() == 0 || ref.LenFrames() == 0 {
		return B.inner.BestRMSD(test, ref, atomMap...)
	}
	key := PairKey(Fingerprint(test), Fingerprint(ref))
	var val []byte
	err := B.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketRMSD).Get(key); v != nil {
			val = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("cache: %w", err)
	}
	if len(val) == 8 {
		B.hits.Add(1)
		return math.Float64frombits(binary.BigEndian.Uint64(val)), nil
	}
	B.misses.Add(1)
	r, err := B.inner.BestRMSD(test, ref)
	if err != nil {
		return 0, err
	}
	val = make([]byte, 8)
	binary.BigEndian.PutUint64(val, math.Float64bits(r))
	err = B.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRMSD).Put(key, val)
	})
	if err != nil {
		return 0, fmt.Errorf("cache: %w", err)
	}
	return r, nil
}

// Fingerprint hashes the elements, the bond table and the first frame of mol, with coordinates
// rounded to Precision. Bonds enter as sorted pairs of atom positions, so the order
// in which they were added doesn't matter.
func Fingerprint(mol *chem.Molecule) uint64 {
	d := xxhash.New()
	var buf [8]byte
	c := mol.Coords[0]
	for i := 0; i < mol.Len(); i++ {
		d.WriteString(mol.Atom(i).Symbol)
		d.Write([]byte{0})
		for j := 0; j < 3; j++ {
			binary.LittleEndian.PutUint64(buf[:], uint64(int64(math.Round(c.At(i, j)/Precision))))
			d.Write(buf[:])
		}
	}
	pos := make(map[*chem.Atom]int, mol.Len())
	for i, at := range mol.Atoms {
		pos[at] = i
	}
	var pairs [][2]int
	for _, b := range mol.Bonds() {
		i, j := pos[b.At1], pos[b.At2]
		if i > j {
			i, j = j, i
		}
		pairs = append(pairs, [2]int{i, j})
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a][0] != pairs[b][0] {
			return pairs[a][0] < pairs[b][0]
		}
		return pairs[a][1] < pairs[b][1]
	})
	d.Write([]byte("bonds"))
	for _, p := range pairs {
		binary.LittleEndian.PutUint32(buf[:4], uint32(p[0]))
		binary.LittleEndian.PutUint32(buf[4:], uint32(p[1]))
		d.Write(buf[:])
	}
	return d.Sum64()
}

// PairKey returns the database key of a pair of fingerprints. It doesn't depend on their order.
func PairKey(a, b uint64) []byte {
	if a > b {
		a, b = b, a
	}
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key[:8], a)
	binary.BigEndian.PutUint64(key[8:], b)
	return key
}
