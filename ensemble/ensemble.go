/*
 * ensemble.go, part of confsieve.
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

/*Package ensemble holds conformer ensembles: named 3D structures of the same
molecular system, each with an energy, and the ways to read them from the files
written by conformer generators and geometry optimizers.*/
package ensemble

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	chem "github.com/confsieve/confsieve"
	v3 "github.com/confsieve/confsieve/v3"
)

// DefaultEnergyTag is the SD data item read for the energy when none is given.
const DefaultEnergyTag = "ENERGY"

// Conformer is one named structure with its energy in kcal/mol.
// Conformers are not modified by the library once built.
type Conformer struct {
	Name   string
	Mol    *chem.Molecule
	Energy float64
}

// Coords returns the coordinates of the conformer.
func (C *Conformer) Coords() *v3.Matrix {
	return C.Mol.Coords[0]
}

// Ensemble is an ordered set of conformers with unique names.
type Ensemble struct {
	confs  []*Conformer
	byName map[string]int
}

// New returns an ensemble with the given conformers, in order. It fails if
// two conformers share a name, or a conformer has no structure.
func New(confs ...*Conformer) (*Ensemble, error) {
	E := &Ensemble{byName: make(map[string]int, len(confs))}
	for _, c := range confs {
		if err := E.Add(c); err != nil {
			return nil, err
		}
	}
	return E, nil
}

// Add appends c to the ensemble.
func (E *Ensemble) Add(c *Conformer) error {
	if c == nil || c.Mol == nil || c.Mol.LenFrames() == 0 {
		return fmt.Errorf("ensemble: conformer without structure")
	}
	if c.Name == "" {
		return fmt.Errorf("ensemble: conformer without name")
	}
	if _, ok := E.byName[c.Name]; ok {
		return fmt.Errorf("ensemble: duplicate conformer name %q", c.Name)
	}
	if len(E.confs) > 0 && E.confs[0].Mol.Len() != c.Mol.Len() {
		return fmt.Errorf("ensemble: conformer %q has %d atoms, the ensemble %d", c.Name, c.Mol.Len(), E.confs[0].Mol.Len())
	}
	E.byName[c.Name] = len(E.confs)
	E.confs = append(E.confs, c)
	return nil
}

// Len returns the number of conformers.
func (E *Ensemble) Len() int {
	return len(E.confs)
}

// At returns the ith conformer.
func (E *Ensemble) At(i int) *Conformer {
	return E.confs[i]
}

// Get returns the conformer with the given name.
func (E *Ensemble) Get(name string) (*Conformer, bool) {
	i, ok := E.byName[name]
	if !ok {
		return nil, false
	}
	return E.confs[i], true
}

// Conformers returns the conformers in order. The slice is a copy.
func (E *Ensemble) Conformers() []*Conformer {
	return append([]*Conformer(nil), E.confs...)
}

// Names returns the conformer names in order.
func (E *Ensemble) Names() []string {
	ret := make([]string, len(E.confs))
	for i, c := range E.confs {
		ret[i] = c.Name
	}
	return ret
}

// Energies returns the energy of each conformer, by name.
func (E *Ensemble) Energies() map[string]float64 {
	ret := make(map[string]float64, len(E.confs))
	for _, c := range E.confs {
		ret[c.Name] = c.Energy
	}
	return ret
}

// LowestEnergy returns the conformer of lowest energy. Ties go to the first one.
func (E *Ensemble) LowestEnergy() (*Conformer, error) {
	if len(E.confs) == 0 {
		return nil, fmt.Errorf("ensemble: empty ensemble")
	}
	best := E.confs[0]
	for _, c := range E.confs[1:] {
		if c.Energy < best.Energy {
			best = c
		}
	}
	return best, nil
}

// ByEnergy returns the conformers sorted by increasing energy. The sort is stable.
func (E *Ensemble) ByEnergy() []*Conformer {
	ret := E.Conformers()
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Energy < ret[j].Energy })
	return ret
}

// EnergyOf returns the energy stored in mol: the data item tag (matched without regard to case)
// if present, or else the first line after the end of the connection table.
func EnergyOf(mol *chem.Molecule, tag string) (float64, error) {
	if tag == "" {
		tag = DefaultEnergyTag
	}
	if v, ok := mol.Prop(tag); ok {
		return parseEnergy(v)
	}
	if len(mol.Trailer) > 0 {
		return parseEnergy(mol.Trailer[0])
	}
	return 0, fmt.Errorf("ensemble: no %s data item or energy line in %q", tag, mol.Title)
}

func parseEnergy(s string) (float64, error) {
	f := strings.Fields(s)
	if len(f) == 0 {
		return 0, fmt.Errorf("ensemble: empty energy value")
	}
	e, err := strconv.ParseFloat(f[0], 64)
	if err != nil {
		return 0, fmt.Errorf("ensemble: bad energy value %q: %w", f[0], err)
	}
	return e, nil
}
