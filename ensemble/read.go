/*
 * read.go, part of confsieve.
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

package ensemble

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	chem "github.com/confsieve/confsieve"
	v3 "github.com/confsieve/confsieve/v3"
)

// FromSDF reads a multi-record SD file. The ith record (0-based) becomes the conformer
// prefix_i. Energies are read with EnergyOf, using energyTag.
func FromSDF(r io.Reader, prefix, energyTag string) (*Ensemble, error) {
	mols, err := chem.SDFRead(r)
	if err != nil {
		return nil, fmt.Errorf("ensemble: reading SD data: %w", err)
	}
	E := &Ensemble{byName: make(map[string]int, len(mols))}
	for i, mol := range mols {
		e, err := EnergyOf(mol, energyTag)
		if err != nil {
			return nil, fmt.Errorf("ensemble: record %d: %w", i, err)
		}
		if err := E.Add(&Conformer{Name: fmt.Sprintf("%s_%d", prefix, i), Mol: mol, Energy: e}); err != nil {
			return nil, err
		}
	}
	return E, nil
}

// FromSDFFile is FromSDF on the (possibly compressed) file name.
func FromSDFFile(name, prefix, energyTag string) (*Ensemble, error) {
	f, err := chem.OpenCompressed(name)
	if err != nil {
		return nil, fmt.Errorf("ensemble: %w", err)
	}
	defer f.Close()
	return FromSDF(f, prefix, energyTag)
}

// FromFiles reads one conformer from each molfile in paths. The conformer read from
// paths[i] is named prefix followed by i. The energy is the energyTag data item of the
// file or, lacking it, the line after "M  END", as read by EnergiesFromSDFOutputs.
func FromFiles(paths []string, prefix, energyTag string) (*Ensemble, error) {
	if energyTag == "" {
		energyTag = DefaultEnergyTag
	}
	E := &Ensemble{byName: make(map[string]int, len(paths))}
	for i, p := range paths {
		mols, err := chem.SDFFileRead(p)
		if err != nil {
			return nil, fmt.Errorf("ensemble: %s: %w", p, err)
		}
		var e float64
		if v, ok := mols[0].Prop(energyTag); ok {
			e, err = parseEnergy(v)
		} else {
			var energies map[string]float64
			energies, err = EnergiesFromSDFOutputs([]string{p})
			e = energies[energyKey(p)]
		}
		if err != nil {
			return nil, fmt.Errorf("ensemble: %s: %w", p, err)
		}
		if err := E.Add(&Conformer{Name: fmt.Sprintf("%s%d", prefix, i), Mol: mols[0], Energy: e}); err != nil {
			return nil, err
		}
	}
	return E, nil
}

// EnergiesFromSDFOutputs reads, from each file in paths, the energy written in the line
// that follows "M  END". Energies are keyed by the file name without directory or extension.
// If a file has several "M  END" lines, the last one wins.
func EnergiesFromSDFOutputs(paths []string) (map[string]float64, error) {
	ret := make(map[string]float64, len(paths))
	for _, p := range paths {
		f, err := chem.OpenCompressed(p)
		if err != nil {
			return nil, fmt.Errorf("ensemble: %w", err)
		}
		key := energyKey(p)
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		afterEnd, found := false, false
		for sc.Scan() {
			line := sc.Text()
			if afterEnd {
				e, err := parseEnergy(line)
				if err != nil {
					f.Close()
					return nil, fmt.Errorf("ensemble: %s: %w", p, err)
				}
				ret[key] = e
				found = true
				afterEnd = false
				continue
			}
			afterEnd = strings.Contains(line, "M  END")
		}
		err = sc.Err()
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("ensemble: %s: %w", p, err)
		}
		if !found {
			return nil, fmt.Errorf("ensemble: %s: no energy line after M  END", p)
		}
	}
	return ret, nil
}

// energyKey is the file name of p without directory, compression or format extension.
func energyKey(p string) string {
	key := filepath.Base(chem.TrimCompressionExt(p))
	return strings.TrimSuffix(key, filepath.Ext(key))
}

// FromXYZ builds one conformer per frame of mol, named prefix_i. The energy of each
// frame is the first number in its comment line.
func FromXYZ(mol *chem.Molecule, prefix string) (*Ensemble, error) {
	E := &Ensemble{byName: make(map[string]int, mol.LenFrames())}
	for i, c := range mol.Coords {
		comment := ""
		if i < len(mol.Comments) {
			comment = mol.Comments[i]
		}
		e, err := firstNumber(comment)
		if err != nil {
			return nil, fmt.Errorf("ensemble: frame %d: %w", i, err)
		}
		m := &chem.Molecule{Topology: mol.Topology, Coords: []*v3.Matrix{c}, Title: comment, Props: map[string]string{}}
		if err := E.Add(&Conformer{Name: fmt.Sprintf("%s_%d", prefix, i), Mol: m, Energy: e}); err != nil {
			return nil, err
		}
	}
	return E, nil
}

var numberRe = regexp.MustCompile(`[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)

func firstNumber(s string) (float64, error) {
	n := numberRe.FindString(s)
	if n == "" {
		return 0, fmt.Errorf("no energy in comment %q", s)
	}
	return parseEnergy(n)
}

var energyRe = regexp.MustCompile(`(?i)energy`)

// Split splits the multi-structure SD data in r into one file per structure, dir/prefix_i.sdf,
// plus dir/energy.csv with one "i<TAB>energy" line per structure. A structure starts at each line
// containing titleMarker and ends at the next "$$$$". Lines naming the energy data item are not
// copied, so in the written files the energy value is the line that follows "M  END".
// It returns the number of structures written.
func Split(r io.Reader, dir, prefix, titleMarker string) (int, error) {
	if titleMarker == "" {
		return 0, fmt.Errorf("ensemble: empty title marker")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("ensemble: %w", err)
	}
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("ensemble: %w", err)
	}
	ef, err := os.Create(filepath.Join(dir, "energy.csv"))
	if err != nil {
		return 0, fmt.Errorf("ensemble: %w", err)
	}
	n := 0
	for lineno, line := range lines {
		if !strings.Contains(line, titleMarker) {
			continue
		}
		if err := writeStructure(lines[lineno:], filepath.Join(dir, fmt.Sprintf("%s_%d.sdf", prefix, n)), n, ef); err != nil {
			ef.Close()
			return n, err
		}
		n++
	}
	if err := ef.Close(); err != nil {
		return n, fmt.Errorf("ensemble: %w", err)
	}
	return n, nil
}

func writeStructure(lines []string, name string, n int, ef io.Writer) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("ensemble: %w", err)
	}
	w := bufio.NewWriter(f)
	for i, line := range lines {
		if strings.Contains(line, "$$$$") {
			break
		}
		if energyRe.MatchString(line) {
			if i+1 < len(lines) {
				fmt.Fprintf(ef, "%d\t%s\n", n, strings.TrimSpace(lines[i+1]))
			}
			continue
		}
		fmt.Fprintln(w, line)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("ensemble: %w", err)
	}
	return f.Close()
}
