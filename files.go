/*
 * files.go, part of confsieve.
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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	v3 "github.com/confsieve/confsieve/v3"
)

// XYZFileRead reads a (possibly multi-frame, possibly compressed) xyz file and returns a Molecule.
// Bonds are assigned from the distances in the first frame.
func XYZFileRead(xyzname string) (*Molecule, error) {
	xyzfile, err := OpenCompressed(xyzname)
	if err != nil {
		return nil, errDecorate(err, "XYZFileRead")
	}
	defer xyzfile.Close()
	mol, err := XYZRead(xyzfile)
	if err != nil {
		return nil, errDecorate(err, "XYZFileRead "+xyzname)
	}
	return mol, nil
}

// XYZRead reads an xyz file from an io.Reader, returns a Molecule with one frame per
// structure in the file. The comment line of each frame is kept in Comments, the first
// one is also used as the title.
func XYZRead(xyzp io.Reader) (*Molecule, error) {
	snaps := 1
	xyz := bufio.NewReader(xyzp)
	var Coords []*v3.Matrix
	var comments []string
	var top *Topology
	for {
		coords, atoms, comment, err := xyzReadSnap(xyz, snaps == 1)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errDecorate(err, fmt.Sprintf("XYZRead: frame %d", snaps))
		}
		if snaps == 1 {
			top = NewTopology(0, 1, atoms)
		} else if coords.NVecs() != top.Len() {
			return nil, newCError("XYZRead", "Frame %d has %d atoms, the first one %d", snaps, coords.NVecs(), top.Len())
		}
		Coords = append(Coords, coords)
		comments = append(comments, comment)
		snaps++
	}
	if top == nil {
		return nil, newCError("XYZRead", "No structures in XYZ data")
	}
	if err := top.FillElementData(); err != nil {
		return nil, errDecorate(err, "XYZRead")
	}
	if err := AssignBonds(Coords[0], top); err != nil {
		return nil, errDecorate(err, "XYZRead")
	}
	mol, err := NewMolecule(Coords, top)
	if err != nil {
		return nil, errDecorate(err, "XYZRead")
	}
	mol.Comments = comments
	mol.Title = comments[0]
	return mol, nil
}

// xyzReadSnap reads one frame. It returns io.EOF, undecorated, only if the data ended
// cleanly before the frame started.
func xyzReadSnap(xyz *bufio.Reader, getatoms bool) (*v3.Matrix, []*Atom, string, error) {
	var line string
	var err error
	for {
		line, err = xyz.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			break
		}
		if err != nil {
			return nil, nil, "", io.EOF
		}
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || natoms <= 0 {
		return nil, nil, "", newCError("xyzReadSnap", "Ill formatted XYZ file: bad atom count %q", strings.TrimSpace(line))
	}
	var molecule []*Atom
	if getatoms {
		molecule = make([]*Atom, natoms)
	}
	coords := make([]float64, natoms*3)
	comment, err := xyz.ReadString('\n')
	if err != nil {
		return nil, nil, "", newCError("xyzReadSnap", "Ill formatted XYZ file: missing comment line")
	}
	comment = strings.TrimSpace(comment)
	errs := make([]error, 3)
	for i := 0; i < natoms; i++ {
		line, err = xyz.ReadString('\n')
		if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
			return nil, nil, "", newCError("xyzReadSnap", "Ill formatted XYZ file: expected %d atoms, got %d", natoms, i)
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, nil, "", newCError("xyzReadSnap", "Line number %d ill formed", i)
		}
		if getatoms {
			molecule[i] = &Atom{Symbol: NormalizeSymbol(fields[0]), ID: i + 1, Index: i, Name: fields[0]}
		}
		coords[i*3], errs[0] = strconv.ParseFloat(fields[1], 64)
		coords[i*3+1], errs[1] = strconv.ParseFloat(fields[2], 64)
		coords[i*3+2], errs[2] = strconv.ParseFloat(fields[3], 64)
		for _, e := range errs {
			if e != nil {
				return nil, nil, "", newCError("xyzReadSnap", "Line number %d: %s", i, e.Error())
			}
		}
	}
	mcoords, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, nil, "", errDecorate(err, "xyzReadSnap")
	}
	return mcoords, molecule, comment, nil
}

// XYZFileWrite writes the coordinates Coords of the atoms in mol to an XYZ file with name
// xyzname, which will be created for that (compressed if the name ends in .gz or .zst).
// If the file exist it will be overwritten.
func XYZFileWrite(xyzname string, Coords *v3.Matrix, mol Atomer, comment ...string) error {
	out, err := CreateCompressed(xyzname)
	if err != nil {
		return errDecorate(err, "XYZFileWrite")
	}
	err = XYZWrite(out, Coords, mol, comment...)
	if err != nil {
		out.Close()
		return errDecorate(err, "XYZFileWrite")
	}
	return errDecorate(out.Close(), "XYZFileWrite")
}

// XYZWrite writes the coordinates Coords of the atoms in mol to out, in XYZ format.
func XYZWrite(out io.Writer, Coords *v3.Matrix, mol Atomer, comment ...string) error {
	if Coords.NVecs() != mol.Len() {
		return newCError("XYZWrite", "Coordinates and atoms mismatch: %d and %d", Coords.NVecs(), mol.Len())
	}
	c := ""
	if len(comment) > 0 {
		c = strings.ReplaceAll(comment[0], "\n", " ")
	}
	if _, err := fmt.Fprintf(out, "%-4d\n%s\n", mol.Len(), c); err != nil {
		return newCError("XYZWrite", "Failed to write header: %s", err.Error())
	}
	for i := 0; i < mol.Len(); i++ {
		_, err := fmt.Fprintf(out, "%-2s  %12.6f%12.6f%12.6f \n", mol.Atom(i).Symbol, Coords.At(i, 0), Coords.At(i, 1), Coords.At(i, 2))
		if err != nil {
			return newCError("XYZWrite", "Failed to write atom %d: %s", i, err.Error())
		}
	}
	return nil
}
