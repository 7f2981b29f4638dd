/*
 * sdf.go, part of confsieve.
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
	"sort"
	"strconv"
	"strings"

	v3 "github.com/confsieve/confsieve/v3"
)

// SDF/MOL V2000 support. Only the parts of the format needed to
// carry conformers are read: header, counts line, atom and bond blocks,
// charges from "M  CHG" lines, data items and any other lines after "M  END".

const (
	sdfEnd       = "M  END"
	sdfSeparator = "$$$$"
)

// SDFFileRead reads all the records of a (possibly compressed) SD or MOL file.
func SDFFileRead(name string) ([]*Molecule, error) {
	f, err := OpenCompressed(name)
	if err != nil {
		return nil, errDecorate(err, "SDFFileRead")
	}
	defer f.Close()
	mols, err := SDFRead(f)
	if err != nil {
		return nil, errDecorate(err, "SDFFileRead "+name)
	}
	return mols, nil
}

// SDFRead reads every record of a V2000 SD file. Each record becomes a single-frame Molecule
// with its bonds set from the bond block. Data items ("> <TAG>") go to Props, and other
// lines after "M  END" to Trailer, in order.
func SDFRead(r io.Reader) ([]*Molecule, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	var mols []*Molecule
	flush := func() error {
		if len(strings.TrimSpace(strings.Join(lines, ""))) == 0 {
			lines = lines[:0]
			return nil
		}
		mol, err := parseMolBlock(lines)
		if err != nil {
			return errDecorate(err, fmt.Sprintf("SDFRead: record %d", len(mols)))
		}
		mols = append(mols, mol)
		lines = lines[:0]
		return nil
	}
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.HasPrefix(line, sdfSeparator) {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, newCError("SDFRead", "Reading SD data: %s", err.Error())
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(mols) == 0 {
		return nil, newCError("SDFRead", "No records in SD data")
	}
	return mols, nil
}

func sdfInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// field returns line[i:j], clipped to the line length.
func field(line string, i, j int) string {
	if i >= len(line) {
		return ""
	}
	if j > len(line) {
		j = len(line)
	}
	return line[i:j]
}

func parseMolBlock(lines []string) (*Molecule, error) {
	if len(lines) < 4 {
		return nil, newCError("parseMolBlock", "Record too short: %d lines", len(lines))
	}
	counts := lines[3]
	if strings.Contains(counts, "V3000") {
		return nil, newCError("parseMolBlock", "V3000 records are not supported")
	}
	natoms, err := sdfInt(field(counts, 0, 3))
	if err != nil || natoms <= 0 {
		return nil, newCError("parseMolBlock", "Bad atom count in counts line %q", counts)
	}
	nbonds, err := sdfInt(field(counts, 3, 6))
	if err != nil {
		return nil, newCError("parseMolBlock", "Bad bond count in counts line %q", counts)
	}
	if len(lines) < 4+natoms+nbonds {
		return nil, newCError("parseMolBlock", "Record has %d lines, expected at least %d", len(lines), 4+natoms+nbonds)
	}
	top := NewTopology(0, 1)
	coords := make([]float64, 0, natoms*3)
	for i := 0; i < natoms; i++ {
		line := lines[4+i]
		var xyz [3]float64
		var sym string
		if len(line) >= 34 {
			for k := 0; k < 3; k++ {
				xyz[k], err = strconv.ParseFloat(strings.TrimSpace(line[k*10:k*10+10]), 64)
				if err != nil {
					break
				}
			}
			sym = strings.TrimSpace(line[31:34])
		} else {
			err = fmt.Errorf("line too short")
		}
		if err != nil {
			//not fixed-column, try whitespace-separated.
			f := strings.Fields(line)
			if len(f) < 4 {
				return nil, newCError("parseMolBlock", "Ill formed atom line %d: %q", i+1, line)
			}
			for k := 0; k < 3; k++ {
				xyz[k], err = strconv.ParseFloat(f[k], 64)
				if err != nil {
					return nil, newCError("parseMolBlock", "Ill formed atom line %d: %q", i+1, line)
				}
			}
			sym = f[3]
		}
		coords = append(coords, xyz[:]...)
		top.AppendAtom(&Atom{Name: sym, Symbol: NormalizeSymbol(sym), ID: i + 1, Index: i})
	}
	for i := 0; i < nbonds; i++ {
		line := lines[4+natoms+i]
		a1, err1 := sdfInt(field(line, 0, 3))
		a2, err2 := sdfInt(field(line, 3, 6))
		order, err3 := sdfInt(field(line, 6, 9))
		if err1 != nil || err2 != nil || err3 != nil || a1 < 1 || a2 < 1 || a1 > natoms || a2 > natoms || a1 == a2 {
			return nil, newCError("parseMolBlock", "Ill formed bond line %d: %q", i+1, line)
		}
		b := top.AddBond(a1-1, a2-1, float64(order))
		b.Index = i
	}
	mcoords, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, errDecorate(err, "parseMolBlock")
	}
	if err := top.FillElementData(); err != nil {
		return nil, errDecorate(err, "parseMolBlock")
	}
	mol, err := NewMolecule([]*v3.Matrix{mcoords}, top)
	if err != nil {
		return nil, errDecorate(err, "parseMolBlock")
	}
	mol.Title = strings.TrimSpace(lines[0])
	mol.Comments = []string{strings.TrimSpace(lines[2])}

	rest := lines[4+natoms+nbonds:]
	i := 0
	for ; i < len(rest); i++ {
		if strings.HasPrefix(rest[i], sdfEnd) {
			i++
			break
		}
		if strings.HasPrefix(rest[i], "M  CHG") {
			parseCharges(rest[i], top)
		}
	}
	parseDataItems(rest[i:], mol)
	return mol, nil
}

// parseCharges reads an "M  CHG" line. Malformed entries are ignored.
func parseCharges(line string, top *Topology) {
	f := strings.Fields(line)
	if len(f) < 3 {
		return
	}
	for k := 3; k+1 < len(f); k += 2 {
		idx, err1 := strconv.Atoi(f[k])
		chg, err2 := strconv.Atoi(f[k+1])
		if err1 != nil || err2 != nil || idx < 1 || idx > top.Len() {
			continue
		}
		top.Atom(idx - 1).Charge = float64(chg)
	}
	total := 0.0
	for _, at := range top.Atoms {
		total += at.Charge
	}
	top.SetCharge(int(total))
}

// parseDataItems reads the lines after "M  END". A "> <TAG>" header starts a data item whose
// value is every following line up to a blank one. Other lines go to the trailer.
func parseDataItems(lines []string, mol *Molecule) {
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		tag, ok := dataHeaderTag(line)
		if !ok {
			if strings.TrimSpace(line) != "" {
				mol.Trailer = append(mol.Trailer, line)
			}
			continue
		}
		var val []string
		for i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
			i++
			val = append(val, lines[i])
		}
		mol.SetProp(tag, strings.Join(val, "\n"))
	}
}

func dataHeaderTag(line string) (string, bool) {
	if !strings.HasPrefix(line, ">") {
		return "", false
	}
	l := strings.Index(line, "<")
	r := strings.LastIndex(line, ">")
	if l < 0 || r <= l {
		return "", false
	}
	return line[l+1 : r], true
}

// SDFFileWrite writes mols, frame 0 of each, to the file name (compressed if the name ends in .gz or .zst).
func SDFFileWrite(name string, mols ...*Molecule) error {
	out, err := CreateCompressed(name)
	if err != nil {
		return errDecorate(err, "SDFFileWrite")
	}
	if err := SDFWrite(out, mols...); err != nil {
		out.Close()
		return errDecorate(err, "SDFFileWrite")
	}
	return errDecorate(out.Close(), "SDFFileWrite")
}

// SDFWrite writes mols to out as V2000 SD records, using the first frame of each.
// Trailer lines are written right after "M  END", then the data items sorted by tag.
func SDFWrite(out io.Writer, mols ...*Molecule) error {
	w := bufio.NewWriter(out)
	for n, mol := range mols {
		if err := mol.Corrupted(); err != nil {
			return errDecorate(err, "SDFWrite")
		}
		if mol.LenFrames() == 0 {
			return newCError("SDFWrite", "Molecule %d has no coordinates", n)
		}
		coords := mol.Coords[0]
		bonds := mol.Bonds()
		comment := ""
		if len(mol.Comments) > 0 {
			comment = mol.Comments[0]
		}
		fmt.Fprintf(w, "%s\n  confsieve\n%s\n", mol.Title, comment)
		fmt.Fprintf(w, "%3d%3d  0  0  0  0  0  0  0  0999 V2000\n", mol.Len(), len(bonds))
		var charged []int
		for i := 0; i < mol.Len(); i++ {
			at := mol.Atom(i)
			fmt.Fprintf(w, "%10.4f%10.4f%10.4f %-3s 0  0  0  0  0  0  0  0  0  0  0  0\n", coords.At(i, 0), coords.At(i, 1), coords.At(i, 2), at.Symbol)
			if at.Charge != 0 {
				charged = append(charged, i)
			}
		}
		pos := make(map[*Atom]int, mol.Len())
		for i, at := range mol.Atoms {
			pos[at] = i + 1
		}
		for _, b := range bonds {
			fmt.Fprintf(w, "%3d%3d%3d  0\n", pos[b.At1], pos[b.At2], int(b.Order))
		}
		for k := 0; k < len(charged); k += 8 {
			end := k + 8
			if end > len(charged) {
				end = len(charged)
			}
			fmt.Fprintf(w, "M  CHG%3d", end-k)
			for _, i := range charged[k:end] {
				fmt.Fprintf(w, " %3d %3d", i+1, int(mol.Atom(i).Charge))
			}
			fmt.Fprint(w, "\n")
		}
		fmt.Fprintln(w, sdfEnd)
		for _, t := range mol.Trailer {
			fmt.Fprintln(w, t)
		}
		keys := make([]string, 0, len(mol.Props))
		for k := range mol.Props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, ">  <%s>\n%s\n\n", k, mol.Props[k])
		}
		fmt.Fprintln(w, sdfSeparator)
	}
	if err := w.Flush(); err != nil {
		return newCError("SDFWrite", "Failed to write: %s", err.Error())
	}
	return nil
}
