/*
 * chem_test.go, part of confsieve.
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
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	v3 "github.com/confsieve/confsieve/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var waterCoords = []float64{
	0, 0, 0,
	0.96, 0, 0,
	-0.24, 0.93, 0,
}

func water(Te *testing.T, title string) *Molecule {
	top := NewTopology(0, 1)
	for i, s := range []string{"O", "H", "H"} {
		top.AppendAtom(&Atom{Name: s, Symbol: s, ID: i + 1, Index: i})
	}
	require.NoError(Te, top.FillElementData())
	top.AddBond(0, 1, 1)
	top.AddBond(0, 2, 1)
	c, err := v3.NewMatrix(append([]float64(nil), waterCoords...))
	require.NoError(Te, err)
	mol, err := NewMolecule([]*v3.Matrix{c}, top)
	require.NoError(Te, err)
	mol.Title = title
	return mol
}

func TestSDFRoundTrip(Te *testing.T) {
	w1 := water(Te, "first")
	w1.SetProp("ENERGY", "-76.4")
	w1.Atom(0).Charge = -1
	w1.Trailer = []string{"-76.4"}
	w2 := water(Te, "second")
	w2.SetProp("Multi", "a\nb")
	var buf bytes.Buffer
	require.NoError(Te, SDFWrite(&buf, w1, w2))
	assert.Equal(Te, 2, strings.Count(buf.String(), sdfSeparator))

	mols, err := SDFRead(&buf)
	require.NoError(Te, err)
	require.Len(Te, mols, 2)
	m := mols[0]
	assert.Equal(Te, "first", m.Title)
	assert.Equal(Te, 3, m.Len())
	assert.Equal(Te, 8, m.Atom(0).Z)
	assert.Equal(Te, -1.0, m.Atom(0).Charge)
	assert.Equal(Te, -1, m.Charge())
	assert.Len(Te, m.Bonds(), 2)
	assert.True(Te, BondedTo(m.Atom(0), m.Atom(2)))
	assert.False(Te, BondedTo(m.Atom(1), m.Atom(2)))
	e, ok := m.Prop("energy")
	assert.True(Te, ok)
	assert.Equal(Te, "-76.4", e)
	assert.Equal(Te, []string{"-76.4"}, m.Trailer)
	assert.InDelta(Te, -0.24, m.Coords[0].At(2, 0), 1e-4)
	v, _ := mols[1].Prop("Multi")
	assert.Equal(Te, "a\nb", v)
}

func TestSDFCompressed(Te *testing.T) {
	dir := Te.TempDir()
	for _, name := range []string{"w.sdf", "w.sdf.gz", "w.sdf.zst"} {
		path := filepath.Join(dir, name)
		require.NoError(Te, SDFFileWrite(path, water(Te, name)), name)
		mols, err := SDFFileRead(path)
		require.NoError(Te, err, name)
		require.Len(Te, mols, 1)
		assert.Equal(Te, name, mols[0].Title)
	}
	assert.Equal(Te, "w.sdf", TrimCompressionExt("w.sdf.zst"))
	assert.Equal(Te, "", CompressionExt("w.sdf"))
}

func TestSDFErrors(Te *testing.T) {
	_, err := SDFRead(strings.NewReader(""))
	assert.Error(Te, err)
	_, err = SDFRead(strings.NewReader("t\n\n\n  0  0  0  0  0  0  0  0  0  0999 V3000\nM  END\n$$$$\n"))
	assert.Error(Te, err)
	_, err = SDFRead(strings.NewReader("t\n\n\n  2  0  0  0  0  0  0  0  0  0999 V2000\n    0.0000    0.0000    0.0000 O   0\n$$$$\n"))
	assert.Error(Te, err)
}

const twoWaters = `3
frame one
O 0.0 0.0 0.0
H 0.96 0.0 0.0
H -0.24 0.93 0.0
3
frame two
O 0.0 0.0 0.1
H 0.96 0.0 0.1
H -0.24 0.93 0.1
`

func TestXYZ(Te *testing.T) {
	mol, err := XYZRead(strings.NewReader(twoWaters))
	require.NoError(Te, err)
	assert.Equal(Te, 2, mol.LenFrames())
	assert.Equal(Te, "frame one", mol.Title)
	assert.Equal(Te, []string{"frame one", "frame two"}, mol.Comments)
	assert.Len(Te, mol.Atom(0).Bonds, 2)
	assert.Len(Te, mol.Atom(1).Bonds, 1)

	var buf bytes.Buffer
	require.NoError(Te, XYZWrite(&buf, mol.Coords[1], mol, "again"))
	back, err := XYZRead(&buf)
	require.NoError(Te, err)
	assert.Equal(Te, "again", back.Title)
	assert.InDelta(Te, 0.1, back.Coords[0].At(2, 2), 1e-6)

	_, err = XYZRead(strings.NewReader("3\nshort\nO 0 0 0\n"))
	assert.Error(Te, err)
	_, err = XYZRead(strings.NewReader(twoWaters + "2\nbad\nO 0 0 0\nH 1 0 0\n"))
	assert.Error(Te, err)
}

func TestSuper(Te *testing.T) {
	w := water(Te, "w")
	ref := w.Coords[0]
	moved := v3.Zeros(3)
	for i := 0; i < 3; i++ {
		//90 degrees around z, then a translation.
		moved.Set(i, 0, -ref.At(i, 1)+2)
		moved.Set(i, 1, ref.At(i, 0)-1)
		moved.Set(i, 2, ref.At(i, 2)+0.5)
	}
	before, err := RMSD(moved, ref)
	require.NoError(Te, err)
	assert.Greater(Te, before, 1.0)
	r, err := SuperRMSD(moved, ref, nil, nil)
	require.NoError(Te, err)
	assert.InDelta(Te, 0, r, 1e-6)
	_, err = Super(moved, ref, []int{0, 1, 2}, []int{0, 1, 2})
	require.NoError(Te, err)
	after, err := RMSD(moved, ref)
	require.NoError(Te, err)
	assert.InDelta(Te, 0, after, 1e-6)

	_, err = Super(moved, ref, []int{0, 1}, []int{0})
	assert.Error(Te, err)
	_, err = RMSD(moved, ref, []int{5})
	assert.Error(Te, err)
}

func TestSuperKeepsChirality(Te *testing.T) {
	tetra, err := v3.NewMatrix([]float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
	require.NoError(Te, err)
	mirror := v3.Clone(tetra)
	mirror.Set(3, 2, -1)
	_, rot, _, _, err := RotatorTranslatorToSuper(mirror, tetra)
	require.NoError(Te, err)
	assert.InDelta(Te, 1, v3.Det(rot), 1e-9)
	r, err := SuperRMSD(mirror, tetra, nil, nil)
	require.NoError(Te, err)
	assert.Greater(Te, r, 0.05)
}

func TestCenterOfMass(Te *testing.T) {
	w := water(Te, "w")
	g, err := CenterOfMass(w.Coords[0])
	require.NoError(Te, err)
	assert.InDelta(Te, 0.24, g.At(0, 0), 1e-9)
	assert.InDelta(Te, 0.31, g.At(0, 1), 1e-9)
	mass, err := w.Masses()
	require.NoError(Te, err)
	c, err := CenterOfMass(w.Coords[0], mass)
	require.NoError(Te, err)
	assert.Less(Te, c.At(0, 0), g.At(0, 0))
	_, err = CenterOfMass(w.Coords[0], []float64{1})
	assert.Error(Te, err)
}

func TestMoleculeCopy(Te *testing.T) {
	w := water(Te, "w")
	w.SetProp("k", "v")
	c := w.Copy()
	c.Coords[0].Set(0, 0, 9)
	c.SetProp("k", "other")
	assert.Equal(Te, 0.0, w.Coords[0].At(0, 0))
	v, _ := w.Prop("k")
	assert.Equal(Te, "v", v)
	require.Len(Te, c.Bonds(), 2)
	assert.Same(Te, c.Atom(0), c.Bonds()[0].At1)
	assert.NotSame(Te, w.Atom(0), c.Atom(0))
	assert.Error(Te, (&Molecule{}).Corrupted())
}
