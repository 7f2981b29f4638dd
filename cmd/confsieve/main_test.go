/*
 * main_test.go, part of confsieve.
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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	chem "github.com/confsieve/confsieve"
	"github.com/confsieve/confsieve/internal/molfixture"
	"github.com/confsieve/confsieve/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeEnsemble writes conformers A (energy 0), B (A moved rigidly, energy 3) and
// C (water displaced, energy 1) to an SD file in a temporary directory.
func writeEnsemble(Te *testing.T) string {
	a := molfixture.Complex("complex A", [3]float64{})
	b := molfixture.Rotated(a, [3]float64{2, 1, -1})
	b.Title = "complex B"
	c := molfixture.Complex("complex C", [3]float64{0, 6, 0})
	for m, e := range map[*chem.Molecule]string{a: "0.0", b: "3.0", c: "1.0"} {
		m.SetProp("ENERGY", e)
	}
	name := filepath.Join(Te.TempDir(), "ensemble.sdf.gz")
	require.NoError(Te, chem.SDFFileWrite(name, a, b, c))
	return name
}

func execute(Te *testing.T, args ...string) (string, error) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestDedupCommand(Te *testing.T) {
	in := writeEnsemble(Te)
	dir := filepath.Join(Te.TempDir(), "out")
	cache := filepath.Join(Te.TempDir(), "rmsd.db")
	out, err := execute(Te, "dedup", "--out", dir, "--workers", "2", "--cache", cache, "--metrics", in)
	require.NoError(Te, err)
	assert.Contains(Te, out, "kept (2): conf_0 conf_2")
	assert.Contains(Te, out, "discarded (1): conf_1")
	for _, f := range []string{report.SummaryFile, report.MatrixFile, report.KeptFile, "metrics.prom"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(Te, err, f)
	}
	prom, err := os.ReadFile(filepath.Join(dir, "metrics.prom"))
	require.NoError(Te, err)
	assert.Contains(Te, string(prom), "confsieve_dedup_discards_total 1")

	//same answer from the cache.
	out2, err := execute(Te, "dedup", "--out", dir, "--cache", cache, in)
	require.NoError(Te, err)
	assert.Equal(Te, strings.SplitN(out, "\n", 2)[1], strings.SplitN(out2, "\n", 2)[1])
}

func TestDedupCommandErrors(Te *testing.T) {
	_, err := execute(Te, "dedup")
	assert.Error(Te, err)
	_, err = execute(Te, "dedup", "--energy", "-1", writeEnsemble(Te))
	assert.Error(Te, err)
	_, err = execute(Te, "dedup", filepath.Join(Te.TempDir(), "none.sdf"))
	assert.Error(Te, err)
}

func TestMatrixCommand(Te *testing.T) {
	out, err := execute(Te, "matrix", writeEnsemble(Te))
	require.NoError(Te, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(Te, lines, 4)
	assert.Equal(Te, "a\tb\trmsd", lines[0])
	assert.True(Te, strings.HasPrefix(lines[1], "conf_0\tconf_1\t0.0000"), lines[1])
}

func TestSplitCommand(Te *testing.T) {
	dir := Te.TempDir()
	out, err := execute(Te, "split", "--dir", dir, "--prefix", "mol", "--marker", "complex", writeEnsemble(Te))
	require.NoError(Te, err)
	assert.Contains(Te, out, "3 structures")
	csv, err := os.ReadFile(filepath.Join(dir, "energy.csv"))
	require.NoError(Te, err)
	assert.Equal(Te, "0\t0.0\n1\t3.0\n2\t1.0\n", string(csv))

	//the split files are read back as one conformer per file.
	out, err = execute(Te, "matrix", filepath.Join(dir, "mol_0.sdf"), filepath.Join(dir, "mol_1.sdf"))
	require.NoError(Te, err)
	assert.Contains(Te, out, "conf0\tconf1")

	_, err = execute(Te, "split", writeEnsemble(Te))
	assert.Error(Te, err)
}

func TestAlignCommand(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "aligned.sdf")
	out, err := execute(Te, "align", "--out", name, "--core", "0,1,3,4,5", writeEnsemble(Te))
	require.NoError(Te, err)
	assert.Contains(Te, out, "reference: conf_0")
	mols, err := chem.SDFFileRead(name)
	require.NoError(Te, err)
	assert.Len(Te, mols, 3)
}
