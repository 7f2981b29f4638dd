/*
 * report.go, part of confsieve.
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

/*Package report writes the outcome of a deduplication run: a JSON summary, the sorted
similarity matrix as tab-separated text, the kept conformers as an SD file, and plots.*/
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	chem "github.com/confsieve/confsieve"
	"github.com/confsieve/confsieve/chemplot"
	"github.com/confsieve/confsieve/dedup"
	"github.com/confsieve/confsieve/ensemble"
	"github.com/confsieve/confsieve/histo"
	"github.com/confsieve/confsieve/similarity"
)

// File names used by WriteDir.
const (
	SummaryFile   = "summary.json"
	MatrixFile    = "matrix.tsv"
	KeptFile      = "kept.sdf"
	EnergyPlot    = "energy_rmsd.png"
	HistogramPlot = "pair_rmsd.png"
)

// Conformer is the line of one conformer in the summary.
type Conformer struct {
	Name      string  `json:"name"`
	Energy    float64 `json:"energy"`
	RelEnergy float64 `json:"relative_energy"`
	RMSD      float64 `json:"rmsd_to_lowest"`
	Discarded bool    `json:"discarded"`
}

// Summary is the JSON-serializable digest of a run.
type Summary struct {
	RunID      string           `json:"run_id"`
	Thresholds dedup.Thresholds `json:"thresholds"`
	Lowest     string           `json:"lowest_energy"`
	Pairs      int              `json:"pairs"`
	Evaluated  int              `json:"pairs_evaluated"`
	Discards   []string         `json:"discards"`
	Kept       []string         `json:"kept"`
	Conformers []Conformer      `json:"conformers"`
	PairRMSD   histo.Summary    `json:"pair_rmsd"`
	Histogram  *histo.Data      `json:"pair_rmsd_histogram,omitempty"`
}

// Bins is the number of bins of the pair RMSD histogram.
var Bins = 20

// Summarize digests the result R of deduplicating ens.
func Summarize(R *dedup.Result, ens *ensemble.Ensemble) (*Summary, error) {
	low, err := ens.LowestEnergy()
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	S := &Summary{
		RunID:      R.RunID.String(),
		Thresholds: R.Thresholds,
		Lowest:     low.Name,
		Pairs:      R.Matrix.Len(),
		Evaluated:  R.Counts.Evaluated,
		Discards:   append([]string{}, R.Unique...),
		Kept:       R.KeptNames(),
	}
	discarded := dedup.DiscardList(R.Unique)
	for _, c := range ens.Conformers() {
		r := 0.0
		if c.Name != low.Name {
			var ok bool
			if r, ok = R.Matrix.Get(low.Name, c.Name); !ok {
				return nil, fmt.Errorf("report: no RMSD for %s, %s", low.Name, c.Name)
			}
		}
		S.Conformers = append(S.Conformers, Conformer{
			Name:      c.Name,
			Energy:    c.Energy,
			RelEnergy: c.Energy - low.Energy,
			RMSD:      r,
			Discarded: discarded.Contains(c.Name),
		})
	}
	values := rmsds(R.Matrix)
	S.PairRMSD = histo.Summarize(values)
	if len(values) > 0 {
		S.Histogram = histo.NewData(histo.Dividers(0, S.PairRMSD.Max, Bins), values)
	}
	return S, nil
}

func rmsds(M *similarity.Matrix) []float64 {
	ret := make([]float64, 0, M.Len())
	for _, e := range M.Entries() {
		ret = append(ret, e.RMSD)
	}
	return ret
}

// WriteJSON writes S to w as indented JSON.
func WriteJSON(w io.Writer, S *Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(S)
}

// WriteMatrix writes the entries of M, sorted by increasing RMSD, as tab-separated lines
// "a b rmsd", after a header line.
func WriteMatrix(w io.Writer, M *similarity.Matrix) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write([]string{"a", "b", "rmsd"}); err != nil {
		return err
	}
	for _, e := range M.Sorted() {
		if err := cw.Write([]string{e.A, e.B, strconv.FormatFloat(e.RMSD, 'f', 6, 64)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteConformers writes confs to the SD file name, each titled with its name and
// with its energy in the energyTag data item. The conformers are not modified.
func WriteConformers(name string, confs []*ensemble.Conformer, energyTag string) error {
	if energyTag == "" {
		energyTag = ensemble.DefaultEnergyTag
	}
	mols := make([]*chem.Molecule, 0, len(confs))
	for _, c := range confs {
		m := c.Mol.Copy()
		m.Title = c.Name
		m.Trailer = nil
		m.SetProp(energyTag, strconv.FormatFloat(c.Energy, 'f', -1, 64))
		mols = append(mols, m)
	}
	if err := chem.SDFFileWrite(name, mols...); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

// Plots writes the energy vs RMSD plot of S and the histogram of the pair RMSDs in values to dir.
func Plots(dir string, S *Summary, values []float64) error {
	pts := make([]chemplot.EnergyPoint, len(S.Conformers))
	for i, c := range S.Conformers {
		pts[i] = chemplot.EnergyPoint{Name: c.Name, RMSD: c.RMSD, Energy: c.RelEnergy, Discarded: c.Discarded}
	}
	p, err := chemplot.EnergyRMSD(pts, "Conformers")
	if err != nil {
		return err
	}
	if err := chemplot.Save(p, filepath.Join(dir, EnergyPlot)); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	h, err := chemplot.RMSDHistogram(values, Bins, "Pair RMSD")
	if err != nil {
		return err
	}
	return chemplot.Save(h, filepath.Join(dir, HistogramPlot))
}

// Options selects what WriteDir writes, besides the summary and the matrix.
type Options struct {
	Kept      bool
	Plots     bool
	EnergyTag string
}

// WriteDir writes the whole report of R to dir, creating it if needed, and returns the summary.
func WriteDir(dir string, R *dedup.Result, ens *ensemble.Ensemble, o Options) (*Summary, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	S, err := Summarize(R, ens)
	if err != nil {
		return nil, err
	}
	if err := writeFile(filepath.Join(dir, SummaryFile), func(w io.Writer) error { return WriteJSON(w, S) }); err != nil {
		return nil, err
	}
	if err := writeFile(filepath.Join(dir, MatrixFile), func(w io.Writer) error { return WriteMatrix(w, R.Matrix) }); err != nil {
		return nil, err
	}
	if o.Kept {
		if err := WriteConformers(filepath.Join(dir, KeptFile), R.Kept, o.EnergyTag); err != nil {
			return nil, err
		}
	}
	if o.Plots {
		if err := Plots(dir, S, rmsds(R.Matrix)); err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
	}
	return S, nil
}

func writeFile(name string, f func(io.Writer) error) error {
	out, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := f(out); err != nil {
		out.Close()
		return fmt.Errorf("report: %s: %w", name, err)
	}
	return out.Close()
}
