/*
 * histo.go, part of confsieve.
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

// Package histo builds histograms and summary statistics of the RMSD values of
// a similarity matrix.
package histo

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Data is a histogram.
type Data struct {
	normalized bool
	total      int
	dividers   []float64
	histo      []float64
}

// NewData returns a new histogram with the given dividers and rawdata.
// rawdata can be nil. In that case, an empty histogram is created.
// Values outside the dividers are not counted.
func NewData(dividers []float64, rawdata []float64) *Data {
	if len(dividers) < 2 {
		panic("histo.NewData: at least 2 dividers are needed")
	}
	d := new(Data)
	d.dividers = append([]float64(nil), dividers...)
	d.histo = make([]float64, len(dividers)-1)
	if rawdata != nil {
		d.ReHisto(rawdata)
	}
	return d
}

// Dividers returns n+1 evenly spaced dividers for n bins from min to max.
// The last divider is nudged up so max itself falls in the last bin.
func Dividers(min, max float64, n int) []float64 {
	if n < 1 {
		n = 1
	}
	if max <= min {
		max = min + 1
	}
	d := make([]float64, n+1)
	floats.Span(d, min, max)
	d[n] = math.Nextafter(max, math.Inf(1))
	return d
}

// AddData adds the given data point(s) to the histogram.
func (D *Data) AddData(point ...float64) {
	norma := D.normalized
	if norma {
		D.UnNormalize()
	}
	for _, v := range point {
		//Values that are outside the dividers are just omitted.
		j := sort.SearchFloat64s(D.dividers, v)
		if j < len(D.dividers) && D.dividers[j] == v {
			j++
		}
		if j == 0 || j == len(D.dividers) {
			continue
		}
		D.histo[j-1]++
		D.total++
	}
	if norma {
		D.Normalize()
	}
}

// ReHisto replaces the contents of the histogram with the counts of rawdata.
// rawdata is not modified.
func (D *Data) ReHisto(rawdata []float64) {
	s := append([]float64(nil), rawdata...)
	sort.Float64s(s)
	//stat.Histogram panics instead of omitting the values that are off limits
	//so we remove them here before the call.
	maxi := sort.SearchFloat64s(s, D.dividers[len(D.dividers)-1])
	mini := sort.SearchFloat64s(s, D.dividers[0])
	s = s[mini:maxi]
	D.total = len(s)
	D.normalized = false
	D.histo = stat.Histogram(nil, D.dividers, s, nil)
}

// Normalized returns true if the histogram is normalized.
func (D *Data) Normalized() bool {
	return D.normalized
}

// Normalize divides each bin by the number of data points.
func (D *Data) Normalize() {
	D.normaunnorma(true)
}

// UnNormalize turns a normalized histogram back into counts.
func (D *Data) UnNormalize() {
	D.normaunnorma(false)
}

func (D *Data) normaunnorma(normalize bool) {
	if D.total <= 0 || D.normalized == normalize {
		return
	}
	n := float64(D.total)
	if normalize {
		n = 1 / n
	}
	D.normalized = normalize
	floats.Scale(n, D.histo)
}

// Total returns the number of data points counted.
func (D *Data) Total() int {
	return D.total
}

// CopyDividers returns a copy of the dividers.
func (D *Data) CopyDividers() []float64 {
	return append([]float64(nil), D.dividers...)
}

// View returns the bins. The slice is not a copy.
func (D *Data) View() []float64 {
	return D.histo
}

// Sum returns the sum of all bins.
func (D *Data) Sum() float64 {
	return floats.Sum(D.histo)
}

// String prints a -hopefully- pretty string representation of
// the histogram, in 3 lines of text.
func (D *Data) String() string {
	ret := fmt.Sprintf("Normalized: %v, TotalData: %d\n", D.normalized, D.total)
	d := make([]string, 0, len(D.histo))
	h := make([]string, 0, len(D.histo))
	for i, v := range D.histo {
		d = append(d, fmt.Sprintf("%4.2f-%4.2f", D.dividers[i], D.dividers[i+1]))
		h = append(h, fmt.Sprintf("%9.3f", v))
	}
	return ret + fmt.Sprintf("%s\n%s", strings.Join(d, " "), strings.Join(h, " "))
}

func (D *Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Normalized bool      `json:"normalized"`
		Total      int       `json:"total"`
		Dividers   []float64 `json:"dividers"`
		Histo      []float64 `json:"histo"`
	}{D.normalized, D.total, D.dividers, D.histo})
}

// Summary holds descriptive statistics of a sample.
type Summary struct {
	N      int     `json:"n"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Median float64 `json:"median"`
}

// Summarize returns the statistics of data, which is not modified.
// The standard deviation of a single value is 0.
func Summarize(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}
	s := append([]float64(nil), data...)
	sort.Float64s(s)
	ret := Summary{
		N:      len(s),
		Min:    s[0],
		Max:    s[len(s)-1],
		Mean:   stat.Mean(s, nil),
		Median: stat.Quantile(0.5, stat.Empirical, s, nil),
	}
	if len(s) > 1 {
		ret.StdDev = stat.StdDev(s, nil)
	}
	return ret
}
