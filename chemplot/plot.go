/*
 * plot.go, part of confsieve.
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

// Package chemplot draws the plots of a deduplication run: the energy of each conformer
// against its RMSD to the lowest-energy one, and the histogram of pair RMSDs.
package chemplot

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Size is the side of the square plots written by Save and WriteTo.
var Size = 5 * vg.Inch

// EnergyPoint is one conformer in an energy vs RMSD plot.
type EnergyPoint struct {
	Name      string
	RMSD      float64 //to the reference conformer
	Energy    float64 //relative to the reference conformer
	Discarded bool
}

func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

// EnergyRMSD returns a scatter plot of the energy of each point against its RMSD.
// Points are colored from red to violet by increasing energy. Discarded ones are drawn as crosses.
func EnergyRMSD(points []EnergyPoint, title string) (*plot.Plot, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("chemplot: no points to plot")
	}
	p := basicPlot(title, "RMSD to reference (A)", "Relative energy (kcal/mol)")
	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return points[order[i]].Energy < points[order[j]].Energy })
	var keptLegend, discLegend bool
	for rank, i := range order {
		s, err := plotter.NewScatter(plotter.XYs{{X: points[i].RMSD, Y: points[i].Energy}})
		if err != nil {
			return nil, fmt.Errorf("chemplot: %w", err)
		}
		s.GlyphStyle.Color = colors(rank, len(points))
		s.GlyphStyle.Radius = vg.Points(3)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		if points[i].Discarded {
			s.GlyphStyle.Shape = draw.CrossGlyph{}
			if !discLegend {
				p.Legend.Add("discarded", s)
				discLegend = true
			}
		} else if !keptLegend {
			p.Legend.Add("kept", s)
			keptLegend = true
		}
		p.Add(s)
	}
	p.Legend.Top = true
	return p, nil
}

// RMSDHistogram returns a histogram of values with the given number of bins.
func RMSDHistogram(values []float64, bins int, title string) (*plot.Plot, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("chemplot: no values to plot")
	}
	if bins < 1 {
		bins = 1
	}
	p := basicPlot(title, "Pair RMSD (A)", "Pairs")
	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return nil, fmt.Errorf("chemplot: %w", err)
	}
	h.FillColor = colors(4, 6)
	p.Add(h)
	return p, nil
}

// Save writes p to filename. The format is taken from the extension (png, svg, pdf...).
func Save(p *plot.Plot, filename string) error {
	if err := p.Save(Size, Size, filename); err != nil {
		return fmt.Errorf("chemplot: %w", err)
	}
	return nil
}

// WriteTo writes p to w in the given format.
func WriteTo(p *plot.Plot, w io.Writer, format string) error {
	format = strings.TrimPrefix(strings.ToLower(format), ".")
	if format == "" {
		format = "png"
	}
	wt, err := p.WriterTo(Size, Size, format)
	if err != nil {
		return fmt.Errorf("chemplot: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
