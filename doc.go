/*
 * doc.go, part of confsieve.
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

/*Package chem is the main package of the confsieve library. It provides atom and molecule structures,
facilities for reading and writing the files used to carry conformer ensembles (XYZ, and V2000
SD/MOL files, optionally compressed with gzip or zstd), bond assignment from distances and
the geometric primitives (Kabsch superposition, RMSD) used by the rest of the library.

The coordinates of a molecule are kept apart from its topology, as v3.Matrix objects, one per frame.
Atom indexes are 0-based everywhere in the API.
*/
package chem
