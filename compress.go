/*
 * compress.go, part of confsieve.
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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// zstd.Decoder's Close returns nothing, so it can't be an io.ReadCloser by itself.
type multiCloser struct {
	io.Reader
	closers []func() error
}

// Close closes every layer, innermost first, and returns the first error found.
func (m *multiCloser) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// CompressionExt returns the compression extension of name ("gz", "zst") or
// an empty string if the file name doesn't indicate compression.
func CompressionExt(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "gz", "zst":
		return ext
	}
	return ""
}

// TrimCompressionExt returns name without its compression extension, if any.
func TrimCompressionExt(name string) string {
	if CompressionExt(name) == "" {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// OpenCompressed opens the file name for reading, decompressing it on the fly
// if its extension is .gz (gzip) or .zst (z-standard).
func OpenCompressed(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errDecorate(err, "OpenCompressed")
	}
	reader := bufio.NewReader(f)
	switch CompressionExt(name) {
	case "gz":
		gz, err := gzip.NewReader(reader)
		if err != nil {
			f.Close()
			return nil, newCError("OpenCompressed", "Can't open gzip stream %s: %s", name, err.Error())
		}
		return &multiCloser{gz, []func() error{gz.Close, f.Close}}, nil
	case "zst":
		zs, err := zstd.NewReader(reader)
		if err != nil {
			f.Close()
			return nil, newCError("OpenCompressed", "Can't open zstd stream %s: %s", name, err.Error())
		}
		return &multiCloser{zs, []func() error{func() error { zs.Close(); return nil }, f.Close}}, nil
	default:
		return &multiCloser{reader, []func() error{f.Close}}, nil
	}
}

// CreateCompressed creates the file name for writing, compressing the output
// if its extension is .gz or .zst. The returned writer must be closed to
// flush the compressed stream.
func CreateCompressed(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, errDecorate(err, "CreateCompressed")
	}
	var w io.WriteCloser
	switch CompressionExt(name) {
	case "gz":
		w = gzip.NewWriter(f)
	case "zst":
		w, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			f.Close()
			return nil, newCError("CreateCompressed", "Can't create zstd stream %s: %s", name, err.Error())
		}
	default:
		return f, nil
	}
	return &writeCloser{w, f}, nil
}

type writeCloser struct {
	io.WriteCloser
	f *os.File
}

func (w *writeCloser) Close() error {
	if err := w.WriteCloser.Close(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
