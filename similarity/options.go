/*
 * options.go, part of confsieve.
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

package similarity

import (
	"runtime"

	"go.uber.org/zap"
)

// Options contains the options for Build.
type Options struct {
	workers int
	logger  *zap.Logger
}

// DefaultOptions returns options for a sequential build that logs nothing.
func DefaultOptions() *Options {
	return &Options{workers: 1, logger: zap.NewNop()}
}

// ParallelOptions returns options that use one worker per logical CPU.
func ParallelOptions() *Options {
	o := DefaultOptions()
	o.workers = runtime.NumCPU()
	return o
}

// Workers returns the number of pairs computed concurrently,
// and sets it to a new value, if given.
func (O *Options) Workers(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		O.workers = n[0]
	}
	return O.workers
}

// Logger returns the logger used,
// and sets it to a new value, if given. It never returns nil.
func (O *Options) Logger(l ...*zap.Logger) *zap.Logger {
	if len(l) > 0 && l[0] != nil {
		O.logger = l[0]
	}
	if O.logger == nil {
		O.logger = zap.NewNop()
	}
	return O.logger
}
