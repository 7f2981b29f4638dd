/*
 * errors.go, part of confsieve.
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

import "fmt"

// CError is the generic error type of the package.
// deco holds the names of the functions the error went through, innermost first.
type CError struct {
	msg  string
	deco []string
}

// Error returns a string with an error message.
func (err CError) Error() string {
	if len(err.deco) == 0 {
		return err.msg
	}
	return fmt.Sprintf("%s (%v)", err.msg, err.deco)
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err *CError) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

// newCError builds a CError already decorated with the caller's name.
func newCError(caller, format string, args ...interface{}) *CError {
	return &CError{msg: fmt.Sprintf(format, args...), deco: []string{caller}}
}

// errDecorate adds caller to the decoration of err, if err supports it.
// Other errors are returned unchanged.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if err2, ok := err.(Error); ok {
		err2.Decorate(caller)
		return err2
	}
	return err
}

// PanicMsg is a message used for panics, even though it does satisfy the error interface.
// for errors use CError.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNilData          = PanicMsg("confsieve: Nil data given ")
	ErrInconsistentData = PanicMsg("confsieve: Inconsistent data length ")
	ErrNilMatrix        = PanicMsg("confsieve: Attempted to access nil v3.Matrix or gonum/mat.Dense")
	ErrAtomOutOfRange   = PanicMsg("confsieve: Requested/Attempted setting Atom out of range")
	ErrFrameOutOfRange  = PanicMsg("confsieve: Requested frame out of range")
	ErrNilFrame         = PanicMsg("confsieve: Attempted to acces nil frame")
	ErrBondNotInAtom    = PanicMsg("confsieve: Trying to cross a bond from an atom not present in the bond")
)
