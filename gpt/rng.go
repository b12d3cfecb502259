// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gpt

import "github.com/google/uuid"

// RNG produces 16 random bytes on demand. The core never generates
// entropy itself; callers supply an RNG, or rely on DefaultRNG.
type RNG interface {
	Read() [16]byte
}

// rngFunc adapts a plain function to the RNG interface.
type rngFunc func() [16]byte

func (f rngFunc) Read() [16]byte {
	return f()
}

// DefaultRNG returns an RNG backed by google/uuid's entropy source
// (crypto/rand under the hood), for callers who don't want to supply
// their own.
func DefaultRNG() RNG {
	return rngFunc(func() [16]byte {
		var b [16]byte

		id := uuid.New()
		copy(b[:], id[:])

		return b
	})
}
