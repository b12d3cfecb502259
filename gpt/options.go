// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gpt

import (
	"fmt"

	"go.uber.org/zap"
)

// Options is the functional options struct for Table construction.
type Options struct {
	// Align is the LBA multiple Placement rounds starting_lba to. Zero
	// means NewFrom uses the sector-size default (§4.4), while FindFrom
	// and FindAtSector infer it from the used entries' starting LBAs,
	// using the sector-size default when no entry is used.
	Align uint64

	// PartitionEntryLBA overrides where the primary partition-entry array
	// begins. Zero means "use the conventional value of 2" (§4.2).
	PartitionEntryLBA uint64

	// RNG supplies entropy for RandomizeGUIDs, RandomizeDiskGUID and
	// RandomizePartitionGUIDs when they are called with a nil RNG.
	// Defaults to DefaultRNG().
	RNG RNG

	// Logger defaults to a no-op logger. No operation in this package
	// writes to it: the codec, table, invariants, placement and I/O glue
	// layers do not log.
	Logger *zap.Logger

	// MarkMBRBootable sets the BIOS-bootable status byte (0x80) on the
	// protective MBR's partition entry. It has no effect outside the
	// protective-MBR writer.
	MarkMBRBootable bool
}

// Option is the functional option func.
type Option func(*Options) error

// WithAlign sets the placement alignment, in sectors.
func WithAlign(sectors uint64) Option {
	return func(o *Options) error {
		if sectors == 0 {
			return fmt.Errorf("alignment must be greater than 0")
		}

		o.Align = sectors

		return nil
	}
}

// WithPartitionEntryLBA sets the LBA at which the primary partition-entry
// array begins.
func WithPartitionEntryLBA(lba uint64) Option {
	return func(o *Options) error {
		if lba < 2 {
			return fmt.Errorf("partition entry LBA must be greater or equal than 2")
		}

		o.PartitionEntryLBA = lba

		return nil
	}
}

// WithRNG overrides the RNG used for GUID generation.
func WithRNG(rng RNG) Option {
	return func(o *Options) error {
		o.RNG = rng

		return nil
	}
}

// WithMarkMBRBootable sets the BIOS-bootable status byte on the
// protective MBR's partition entry.
func WithMarkMBRBootable(value bool) Option {
	return func(o *Options) error {
		o.MarkMBRBootable = value

		return nil
	}
}

// WithLogger sets Options.Logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) error {
		o.Logger = logger

		return nil
	}
}

// NewDefaultOptions initializes an Options struct with default values and
// applies setters in order.
func NewDefaultOptions(setters ...Option) (*Options, error) {
	opts := &Options{
		RNG:    DefaultRNG(),
		Logger: zap.NewNop(),
	}

	for _, setter := range setters {
		if err := setter(opts); err != nil {
			return nil, err
		}
	}

	return opts, nil
}
