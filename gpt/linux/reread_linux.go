// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package linux is the build-time Linux collaborator §6 describes: a
// thin ioctl shim to have the kernel re-read a partition table and to
// query sector sizes. None of it is part of the GPT core; the gpt
// package never imports it.
package linux

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"
	"unsafe"

	"github.com/siderolabs/go-retry/retry"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// RereadPartitionTable flushes the device's buffers and invokes the
// BLKRRPART ioctl so the kernel re-reads f's partition table, retrying
// on EBUSY (partitions still mounted) for up to 5 seconds.
func RereadPartitionTable(f *os.File, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync device: %w", err)
	}

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.BLKFLSBUF, 0); errno != 0 {
		return fmt.Errorf("flush block device buffers: %w", errno)
	}

	err := retry.Constant(5*time.Second, retry.WithUnits(50*time.Millisecond)).Retry(func() error {
		if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.BLKRRPART, 0); errno == 0 {
			return nil
		} else if errno == syscall.EBUSY {
			logger.Debug("BLKRRPART returned EBUSY, retrying", zap.String("device", f.Name()))

			return retry.ExpectedError(errno)
		} else {
			return retry.UnexpectedError(errno)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to re-read partition table: %w", err)
	}

	return nil
}

// LogicalSectorSize queries BLKSSZGET, falling back to 512 for regular
// files (not block devices).
func LogicalSectorSize(f *os.File) (uint64, error) {
	return querySectorSize(f, unix.BLKSSZGET)
}

// PhysicalBlockSize queries BLKPBSZGET, falling back to 512 for regular
// files. Detecting the *real* physical block size of an SSD is out of
// scope (§1); this only reports what the kernel is willing to tell us.
func PhysicalBlockSize(f *os.File) (uint64, error) {
	return querySectorSize(f, unix.BLKPBSZGET)
}

func querySectorSize(f *os.File, ioctl uintptr) (uint64, error) {
	var size int64

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), ioctl, uintptr(unsafe.Pointer(&size))); errno != 0 {
		st, statErr := f.Stat()
		if statErr == nil && st.Mode().IsRegular() {
			return 512, nil
		}

		return 0, errors.New("sector size ioctl failed")
	}

	return uint64(size), nil
}
