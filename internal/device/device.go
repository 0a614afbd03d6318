// Package device wraps the low-level block-device operations the engine
// needs: opening a device node read-only and issuing the eject ioctl.
//
// Status values are plain kernel errnos (0 for success); translation into
// client-visible codes happens in the engine.
package device

import (
	"golang.org/x/sys/unix"
)

// CDROMEJECT from <linux/cdrom.h>. Removable media that cannot eject
// report ENOTTY, which callers treat as success.
const ioctlEject = 0x5309

// Device is an open read-only handle on a block device node.
type Device struct {
	fd int
}

// OpenReadOnly opens the device node at path. The returned status is an
// errno value; the handle is nil unless status is 0.
func OpenReadOnly(path string) (*Device, int) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errnoValue(err)
	}
	return &Device{fd: fd}, 0
}

// Eject issues the eject ioctl and returns the errno value.
func (d *Device) Eject() int {
	if err := unix.IoctlSetInt(d.fd, ioctlEject, 0); err != nil {
		return errnoValue(err)
	}
	return 0
}

// Close releases the device node.
func (d *Device) Close() {
	_ = unix.Close(d.fd)
	d.fd = -1
}

func errnoValue(err error) int {
	if errno, ok := err.(unix.Errno); ok {
		return int(errno)
	}
	return int(unix.EIO)
}
