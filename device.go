package diskarb

import "github.com/ehrlich-b/go-diskarb/internal/device"

// SystemDevices is the DeviceOps implementation backed by real device
// nodes. The daemon wires it in; tests use MockDevices.
type SystemDevices struct{}

func (SystemDevices) OpenReadOnly(path string) (DeviceHandle, int) {
	d, status := device.OpenReadOnly(path)
	if status != 0 {
		return nil, status
	}
	return d, 0
}

// Compile-time interface checks
var (
	_ DeviceOps    = SystemDevices{}
	_ DeviceHandle = (*device.Device)(nil)
)
