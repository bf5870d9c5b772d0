package core

import "fmt"

// DeviceKind identifies the class of compute device a tensor or plane is
// placed on. Only CPU is actually backed by a kernel implementation in
// this core; other kinds are modeled so set_device/push_device semantics
// (spec section 5) are faithfully representable, and so that requesting
// an unavailable device fails the way the spec requires.
type DeviceKind int

const (
	DeviceCPU DeviceKind = iota
	DeviceCUDA
)

func (k DeviceKind) String() string {
	switch k {
	case DeviceCPU:
		return "cpu"
	case DeviceCUDA:
		return "cuda"
	default:
		return "unknown"
	}
}

// Device names a target compute device. Scan.SetDevice only records the
// device for channels loaded afterwards; no code moves an already-loaded
// channel to another device.
type Device struct {
	Kind DeviceKind
	ID   int
}

// DefaultDevice is the module-level default target device: CPU.
var DefaultDevice = Device{Kind: DeviceCPU}

func (d Device) String() string {
	if d.Kind == DeviceCPU {
		return "cpu"
	}
	return fmt.Sprintf("%s:%d", d.Kind, d.ID)
}

// ParseDevice parses a device string ("cpu", "cuda:0") the way
// set_device(string_view) does in the original. Returns ErrUnsupportedDevice
// immediately for anything this core can't actually run a kernel on.
func ParseDevice(s string) (Device, error) {
	switch s {
	case "", "cpu":
		return DefaultDevice, nil
	default:
		return Device{}, fmt.Errorf("device %q: %w", s, ErrUnsupportedDevice)
	}
}

// Supported reports whether this core has a real kernel implementation
// for the device. Only CPU does; GPU backends are out of scope (spec
// section 1: the dense tensor/device library is given, not reimplemented
// here). Channel access does not consult it; ParseDevice is where a
// non-CPU device string is rejected.
func (d Device) Supported() bool {
	return d.Kind == DeviceCPU
}
