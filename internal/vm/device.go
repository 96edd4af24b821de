package vm

// device.go defines the device protocol. Devices are opaque to the core:
// they expose a byte-granular read/write pair and nothing else. Word access
// is translated to two byte accesses by the Addressable capability, never
// by a device itself.

// Device is anything that can be memory-mapped onto the bus. Implementations
// may be stateful and are responsible for their own internal synchronization
// if they are touched from more than the CPU's goroutine (see package
// internal/device).
type Device interface {
	// Read returns the byte at offset within the device's own range.
	Read(offset int) Byte

	// Write stores value at offset within the device's own range.
	Write(offset int, value Byte)
}
