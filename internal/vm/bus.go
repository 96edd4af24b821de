package vm

// bus.go implements the memory-mapped I/O device bus and the composed
// Memory that the CPU actually uses: the bus routes byte accesses that fall
// within a registered device's range to that device; everything else falls
// back to the underlying linear memory.

import (
	"errors"
	"fmt"

	"github.com/mna/vm16/internal/log"
)

var (
	// ErrDeviceOverflow is returned if a device's end address (start+size)
	// does not fit in 16 bits.
	ErrDeviceOverflow = errors.New("bus: device range overflows address space")

	// ErrDeviceOverlap is returned if a device's range overlaps a range
	// already registered.
	ErrDeviceOverlap = errors.New("bus: device range overlaps existing device")
)

// deviceRange is a half-open byte range [start, end) routed to a device.
type deviceRange struct {
	start, end Word
	dev        Device
}

func (r deviceRange) contains(addr Word) bool {
	return addr >= r.start && addr < r.end
}

func (r deviceRange) overlaps(start, end Word) bool {
	return start < r.end && r.start < end
}

// DeviceBus routes byte accesses within registered address ranges to their
// owning device. Devices are owned by the bus; callers reach them only
// through Read/Write.
type DeviceBus struct {
	ranges []deviceRange
	log    *log.Logger
}

// NewDeviceBus creates an empty device bus.
func NewDeviceBus() *DeviceBus {
	return &DeviceBus{log: log.DefaultLogger()}
}

// RegisterDevice reserves [start, start+size) for dev. It fails if
// start+size does not fit in 16 bits or the range overlaps a range
// already registered.
func (b *DeviceBus) RegisterDevice(dev Device, start, size Word) error {
	end := uint32(start) + uint32(size)
	if end >= MaxMemory {
		return fmt.Errorf("%w: start=%s size=%d", ErrDeviceOverflow, start, size)
	}

	for _, r := range b.ranges {
		if r.overlaps(start, Word(end)) {
			return fmt.Errorf("%w: [%s, %s) overlaps [%s, %s)",
				ErrDeviceOverlap, start, Word(end), r.start, r.end)
		}
	}

	b.ranges = append(b.ranges, deviceRange{start: start, end: Word(end), dev: dev})
	b.log.Debug("registered device", log.String("START", start.String()), log.String("SIZE", Word(size).String()))

	return nil
}

// find returns the device and in-device offset owning addr, if any.
func (b *DeviceBus) find(addr Word) (Device, int, bool) {
	for _, r := range b.ranges {
		if r.contains(addr) {
			return r.dev, int(addr - r.start), true
		}
	}

	return nil, 0, false
}

// Read returns the byte a device supplies for addr, and whether any device
// owns addr.
func (b *DeviceBus) Read(addr Word) (Byte, bool) {
	if dev, offset, ok := b.find(addr); ok {
		return dev.Read(offset), true
	}

	return 0, false
}

// Write routes value to the device owning addr, if any, and reports
// whether a device handled it. Device writes are always accepted at the
// bus level.
func (b *DeviceBus) Write(addr Word, value Byte) bool {
	if dev, offset, ok := b.find(addr); ok {
		dev.Write(offset, value)
		return true
	}

	return false
}

// Memory composes a DeviceBus with a LinearMemory to implement Addressable:
// device ranges take priority; everything else falls back to linear
// storage. Word reads/writes that straddle a device/linear boundary are
// handled correctly because each byte is routed independently.
type Memory struct {
	Bus    *DeviceBus
	Linear *LinearMemory
}

// NewMemory composes a device bus and linear memory into a single
// Addressable.
func NewMemory(size int) *Memory {
	return &Memory{
		Bus:    NewDeviceBus(),
		Linear: NewLinearMemory(size),
	}
}

func (m *Memory) Read(addr Word) (Byte, bool) {
	if v, ok := m.Bus.Read(addr); ok {
		return v, true
	}

	return m.Linear.Read(addr)
}

func (m *Memory) Write(addr Word, value Byte) bool {
	if m.Bus.Write(addr, value) {
		return true
	}

	return m.Linear.Write(addr, value)
}

func (m *Memory) Read2(addr Word) (Word, bool)  { return read2(m, addr) }
func (m *Memory) Write2(addr Word, value Word) bool { return write2(m, addr, value) }
func (m *Memory) Copy(from, to Word, n int) bool    { return copyBytes(m, from, to, n) }

var _ Addressable = (*Memory)(nil)
var _ Addressable = (*LinearMemory)(nil)
