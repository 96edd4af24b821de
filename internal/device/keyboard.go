package device

import (
	"sync"

	"github.com/mna/vm16/internal/vm"
)

// Keyboard layout: offset 0 is a non-empty flag (1 if a key is queued, 0
// otherwise); offset 1 dequeues the front byte of the queue, or 0 if the
// queue is empty. Keys are appended by the console reader goroutine and
// consumed by the running program, so the queue itself needs its own
// synchronization independent of the CPU's single-goroutine execution.
const (
	kbdStatus = 0x00
	kbdData   = 0x01

	// KeyboardSize is the number of bytes the keyboard device occupies.
	KeyboardSize = kbdData + 1
)

// Keyboard is a hardwired input device for keypresses. Push is called by
// the console's input goroutine; Read/Write are called by the CPU.
type Keyboard struct {
	mut sync.Mutex

	queue []vm.Byte
}

// NewKeyboard creates an empty keyboard device.
func NewKeyboard() *Keyboard {
	return &Keyboard{}
}

// Push appends a key to the queue. It never blocks; the queue grows to
// hold whatever has not yet been consumed.
func (k *Keyboard) Push(key vm.Byte) {
	k.mut.Lock()
	defer k.mut.Unlock()

	k.queue = append(k.queue, key)
}

// Read returns the byte at offset within the device's range.
func (k *Keyboard) Read(offset int) vm.Byte {
	k.mut.Lock()
	defer k.mut.Unlock()

	switch offset {
	case kbdStatus:
		if len(k.queue) > 0 {
			return 1
		}

		return 0
	case kbdData:
		if len(k.queue) == 0 {
			return 0
		}

		b := k.queue[0]
		k.queue = k.queue[1:]

		return b
	default:
		return 0
	}
}

// Write is a no-op: the keyboard has no writable registers.
func (k *Keyboard) Write(offset int, value vm.Byte) {}

var _ vm.Device = (*Keyboard)(nil)
