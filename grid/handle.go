package grid

import "strconv"

// Handle identifies a placed representation. The zero Handle is invalid.
// The low 32 bits hold the slot, the high 32 bits its generation, so a handle
// kept past its removal never matches a reused slot.
type Handle uint64

const handleSlotBits = 32

// MakeHandle packs a slot and generation. Slots start at 1.
func MakeHandle(slot int, gen uint32) Handle {
	return Handle(uint64(gen)<<handleSlotBits | uint64(uint32(slot)))
}

func (h Handle) Slot() int {
	return int(uint32(h))
}

func (h Handle) Generation() uint32 {
	return uint32(uint64(h) >> handleSlotBits)
}

func (h Handle) Valid() bool {
	return h.Slot() > 0
}

func (h Handle) String() string {
	return strconv.Itoa(h.Slot()) + "v" + strconv.FormatUint(uint64(h.Generation()), 10)
}
