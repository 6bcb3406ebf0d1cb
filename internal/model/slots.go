package model

import (
	"encoding/json"
	"fmt"
)

// Slots is the fixed three-slot schedule of one day. The empty string is an
// empty slot and is encoded as JSON null.
type Slots [SlotCount]string

// IsEmpty reports whether every slot is empty.
func (s Slots) IsEmpty() bool {
	for _, id := range s {
		if id != "" {
			return false
		}
	}
	return true
}

// IndexOf returns the slot holding id, or -1.
func (s Slots) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, v := range s {
		if v == id {
			return i
		}
	}
	return -1
}

// Filled returns the non-empty ids in slot order.
func (s Slots) Filled() []string {
	out := make([]string, 0, SlotCount)
	for _, id := range s {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// FirstFree returns the first empty slot, or -1 when the day is full.
func (s Slots) FirstFree() int {
	for i, id := range s {
		if id == "" {
			return i
		}
	}
	return -1
}

func (s Slots) MarshalJSON() ([]byte, error) {
	out := make([]*string, SlotCount)
	for i := range s {
		if s[i] != "" {
			v := s[i]
			out[i] = &v
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts lists shorter than three entries and pads them with
// empty slots. Longer lists are rejected.
func (s *Slots) UnmarshalJSON(data []byte) error {
	var raw []*string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) > SlotCount {
		return fmt.Errorf("model: day has %d slots, at most %d allowed", len(raw), SlotCount)
	}
	*s = Slots{}
	for i, v := range raw {
		if v != nil {
			s[i] = *v
		}
	}
	return nil
}
