package pcm

import (
	"fmt"
	"strings"
)

type DeviceDescriptor struct {
	Index             int
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
}

func (d DeviceDescriptor) String() string {
	return fmt.Sprintf("%d: %s (inputs: %d, rate: %.0f)", d.Index, d.Name, d.MaxInputChannels, d.DefaultSampleRate)
}

// SelectDevice returns the index of the device whose name contains the given
// name (case-insensitively). If several devices match, the last one wins. An
// empty name or no match selects index 0.
func SelectDevice(devices []DeviceDescriptor, name string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return 0
	}
	selected := 0
	for _, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), name) {
			selected = d.Index
		}
	}
	return selected
}
