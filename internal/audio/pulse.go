// Package audio inspects the sound stack the capture collaborators depend on:
// PulseAudio/PipeWire input sources and raw ALSA card/device nodes.
package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

const monitorSuffix = ".monitor"

// Device describes one Pulse input source.
type Device struct {
	ID          string
	Description string
	State       string
	Available   bool
	Muted       bool
	Default     bool
}

// Usable reports whether the source can capture right now.
func (d Device) Usable() bool {
	return d.Available && !d.Muted
}

// ListDevices returns the Pulse capture sources with default/availability metadata.
// Monitor sources (sink loopbacks) are omitted since they cannot record the microphone.
func ListDevices(ctx context.Context) ([]Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client, err := pulse.NewClient(
		pulse.ClientApplicationName("vesta"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("read default source: %w", err)
	}

	var sourceInfos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &sourceInfos); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return captureDevices(sourceInfos, defaultSource.ID()), nil
}

func captureDevices(sources pulseproto.GetSourceInfoListReply, defaultID string) []Device {
	devices := make([]Device, 0, len(sources))
	for _, source := range sources {
		if source == nil || strings.HasSuffix(source.SourceName, monitorSuffix) {
			continue
		}
		devices = append(devices, Device{
			ID:          source.SourceName,
			Description: source.Device,
			State:       sourceStateString(source.State),
			Available:   sourceAvailable(source),
			Muted:       source.Mute,
			Default:     source.SourceName == defaultID,
		})
	}
	return devices
}

// DefaultUsable returns the default source when it can capture, else the first usable one.
func DefaultUsable(devices []Device) (Device, error) {
	if len(devices) == 0 {
		return Device{}, errors.New("no audio input devices found")
	}

	var first *Device
	for i := range devices {
		dev := &devices[i]
		if dev.Default && dev.Usable() {
			return *dev, nil
		}
		if first == nil && dev.Usable() {
			first = dev
		}
	}
	if first == nil {
		return Device{}, errors.New("every audio input source is muted or unavailable")
	}
	return *first, nil
}

// sourceStateString maps Pulse source state constants to human-readable values.
func sourceStateString(state uint32) string {
	switch state {
	case 0:
		return "running"
	case 1:
		return "idle"
	case 2:
		return "suspended"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}

// sourceAvailable maps Pulse source port availability to a simple boolean.
func sourceAvailable(source *pulseproto.GetSourceInfoReply) bool {
	if source == nil {
		return false
	}
	if len(source.Ports) == 0 {
		return true
	}
	for _, port := range source.Ports {
		if port.Name != source.ActivePortName {
			continue
		}
		// PulseAudio values: unknown=0, no=1, yes=2.
		return port.Available == 0 || port.Available == 2
	}
	return true
}
