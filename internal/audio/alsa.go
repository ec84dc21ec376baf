package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultProcRoot is where the kernel exposes ALSA card state.
const DefaultProcRoot = "/proc/asound"

// Direction selects the capture or playback PCM node of a device.
type Direction string

const (
	Capture  Direction = "c"
	Playback Direction = "p"
)

// ALSADevice is a parsed hardware PCM identifier such as "plughw:1,0".
type ALSADevice struct {
	Plugin string
	Card   int
	Device int
}

// ParseALSADevice parses "hw:C", "hw:C,D", "plughw:C,D" identifiers.
// A missing device number means device 0.
func ParseALSADevice(id string) (ALSADevice, error) {
	plugin, rest, ok := strings.Cut(strings.TrimSpace(id), ":")
	if !ok || (plugin != "hw" && plugin != "plughw") {
		return ALSADevice{}, fmt.Errorf("unsupported ALSA device %q: want hw:C[,D] or plughw:C[,D]", id)
	}

	cardText, deviceText, hasDevice := strings.Cut(rest, ",")
	card, err := strconv.Atoi(cardText)
	if err != nil || card < 0 {
		return ALSADevice{}, fmt.Errorf("invalid ALSA card in %q", id)
	}

	device := 0
	if hasDevice {
		device, err = strconv.Atoi(deviceText)
		if err != nil || device < 0 {
			return ALSADevice{}, fmt.Errorf("invalid ALSA device number in %q", id)
		}
	}

	return ALSADevice{Plugin: plugin, Card: card, Device: device}, nil
}

func (d ALSADevice) String() string {
	return fmt.Sprintf("%s:%d,%d", d.Plugin, d.Card, d.Device)
}

// ProbeALSA checks that id names an existing PCM node for dir under procRoot.
// It returns the card's human-readable id when present.
func ProbeALSA(procRoot string, id string, dir Direction) (string, error) {
	dev, err := ParseALSADevice(id)
	if err != nil {
		return "", err
	}

	cardDir := filepath.Join(procRoot, fmt.Sprintf("card%d", dev.Card))
	if _, err := os.Stat(cardDir); err != nil {
		return "", fmt.Errorf("ALSA card %d not present: %w", dev.Card, err)
	}

	pcm := filepath.Join(cardDir, fmt.Sprintf("pcm%d%s", dev.Device, dir))
	if _, err := os.Stat(pcm); err != nil {
		return "", fmt.Errorf("ALSA device %s has no %s node: %w", dev, directionName(dir), err)
	}

	name, err := os.ReadFile(filepath.Join(cardDir, "id"))
	if err != nil {
		return fmt.Sprintf("card%d", dev.Card), nil
	}
	return strings.TrimSpace(string(name)), nil
}

func directionName(dir Direction) string {
	if dir == Capture {
		return "capture"
	}
	return "playback"
}
