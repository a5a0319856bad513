// Package flash programs firmware images onto a node over its serial
// bootloader and loads the image formats the build produces.
package flash

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcinbor85/gohex"
)

// Segment is a contiguous run of image bytes at a flash address.
type Segment struct {
	Addr uint32
	Data []byte
}

// appOffset is where the application image lives in flash when a raw binary
// gives no address information of its own.
const appOffset = 0x10000

// LoadImage reads a firmware image from disk. Intel HEX files carry their
// own addresses; raw binaries are placed at the application offset.
func LoadImage(path string) ([]Segment, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex":
		return loadIntelHex(path)
	case ".bin":
		return loadRawBinary(path, appOffset)
	default:
		return nil, fmt.Errorf("unsupported image format %q (want .hex or .bin)", filepath.Ext(path))
	}
}

func loadIntelHex(path string) ([]Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var segments []Segment
	for _, seg := range mem.GetDataSegments() {
		segments = append(segments, Segment{Addr: seg.Address, Data: seg.Data})
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("image %s contains no data", path)
	}
	return segments, nil
}

func loadRawBinary(path string, addr uint32) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image %s is empty", path)
	}
	return []Segment{{Addr: addr, Data: data}}, nil
}
