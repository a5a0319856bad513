package flash

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/sigurn/crc16"
	"go.bug.st/serial"
)

// Serial bootloader framing. Each block is programmed with one frame:
//
//	SOP | CMD | addr (LE32) | len (LE16) | data | CRC-16/CCITT (LE16) | EOP
//
// The CRC covers CMD through the end of data. The bootloader answers every
// frame with ACK or NAK.
const (
	frameSOP   = 0x01
	frameEOP   = 0x17
	cmdProgram = 0x39

	respACK = 0x06
	respNAK = 0x15

	// blockSize matches the bootloader's row buffer.
	blockSize = 256
)

var crcTable = crc16.MakeTable(crc16.CRC16_CCITT_FALSE)

// Programmer writes image segments block-by-block over an open port.
type Programmer struct {
	port io.ReadWriter

	// Progress, when set, is called after every acknowledged block with the
	// running byte counts.
	Progress func(written, total int)
}

// NewProgrammer wraps an open serial port (or any transport in tests).
func NewProgrammer(port io.ReadWriter) *Programmer {
	return &Programmer{port: port}
}

// OpenPort opens the named serial port in 8N1 at the given baud rate with a
// read timeout suited to the bootloader's ACK latency.
func OpenPort(name string, baud int) (serial.Port, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", name, err)
	}
	if err := port.SetReadTimeout(2 * time.Second); err != nil {
		port.Close() //nolint:errcheck
		return nil, fmt.Errorf("setting read timeout: %w", err)
	}
	return port, nil
}

// Program writes all segments to the device, largest address last, blocking
// until every block is acknowledged.
func (p *Programmer) Program(segments []Segment) error {
	total := 0
	for _, seg := range segments {
		total += len(seg.Data)
	}

	written := 0
	for _, seg := range segments {
		addr := seg.Addr
		data := seg.Data
		for len(data) > 0 {
			n := min(len(data), blockSize)
			if err := p.writeBlock(addr, data[:n]); err != nil {
				return fmt.Errorf("block at 0x%08x: %w", addr, err)
			}
			written += n
			if p.Progress != nil {
				p.Progress(written, total)
			}
			addr += uint32(n)
			data = data[n:]
		}
	}
	return nil
}

func (p *Programmer) writeBlock(addr uint32, data []byte) error {
	frame := encodeFrame(cmdProgram, addr, data)
	if _, err := p.port.Write(frame); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}

	var resp [1]byte
	if _, err := io.ReadFull(p.port, resp[:]); err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	switch resp[0] {
	case respACK:
		return nil
	case respNAK:
		return fmt.Errorf("bootloader rejected block (NAK)")
	default:
		return fmt.Errorf("unexpected bootloader response 0x%02x", resp[0])
	}
}

// encodeFrame builds one protocol frame around cmd, addr, and data.
func encodeFrame(cmd byte, addr uint32, data []byte) []byte {
	body := make([]byte, 0, 1+4+2+len(data))
	body = append(body, cmd)
	body = binary.LittleEndian.AppendUint32(body, addr)
	body = binary.LittleEndian.AppendUint16(body, uint16(len(data)))
	body = append(body, data...)

	frame := make([]byte, 0, len(body)+4)
	frame = append(frame, frameSOP)
	frame = append(frame, body...)
	frame = binary.LittleEndian.AppendUint16(frame, crc16.Checksum(body, crcTable))
	frame = append(frame, frameEOP)
	return frame
}
