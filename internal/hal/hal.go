// Package hal is the vendor hardware-abstraction runtime. The runtime ships
// with an unlinked patch table: every entry point resolves through symbols
// that LinkPatches binds into the process exactly once. Calling any HAL
// operation before the patches are linked fails with ErrNotPatched.
//
// LinkPatches is invoked by the bootstrap sequencer as its first step and
// nowhere else.
package hal

import (
	"errors"
	"fmt"
	"net"
	"sync/atomic"
)

// ErrNotPatched is returned by every HAL operation invoked before
// LinkPatches has completed.
var ErrNotPatched = errors.New("hal: runtime patches not linked")

// ErrAlreadyPatched is returned when LinkPatches is invoked twice. The patch
// table is process-global and must be bound exactly once.
var ErrAlreadyPatched = errors.New("hal: runtime patches already linked")

// Sample is one raw measurement from the on-board sensor.
type Sample struct {
	Temperature float64 // °C
	Humidity    float64 // %RH
}

// AuthMode selects the access point's authentication scheme.
type AuthMode int

const (
	AuthOpen AuthMode = iota
	AuthWPA2Personal
)

func (a AuthMode) String() string {
	if a == AuthWPA2Personal {
		return "wpa2-personal"
	}
	return "open"
}

// AccessPointConfig is the radio-level AP configuration handed to the vendor
// runtime. Validation happens above this layer; the HAL applies it verbatim.
type AccessPointConfig struct {
	SSID        string
	Password    string
	AuthMode    AuthMode
	Channel     int
	Hidden      bool
	MaxStations int
}

// NetifInfo describes the network interface backing a started access point.
type NetifInfo struct {
	IP net.IP
}

// patchTable holds the runtime entry points bound by LinkPatches.
type patchTable struct {
	readSensor       func() (Sample, error)
	startAccessPoint func(AccessPointConfig) (NetifInfo, error)
}

var table atomic.Pointer[patchTable]

// LinkPatches binds the vendor runtime's symbol patches into the process.
// This is the bootstrap sequencer's step 1: it must complete before any
// other HAL call and before the logger sink is installed, and it performs
// no logging itself. A second call is rejected.
func LinkPatches() error {
	t, err := newHostTable()
	if err != nil {
		return fmt.Errorf("hal: linking host patch table: %w", err)
	}
	if !table.CompareAndSwap(nil, t) {
		return ErrAlreadyPatched
	}
	return nil
}

func linked() (*patchTable, error) {
	t := table.Load()
	if t == nil {
		return nil, ErrNotPatched
	}
	return t, nil
}

// ReadSensor takes one raw sample from the on-board sensor.
func ReadSensor() (Sample, error) {
	t, err := linked()
	if err != nil {
		return Sample{}, err
	}
	return t.readSensor()
}

// StartAccessPoint brings up the software access point and returns its
// network interface once it is up.
func StartAccessPoint(cfg AccessPointConfig) (NetifInfo, error) {
	t, err := linked()
	if err != nil {
		return NetifInfo{}, err
	}
	return t.startAccessPoint(cfg)
}
