package hal

import (
	"math/rand/v2"
	"net"
)

// defaultAPAddr is the gateway address the runtime assigns to the softAP
// netif. Same address the stock vendor DHCP server hands itself.
const defaultAPAddr = "192.168.4.1"

// newHostTable builds the patch table for the host target. The sensor driver
// synthesizes plausible DHT-style samples so the rest of the stack behaves
// identically whether or not real silicon is attached.
func newHostTable() (*patchTable, error) {
	return &patchTable{
		readSensor:       hostReadSensor,
		startAccessPoint: hostStartAccessPoint,
	}, nil
}

// hostReadSensor returns a synthetic sample: temperature 20–30 °C,
// humidity 50–70 %RH.
func hostReadSensor() (Sample, error) {
	return Sample{
		Temperature: 20.0 + rand.Float64()*10.0,
		Humidity:    50.0 + rand.Float64()*20.0,
	}, nil
}

// hostStartAccessPoint pretends to bring the radio up and reports the
// runtime's default softAP address.
func hostStartAccessPoint(_ AccessPointConfig) (NetifInfo, error) {
	return NetifInfo{IP: net.ParseIP(defaultAPAddr)}, nil
}
