// Package exchange provides the frame injection/capture collaborators for
// the switching verifier. The engine supplies a frame descriptor and an
// expectation; this package owns raw frame construction and the transport
// used to reach the device's segments.
package exchange

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
)

// Ethernet frame layout constants.
const (
	etherTypeIPv4 = 0x0800
	headerLen     = 14 // dst(6) + src(6) + ethertype(2)
	minFrameLen   = 60 // minimum on-wire size, CRC excluded
)

// BuildFrame assembles a raw Ethernet frame: destination, source,
// EtherType, then the payload token, zero-padded to the 60-byte minimum
// (the device appends the CRC).
func BuildFrame(src, dst, token string) ([]byte, error) {
	srcMAC, err := net.ParseMAC(src)
	if err != nil {
		return nil, fmt.Errorf("source MAC %q: %w", src, err)
	}
	dstMAC, err := net.ParseMAC(dst)
	if err != nil {
		return nil, fmt.Errorf("destination MAC %q: %w", dst, err)
	}
	if len(srcMAC) != 6 || len(dstMAC) != 6 {
		return nil, fmt.Errorf("MAC addresses must be EUI-48")
	}
	if token == "" {
		return nil, fmt.Errorf("payload token is required")
	}

	frame := make([]byte, 0, minFrameLen)
	frame = append(frame, dstMAC...)
	frame = append(frame, srcMAC...)
	frame = binary.BigEndian.AppendUint16(frame, etherTypeIPv4)
	frame = append(frame, token...)

	if len(frame) < minFrameLen {
		frame = append(frame, make([]byte, minFrameLen-len(frame))...)
	}
	return frame, nil
}

// MatchFrame reports whether a captured frame carries the payload token.
// Matching is by token equality within the payload, never by mere frame
// presence, so background traffic on a shared segment cannot satisfy a
// scenario by accident.
func MatchFrame(frame []byte, token string) bool {
	if len(frame) <= headerLen || token == "" {
		return false
	}
	return bytes.Contains(frame[headerLen:], []byte(token))
}
