package types

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// EUI64 is the 64-bit unique identifier of a Zigbee device. The textual id
// used to key persisted records is the lowercase hex encoding of the EUI,
// and the two are bijective: ParseEUI64(eui.String()) always round-trips.
type EUI64 uint64

// ParseEUI64 parses a hex-encoded EUI64, with or without a "0x" prefix.
func ParseEUI64(s string) (EUI64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("zigbeedriver: invalid EUI64 %q: %w", s, err)
	}
	return EUI64(v), nil
}

// String returns the canonical 16-character lowercase hex encoding, the
// device's textual id throughout the store and event tracker.
func (e EUI64) String() string {
	return fmt.Sprintf("%016x", uint64(e))
}

// Bytes returns the big-endian byte encoding of the EUI.
func (e EUI64) Bytes() [8]byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(e))
	return b
}

// MarshalText implements encoding.TextMarshaler so EUI64 round-trips through
// JSON as its canonical hex string rather than a decimal number.
func (e EUI64) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *EUI64) UnmarshalText(text []byte) error {
	v, err := ParseEUI64(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// FormatFirmwareVersion renders a 32-bit firmware version in the persisted
// resource format: a ten-character lowercase hex string with a "0x" prefix.
func FormatFirmwareVersion(v uint32) string {
	return fmt.Sprintf("0x%08x", v)
}

// ParseFirmwareVersion parses the persisted firmware version resource
// format produced by FormatFirmwareVersion.
func ParseFirmwareVersion(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("zigbeedriver: invalid firmware version %q: %w", s, err)
	}
	return uint32(v), nil
}
