// Package hwaddr validates and normalizes Ethernet hardware addresses.
package hwaddr

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrInvalidAddress is returned when a string is not a 6-octet hardware address.
var ErrInvalidAddress = errors.New("invalid MAC address format, expected AA:BB:CC:DD:EE:FF")

// Normalize returns the canonical uppercase, colon separated form of s.
// Separators may be ':', '-' or omitted.
func Normalize(s string) (string, error) {
	mac, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Format(mac), nil
}

// Parse decodes s into a 6-byte hardware address.
func Parse(s string) (net.HardwareAddr, error) {
	clean := strings.NewReplacer(":", "", "-", "").Replace(strings.TrimSpace(s))
	if len(clean) != 12 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	b, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	return net.HardwareAddr(b), nil
}

// Format renders mac in canonical form.
func Format(mac net.HardwareAddr) string {
	return strings.ToUpper(mac.String())
}
