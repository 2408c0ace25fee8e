package cluster

import (
	"fmt"
	"strconv"

	"github.com/gwcore/zigbeedriver/descriptor"
)

// configUint resolves an unsigned integer configuration value, consulting
// the device descriptor first and falling back to the generic
// configuration metadata map (spec.md §4.1, "Values taken from
// device-descriptor metadata with fall-back to configuration metadata").
// The second return reports whether any source carried the key at all.
func configUint(desc descriptor.DeviceDescriptor, configMetadata map[string]string, key string) (uint32, bool, error) {
	raw, ok := desc.ConfigValue(key)
	if !ok {
		raw, ok = configMetadata[key]
	}
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, true, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return uint32(v), true, nil
}

// configBool is the boolean counterpart to configUint.
func configBool(desc descriptor.DeviceDescriptor, configMetadata map[string]string, key string) (bool, bool, error) {
	raw, ok := desc.ConfigValue(key)
	if !ok {
		raw, ok = configMetadata[key]
	}
	if !ok {
		return false, false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, true, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return v, true, nil
}

// checkRange validates v against [min, max] inclusive, returning an error
// named after key on violation.
func checkRange(key string, v, min, max uint32) error {
	if v < min || v > max {
		return fmt.Errorf("%s: value %d out of range [%d, %d]", key, v, min, max)
	}
	return nil
}
