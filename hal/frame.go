package hal

import "github.com/gwcore/zigbeedriver/types"

// AttributeDataType mirrors the ZCL attribute data-type tag carried on the
// wire; the runtime only needs enough of it to decode numeric and string
// reports without reaching into the HAL's own framing.
type AttributeDataType byte

// Recognized attribute data types. Values mirror the ZCL type identifiers
// the HAL uses on the wire; only the ones the cluster handlers in this
// module actually decode are named.
const (
	DataTypeBoolean  AttributeDataType = 0x10
	DataTypeBitmap8  AttributeDataType = 0x18
	DataTypeUint8    AttributeDataType = 0x20
	DataTypeUint16   AttributeDataType = 0x21
	DataTypeUint32   AttributeDataType = 0x23
	DataTypeInt8     AttributeDataType = 0x28
	DataTypeInt16    AttributeDataType = 0x29
	DataTypeInt32    AttributeDataType = 0x2b
	DataTypeCharStr  AttributeDataType = 0x42
	DataTypeOctetStr AttributeDataType = 0x41
)

// AttributeReport is one attribute/value pair inside an inbound report
// frame. RawValue is the attribute's undecoded payload; cluster handlers
// interpret it per DataType.
type AttributeReport struct {
	AttributeID uint16
	DataType    AttributeDataType
	RawValue    []byte
}

// AttributeInfo describes one attribute a HAL inventory walk discovered on
// an endpoint/cluster pair, used to populate a DiscoveredDeviceRecord.
type AttributeInfo struct {
	AttributeID uint16
	DataType    AttributeDataType
}

// Envelope is one inbound frame delivered by the HAL I/O thread, covering
// both attribute reports and cluster commands. The runtime serializes
// delivery per device; Envelope carries enough of the link-layer metadata
// (near-end RSSI/LQI, sequence number) for the dispatch path to update
// diagnostics resources without a second HAL round trip.
type Envelope struct {
	EUI         types.EUI64
	Endpoint    byte
	ClusterID   uint16
	Sequence    byte
	MfgSpecific bool
	MfgID       uint16

	// IsAttributeReport distinguishes a report envelope from a command
	// envelope; the two carry different payload shapes below.
	IsAttributeReport bool
	Attributes        []AttributeReport

	CommandID byte
	Payload   []byte

	NearEndRSSI int32
	NearEndLQI  uint32
}

// EnergyScanSample is the min/max/mean RSSI observed for one channel during
// one scan run. The tracker keeps only the latest sample per channel, not
// an accumulating history.
type EnergyScanSample struct {
	Channel byte
	MinRSSI int32
	MaxRSSI int32
	MeanRSSI float64
}
