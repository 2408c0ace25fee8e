package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/types"
)

// SentCommand records one SendClusterCommand invocation on MockHAL.
type SentCommand struct {
	EUI         types.EUI64
	Endpoint    byte
	ClusterID   uint16
	CommandID   byte
	Payload     []byte
	MfgSpecific bool
	MfgID       uint16
}

// MockHAL implements hal.HAL, recording every call and returning canned
// responses installed via its setters.
type MockHAL struct {
	mu sync.Mutex

	Sent          []SentCommand
	LeaveRequests []types.EUI64
	Bindings      []uint16

	AttributeValues map[string]int64
	EnergyScans     map[byte]hal.EnergyScanSample
	AttributeInfos  map[uint16][]hal.AttributeInfo

	SendErr    error
	WriteErr   error
	BindErr    error
	LeaveErr   error
	ScanErr    error
	RefreshErr error
}

// NewMockHAL constructs an empty MockHAL.
func NewMockHAL() *MockHAL {
	return &MockHAL{
		AttributeValues: make(map[string]int64),
		EnergyScans:     make(map[byte]hal.EnergyScanSample),
		AttributeInfos:  make(map[uint16][]hal.AttributeInfo),
	}
}

func attrKey(eui types.EUI64, endpoint byte, clusterID, attributeID uint16) string {
	return fmt.Sprintf("%s/%d/%d/%d", eui, endpoint, clusterID, attributeID)
}

// SendClusterCommand implements hal.HAL.
func (m *MockHAL) SendClusterCommand(ctx context.Context, eui types.EUI64, endpoint byte, clusterID uint16, commandID byte, payload []byte, mfgSpecific bool, mfgID uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentCommand{eui, endpoint, clusterID, commandID, payload, mfgSpecific, mfgID})
	return m.SendErr
}

// ReadAttributeAsNumber implements hal.HAL.
func (m *MockHAL) ReadAttributeAsNumber(ctx context.Context, eui types.EUI64, endpoint byte, clusterID, attributeID uint16) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.AttributeValues[attrKey(eui, endpoint, clusterID, attributeID)], nil
}

// SetAttributeValue installs the value ReadAttributeAsNumber returns for a
// given device/endpoint/cluster/attribute tuple.
func (m *MockHAL) SetAttributeValue(eui types.EUI64, endpoint byte, clusterID, attributeID uint16, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AttributeValues[attrKey(eui, endpoint, clusterID, attributeID)] = value
}

// WriteAttribute implements hal.HAL.
func (m *MockHAL) WriteAttribute(ctx context.Context, eui types.EUI64, endpoint byte, clusterID, attributeID uint16, dataType hal.AttributeDataType, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.AttributeValues[attrKey(eui, endpoint, clusterID, attributeID)] = value
	return nil
}

// ConfigureAttributeReporting implements hal.HAL.
func (m *MockHAL) ConfigureAttributeReporting(ctx context.Context, eui types.EUI64, endpoint byte, clusterID, attributeID uint16, minIntervalSecs, maxIntervalSecs uint16, reportableChange int64) error {
	return nil
}

// SetBinding implements hal.HAL.
func (m *MockHAL) SetBinding(ctx context.Context, eui types.EUI64, endpoint byte, clusterID uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BindErr != nil {
		return m.BindErr
	}
	m.Bindings = append(m.Bindings, clusterID)
	return nil
}

// RequestLeave implements hal.HAL.
func (m *MockHAL) RequestLeave(ctx context.Context, eui types.EUI64, endpoint byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LeaveErr != nil {
		return m.LeaveErr
	}
	m.LeaveRequests = append(m.LeaveRequests, eui)
	return nil
}

// PerformEnergyScan implements hal.HAL.
func (m *MockHAL) PerformEnergyScan(ctx context.Context, channel byte, scanCount, scanDurationMs, scansPerChannel int) (hal.EnergyScanSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ScanErr != nil {
		return hal.EnergyScanSample{}, m.ScanErr
	}
	return m.EnergyScans[channel], nil
}

// RefreshFirmwareIndex implements hal.HAL.
func (m *MockHAL) RefreshFirmwareIndex(ctx context.Context) error {
	return m.RefreshErr
}

// EnumerateAttributeInfos implements hal.HAL.
func (m *MockHAL) EnumerateAttributeInfos(ctx context.Context, eui types.EUI64, endpoint byte, clusterID uint16) ([]hal.AttributeInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.AttributeInfos[clusterID], nil
}

// SentTo returns every recorded SendClusterCommand call for eui.
func (m *MockHAL) SentTo(eui types.EUI64) []SentCommand {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SentCommand
	for _, c := range m.Sent {
		if c.EUI == eui {
			out = append(out, c)
		}
	}
	return out
}
