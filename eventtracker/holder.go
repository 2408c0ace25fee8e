package eventtracker

// AttributeReportRecord is one recorded attribute report.
//
// AttributeID is populated from the source endpoint number rather than
// the true attribute id — this looks inconsistent with its name, but the
// behavior is preserved deliberately (spec.md §9 Open Questions (a)).
type AttributeReportRecord struct {
	TimestampUnix int64
	ClusterID     uint16
	AttributeID   uint16
	RawValue      string
}

// RejoinRecord is one recorded device rejoin.
type RejoinRecord struct {
	TimestampUnix int64
	Secure        bool
}

const (
	attributeReportCapacity = 8
	rejoinCapacity          = 5
	checkinCapacity         = 5
)

// holder is the per-device recorder: bounded ring buffers plus counters
// (spec.md §4.7).
type holder struct {
	attributeReports ring[AttributeReportRecord]
	rejoins          ring[RejoinRecord]
	checkins         ring[int64]

	rejoinsSecure   int
	rejoinsInsecure int
	apsAckFailures  int
	duplicateSeqNum int

	lastSeq     byte
	haveLastSeq bool
}

func newHolder() *holder {
	return &holder{
		attributeReports: newRing[AttributeReportRecord](attributeReportCapacity),
		rejoins:          newRing[RejoinRecord](rejoinCapacity),
		checkins:         newRing[int64](checkinCapacity),
	}
}

func (h *holder) recordAttributeReport(rec AttributeReportRecord) {
	h.attributeReports.push(rec)
}

func (h *holder) recordRejoin(secure bool, nowUnix int64) {
	h.rejoins.push(RejoinRecord{TimestampUnix: nowUnix, Secure: secure})
	if secure {
		h.rejoinsSecure++
	} else {
		h.rejoinsInsecure++
	}
}

func (h *holder) rejoinsTotal() int {
	return h.rejoinsSecure + h.rejoinsInsecure
}

func (h *holder) recordCheckin(nowUnix int64) {
	h.checkins.push(nowUnix)
}

func (h *holder) recordAPSAckFailure() {
	h.apsAckFailures++
}

// observeSeqNum implements the duplicate-sequence-number rule (spec.md
// §4.7): if seq equals the last-observed value, count a duplicate;
// otherwise overwrite the last-observed value.
func (h *holder) observeSeqNum(seq byte) {
	if h.haveLastSeq && seq == h.lastSeq {
		h.duplicateSeqNum++
		return
	}
	h.lastSeq = seq
	h.haveLastSeq = true
}
