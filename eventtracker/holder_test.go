package eventtracker

import "testing"

func TestHolderObserveSeqNumCountsOnlyImmediateRepeat(t *testing.T) {
	h := newHolder()
	seqs := []byte{5, 5, 6, 6, 6}
	for _, s := range seqs {
		h.observeSeqNum(s)
	}
	if h.duplicateSeqNum != 3 {
		t.Fatalf("duplicateSeqNum = %d, want 3", h.duplicateSeqNum)
	}
}

func TestHolderObserveSeqNumNonConsecutiveRepeatNotCounted(t *testing.T) {
	h := newHolder()
	for _, s := range []byte{1, 2, 1} {
		h.observeSeqNum(s)
	}
	if h.duplicateSeqNum != 0 {
		t.Fatalf("duplicateSeqNum = %d, want 0", h.duplicateSeqNum)
	}
}

func TestHolderAttributeReportsBoundedAtCapacity(t *testing.T) {
	h := newHolder()
	for i := int64(1); i <= 9; i++ {
		h.recordAttributeReport(AttributeReportRecord{TimestampUnix: i})
	}
	got := h.attributeReports.snapshot()
	if len(got) != attributeReportCapacity {
		t.Fatalf("len = %d, want %d", len(got), attributeReportCapacity)
	}
	for _, rec := range got {
		if rec.TimestampUnix == 1 {
			t.Fatalf("oldest record (timestamp 1) should have been evicted, got %+v", got)
		}
	}
	if got[len(got)-1].TimestampUnix != 9 {
		t.Fatalf("newest record timestamp = %d, want 9", got[len(got)-1].TimestampUnix)
	}
}

func TestHolderRejoinCounters(t *testing.T) {
	h := newHolder()
	h.recordRejoin(true, 100)
	h.recordRejoin(false, 101)
	h.recordRejoin(true, 102)

	if h.rejoinsTotal() != 3 {
		t.Fatalf("rejoinsTotal = %d, want 3", h.rejoinsTotal())
	}
	if h.rejoinsSecure != 2 || h.rejoinsInsecure != 1 {
		t.Fatalf("secure=%d insecure=%d, want 2/1", h.rejoinsSecure, h.rejoinsInsecure)
	}
}
