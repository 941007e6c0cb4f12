package dataset

import (
	"testing"

	"github.com/51Degrees/ip-intelligence-go/internal/wire"
)

func TestDiagnose_CleanDatasetReportsNoIssues(t *testing.T) {
	bf := buildSyntheticDataset()
	ds, err := OpenMemory(bf.bytes, Config{}, []string{bf.requiredProperty})
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer ds.Close()

	report := ds.Diagnose()
	if report.HasErrors() {
		t.Fatalf("expected no errors, got %+v", report.Diagnostics)
	}
	if !report.HasAnyIssues() {
		t.Fatalf("expected the clean-scan info finding to be recorded")
	}
	if report.Summary.Info != 1 {
		t.Fatalf("expected exactly one info finding, got %d", report.Summary.Info)
	}
}

func TestDiagnose_OutOfRangePropertyComponentIndexIsReported(t *testing.T) {
	bf := buildSyntheticDataset()

	header, err := wire.ParseDataSetHeader(bf.bytes)
	if err != nil {
		t.Fatalf("ParseDataSetHeader: %v", err)
	}

	// Corrupt the single Property record's ComponentIndex (the fixed
	// record's first field) to point past the one component the fixture
	// declares, before the dataset is ever opened.
	propsStart := header.Collections[3].StartPosition
	binaryPutU32(bf.bytes, int(propsStart), 0xFFFFFFFF)

	ds, err := OpenMemory(bf.bytes, Config{}, []string{bf.requiredProperty})
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer ds.Close()

	report := ds.Diagnose()
	if !report.HasErrors() {
		t.Fatalf("expected the corrupted componentIndex to be reported as an error")
	}
}

func binaryPutU32(buf []byte, at int, v uint32) {
	buf[at+0] = byte(v)
	buf[at+1] = byte(v >> 8)
	buf[at+2] = byte(v >> 16)
	buf[at+3] = byte(v >> 24)
}
