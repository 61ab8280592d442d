package report

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode encodes canonically so equal reports give equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("report: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalReport serializes a Report to CBOR bytes.
func MarshalReport(r Report) ([]byte, error) {
	return cborEncMode.Marshal(r)
}

// UnmarshalReport deserializes a Report from CBOR bytes.
func UnmarshalReport(data []byte) (Report, error) {
	var r Report
	if err := cbor.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("report: unmarshal report: %w", err)
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}

// MarshalSnapshot serializes a Snapshot to CBOR bytes.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSnapshot deserializes a Snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("report: unmarshal snapshot: %w", err)
	}
	return &s, nil
}
