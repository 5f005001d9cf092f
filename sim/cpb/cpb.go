// Package cpb defines the compact binary record schema for training
// batches (the ".cpb" member format inside binary archives).
//
// A batch holds every sample of one (year, month) period, serialized in
// a single pass with deterministic CBOR encoding so identical batches
// are byte-identical. Integer-keyed fields keep records compact; the
// schema version is embedded so readers can reject layouts they do not
// understand.
package cpb

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/campaign-sim/campaign-sim/sim"
)

// SchemaVersion is the current batch layout version.
const SchemaVersion = 1

// Record is one training sample in schema form.
type Record struct {
	Tick              uint64           `cbor:"1,keyasint"`
	Country           string           `cbor:"2,keyasint"`
	State             sim.VisibleState `cbor:"3,keyasint"`
	AvailableCommands []sim.Command    `cbor:"4,keyasint"`
	ChosenActions     []int32          `cbor:"5,keyasint"`
	ChosenCommands    []sim.Command    `cbor:"6,keyasint,omitempty"`
}

// Batch is all records of one calendar period.
type Batch struct {
	SchemaVersion uint16   `cbor:"1,keyasint"`
	Year          int32    `cbor:"2,keyasint"`
	Month         uint8    `cbor:"3,keyasint"`
	Records       []Record `cbor:"4,keyasint"`
}

var encMode cbor.EncMode

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cpb: building CBOR encode mode: %v", err))
	}
	encMode = em
}

// EncodeBatch serializes one period's records.
func EncodeBatch(year int32, month uint8, records []Record) ([]byte, error) {
	batch := Batch{
		SchemaVersion: SchemaVersion,
		Year:          year,
		Month:         month,
		Records:       records,
	}
	data, err := encMode.Marshal(&batch)
	if err != nil {
		return nil, fmt.Errorf("encoding batch %d-%02d: %w", year, month, err)
	}
	return data, nil
}

// DecodeBatch parses one serialized batch, rejecting unknown schema
// versions.
func DecodeBatch(data []byte) (*Batch, error) {
	var batch Batch
	if err := cbor.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("decoding batch: %w", err)
	}
	if batch.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("unsupported schema version %d (reader supports %d)",
			batch.SchemaVersion, SchemaVersion)
	}
	return &batch, nil
}
