package parser

import (
	"encoding/binary"
	"fmt"

	"wallet-lens/pkg/types"
)

// Tagged record layout: marker(4) | length(2, big-endian) | value(length)
const (
	MarkerLen    = 4
	lengthLen    = 2
	recordHeader = MarkerLen + lengthLen
)

// Marker is the literal byte sequence that opens a tagged record
type Marker [MarkerLen]byte

// DefaultMarker is the master-key tag used by Berkeley DB wallets
var DefaultMarker = Marker{'m', 'k', 'e', 'y'}

// ParseMarker converts a 4-byte tag into a Marker
func ParseMarker(tag []byte) (Marker, error) {
	var m Marker
	if len(tag) != MarkerLen {
		return m, fmt.Errorf("marker must be exactly %d bytes, got %d", MarkerLen, len(tag))
	}
	copy(m[:], tag)
	return m, nil
}

func (m Marker) String() string { return string(m[:]) }

// TaggedRecord is one marker + length + value unit found in a buffer
type TaggedRecord struct {
	Offset int    // position of the marker
	Length uint16 // declared value length
	Value  []byte // copy of the value blob
}

// Key returns the first n bytes of the value, or the whole value if shorter
func (r TaggedRecord) Key(n int) []byte {
	if n > len(r.Value) {
		n = len(r.Value)
	}
	return r.Value[:n]
}

// Truncation describes a marker match that ran past the end of the buffer.
// Declared is the value length read from the record, or -1 when the length
// field itself was cut off.
type Truncation struct {
	Offset    int
	Declared  int
	Available int
}

// Output converts to the JSON representation
func (t *Truncation) Output() *types.Truncation {
	if t == nil {
		return nil
	}
	return &types.Truncation{Offset: t.Offset, Declared: t.Declared, Available: t.Available}
}

// RecordScan is the result of one pass over a buffer
type RecordScan struct {
	Records   []TaggedRecord
	Truncated *Truncation
}

// ScanTaggedRecords walks the buffer left to right looking for marker. Each
// match is followed by a big-endian uint16 length and that many value bytes.
// Scanning resumes after the consumed value, so bytes inside a record are
// never read as a new marker. A match without room for its length field or
// value stops the scan; records already found are kept.
func ScanTaggedRecords(buffer []byte, marker Marker) RecordScan {
	var scan RecordScan

	pos := 0
	for pos+MarkerLen <= len(buffer) {
		if [MarkerLen]byte(buffer[pos:pos+MarkerLen]) != marker {
			pos++
			continue
		}

		// Length field
		if pos+recordHeader > len(buffer) {
			scan.Truncated = &Truncation{
				Offset:    pos,
				Declared:  -1,
				Available: len(buffer) - pos - MarkerLen,
			}
			break
		}
		valLen := int(binary.BigEndian.Uint16(buffer[pos+MarkerLen : pos+recordHeader]))

		// Value blob
		valStart := pos + recordHeader
		if valStart+valLen > len(buffer) {
			scan.Truncated = &Truncation{
				Offset:    pos,
				Declared:  valLen,
				Available: len(buffer) - valStart,
			}
			break
		}

		value := make([]byte, valLen)
		copy(value, buffer[valStart:valStart+valLen])
		scan.Records = append(scan.Records, TaggedRecord{
			Offset: pos,
			Length: uint16(valLen),
			Value:  value,
		})

		pos = valStart + valLen
	}

	return scan
}
