package log

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// FileMagic opens every capture file: the CBOR self-describe tag 55799.
// Decoders that do not know the format still read the file as plain CBOR.
var FileMagic = []byte{0xd9, 0xd9, 0xf7}

var (
	eventEncMode cbor.EncMode
	eventDecMode cbor.DecMode
)

func init() {
	var err error

	// Canonical key order keeps captures byte-comparable across runs.
	eventEncMode, err = cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("log: event encoder mode: %v", err))
	}

	// Events are shallow; tight limits stop a corrupt file from allocating wildly.
	eventDecMode, err = cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyQuiet,
		IndefLength:      cbor.IndefLengthAllowed,
		MaxNestedLevels:  8,
		MaxArrayElements: 1024,
		MaxMapPairs:      64,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("log: event decoder mode: %v", err))
	}
}

// EncodeEvent encodes one event using integer map keys.
func EncodeEvent(event Event) ([]byte, error) {
	return eventEncMode.Marshal(event)
}

// DecodeEvent decodes one event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := eventDecMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// NewEncoder returns an event stream encoder writing to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return eventEncMode.NewEncoder(w)
}

// NewDecoder returns an event stream decoder reading from r.
// A leading FileMagic is skipped.
func NewDecoder(r io.Reader) *cbor.Decoder {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(FileMagic)); err == nil && bytes.Equal(head, FileMagic) {
		_, _ = br.Discard(len(FileMagic))
	}
	return eventDecMode.NewDecoder(br)
}
