package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"net/http"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// snapshotMagic/snapshotVersion identify a catalog snapshot frame on the
// wire, ahead of an LZ4-compressed msgpack body.
const (
	snapshotMagic   = "MIDX"
	snapshotVersion = 1
)

// snapshotHeader is the fixed frame written ahead of every snapshot body.
// Unlike a bare magic+version stamp, RecordCount and RawSize carry real
// information about the body that follows: a reader can reject a truncated
// download before decompressing, and size its decompression buffer from
// RawSize instead of growing it as it reads.
type snapshotHeader struct {
	Magic       [4]byte
	Version     uint8
	_           [3]byte // align RecordCount/RawSize to a 4-byte boundary
	RecordCount uint32
	RawSize     uint32
}

func writeSnapshotHeader(w *bytes.Buffer, recordCount, rawSize int) error {
	h := snapshotHeader{
		Version:     snapshotVersion,
		RecordCount: uint32(recordCount),
		RawSize:     uint32(rawSize),
	}
	copy(h.Magic[:], snapshotMagic)
	return binary.Write(w, binary.LittleEndian, h)
}

func readSnapshotHeader(r *bytes.Reader) (*snapshotHeader, error) {
	var h snapshotHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}
	if string(h.Magic[:]) != snapshotMagic {
		return nil, fmt.Errorf("invalid snapshot format: expected %s, got %s", snapshotMagic, string(h.Magic[:]))
	}
	if h.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version: %d", h.Version)
	}
	return &h, nil
}

// snapshotPayload is the msgpack-encoded body of a snapshot: every live
// record, flattened with its key alongside it so the dump can be read back
// without the container.
type snapshotPayload struct {
	Records []catalogRecord `msgpack:"records"`
}

// handleSnapshot msgpack-encodes every live record and LZ4-block-compresses
// the result behind a snapshotHeader, so the response body is a
// self-describing dump: a reader validates the magic/version, reads off
// RecordCount/RawSize, and only then decompresses. GET only; this demo
// never persists a snapshot itself.
func (s *catalogServer) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := snapshotPayload{}
	it := s.catalog.Begin()
	for {
		h, ok := it.Next()
		if !ok {
			break
		}
		p := h.Payload()
		snap.Records = append(snap.Records, catalogRecord{
			ID:       h.Key(),
			Name:     p.Name,
			Category: p.Category,
			Price:    p.Price,
		})
	}

	encoded, err := msgpack.Marshal(snap)
	if err != nil {
		log.Printf("ERROR: snapshot encode failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "snapshot encode failed")
		return
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(encoded)))
	var hashTable [1 << 16]int
	n, err := lz4.CompressBlock(encoded, compressed, hashTable[:])
	if err != nil {
		log.Printf("ERROR: snapshot compress failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "snapshot compress failed")
		return
	}
	compressed = compressed[:n]

	var buf bytes.Buffer
	if err := writeSnapshotHeader(&buf, len(snap.Records), len(encoded)); err != nil {
		log.Printf("ERROR: snapshot header write failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "snapshot header failed")
		return
	}
	buf.Write(compressed)

	log.Printf("INFO: snapshot produced %d records, %d bytes compressed", len(snap.Records), len(compressed))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(buf.Bytes())
}
