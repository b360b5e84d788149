package main

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestHandleSnapshot_HeaderAndBodyRoundTrip(t *testing.T) {
	s := newCatalogServer()
	postItem(t, s, catalogItem{Name: "Widget", Category: "Hardware", Price: 9.99})
	postItem(t, s, catalogItem{Name: "Bolt", Category: "Hardware", Price: 0.5})

	req := httptest.NewRequest("GET", "/snapshot", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	require.Equal(t, 200, w.Code)

	body := w.Body.Bytes()
	r := bytes.NewReader(body)
	header, err := readSnapshotHeader(r)
	require.NoError(t, err)
	assert.EqualValues(t, 2, header.RecordCount)

	rest := make([]byte, r.Len())
	_, err = r.Read(rest)
	require.NoError(t, err)

	decompressed := make([]byte, header.RawSize)
	n, err := lz4.UncompressBlock(rest, decompressed)
	require.NoError(t, err)
	assert.EqualValues(t, header.RawSize, n)

	var snap snapshotPayload
	require.NoError(t, msgpack.Unmarshal(decompressed[:n], &snap))
	assert.Len(t, snap.Records, 2)
}

func TestReadSnapshotHeader_RejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSnapshotHeader(&buf, 0, 0))
	raw := buf.Bytes()
	raw[0] = 'X'

	_, err := readSnapshotHeader(bytes.NewReader(raw))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid snapshot format")
}
