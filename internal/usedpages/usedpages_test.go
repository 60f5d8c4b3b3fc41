package usedpages_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilhasse/go-mdb/internal/leformat"
	"github.com/wilhasse/go-mdb/internal/usedpages"
)

func TestDecodeInlineJET4(t *testing.T) {
	page := make([]byte, leformat.JET4.PageSize())
	off := 14
	binary.LittleEndian.PutUint16(page[off:], 0) // firstPageApplies
	off += 2
	page[off] = 0 // mapType=inline
	off += 1
	binary.LittleEndian.PutUint32(page[off:], 4) // pageStart
	off += 4
	page[off] = 0b00000101 // pages 4 and 6

	pages, err := usedpages.Decode(leformat.JET4, page, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{4, 6}, pages)
}

func TestDecodePagedJET4(t *testing.T) {
	page := make([]byte, leformat.JET4.PageSize())
	off := 14 + 2
	page[off] = 1 // mapType=paged
	off += 1
	binary.LittleEndian.PutUint32(page[off:], 20) // first referenced page

	refPage := make([]byte, leformat.JET4.PageSize())
	refPage[4] = 0b00000001 // first data page owned

	fetch := func(idx uint32) ([]byte, error) {
		require.EqualValues(t, 20, idx)
		return refPage, nil
	}

	pages, err := usedpages.Decode(leformat.JET4, page, fetch)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0}, pages)
}

func TestDecodeUnknownMapType(t *testing.T) {
	page := make([]byte, leformat.JET4.PageSize())
	page[14+2] = 9
	_, err := usedpages.Decode(leformat.JET4, page, nil)
	require.Error(t, err)
	var me *usedpages.MalformedMapError
	require.ErrorAs(t, err, &me)
}
