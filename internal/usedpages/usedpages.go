// Package usedpages parses a table's used-pages map — the structure that
// tells the facade which data pages belong to a given table — in either of
// its two on-disk encodings.
package usedpages

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/wilhasse/go-mdb/internal/leformat"
	"github.com/wilhasse/go-mdb/internal/pager"
)

const (
	mapTypeInline = 0
	mapTypePaged  = 1
)

// MalformedMapError reports an unrecognised map-type byte.
type MalformedMapError struct {
	MapType uint8
}

func (e *MalformedMapError) Error() string {
	return fmt.Sprintf("usedpages: unknown map type %d", e.MapType)
}

func leadingSkip(version leformat.Version) int {
	if version == leformat.JET3 {
		return 10
	}
	return 14
}

// Decode parses a used-pages-map page and returns the set of data-page
// indices it lists, in ascending order of discovery. The order is not
// meaningful to callers — only the set matters.
func Decode(version leformat.Version, page []byte, fetch pager.PageFetcher) ([]uint32, error) {
	off := leadingSkip(version)
	off += 2 // u16 firstPageApplies, unused by decode

	mapType, err := leformat.U8(page, off)
	if err != nil {
		return nil, errors.Wrap(err, "usedpages: reading map type")
	}
	off += 1

	switch mapType {
	case mapTypeInline:
		return decodeInline(page, off)
	case mapTypePaged:
		return decodePaged(version, page, off, fetch)
	default:
		return nil, &MalformedMapError{MapType: mapType}
	}
}

func decodeInline(page []byte, off int) ([]uint32, error) {
	pageStart, err := leformat.U32(page, off)
	if err != nil {
		return nil, errors.Wrap(err, "usedpages: reading inline pageStart")
	}
	off += 4

	var pages []uint32
	for i := off; i < len(page); i++ {
		byteVal := page[i]
		bitBase := uint32((i - off) * 8)
		for bit := 0; bit < 8; bit++ {
			if byteVal&(1<<uint(bit)) != 0 {
				pages = append(pages, pageStart+bitBase+uint32(bit))
			}
		}
	}
	return pages, nil
}

func decodePaged(version leformat.Version, page []byte, off int, fetch pager.PageFetcher) ([]uint32, error) {
	var pages []uint32
	pageSize := version.PageSize()
	bitsPerRefPage := (pageSize - 4) * 8

	for i := 0; off+4 <= len(page); i++ {
		pageNumber, err := leformat.U32(page, off)
		if err != nil {
			return nil, errors.Wrap(err, "usedpages: reading paged entry")
		}
		off += 4

		if pageNumber == 0 {
			continue
		}
		if fetch == nil {
			return nil, errors.Errorf("usedpages: map references page %d but no fetcher was provided", pageNumber)
		}
		refPage, err := fetch(pageNumber)
		if err != nil {
			return nil, errors.Wrapf(err, "usedpages: fetching map page %d", pageNumber)
		}

		base := uint32(i * bitsPerRefPage)
		for b := 4; b < len(refPage); b++ {
			byteVal := refPage[b]
			bitBase := base + uint32((b-4)*8)
			for bit := 0; bit < 8; bit++ {
				if byteVal&(1<<uint(bit)) != 0 {
					pages = append(pages, bitBase+uint32(bit))
				}
			}
		}
	}
	return pages, nil
}
