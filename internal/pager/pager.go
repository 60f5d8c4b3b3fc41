// Package pager implements the fixed-size paged store that every other JET
// decoder reads from, plus version detection off the file header.
//
// A JET database is a flat sequence of fixed-size pages; page 0 holds the
// file header (not a data or tdef page), and every other page is addressed
// by a zero-based page index. The pager is deliberately ignorant of what a
// page contains — it hands back raw bytes and leaves interpretation to the
// tdef, usedpages, datapage and catalog packages.
package pager

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/wilhasse/go-mdb/internal/leformat"
)

// HeaderVersionOffset is the byte offset, within the first 2048 bytes of the
// file, that carries the version discriminator.
const HeaderVersionOffset = 0x14

// PageFetcher fetches a page's raw bytes by page index. Every package that
// needs to pull an extra page mid-decode (tdef overflow, used-pages map
// pages, out-of-line memo pages) takes one of these rather than a *Reader
// directly, so tests can supply a page set without a real file.
type PageFetcher func(pageIndex uint32) ([]byte, error)

// UnknownVersionError is returned when the header's version byte is neither
// the JET3 nor the JET4 marker.
type UnknownVersionError struct {
	Byte byte
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("pager: unknown version byte 0x%02x", e.Byte)
}

// DetectVersion reads the version byte from a header buffer (the first 2048
// bytes of the file) and returns the decoded version; its PageSize method
// gives the matching page size.
func DetectVersion(header []byte) (leformat.Version, error) {
	b, err := leformat.U8(header, HeaderVersionOffset)
	if err != nil {
		return 0, errors.Wrap(err, "pager: reading version byte")
	}
	switch b {
	case 0x00:
		return leformat.JET3, nil
	case 0x01:
		return leformat.JET4, nil
	default:
		return 0, &UnknownVersionError{Byte: b}
	}
}

// Reader is the random-access byte source every other decoder consumes. It
// owns nothing but the page geometry; the underlying file handle is owned by
// whoever constructed it.
type Reader struct {
	r        io.ReaderAt
	pageSize int
}

// New wraps r as a Reader with the given page size.
func New(r io.ReaderAt, pageSize int) *Reader {
	return &Reader{r: r, pageSize: pageSize}
}

// PageSize returns the fixed page size this reader was configured with.
func (p *Reader) PageSize() int {
	return p.pageSize
}

// ReadPage returns the pageSize bytes at page index n: [n*pageSize, n*pageSize+pageSize).
func (p *Reader) ReadPage(n uint32) ([]byte, error) {
	buf := make([]byte, p.pageSize)
	off := int64(n) * int64(p.pageSize)
	if _, err := p.r.ReadAt(buf, off); err != nil {
		return nil, errors.Wrapf(err, "pager: read page %d", n)
	}
	return buf, nil
}

// ReadHeader returns the first 2048 bytes of the file, which is always
// enough to contain the version byte regardless of the eventual page size.
func ReadHeader(r io.ReaderAt) ([]byte, error) {
	buf := make([]byte, 2048)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return nil, errors.Wrap(err, "pager: read header")
	}
	return buf, nil
}
