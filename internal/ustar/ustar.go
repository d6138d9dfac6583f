// Package ustar writes a parsed submission out as a self-referential
// USTAR archive: a metadata.json entry followed by one entry per
// document, where metadata.json itself records each document's byte
// offset within the archive.
//
// This is a two-pass process. The metadata JSON embeds the very byte
// offsets that depend on the metadata JSON's own length, so the first
// pass fills placeholder offsets to measure that length, and the
// second pass recomputes real offsets and re-serializes at the same
// length (the offset fields are fixed-width, so the length cannot
// change between passes).
package ustar

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/edgarlake/secsgml/internal/model"
)

const blockSize = 512

const placeholderOffset = "9999999999"

// ErrNameTooLong is returned when a document's entry name doesn't fit
// the 100-byte ustar name field.
var ErrNameTooLong = errors.New("ustar: tar entry name too long")

// Write serializes sub to w as a USTAR archive.
func Write(w io.Writer, sub *model.ParsedSubmission) error {
	metadata := sub.Metadata
	metadata.Documents = append([]model.DocumentMetadata(nil), sub.Metadata.Documents...)

	if err := assignPositions(&metadata, sub.Documents); err != nil {
		return err
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("ustar: marshal metadata: %w", err)
	}

	if err := writeEntry(w, "metadata.json", metadataJSON); err != nil {
		return err
	}

	for i, content := range sub.Documents {
		doc := metadata.Documents[i]
		name := entryName(doc, i)
		if err := writeEntry(w, name, content); err != nil {
			return err
		}
	}

	zero := make([]byte, blockSize)
	if _, err := w.Write(zero); err != nil {
		return fmt.Errorf("ustar: write end marker: %w", err)
	}
	if _, err := w.Write(zero); err != nil {
		return fmt.Errorf("ustar: write end marker: %w", err)
	}
	return nil
}

func entryName(doc model.DocumentMetadata, index int) string {
	if name := doc.Filename(); name != "" {
		return name
	}
	if seq := doc.Sequence(); seq != "" {
		return seq + ".txt"
	}
	return fmt.Sprintf("%d.txt", index+1)
}

// assignPositions fills metadata.Documents[i].StartByte/EndByte with the
// real byte offsets those documents will occupy once written.
func assignPositions(metadata *model.SubmissionMetadata, documents [][]byte) error {
	placeholder := placeholderOffset
	for i := range metadata.Documents {
		metadata.Documents[i].StartByte = &placeholder
		metadata.Documents[i].EndByte = &placeholder
	}

	placeholderJSON, err := json.Marshal(*metadata)
	if err != nil {
		return fmt.Errorf("ustar: marshal placeholder metadata: %w", err)
	}
	metadataSize := len(placeholderJSON)

	current := blockSize + metadataSize + padTo(metadataSize)

	for i, content := range documents {
		size := len(content)
		start := current + blockSize
		end := start + size

		startStr := fmt.Sprintf("%010d", start)
		endStr := fmt.Sprintf("%010d", end)
		metadata.Documents[i].StartByte = &startStr
		metadata.Documents[i].EndByte = &endStr

		current += blockSize + size + padTo(size)
	}

	return nil
}

func padTo(size int) int {
	r := size % blockSize
	if r == 0 {
		return 0
	}
	return blockSize - r
}

func writeEntry(w io.Writer, name string, content []byte) error {
	hdr, err := buildHeader(name, len(content))
	if err != nil {
		return fmt.Errorf("ustar: build header for %q: %w", name, err)
	}
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("ustar: write header for %q: %w", name, err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("ustar: write content for %q: %w", name, err)
	}
	if pad := padTo(len(content)); pad > 0 {
		if _, err := w.Write(make([]byte, pad)); err != nil {
			return fmt.Errorf("ustar: write padding for %q: %w", name, err)
		}
	}
	return nil
}

// buildHeader renders a 512-byte USTAR header block for a regular file
// named name with the given content size.
func buildHeader(name string, size int) (block [blockSize]byte, err error) {
	nameBytes := []byte(name)
	n := copy(block[0:100], nameBytes)
	if n < len(nameBytes) {
		return block, fmt.Errorf("%w: %q", ErrNameTooLong, name)
	}

	copy(block[100:107], []byte("0000644"))
	block[107] = 0

	copy(block[108:115], []byte("0000000"))
	block[115] = 0

	copy(block[116:123], []byte("0000000"))
	block[123] = 0

	sizeOctal := fmt.Sprintf("%011o", size)
	copy(block[124:135], []byte(sizeOctal))
	block[135] = 0

	copy(block[136:147], []byte("00000000000"))
	block[147] = 0

	copy(block[148:156], []byte("        "))

	block[156] = '0'

	copy(block[257:263], []byte("ustar\x00"))
	copy(block[263:265], []byte("00"))

	var checksum uint32
	for _, b := range block {
		checksum += uint32(b)
	}
	checksumStr := fmt.Sprintf("%06o\x00 ", checksum)
	copy(block[148:156], []byte(checksumStr))

	return block, nil
}
