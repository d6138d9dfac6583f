// Package docextract finds and parses the <DOCUMENT>...</DOCUMENT>
// spans inside an SEC SGML submission: their metadata blocks and their
// payload bytes, UU-decoded or wrapper-stripped as needed.
package docextract

import (
	"bytes"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/edgarlake/secsgml/internal/byteutil"
	"github.com/edgarlake/secsgml/internal/header"
	"github.com/edgarlake/secsgml/internal/keymap"
	"github.com/edgarlake/secsgml/internal/model"
	"github.com/edgarlake/secsgml/internal/uucodec"
)

var (
	docStart = []byte("<DOCUMENT>")
	docEnd   = []byte("</DOCUMENT>")
	textStart = []byte("<TEXT>")
	textEnd   = []byte("</TEXT>")
)

// ErrMissingText is returned when a <DOCUMENT> span has no <TEXT> tag.
var ErrMissingText = errors.New("docextract: missing <TEXT> tag")

// FindDocumentBoundaries returns the [start, end) byte ranges of every
// <DOCUMENT>...</DOCUMENT> span in data, scanning left to right. A
// <DOCUMENT> with no matching </DOCUMENT> ends the scan rather than
// producing a dangling span.
func FindDocumentBoundaries(data []byte) [][2]int {
	var bounds [][2]int
	pos := 0
	for {
		rel := bytes.Index(data[pos:], docStart)
		if rel < 0 {
			break
		}
		start := pos + rel
		relEnd := bytes.Index(data[start:], docEnd)
		if relEnd < 0 {
			break
		}
		end := start + relEnd + len(docEnd)
		bounds = append(bounds, [2]int{start, end})
		pos = end
	}
	return bounds
}

// ParseDocuments parses every span in bounds, optionally concurrently,
// and returns metadata and payload slices in boundary order regardless
// of which goroutine finished first.
func ParseDocuments(data []byte, bounds [][2]int, format model.SubmissionFormat, standardize, parallel bool) ([]model.DocumentMetadata, [][]byte, error) {
	metas := make([]model.DocumentMetadata, len(bounds))
	payloads := make([][]byte, len(bounds))

	if parallel && len(bounds) > 1 {
		var g errgroup.Group
		for i, b := range bounds {
			i, b := i, b
			g.Go(func() error {
				meta, payload, err := ParseSingleDocument(data[b[0]:b[1]], format, standardize)
				if err != nil {
					return fmt.Errorf("document %d: %w", i, err)
				}
				metas[i] = meta
				payloads[i] = payload
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
		return metas, payloads, nil
	}

	for i, b := range bounds {
		meta, payload, err := ParseSingleDocument(data[b[0]:b[1]], format, standardize)
		if err != nil {
			return nil, nil, fmt.Errorf("document %d: %w", i, err)
		}
		metas[i] = meta
		payloads[i] = payload
	}
	return metas, payloads, nil
}

// ParseSingleDocument parses one <DOCUMENT>...</DOCUMENT> span: its
// metadata block and its <TEXT> payload.
func ParseSingleDocument(docData []byte, format model.SubmissionFormat, standardize bool) (model.DocumentMetadata, []byte, error) {
	textIdx := bytes.Index(docData, textStart)
	if textIdx < 0 {
		return model.DocumentMetadata{}, nil, ErrMissingText
	}

	metaSlice := docData[len(docStart):textIdx]
	docMeta := ParseDocumentMetadata(metaSlice, standardize)

	contentStart := textIdx + len(textStart)
	contentEnd := len(docData)
	if relEnd := bytes.Index(docData[contentStart:], textEnd); relEnd >= 0 {
		contentEnd = contentStart + relEnd
	}
	rawContent := docData[contentStart:contentEnd]

	var content []byte
	if uucodec.IsUUEncoded(rawContent) {
		content = uucodec.Decode(rawContent)
	} else {
		content = CleanDocumentContent(rawContent, format, false)
	}

	docMeta.SizeBytes = uint64(len(content))
	return docMeta, content, nil
}

// ParseDocumentMetadata parses the <KEY>value lines between <DOCUMENT>
// and <TEXT> into a flat field map.
func ParseDocumentMetadata(data []byte, standardize bool) model.DocumentMetadata {
	meta := model.NewDocumentMetadata()

	for _, lineBytes := range bytes.Split(data, []byte("\n")) {
		line := byteutil.Trim(lineBytes)
		if len(line) == 0 || line[0] != '<' {
			continue
		}

		key, value, ok := header.ParseTagLine(line)
		if !ok {
			continue
		}

		keyStr := byteutil.BytesToString(key)
		valueStr := byteutil.BytesToString(value)

		finalKey, finalValue := keyStr, valueStr
		if standardize {
			finalKey = keymap.StandardizeKey(keyStr)
			finalValue = keymap.TransformValue(keyStr, valueStr)
		}

		meta.Fields[finalKey] = finalValue
	}

	return meta
}

// CleanDocumentContent strips the <PDF>/<XBRL>/<XML> wrapper tags some
// documents carry around their payload, then repairs SEC's line
// wraparound convention for the tab dialects.
func CleanDocumentContent(content []byte, format model.SubmissionFormat, isBinary bool) []byte {
	content = byteutil.Trim(content)
	content = stripOpenWrapper(content)
	content = byteutil.Trim(content)
	content = stripCloseWrapper(content)

	if !isBinary && (format == model.FormatTabPrivacy || format == model.FormatTabDefault) {
		lines := header.FixLineWraparound(content)
		joined := make([]byte, 0, len(content))
		for i, l := range lines {
			if i > 0 {
				joined = append(joined, '\n')
			}
			joined = append(joined, l...)
		}
		return joined
	}

	return byteutil.Trim(content)
}

func stripOpenWrapper(content []byte) []byte {
	switch {
	case bytes.HasPrefix(content, []byte("<PDF>")):
		return content[len("<PDF>"):]
	case bytes.HasPrefix(content, []byte("<XBRL>")):
		return content[len("<XBRL>"):]
	case bytes.HasPrefix(content, []byte("<XML>")):
		return content[len("<XML>"):]
	default:
		return content
	}
}

func stripCloseWrapper(content []byte) []byte {
	switch {
	case bytes.HasSuffix(content, []byte("</PDF>")):
		return content[:len(content)-len("</PDF>")]
	case bytes.HasSuffix(content, []byte("</XBRL>")):
		return content[:len(content)-len("</XBRL>")]
	case bytes.HasSuffix(content, []byte("</XML>")):
		return content[:len(content)-len("</XML>")]
	default:
		return content
	}
}
