// Package model holds the parsed-submission data model shared by every
// stage of the pipeline: header dialect parsing, document extraction,
// filtering, and tar serialization all produce or consume these types.
package model

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// SubmissionFormat identifies which of the three SGML envelope dialects
// a submission was written in.
type SubmissionFormat int

const (
	FormatTabPrivacy SubmissionFormat = iota
	FormatTabDefault
	FormatArchive
)

func (f SubmissionFormat) String() string {
	switch f {
	case FormatTabPrivacy:
		return "tab-privacy"
	case FormatTabDefault:
		return "tab-default"
	case FormatArchive:
		return "archive"
	default:
		return "unknown"
	}
}

func (f SubmissionFormat) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// MetadataValue is the closed set of shapes a header field can take:
// a scalar string, a list (from duplicate-key promotion), or a nested
// object (a section in the tab or archive dialects).
type MetadataValue interface {
	isMetadataValue()
}

// StringValue is a scalar metadata field.
type StringValue string

func (StringValue) isMetadataValue() {}

// ListValue holds values promoted from a repeated key at the same scope:
// the first occurrence is a scalar, the second promotes it into a
// two-element list, and further occurrences append.
type ListValue []MetadataValue

func (ListValue) isMetadataValue() {}

// ObjectValue is a nested metadata section, keyed by field name.
type ObjectValue map[string]MetadataValue

func (ObjectValue) isMetadataValue() {}

// MarshalJSON renders keys in sorted order so that two parses of the
// same input always produce byte-identical JSON.
func (o ObjectValue) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// InsertOrAppend inserts value under key, promoting an existing scalar
// or object entry into a list on the second write and appending to an
// existing list on subsequent writes.
func InsertOrAppend(target ObjectValue, key string, value MetadataValue) {
	existing, ok := target[key]
	if !ok {
		target[key] = value
		return
	}
	if list, ok := existing.(ListValue); ok {
		target[key] = append(list, value)
		return
	}
	target[key] = ListValue{existing, value}
}

// InsertAtPath navigates root through the section names in path,
// descending into the last object of a list when a path segment was
// itself promoted to a list, and inserts/appends key=value there.
// A path segment that cannot be navigated (missing, or a non-object,
// non-list value) silently drops the insert, matching the lenient
// best-effort parsing the rest of this package practices.
func InsertAtPath(root ObjectValue, path []string, key string, value MetadataValue) {
	current := root
	for _, seg := range path {
		switch v := current[seg].(type) {
		case ObjectValue:
			current = v
		case ListValue:
			if len(v) == 0 {
				return
			}
			obj, ok := v[len(v)-1].(ObjectValue)
			if !ok {
				return
			}
			current = obj
		default:
			return
		}
	}
	InsertOrAppend(current, key, value)
}

// DocumentMetadata describes one <DOCUMENT> member of a submission.
type DocumentMetadata struct {
	Fields    map[string]string
	SizeBytes uint64
	// StartByte and EndByte are filled in only when a submission is
	// serialized to a self-referential tar archive (see the ustar
	// package); they are 10-digit zero-padded decimal strings so that
	// writing them doesn't change the length of the metadata JSON.
	StartByte *string
	EndByte   *string
}

// NewDocumentMetadata returns a DocumentMetadata with an initialized
// field map, ready for parsing to populate.
func NewDocumentMetadata() DocumentMetadata {
	return DocumentMetadata{Fields: make(map[string]string)}
}

func (d DocumentMetadata) Type() string     { return d.Fields["type"] }
func (d DocumentMetadata) Filename() string  { return d.Fields["filename"] }
func (d DocumentMetadata) Sequence() string { return d.Fields["sequence"] }

func (d DocumentMetadata) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(d.Fields))
	for k := range d.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, k := range keys {
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(d.Fields[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
		buf.WriteByte(',')
	}

	sb, _ := json.Marshal(d.SizeBytes)
	buf.WriteString(`"secsgml_size_bytes":`)
	buf.Write(sb)

	if d.StartByte != nil {
		vb, _ := json.Marshal(*d.StartByte)
		buf.WriteString(`,"secsgml_start_byte":`)
		buf.Write(vb)
	}
	if d.EndByte != nil {
		vb, _ := json.Marshal(*d.EndByte)
		buf.WriteString(`,"secsgml_end_byte":`)
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SubmissionMetadata is the full header tree for a submission, plus the
// ordered per-document metadata list.
type SubmissionMetadata struct {
	Fields    ObjectValue
	Documents []DocumentMetadata
}

func (s SubmissionMetadata) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, k := range keys {
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(s.Fields[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
		buf.WriteByte(',')
	}

	docs := s.Documents
	if docs == nil {
		docs = []DocumentMetadata{}
	}
	db, err := json.Marshal(docs)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"documents":`)
	buf.Write(db)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseOptions controls how a submission is parsed.
type ParseOptions struct {
	// FilterDocumentTypes restricts output to documents whose type
	// field matches one of these entries (plain or doublestar glob).
	// Empty means keep everything.
	FilterDocumentTypes []string
	// KeepFilteredMetadata keeps metadata for filtered-out documents
	// while still dropping their payload bytes.
	KeepFilteredMetadata bool
	// StandardizeMetadata lowercases and kebab-cases header keys and
	// applies the known value-extraction patterns.
	StandardizeMetadata bool
	// Parallel parses document spans concurrently when there is more
	// than one of them.
	Parallel bool
}

// DefaultParseOptions standardizes metadata and parses concurrently,
// matching the behavior most callers want.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{StandardizeMetadata: true, Parallel: true}
}

// PreserveOriginalOptions disables key standardization, leaving header
// fields exactly as they appeared in the filing.
func PreserveOriginalOptions() ParseOptions {
	return ParseOptions{Parallel: true}
}

// WithFilter returns a copy of o restricted to the given document types.
func (o ParseOptions) WithFilter(types []string) ParseOptions {
	o.FilterDocumentTypes = types
	return o
}

// ParsedSubmission is the result of parsing a submission: its metadata
// tree, the decoded or cleaned payload bytes of each kept document
// (parallel to Metadata.Documents unless KeepFilteredMetadata kept
// metadata for documents whose payloads were filtered out), and the
// envelope dialect it was parsed as.
type ParsedSubmission struct {
	Metadata  SubmissionMetadata
	Documents [][]byte
	Format    SubmissionFormat

	// rawHash caches the content hash of the input this submission was
	// parsed from, set by NewParsedSubmission. It is zero for values
	// constructed directly (e.g. in tests), in which case ContentHash
	// reports 0 rather than guessing.
	rawHash uint64
}

// NewParsedSubmission builds a ParsedSubmission, fingerprinting raw with
// xxhash so that ContentHash is available to callers (notably the
// cache package) without re-reading the input.
func NewParsedSubmission(raw []byte, metadata SubmissionMetadata, documents [][]byte, format SubmissionFormat) *ParsedSubmission {
	return &ParsedSubmission{
		Metadata:  metadata,
		Documents: documents,
		Format:    format,
		rawHash:   xxhash.Sum64(raw),
	}
}

// ContentHash returns the xxhash/64 digest of the raw bytes this
// submission was parsed from. It plays no part in parse semantics or
// serialization; it exists so callers can fingerprint a submission for
// caching or de-dup purposes without hashing the input themselves.
func (p *ParsedSubmission) ContentHash() uint64 {
	return p.rawHash
}

// RestoreParsedSubmission rebuilds a ParsedSubmission from its exported
// fields plus a previously-computed content hash, for callers (the
// cache package's L2 tier) that persist a ParsedSubmission through a
// codec blind to unexported fields and need ContentHash to survive the
// round trip without re-hashing the original input.
func RestoreParsedSubmission(metadata SubmissionMetadata, documents [][]byte, format SubmissionFormat, hash uint64) *ParsedSubmission {
	return &ParsedSubmission{
		Metadata:  metadata,
		Documents: documents,
		Format:    format,
		rawHash:   hash,
	}
}
