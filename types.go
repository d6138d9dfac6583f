// Package secsgml parses SEC EDGAR SGML filing envelopes into a
// structured metadata tree and per-document payload bytes, and can
// repackage the result as a self-referential tar archive.
package secsgml

import "github.com/edgarlake/secsgml/internal/model"

// SubmissionFormat identifies which of the three SGML envelope dialects
// a submission was written in.
type SubmissionFormat = model.SubmissionFormat

const (
	FormatTabPrivacy = model.FormatTabPrivacy
	FormatTabDefault = model.FormatTabDefault
	FormatArchive    = model.FormatArchive
)

// MetadataValue is the closed set of shapes a header field can take.
type MetadataValue = model.MetadataValue

// StringValue is a scalar metadata field.
type StringValue = model.StringValue

// ListValue holds values promoted from a repeated key at the same scope.
type ListValue = model.ListValue

// ObjectValue is a nested metadata section.
type ObjectValue = model.ObjectValue

// DocumentMetadata describes one <DOCUMENT> member of a submission.
type DocumentMetadata = model.DocumentMetadata

// SubmissionMetadata is the full header tree for a submission, plus the
// ordered per-document metadata list.
type SubmissionMetadata = model.SubmissionMetadata

// ParseOptions controls how a submission is parsed.
type ParseOptions = model.ParseOptions

// DefaultParseOptions standardizes metadata and parses documents
// concurrently.
func DefaultParseOptions() ParseOptions { return model.DefaultParseOptions() }

// PreserveOriginalOptions disables key standardization.
func PreserveOriginalOptions() ParseOptions { return model.PreserveOriginalOptions() }

// ParsedSubmission is the result of parsing a submission.
type ParsedSubmission = model.ParsedSubmission
