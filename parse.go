package secsgml

import (
	"github.com/edgarlake/secsgml/internal/assemble"
	"github.com/edgarlake/secsgml/internal/docextract"
	"github.com/edgarlake/secsgml/internal/header"
	"github.com/edgarlake/secsgml/internal/model"
)

// Parse parses an SEC SGML submission from data. It is a pure function
// of its arguments: it performs no I/O and touches no state beyond the
// immutable, package-level key-standardization table.
func Parse(data []byte, opts ParseOptions) (*ParsedSubmission, error) {
	bounds := docextract.FindDocumentBoundaries(data)

	headerEnd := len(data)
	if len(bounds) > 0 {
		headerEnd = bounds[0][0]
	}

	submissionMeta, format := header.ParseSubmissionMetadata(data[:headerEnd], opts.StandardizeMetadata)

	docMetas, documents, err := docextract.ParseDocuments(data, bounds, format, opts.StandardizeMetadata, opts.Parallel)
	if err != nil {
		return nil, err
	}

	docMetas, documents = assemble.ApplyFilter(docMetas, documents, opts)
	submissionMeta.Documents = docMetas

	return model.NewParsedSubmission(data, submissionMeta, documents, format), nil
}
