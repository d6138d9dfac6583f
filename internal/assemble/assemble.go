// Package assemble applies the document-type filter to a parsed
// submission's documents and metadata.
package assemble

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/edgarlake/secsgml/internal/model"
)

// ApplyFilter restricts docMetas/documents to entries whose type field
// matches one of opts.FilterDocumentTypes (plain equality or, if the
// pattern contains glob metacharacters, a doublestar match). An empty
// filter list returns the inputs unchanged. When opts.KeepFilteredMetadata
// is set, metadata for every document is kept but only matching payloads
// survive, breaking the usual parallelism between the two slices.
func ApplyFilter(docMetas []model.DocumentMetadata, documents [][]byte, opts model.ParseOptions) ([]model.DocumentMetadata, [][]byte) {
	if len(opts.FilterDocumentTypes) == 0 {
		return docMetas, documents
	}

	typeKey := "TYPE"
	if opts.StandardizeMetadata {
		typeKey = "type"
	}

	var indices []int
	for i, meta := range docMetas {
		t, ok := meta.Fields[typeKey]
		if !ok {
			continue
		}
		if matchesAny(t, opts.FilterDocumentTypes) {
			indices = append(indices, i)
		}
	}

	filteredDocs := make([][]byte, len(indices))
	for j, i := range indices {
		filteredDocs[j] = documents[i]
	}

	if opts.KeepFilteredMetadata {
		return docMetas, filteredDocs
	}

	filteredMetas := make([]model.DocumentMetadata, len(indices))
	for j, i := range indices {
		filteredMetas[j] = docMetas[i]
	}
	return filteredMetas, filteredDocs
}

func matchesAny(docType string, patterns []string) bool {
	for _, p := range patterns {
		if p == docType {
			return true
		}
		if isGlob(p) {
			if ok, err := doublestar.Match(p, docType); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func isGlob(p string) bool {
	return strings.ContainsAny(p, "*?[")
}
