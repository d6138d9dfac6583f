package secsgml

import (
	"io"

	"github.com/edgarlake/secsgml/internal/ustar"
)

// WriteTar serializes sub as a self-referential USTAR archive: a
// metadata.json entry (whose document records carry their own start/end
// byte offsets within the archive) followed by one entry per document.
func WriteTar(w io.Writer, sub *ParsedSubmission) error {
	return ustar.Write(w, sub)
}

// ParseAndWriteTar parses data and immediately writes the result to w as
// a tar archive, for callers that don't need the intermediate
// ParsedSubmission.
func ParseAndWriteTar(w io.Writer, data []byte, opts ParseOptions) error {
	sub, err := Parse(data, opts)
	if err != nil {
		return err
	}
	return WriteTar(w, sub)
}
