package secsgml

import "encoding/json"

// ParseToJSON parses data and returns its metadata as serialized JSON
// bytes alongside the raw document payloads, mirroring Parse but in the
// shape most convenient for callers that want to hand metadata straight
// to another process or language runtime.
func ParseToJSON(data []byte, opts ParseOptions) (metadataJSON []byte, documents [][]byte, err error) {
	result, err := Parse(data, opts)
	if err != nil {
		return nil, nil, err
	}
	metadataJSON, err = json.Marshal(result.Metadata)
	if err != nil {
		return nil, nil, err
	}
	return metadataJSON, result.Documents, nil
}
