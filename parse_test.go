package secsgml

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

const sampleFiling = `<SEC-DOCUMENT>0000320193-24-000001.txt : 20240101
<SEC-HEADER>0000320193-24-000001.hdr.sgml : 20240101
ACCESSION NUMBER:		0000320193-24-000001
CONFORMED SUBMISSION TYPE:	10-K
FILER:
	COMPANY DATA:
		COMPANY CONFORMED NAME:		Apple Inc.
		CENTRAL INDEX KEY:		0000320193
		STANDARD INDUSTRIAL CLASSIFICATION:	ELECTRONIC COMPUTERS [3571]
</SEC-HEADER>
<DOCUMENT>
<TYPE>10-K
<SEQUENCE>1
<FILENAME>form10k.htm
<TEXT>
<html><body>Annual report body.</body></html>
</TEXT>
</DOCUMENT>
<DOCUMENT>
<TYPE>EX-99.1
<SEQUENCE>2
<FILENAME>ex99.htm
<TEXT>
Exhibit content.
</TEXT>
</DOCUMENT>
`

func TestParseBasicSubmission(t *testing.T) {
	result, err := Parse([]byte(sampleFiling), DefaultParseOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if result.Format != FormatTabDefault {
		t.Errorf("Format = %v, want FormatTabDefault", result.Format)
	}
	if len(result.Documents) != 2 {
		t.Fatalf("len(Documents) = %d, want 2", len(result.Documents))
	}
	if len(result.Metadata.Documents) != len(result.Documents) {
		t.Errorf("metadata/payload length mismatch: %d vs %d", len(result.Metadata.Documents), len(result.Documents))
	}

	filer, ok := result.Metadata.Fields["filer"].(ObjectValue)
	if !ok {
		t.Fatalf("expected filer section, got %#v", result.Metadata.Fields["filer"])
	}
	companyData, ok := filer["company-data"].(ObjectValue)
	if !ok {
		t.Fatalf("expected company-data section, got %#v", filer["company-data"])
	}
	if companyData["cik"] != StringValue("0000320193") {
		t.Errorf("cik = %#v, want 0000320193", companyData["cik"])
	}
	if companyData["assigned-sic"] != StringValue("3571") {
		t.Errorf("assigned-sic = %#v, want 3571", companyData["assigned-sic"])
	}

	if result.Metadata.Documents[0].Type() != "10-K" {
		t.Errorf("doc0 type = %q, want 10-K", result.Metadata.Documents[0].Type())
	}
	if !bytes.Contains(result.Documents[0], []byte("Annual report body")) {
		t.Errorf("doc0 payload missing body text: %q", result.Documents[0])
	}
}

func TestParseWithFilter(t *testing.T) {
	opts := DefaultParseOptions().WithFilter([]string{"10-K"})
	result, err := Parse([]byte(sampleFiling), opts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(result.Documents) != 1 {
		t.Fatalf("len(Documents) = %d, want 1", len(result.Documents))
	}
	if result.Metadata.Documents[0].Type() != "10-K" {
		t.Errorf("kept document type = %q, want 10-K", result.Metadata.Documents[0].Type())
	}
}

func TestParsePreserveOriginalKeepsRawKeys(t *testing.T) {
	result, err := Parse([]byte(sampleFiling), PreserveOriginalOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := result.Metadata.Fields["FILER"]; !ok {
		t.Errorf("expected raw-cased FILER key to survive, got keys %v", fieldKeys(result.Metadata.Fields))
	}
}

func fieldKeys(o ObjectValue) []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	return keys
}

func TestParseToJSONIsDeterministic(t *testing.T) {
	first, _, err := ParseToJSON([]byte(sampleFiling), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseToJSON: %v", err)
	}
	second, _, err := ParseToJSON([]byte(sampleFiling), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseToJSON: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("ParseToJSON output is not deterministic across identical calls")
	}

	var decoded map[string]any
	if err := json.Unmarshal(first, &decoded); err != nil {
		t.Fatalf("ParseToJSON output is not valid JSON: %v", err)
	}
	if !strings.Contains(string(first), `"documents"`) {
		t.Errorf("expected a documents array in the output")
	}
}

func TestParseAndWriteTarRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := ParseAndWriteTar(&buf, []byte(sampleFiling), DefaultParseOptions()); err != nil {
		t.Fatalf("ParseAndWriteTar: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty tar output")
	}
	if string(buf.Bytes()[0:13]) != "metadata.json" {
		t.Errorf("first tar entry should be metadata.json, got %q", buf.Bytes()[0:13])
	}
}
