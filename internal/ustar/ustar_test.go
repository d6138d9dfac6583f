package ustar

import (
	"bytes"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/edgarlake/secsgml/internal/model"
)

func TestPadTo(t *testing.T) {
	cases := []struct {
		size int
		want int
	}{
		{0, 0},
		{1, 511},
		{512, 0},
		{513, 511},
		{1024, 0},
	}
	for _, c := range cases {
		if got := padTo(c.size); got != c.want {
			t.Errorf("padTo(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}

func TestBuildHeader(t *testing.T) {
	hdr, err := buildHeader("test.txt", 100)
	if err != nil {
		t.Fatalf("buildHeader: %v", err)
	}
	if string(hdr[0:8]) != "test.txt" {
		t.Errorf("name field = %q", hdr[0:8])
	}
	if string(hdr[257:262]) != "ustar" {
		t.Errorf("magic field = %q", hdr[257:262])
	}
	if hdr[156] != '0' {
		t.Errorf("typeflag = %q, want '0'", hdr[156])
	}
}

func sampleSubmission() *model.ParsedSubmission {
	doc1 := model.NewDocumentMetadata()
	doc1.Fields["type"] = "10-K"
	doc1.Fields["filename"] = "doc1.htm"

	doc2 := model.NewDocumentMetadata()
	doc2.Fields["type"] = "EX-99"
	doc2.Fields["filename"] = "doc2.htm"

	return &model.ParsedSubmission{
		Metadata: model.SubmissionMetadata{
			Fields:    model.ObjectValue{"type": model.StringValue("10-K")},
			Documents: []model.DocumentMetadata{doc1, doc2},
		},
		Documents: [][]byte{
			[]byte("First document content."),
			[]byte("Second document."),
		},
		Format: model.FormatTabDefault,
	}
}

func TestWriteProducesValidLayout(t *testing.T) {
	sub := sampleSubmission()

	var buf bytes.Buffer
	if err := Write(&buf, sub); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data := buf.Bytes()
	if len(data) < blockSize*4 {
		t.Fatalf("archive too small: %d bytes", len(data))
	}
	if string(data[0:13]) != "metadata.json" {
		t.Errorf("first entry name = %q, want metadata.json", data[0:13])
	}

	// End of archive: last two blocks are all zero.
	end := data[len(data)-2*blockSize:]
	for _, b := range end {
		if b != 0 {
			t.Fatalf("expected zero end-of-archive blocks")
		}
	}
}

func TestAssignPositionsAreOrderedAndTenDigits(t *testing.T) {
	sub := sampleSubmission()
	metadata := sub.Metadata
	if err := assignPositions(&metadata, sub.Documents); err != nil {
		t.Fatalf("assignPositions: %v", err)
	}

	if len(*metadata.Documents[0].StartByte) != 10 {
		t.Errorf("StartByte len = %d, want 10", len(*metadata.Documents[0].StartByte))
	}

	doc0End, err := strconv.Atoi(*metadata.Documents[0].EndByte)
	if err != nil {
		t.Fatalf("parse doc0 end: %v", err)
	}
	doc1Start, err := strconv.Atoi(*metadata.Documents[1].StartByte)
	if err != nil {
		t.Fatalf("parse doc1 start: %v", err)
	}
	if doc1Start <= doc0End {
		t.Errorf("doc1 start %d should be after doc0 end %d", doc1Start, doc0End)
	}
}

func TestWriteThenMetadataRoundTrips(t *testing.T) {
	sub := sampleSubmission()
	var buf bytes.Buffer
	if err := Write(&buf, sub); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data := buf.Bytes()
	metaSize, err := strconv.ParseInt(string(bytes.TrimRight(data[124:136], "\x00 ")), 8, 64)
	if err != nil {
		t.Fatalf("parse header size field: %v", err)
	}

	metaJSON := data[blockSize : blockSize+metaSize]
	var decoded map[string]any
	if err := json.Unmarshal(metaJSON, &decoded); err != nil {
		t.Fatalf("metadata.json is not valid JSON: %v", err)
	}
	if decoded["type"] != "10-K" {
		t.Errorf("decoded type = %v, want 10-K", decoded["type"])
	}
}

// TestSelfReferentialOffsetsLocatePayloads is the S6 scenario from the
// spec: every document's secsgml_start_byte/secsgml_end_byte, read back
// out of the embedded metadata.json, must bound the exact bytes of that
// document's payload inside the archive that contains them.
func TestSelfReferentialOffsetsLocatePayloads(t *testing.T) {
	sub := sampleSubmission()
	var buf bytes.Buffer
	if err := Write(&buf, sub); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data := buf.Bytes()

	metaSize, err := strconv.ParseInt(string(bytes.TrimRight(data[124:136], "\x00 ")), 8, 64)
	if err != nil {
		t.Fatalf("parse header size field: %v", err)
	}
	metaJSON := data[blockSize : blockSize+metaSize]

	var decoded struct {
		Documents []struct {
			StartByte string `json:"secsgml_start_byte"`
			EndByte   string `json:"secsgml_end_byte"`
		} `json:"documents"`
	}
	if err := json.Unmarshal(metaJSON, &decoded); err != nil {
		t.Fatalf("metadata.json is not valid JSON: %v", err)
	}
	if len(decoded.Documents) != len(sub.Documents) {
		t.Fatalf("decoded %d documents, want %d", len(decoded.Documents), len(sub.Documents))
	}

	for i, payload := range sub.Documents {
		if len(decoded.Documents[i].StartByte) != 10 || len(decoded.Documents[i].EndByte) != 10 {
			t.Fatalf("document %d offsets aren't 10-digit strings: %+v", i, decoded.Documents[i])
		}
		start, err := strconv.Atoi(decoded.Documents[i].StartByte)
		if err != nil {
			t.Fatalf("document %d start: %v", i, err)
		}
		end, err := strconv.Atoi(decoded.Documents[i].EndByte)
		if err != nil {
			t.Fatalf("document %d end: %v", i, err)
		}
		if end-start != len(payload) {
			t.Errorf("document %d: end-start = %d, want len(payload) = %d", i, end-start, len(payload))
		}
		if !bytes.Equal(data[start:end], payload) {
			t.Errorf("document %d: archive[%d:%d] = %q, want %q", i, start, end, data[start:end], payload)
		}
	}
}
