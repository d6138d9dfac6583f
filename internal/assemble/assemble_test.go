package assemble

import (
	"testing"

	"github.com/edgarlake/secsgml/internal/model"
)

func newDoc(docType string) model.DocumentMetadata {
	m := model.NewDocumentMetadata()
	m.Fields["type"] = docType
	return m
}

func TestApplyFilterNoFilter(t *testing.T) {
	metas := []model.DocumentMetadata{newDoc("10-K")}
	docs := [][]byte{[]byte("a")}
	opts := model.ParseOptions{StandardizeMetadata: true}

	gotMetas, gotDocs := ApplyFilter(metas, docs, opts)
	if len(gotMetas) != 1 || len(gotDocs) != 1 {
		t.Errorf("expected passthrough, got %d metas, %d docs", len(gotMetas), len(gotDocs))
	}
}

func TestApplyFilterExactMatch(t *testing.T) {
	metas := []model.DocumentMetadata{newDoc("10-K"), newDoc("EX-99")}
	docs := [][]byte{[]byte("a"), []byte("b")}
	opts := model.ParseOptions{StandardizeMetadata: true, FilterDocumentTypes: []string{"10-K"}}

	gotMetas, gotDocs := ApplyFilter(metas, docs, opts)
	if len(gotMetas) != 1 || gotMetas[0].Type() != "10-K" {
		t.Fatalf("gotMetas = %#v", gotMetas)
	}
	if len(gotDocs) != 1 || string(gotDocs[0]) != "a" {
		t.Errorf("gotDocs = %q", gotDocs)
	}
}

func TestApplyFilterGlob(t *testing.T) {
	metas := []model.DocumentMetadata{newDoc("EX-99.1"), newDoc("10-K")}
	docs := [][]byte{[]byte("a"), []byte("b")}
	opts := model.ParseOptions{StandardizeMetadata: true, FilterDocumentTypes: []string{"EX-*"}}

	gotMetas, _ := ApplyFilter(metas, docs, opts)
	if len(gotMetas) != 1 || gotMetas[0].Type() != "EX-99.1" {
		t.Fatalf("gotMetas = %#v", gotMetas)
	}
}

func TestApplyFilterKeepFilteredMetadata(t *testing.T) {
	metas := []model.DocumentMetadata{newDoc("10-K"), newDoc("EX-99")}
	docs := [][]byte{[]byte("a"), []byte("b")}
	opts := model.ParseOptions{StandardizeMetadata: true, FilterDocumentTypes: []string{"10-K"}, KeepFilteredMetadata: true}

	gotMetas, gotDocs := ApplyFilter(metas, docs, opts)
	if len(gotMetas) != 2 {
		t.Errorf("len(gotMetas) = %d, want 2 (metadata kept)", len(gotMetas))
	}
	if len(gotDocs) != 1 {
		t.Errorf("len(gotDocs) = %d, want 1 (payload filtered)", len(gotDocs))
	}
}
