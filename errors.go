package secsgml

import (
	"github.com/edgarlake/secsgml/internal/docextract"
	"github.com/edgarlake/secsgml/internal/ustar"
	"github.com/edgarlake/secsgml/internal/uucodec"
)

// ErrMissingText is returned when a <DOCUMENT> span has no <TEXT> tag.
var ErrMissingText = docextract.ErrMissingText

// ErrIllegalChar is returned by the strict UU decoder when a data byte
// falls outside the uuencoding alphabet.
var ErrIllegalChar = uucodec.ErrIllegalChar

// ErrTrailingGarbage is returned by the strict UU decoder when bytes
// remain after a line's expected data that aren't padding.
var ErrTrailingGarbage = uucodec.ErrTrailingGarbage

// ErrNameTooLong is returned by WriteTar when a document's entry name
// doesn't fit the 100-byte ustar name field.
var ErrNameTooLong = ustar.ErrNameTooLong
