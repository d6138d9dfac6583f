// Package keymap standardizes SEC filing header keys to a canonical
// lowercase kebab-case form, and applies the handful of value-extraction
// patterns some of those keys carry (pulling "34" out of "1934 Act", or
// "7370" out of "SERVICES [7370]").
package keymap

import "strings"

// mapping is a single canonical-key entry, with an optional value
// extraction pattern.
type mapping struct {
	to      string
	pattern pattern
}

type pattern int

const (
	patternNone pattern = iota
	patternAct
	patternBracketDigits
)

// table maps every known lowercase SEC header key to its canonical form.
// It is built once at init and never mutated, so it is safe for
// concurrent lookup from however many document-span goroutines are
// parsing at once.
var table = map[string]mapping{
	"paper":                                  {to: "paper"},
	"accession number":                       {to: "accession-number"},
	"conformed submission type":              {to: "type"},
	"public document count":                  {to: "public-document-count"},
	"public-document_count":                  {to: "public-document-count"},
	"conformed period of report":             {to: "period"},
	"filed as of date":                       {to: "filing-date"},
	"date as of change":                      {to: "date-of-filing-date-change"},
	"effectiveness date":                     {to: "effectiveness-date"},
	"filer":                                  {to: "filer"},
	"company data":                           {to: "company-data"},
	"company conformed name":                 {to: "conformed-name"},
	"central index key":                      {to: "cik"},
	"state of incorporation":                 {to: "state-of-incorporation"},
	"fiscal year end":                        {to: "fiscal-year-end"},
	"filing values":                          {to: "filing-values"},
	"form type":                              {to: "form-type"},
	"sec act":                                {to: "act", pattern: patternAct},
	"sec file number":                        {to: "file-number"},
	"film number":                            {to: "film-number"},
	"business address":                       {to: "business-address"},
	"street 1":                               {to: "street1"},
	"street 2":                               {to: "street2"},
	"city":                                   {to: "city"},
	"state":                                  {to: "state"},
	"zip":                                    {to: "zip"},
	"business phone":                         {to: "phone"},
	"mail address":                           {to: "mail-address"},
	"former company":                         {to: "former-company"},
	"former conformed name":                  {to: "former-conformed-name"},
	"date of name change":                    {to: "date-changed"},
	"sros":                                   {to: "sros"},
	"subject company":                        {to: "subject-company"},
	"standard industrial classification":     {to: "assigned-sic", pattern: patternBracketDigits},
	"irs number":                             {to: "irs-number"},
	"filed by":                               {to: "filed-by"},
	"items":                                  {to: "items"},
	"group members":                          {to: "group-members"},
	"organization name":                      {to: "organization-name"},
	"recieved date":                          {to: "recieved-date"},
	"action date":                            {to: "action-date"},
	"non us state territory":                 {to: "non-us-state-territory"},
	"address is a non us location":           {to: "address-is-a-non-us-location"},
	"ein":                                    {to: "ein"},
	"class-contract-ticker-symbol":           {to: "class-contract-ticker-symbol"},
	"class-contract-name":                    {to: "class-contract-name"},
	"class-contract-id":                      {to: "class-contract-id"},
	"sec-document":                           {to: "sec-document"},
	"sec-header":                             {to: "sec-header"},
	"acceptance-datetime":                    {to: "acceptance-datetime"},
	"series-and-classes-contracts-data":      {to: "series-and-classes-contracts-data"},
	"existing-series-and-classes-contracts":  {to: "existing-series-and-classes-contracts"},
	"merger-series-and-classes-contracts":    {to: "merger-series-and-classes-contracts"},
	"new-series-and-classes-contracts":       {to: "new-series-and-classes-contracts"},
	"series":                                {to: "series"},
	"owner-cik":                              {to: "owner-cik"},
	"series-id":                              {to: "series-id"},
	"series-name":                            {to: "series-name"},
	"acquiring-data":                         {to: "acquiring-data"},
	"target-data":                            {to: "target-data"},
	"new-classes-contracts":                  {to: "new-classes-contracts"},
	"new-series":                             {to: "new-series"},
	"relationship":                           {to: "relationship"},
}

// StandardizeKey looks key up case-insensitively in the canonical table;
// an unknown key is lowercased with runs of whitespace collapsed to a
// single hyphen instead.
func StandardizeKey(key string) string {
	if m, ok := table[strings.ToLower(key)]; ok {
		return m.to
	}
	return collapseWhitespace(key)
}

// collapseWhitespace lowercases key and collapses every run of
// whitespace — leading, internal, or trailing — into a single hyphen,
// without trimming: "  foo   bar " becomes "-foo-bar-".
func collapseWhitespace(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	prevSpace := false
	for _, r := range key {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !prevSpace {
				b.WriteByte('-')
			}
			prevSpace = true
			continue
		}
		b.WriteRune(toLower(r))
		prevSpace = false
	}
	return b.String()
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// TransformValue applies key's extraction pattern, if any, to value. A
// pattern that doesn't match the expected shape leaves value unchanged.
func TransformValue(key, value string) string {
	m, ok := table[strings.ToLower(key)]
	if !ok {
		return value
	}
	switch m.pattern {
	case patternAct:
		if pos := strings.Index(value, " Act"); pos >= 2 {
			candidate := value[pos-2 : pos]
			if allASCIIDigits(candidate) {
				return candidate
			}
		}
	case patternBracketDigits:
		start := strings.IndexByte(value, '[')
		end := strings.IndexByte(value, ']')
		if start >= 0 && end > start+1 {
			inner := value[start+1 : end]
			if allASCIIDigits(inner) {
				return inner
			}
		}
	}
	return value
}

func allASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
