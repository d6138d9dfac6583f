// Package header parses the submission-level header block that precedes
// the first <DOCUMENT> in an SEC SGML filing, in whichever of the three
// envelope dialects it was written in.
package header

import (
	"bytes"
	"strings"

	"github.com/edgarlake/secsgml/internal/byteutil"
	"github.com/edgarlake/secsgml/internal/keymap"
	"github.com/edgarlake/secsgml/internal/model"
)

// DetectFormat identifies the envelope dialect from the first
// non-whitespace bytes of a submission.
func DetectFormat(data []byte) model.SubmissionFormat {
	trimmed := byteutil.TrimLeft(data)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '-':
		return model.FormatTabPrivacy
	case len(trimmed) >= 3 && string(trimmed[:3]) == "<SE":
		return model.FormatTabDefault
	default:
		return model.FormatArchive
	}
}

// ParseSubmissionMetadata detects the dialect of data (everything before
// the first <DOCUMENT>) and parses its header fields into a metadata
// tree.
func ParseSubmissionMetadata(data []byte, standardize bool) (model.SubmissionMetadata, model.SubmissionFormat) {
	format := DetectFormat(data)

	var fields model.ObjectValue
	switch format {
	case model.FormatTabPrivacy:
		privacyEnd := findDoubleNewline(data)
		privacyMsg := byteutil.BytesToString(data[:privacyEnd])

		rest := byteutil.TrimLeft(data[privacyEnd:])
		fields = ParseTabMetadata(rest, standardize)

		key := "PRIVACY-ENHANCED-MESSAGE"
		if standardize {
			key = "privacy-enhanced-message"
		}
		fields[key] = model.StringValue(privacyMsg)
	case model.FormatTabDefault:
		fields = ParseTabMetadata(data, standardize)
	default:
		fields = ParseArchiveMetadata(data, standardize)
	}

	return model.SubmissionMetadata{Fields: fields}, format
}

func findDoubleNewline(data []byte) int {
	if i := bytes.Index(data, []byte("\n\n")); i >= 0 {
		return i
	}
	return 0
}

// ParseTabMetadata parses the indentation-nested tab dialect shared by
// both the TabPrivacy and TabDefault envelopes.
func ParseTabMetadata(data []byte, standardize bool) model.ObjectValue {
	root := model.ObjectValue{}
	var path []string

	for _, line := range FixLineWraparound(data) {
		if len(byteutil.Trim([]byte(line))) == 0 {
			continue
		}

		indent := 0
		for indent < len(line) && line[indent] == '\t' {
			indent++
		}
		content := strings.TrimRight(line[indent:], " \t\r")
		if content == "" {
			continue
		}

		if indent < len(path) {
			path = path[:indent]
		}

		colonPos := strings.IndexByte(content, ':')
		switch {
		case colonPos >= 0 && (strings.HasPrefix(content, "<SEC-DOCUMENT>") || strings.HasPrefix(content, "<SEC-HEADER>")):
			if key, value, ok := parseSecHeaderLine(content); ok {
				finalKey := key
				if standardize {
					finalKey = keymap.StandardizeKey(key)
				}
				model.InsertAtPath(root, path, finalKey, model.StringValue(value))
			}
		case colonPos >= 0:
			key := strings.TrimSpace(content[:colonPos])
			value := strings.TrimSpace(content[colonPos+1:])

			finalKey := key
			if standardize {
				finalKey = keymap.StandardizeKey(key)
			}

			if value == "" {
				model.InsertAtPath(root, path, finalKey, model.ObjectValue{})
				path = append(path, finalKey)
			} else {
				finalValue := value
				if standardize {
					finalValue = keymap.TransformValue(key, value)
				}
				model.InsertAtPath(root, path, finalKey, model.StringValue(finalValue))
			}
		case strings.HasPrefix(content, "<") && strings.Contains(content, ">"):
			gt := strings.IndexByte(content, '>')
			key := content[1:gt]
			value := strings.TrimSpace(content[gt+1:])
			if strings.HasPrefix(key, "/") {
				continue
			}

			finalKey := key
			finalValue := value
			if standardize {
				finalKey = keymap.StandardizeKey(key)
				finalValue = keymap.TransformValue(key, value)
			}
			model.InsertAtPath(root, path, finalKey, model.StringValue(finalValue))
		}
	}

	return root
}

func parseSecHeaderLine(line string) (string, string, bool) {
	gt := strings.IndexByte(line, '>')
	if gt < 0 {
		return "", "", false
	}
	tag := line[1:gt]
	rest := line[gt+1:]

	if sep := strings.Index(rest, " : "); sep >= 0 {
		filename := strings.TrimSpace(rest[:sep])
		date := strings.TrimSpace(rest[sep+3:])
		return tag, filename + " : " + date, true
	}
	return tag, strings.TrimSpace(rest), true
}

// ParseArchiveMetadata parses the XML-like archive dialect, which uses
// explicit closing tags to mark section boundaries instead of
// indentation.
func ParseArchiveMetadata(data []byte, standardize bool) model.ObjectValue {
	root := model.ObjectValue{}
	var path []string

	keyvals := parseArchiveKeyvals(data)

	sectionTags := make(map[string]bool)
	for _, kv := range keyvals {
		if strings.HasPrefix(kv.key, "/") {
			sectionTags[kv.key[1:]] = true
		}
	}

	for _, kv := range keyvals {
		if kv.key == "SUBMISSION" {
			continue
		}
		if strings.HasPrefix(kv.key, "/") {
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
			continue
		}

		finalKey := kv.key
		if standardize {
			finalKey = keymap.StandardizeKey(kv.key)
		}

		switch {
		case kv.value != "":
			finalValue := kv.value
			if standardize {
				finalValue = keymap.TransformValue(kv.key, kv.value)
			}
			model.InsertAtPath(root, path, finalKey, model.StringValue(finalValue))
		case sectionTags[kv.key]:
			model.InsertAtPath(root, path, finalKey, model.ObjectValue{})
			path = append(path, finalKey)
		default:
			model.InsertAtPath(root, path, finalKey, model.StringValue(""))
		}
	}

	return root
}

type archiveKeyval struct {
	key   string
	value string
}

func parseArchiveKeyvals(data []byte) []archiveKeyval {
	var out []archiveKeyval
	for _, lineBytes := range splitLines(data) {
		line := byteutil.Trim(lineBytes)
		if len(line) == 0 {
			continue
		}

		end := byteutil.FindTagEnd(line)
		if end < 0 {
			continue
		}

		var key, value []byte
		switch {
		case len(line) >= 2 && line[0] == '<' && line[1] == '/':
			key = line[1 : end+1]
			value = byteutil.Trim(line[end+2:])
		case line[0] == '<':
			key = line[1 : end+1]
			value = byteutil.Trim(line[end+2:])
		default:
			continue
		}

		out = append(out, archiveKeyval{key: string(key), value: string(value)})
	}
	return out
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, data[start:i])
			start = i + 1
		}
	}
	lines = append(lines, data[start:])
	return lines
}

// ParseTagLine parses a "<KEY>value" line (as found in document
// metadata blocks), returning the raw key and value bytes.
func ParseTagLine(line []byte) (key, value []byte, ok bool) {
	gt := bytes.IndexByte(line, '>')
	if gt < 0 {
		return nil, nil, false
	}
	return line[1:gt], byteutil.Trim(line[gt+1:]), true
}

// FixLineWraparound repairs SEC's 1023-character line-wrap convention:
// any line at least 1023 characters long is continued, without a
// newline, by the next line, and so on until a short line terminates
// the logical line.
func FixLineWraparound(data []byte) []string {
	text := byteutil.BytesToString(data)
	rawLines := strings.Split(text, "\n")

	result := make([]string, 0, len(rawLines))
	lastWasContinuation := false

	for _, line := range rawLines {
		line = strings.TrimSuffix(line, "\r")
		if len(result) > 0 && lastWasContinuation {
			result[len(result)-1] += line
		} else {
			result = append(result, line)
		}
		lastWasContinuation = len(line) >= 1023
	}

	return result
}
