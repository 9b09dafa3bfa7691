// Package jupyter provides clients and data types for talking to a Jupyter
// server: a kernel-execution client, a notebook-document session, and the
// cell/output model shared between them.
package jupyter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// OutputType tags a cell output record.
type OutputType string

// Known output record types.
const (
	OutputStream        OutputType = "stream"
	OutputDisplayData   OutputType = "display_data"
	OutputExecuteResult OutputType = "execute_result"
	OutputError         OutputType = "error"
)

// MIME types inspected by the normalizer, in priority order.
const (
	MimeTextPlain = "text/plain"
	MimeTextHTML  = "text/html"
	MimeImagePNG  = "image/png"
)

// Output is one unit of execution output as it appears in a code cell.
// It is a tagged variant: which fields are meaningful depends on Type.
type Output struct {
	// Type is the output record kind. Unrecognized kinds are preserved
	// as-is so the normalizer can name them in its placeholder.
	Type OutputType

	// Text holds the raw text of a stream output.
	Text string

	// Data maps MIME types to their textual representation for
	// display_data and execute_result outputs.
	Data map[string]string

	// Ename and Evalue identify an error output.
	Ename  string
	Evalue string

	// Traceback is the formatted traceback of an error output.
	Traceback string
}

// rawOutput mirrors the wire format of a cell output. Text-bearing fields
// may arrive as a single string or a list of lines.
type rawOutput struct {
	OutputType string                     `json:"output_type"`
	Text       multilineText              `json:"text"`
	Data       map[string]json.RawMessage `json:"data"`
	Ename      string                     `json:"ename"`
	Evalue     string                     `json:"evalue"`
	Traceback  multilineText              `json:"traceback"`
}

// multilineText decodes a JSON value that is either a string or a list of
// strings into a single string. Notebook documents use both encodings.
type multilineText string

func (m *multilineText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = multilineText(s)
		return nil
	}

	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("text field is neither string nor string list: %w", err)
	}
	*m = multilineText(strings.Join(lines, ""))
	return nil
}

// UnmarshalJSON decodes a cell output record, tolerating absent fields and
// both string and string-list text encodings.
func (o *Output) UnmarshalJSON(data []byte) error {
	var raw rawOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode output record: %w", err)
	}

	o.Type = OutputType(raw.OutputType)
	o.Text = string(raw.Text)
	o.Ename = raw.Ename
	o.Evalue = raw.Evalue
	o.Traceback = string(raw.Traceback)

	if raw.Data != nil {
		o.Data = make(map[string]string, len(raw.Data))
		for mime, repr := range raw.Data {
			var text multilineText
			if err := text.UnmarshalJSON(repr); err != nil {
				// Non-textual representation (e.g. application/json
				// objects). Keep the key so the normalizer can list it.
				o.Data[mime] = ""
				continue
			}
			o.Data[mime] = string(text)
		}
	}

	return nil
}

// NormalizeOutput reduces one output record to a single display string.
// It never fails: missing fields degrade to empty strings and unknown
// kinds or representations degrade to descriptive placeholders.
func NormalizeOutput(output Output) string {
	switch output.Type {
	case OutputStream:
		return output.Text

	case OutputDisplayData, OutputExecuteResult:
		if text, ok := output.Data[MimeTextPlain]; ok {
			return text
		}
		if _, ok := output.Data[MimeTextHTML]; ok {
			return "[HTML Output]"
		}
		if _, ok := output.Data[MimeImagePNG]; ok {
			return "[Image Output (PNG)]"
		}
		return fmt.Sprintf("[%s Data: keys=%v]", output.Type, sortedKeys(output.Data))

	case OutputError:
		return output.Traceback

	default:
		return fmt.Sprintf("[Unknown output type: %s]", output.Type)
	}
}

// NormalizeOutputs maps NormalizeOutput over a slice, preserving order.
func NormalizeOutputs(outputs []Output) []string {
	normalized := make([]string, 0, len(outputs))
	for _, output := range outputs {
		normalized = append(normalized, NormalizeOutput(output))
	}
	return normalized
}

// sortedKeys returns map keys in sorted order so placeholder strings are
// deterministic.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
