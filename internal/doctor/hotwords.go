package doctor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tailscale/hujson"
)

// checkHotwords expects a JSON array of non-empty phrases. Comments and
// trailing commas are accepted since the file is edited by hand on device.
func checkHotwords(path string) Check {
	name := "hotwords"
	content, err := os.ReadFile(path)
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("read %s: %v", path, err)}
	}

	phrases, err := parseHotwords(content)
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("parse %s: %v", path, err)}
	}
	if len(phrases) == 0 {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("%s lists no hotwords", path)}
	}
	for i, phrase := range phrases {
		if strings.TrimSpace(phrase) == "" {
			return Check{Name: name, Pass: false, Message: fmt.Sprintf("%s entry %d is empty", path, i)}
		}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("%d hotwords", len(phrases))}
}

func parseHotwords(content []byte) ([]string, error) {
	// Standardize blanks comments in place, so decode offsets still match the file.
	standard, err := hujson.Standardize(content)
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader(standard))
	var phrases []string
	if err := decoder.Decode(&phrases); err != nil {
		return nil, wrapDecodeError(standard, err)
	}
	if err := ensureSingleValue(decoder); err != nil {
		return nil, wrapDecodeError(standard, err)
	}
	return phrases, nil
}

func ensureSingleValue(decoder *json.Decoder) error {
	var extra json.RawMessage
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return errors.New("multiple JSON values are not allowed")
	}
	return err
}

func wrapDecodeError(content []byte, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content []byte, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := min(int(offset), len(content))
	if limit < 1 {
		return 1, 1
	}
	line, col := 1, 1
	for _, ch := range content[:limit-1] {
		if ch == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
