// Package importer reconciles legacy inventory records into the database:
// tab-separated inventory sheets and MySQL dumps of the historical stock
// schema both funnel into one reconciliation pass.
package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ExtractInserts pulls every tuple of every INSERT statement for a table
// out of a MySQL dump. Tuples come back as raw field text, still quoted.
func ExtractInserts(dump, table string) ([][]string, error) {
	pattern, err := regexp.Compile(`(?is)INSERT INTO ` + "`" + regexp.QuoteMeta(table) + "`" + `\s+VALUES\s+(.+?);`)
	if err != nil {
		return nil, err
	}

	var records [][]string
	for _, match := range pattern.FindAllStringSubmatch(dump, -1) {
		records = append(records, parseTuples(match[1])...)
	}
	return records, nil
}

// parseTuples splits "(...),(...)," into per-tuple field lists. Quoted
// strings can hold commas, parentheses and backslash escapes, so this is
// a character walk, not a split.
func parseTuples(values string) [][]string {
	var records [][]string
	i := 0
	length := len(values)

	for i < length {
		for i < length && strings.ContainsRune(" ,\n\r\t", rune(values[i])) {
			i++
		}
		if i >= length {
			break
		}
		if values[i] != '(' {
			i++
			continue
		}
		i++

		var fields []string
		var current strings.Builder
		inString := false
		escape := false

		for i < length {
			ch := values[i]

			if escape {
				current.WriteByte(ch)
				escape = false
				i++
				continue
			}
			if ch == '\\' && inString {
				escape = true
				current.WriteByte(ch)
				i++
				continue
			}
			if ch == '\'' {
				inString = !inString
				current.WriteByte(ch)
				i++
				continue
			}
			if !inString {
				if ch == ',' {
					fields = append(fields, strings.TrimSpace(current.String()))
					current.Reset()
					i++
					continue
				}
				if ch == ')' {
					fields = append(fields, strings.TrimSpace(current.String()))
					records = append(records, fields)
					i++
					break
				}
			}
			current.WriteByte(ch)
			i++
		}
	}
	return records
}

// DecodeValue converts one raw dump field to a Go value: nil for NULL,
// string for quoted text, int64 or float64 for numbers. Anything else
// comes back as the raw text.
func DecodeValue(raw string) interface{} {
	raw = strings.TrimSpace(raw)

	if raw == "NULL" {
		return nil
	}

	if len(raw) >= 2 && strings.HasPrefix(raw, "'") && strings.HasSuffix(raw, "'") {
		s := raw[1 : len(raw)-1]
		s = strings.ReplaceAll(s, `\'`, `'`)
		s = strings.ReplaceAll(s, `\"`, `"`)
		s = strings.ReplaceAll(s, `\\`, `\`)
		return s
	}

	if strings.Contains(raw, ".") {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	return raw
}

// decodeRecord applies DecodeValue to every field of a tuple.
func decodeRecord(raw []string) []interface{} {
	values := make([]interface{}, len(raw))
	for i, field := range raw {
		values[i] = DecodeValue(field)
	}
	return values
}

func valueString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func valueInt(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case float64:
		return int64(x), true
	}
	return 0, false
}

func valueFloat(v interface{}) *float64 {
	switch x := v.(type) {
	case float64:
		return &x
	case int64:
		f := float64(x)
		return &f
	}
	return nil
}
