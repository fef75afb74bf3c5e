package gce

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/buger/jsonparser"
)

// Rule turns a raw metadata body into its display value. A rule returns
// ErrNotAvailable when the value it looks for is absent or empty.
type Rule func(raw string) (string, error)

func Raw(raw string) (string, error) {
	return nonEmpty(raw)
}

func LastPathSegment(raw string) (string, error) {
	if ix := strings.LastIndex(raw, "/"); ix >= 0 {
		raw = raw[ix+1:]
	}
	return nonEmpty(raw)
}

func FirstHostnameLabel(raw string) (string, error) {
	label, _, _ := strings.Cut(raw, ".")
	return nonEmpty(label)
}

// JSONField extracts the string at keys, using jsonparser key syntax
// ("[0]" selects an array element).
func JSONField(keys ...string) Rule {
	return func(raw string) (string, error) {
		value, err := jsonparser.GetString([]byte(raw), keys...)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrNotAvailable, strings.Join(keys, "."), err)
		}
		return nonEmpty(value)
	}
}

// JoinList joins a JSON array of strings with sep.
func JoinList(sep string) Rule {
	return func(raw string) (string, error) {
		var (
			items   []string
			itemErr error
		)

		_, err := jsonparser.ArrayEach([]byte(raw), func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
			if dataType != jsonparser.String {
				items = append(items, string(value))
				return
			}
			s, err := jsonparser.ParseString(value)
			if err != nil && itemErr == nil {
				itemErr = err
			}
			items = append(items, s)
		})
		if err == nil {
			err = itemErr
		}
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrNotAvailable, err)
		}

		return nonEmpty(strings.Join(items, sep))
	}
}

const serviceAccountSuffix = ".gserviceaccount.com"

// ServiceAccountExtract picks the first service account email out of a
// directory listing such as "123-compute@developer.gserviceaccount.com/\ndefault/".
func ServiceAccountExtract(raw string) (string, error) {
	for _, entry := range listEntries(raw) {
		if strings.HasSuffix(entry, serviceAccountSuffix) {
			return entry, nil
		}
	}
	return "", ErrNotAvailable
}

// listEntries splits a metadata directory listing on newlines and slashes.
func listEntries(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || unicode.IsSpace(r)
	})
}

func nonEmpty(s string) (string, error) {
	s = strings.TrimRight(s, "\r\n")
	if strings.TrimSpace(s) == "" {
		return "", ErrNotAvailable
	}
	return s, nil
}
