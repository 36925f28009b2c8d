package common

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

func GetResponseTime(init time.Time) string {
	timeDiff := time.Since(init).Milliseconds()
	return fmt.Sprintf("%dms", timeDiff)
}

// MergeUnique concatenates lists, keeping the first occurrence of each
// trimmed non-empty value.
func MergeUnique(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, list := range lists {
		for _, v := range list {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// StripNUL removes NUL bytes some clients pad request bodies with.
func StripNUL(data []byte) []byte {
	return bytes.ReplaceAll(data, []byte{0}, nil)
}
