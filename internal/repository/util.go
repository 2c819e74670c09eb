package repository

import (
	"io"
	"net/http"
	"strings"
)

// termList flattens a taxonomy value into individual terms.
func termList(value interface{}) []interface{} {
	switch v := value.(type) {
	case []interface{}:
		return v
	case []string:
		terms := make([]interface{}, len(v))
		for i, s := range v {
			terms[i] = s
		}
		return terms
	default:
		return []interface{}{value}
	}
}

// joinIDs renders a gallery as a comma-joined id string.
func joinIDs(ids []string) string {
	return strings.Join(ids, ",")
}

// discardBody drains a response body, returning the byte count.
func discardBody(resp *http.Response) (int64, error) {
	return io.Copy(io.Discard, resp.Body)
}
