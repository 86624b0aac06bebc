package graph

import (
	"net/url"
	"strings"
)

type param struct {
	key   string
	value string
}

// encodeQuery keeps OData "$" keys readable and encodes spaces as %20;
// url.Values would turn them into "+" and reorder the parameters.
func encodeQuery(params ...param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(strings.ReplaceAll(url.QueryEscape(p.value), "+", "%20"))
	}
	return b.String()
}

// quoteOData renders s as an OData string literal.
func quoteOData(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
