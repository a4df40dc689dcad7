package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// plainText strips markup from free-text fields. Output is stored unescaped
// because templates and JSON encoding escape on the way out.
type plainText struct {
	policy *bluemonday.Policy
}

func newPlainText() plainText {
	return plainText{policy: bluemonday.StrictPolicy()}
}

func (p plainText) clean(value string) string {
	return strings.TrimSpace(html.UnescapeString(p.policy.Sanitize(value)))
}
