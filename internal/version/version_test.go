package version

import (
	"strings"
	"testing"
)

func TestStringIncludesVersionAndCommit(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, "folio ") {
		t.Errorf("got %q", s)
	}
	if !strings.Contains(s, Version) || !strings.Contains(s, Commit) {
		t.Errorf("missing fields: %q", s)
	}
}
