package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	v, c, d := Info()
	s := String()
	for _, part := range []string{"version=" + v, "commit=" + c, "date=" + d} {
		if !strings.Contains(s, part) {
			t.Fatalf("String() = %q, missing %q", s, part)
		}
	}
}
