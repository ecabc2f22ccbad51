package bayeskit

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	defer log.SetOutput(log.Writer())
	log.SetOutput(&buf)
	defer SetLog(false)
	for _, tc := range []struct {
		enable bool
		want   string
	}{
		{false, ""},
		{true, "iteration 3\n"},
	} {
		buf.Reset()
		SetLog(tc.enable)
		if Logging() != tc.enable {
			t.Fatalf("expected logging=%t", tc.enable)
		}
		Log("iteration %d", 3)
		if got := buf.String(); !strings.HasSuffix(got, tc.want) || (tc.want == "" && got != "") {
			t.Fatalf("expected %q; got %q", tc.want, got)
		}
	}
}
