package cli

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestUnknownFlagIsUsageError(t *testing.T) {
	t.Parallel()
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "--definitely-not-a-flag"})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "definitely-not-a-flag") {
		t.Fatalf("error should name the offending flag: %v", err)
	}
}
