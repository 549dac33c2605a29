package command

import "testing"

func TestParse(t *testing.T) {
	cmd, ok := Parse("  echo   a  b ")
	if !ok {
		t.Fatalf("expected command")
	}
	if cmd.Name != "echo" || len(cmd.Args) != 2 || cmd.Raw != "echo   a  b" || cmd.Remainder != "a  b" {
		t.Fatalf("unexpected command %+v", cmd)
	}
	if _, ok := Parse(" \t "); ok {
		t.Fatalf("expected blank line rejected")
	}
	cmd, _ = Parse("pwd")
	if len(cmd.Args) != 0 || cmd.Remainder != "" {
		t.Fatalf("unexpected bare command %+v", cmd)
	}
}
