package command

import (
	"context"
	"strings"
	"testing"
	"time"

	"pkt.systems/retroterm/core"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return NewHandler(context.Background(), HandlerConfig{
		User:       "alice",
		Hostname:   "box",
		Now:        func() time.Time { return now },
		Resolution: func() string { return "100x30" },
	})
}

func run(h *Handler, line string, history ...string) core.CommandResult {
	return h.Execute(core.ExecRequest{Line: line, History: history})
}

func TestExecuteUnknownCommand(t *testing.T) {
	h := newTestHandler(t)
	if got := run(h, "frobnicate --now").Text; got != "zsh: command not found: frobnicate" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestExecuteBlankLineIsEmpty(t *testing.T) {
	h := newTestHandler(t)
	if got := run(h, "   "); got != (core.CommandResult{}) {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestExecuteSentinels(t *testing.T) {
	h := newTestHandler(t)
	if got := run(h, "clear").Text; got != core.SentinelClearScreen {
		t.Fatalf("expected clear sentinel, got %q", got)
	}
	if got := run(h, "sudo rm -rf /").Text; got != core.SentinelSystemPanic {
		t.Fatalf("expected panic sentinel, got %q", got)
	}
	if got := run(h, "sudo rm -rf ./").Text; got != "Sudo access denied." {
		t.Fatalf("expected ./ outside root to be denied, got %q", got)
	}
	run(h, "cd /")
	if got := run(h, "sudo rm -rf ./").Text; got != core.SentinelSystemPanic {
		t.Fatalf("expected panic at root, got %q", got)
	}
	if got := run(h, "sudo").Text; got != "sudo: command required" {
		t.Fatalf("unexpected sudo output %q", got)
	}
}

func TestExecuteEchoKeepsSpacing(t *testing.T) {
	h := newTestHandler(t)
	cases := map[string]string{
		"echo":              "",
		"echo hello  world": "hello  world",
		"echo $USER":        "alice",
	}
	for line, want := range cases {
		if got := run(h, line).Text; got != want {
			t.Fatalf("%q: expected %q, got %q", line, want, got)
		}
	}
}

func TestExecuteHistory(t *testing.T) {
	h := newTestHandler(t)
	if got := run(h, "history").Text; got != "No commands in history yet." {
		t.Fatalf("unexpected empty history %q", got)
	}
	got := run(h, "history", "ls", "history").Text
	if got != "  1  ls\n  2  history" {
		t.Fatalf("unexpected history %q", got)
	}
}

func TestExecuteDateAndUptime(t *testing.T) {
	h := newTestHandler(t)
	if got := run(h, "date").Text; got != "2024-06-01T12:00:00.000Z" {
		t.Fatalf("unexpected date %q", got)
	}
	now := h.started.Add(2*time.Hour + 3*time.Minute + 4*time.Second)
	h.cfg.Now = func() time.Time { return now }
	if got := run(h, "uptime").Text; got != "02h 03m 04s" {
		t.Fatalf("unexpected uptime %q", got)
	}
}

func TestExecuteNeofetch(t *testing.T) {
	h := newTestHandler(t)
	out := run(h, "neofetch").Text
	for _, want := range []string{"alice@box", "Resolution: 100x30", "Uptime: 00h 00m 00s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in neofetch output:\n%s", want, out)
		}
	}
}

func TestExecuteUname(t *testing.T) {
	h := newTestHandler(t)
	if got := run(h, "uname").Text; got != "Linux" {
		t.Fatalf("unexpected uname %q", got)
	}
	if got := run(h, "uname -a").Text; !strings.HasPrefix(got, "Linux box ") {
		t.Fatalf("unexpected uname -a %q", got)
	}
	if got := run(h, "uname -z").Text; got != "uname: invalid option" {
		t.Fatalf("unexpected uname -z %q", got)
	}
}

func TestExecuteLs(t *testing.T) {
	h := newTestHandler(t)
	if got := run(h, "ls").Text; got != "about.txt  contact.txt  credits.txt  projects/" {
		t.Fatalf("unexpected ls %q", got)
	}
	if got := run(h, "ls -a").Text; !strings.HasPrefix(got, ".bashrc  ") {
		t.Fatalf("expected hidden files with -a, got %q", got)
	}
	long := run(h, "ll").Text
	if !strings.Contains(long, "drwxr-xr-x 1 alice alice     4096 Jan  1 12:00 projects") {
		t.Fatalf("unexpected ll output:\n%s", long)
	}
	if got := run(h, "ls -la /").Text; !strings.Contains(got, "drwxrwxrwt 1 root root") {
		t.Fatalf("expected sticky tmp in ls -la /:\n%s", got)
	}
	if got := run(h, "ls -x").Text; got != "ls: invalid option -- 'x'" {
		t.Fatalf("unexpected invalid option %q", got)
	}
	if got := run(h, "ls nope").Text; got != "ls: cannot access 'nope': No such file or directory" {
		t.Fatalf("unexpected missing output %q", got)
	}
	if got := run(h, "ls about.txt").Text; got != "about.txt" {
		t.Fatalf("unexpected file listing %q", got)
	}
}

func TestExecuteCdAndPwd(t *testing.T) {
	h := newTestHandler(t)
	res := run(h, "cd projects")
	if !res.DirectoryChanged || res.Text != "" {
		t.Fatalf("unexpected cd result %+v", res)
	}
	if got := h.WorkingDir(); got != "~/projects" {
		t.Fatalf("unexpected working dir %q", got)
	}
	if got := run(h, "pwd").Text; got != "/home/alice/projects" {
		t.Fatalf("unexpected pwd %q", got)
	}
	if got := run(h, "cd ../about.txt").Text; got != "cd: ../about.txt: Not a directory" {
		t.Fatalf("unexpected cd into file %q", got)
	}
	if got := run(h, "cd /nowhere").Text; got != "cd: /nowhere: No such file or directory" {
		t.Fatalf("unexpected cd into missing %q", got)
	}
	run(h, "cd /etc")
	if got := h.WorkingDir(); got != "/etc" {
		t.Fatalf("expected absolute dir outside home, got %q", got)
	}
	run(h, "cd")
	if got := h.WorkingDir(); got != "~" {
		t.Fatalf("expected home after bare cd, got %q", got)
	}
}

func TestExecuteCat(t *testing.T) {
	h := newTestHandler(t)
	if got := run(h, "cat /etc/hostname").Text; got != "box" {
		t.Fatalf("unexpected cat %q", got)
	}
	got := run(h, "cat projects missing.txt").Text
	want := "cat: projects: Is a directory\ncat: missing.txt: No such file or directory"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if got := run(h, "cat").Text; got != "cat: missing file operand" {
		t.Fatalf("unexpected cat usage %q", got)
	}
}

func TestExecuteTree(t *testing.T) {
	h := newTestHandler(t)
	got := run(h, "tree projects").Text
	want := "projects\n├── retroterm.md\n├── sl.md\n└── wrapper.md"
	if got != want {
		t.Fatalf("unexpected tree:\n%s", got)
	}
	if got := run(h, "tree /nope").Text; got != "tree: No such file or directory" {
		t.Fatalf("unexpected tree error %q", got)
	}
}

func TestExecuteMkdirTouchRm(t *testing.T) {
	h := newTestHandler(t)
	steps := []struct {
		line string
		want string
	}{
		{"mkdir scratch", ""},
		{"mkdir scratch", "mkdir: cannot create directory 'scratch': File exists"},
		{"touch scratch/a.txt scratch/b.txt", ""},
		{"ls scratch", "a.txt  b.txt"},
		{"rm scratch", "rm: cannot remove 'scratch': Is a directory"},
		{"rm -r scratch", ""},
		{"rm about.txt", "rm: cannot remove 'about.txt': Operation not permitted (protected system file)"},
		{"rm -f ghost.txt", ""},
		{"rm ghost.txt", "rm: cannot remove 'ghost.txt': No such file or directory"},
		{"rm /etc/hostname", "rm: cannot remove '/etc/hostname': Operation not permitted (protected system file)"},
		{"rm -q x", "rm: invalid option -- 'q'"},
		{"rm /", "rm: cannot remove '/': Permission denied"},
		{"touch /nope/file", "touch: cannot touch '/nope/file': No such file or directory"},
		{"ln -s projects p", ""},
		{"ls p", "-> projects"},
		{"ln a b", "ln: hard links not supported in this filesystem"},
		{"ln -s projects p", "ln: cannot create link 'p': File exists"},
	}
	for _, step := range steps {
		if got := run(h, step.line).Text; got != step.want {
			t.Fatalf("%q: expected %q, got %q", step.line, step.want, got)
		}
	}
	if res := run(h, "cd p"); !res.DirectoryChanged || h.WorkingDir() != "~/projects" {
		t.Fatalf("expected cd through symlink, got %+v in %s", res, h.WorkingDir())
	}
}

func TestExecuteCowsayAndCalc(t *testing.T) {
	h := newTestHandler(t)
	cow := run(h, "cowsay moo").Text
	if !strings.HasPrefix(cow, " -----\n< moo >\n -----\n") {
		t.Fatalf("unexpected cowsay:\n%s", cow)
	}
	cases := map[string]string{
		"calc 2 + 2":   "2 + 2 = 4",
		"calc 7 / 2":   "7 / 2 = 3.5",
		"calc 1 / 0":   "Error: Cannot evaluate '1 / 0'",
		"calc 2 ^ 3":   "Error: Cannot evaluate '2 ^ 3'",
		"calc two + 2": "Error: Cannot evaluate 'two + 2'",
	}
	for line, want := range cases {
		if got := run(h, line).Text; got != want {
			t.Fatalf("%q: expected %q, got %q", line, want, got)
		}
	}
	if got := run(h, "lolcat hi there").Text; got != "🌈 hi there 🌈" {
		t.Fatalf("unexpected lolcat %q", got)
	}
}

func TestExecuteSlRequestsLocomotive(t *testing.T) {
	h := newTestHandler(t)
	res := run(h, "sl -a -c")
	if res.Locomotive == nil {
		t.Fatalf("expected locomotive request")
	}
	if !res.Locomotive.Accident || !res.Locomotive.C51 || res.Locomotive.Fly {
		t.Fatalf("unexpected options %+v", *res.Locomotive)
	}
}

func TestExecuteQR(t *testing.T) {
	h := newTestHandler(t)
	out := run(h, "qr https://example.com").Text
	lines := strings.Split(out, "\n")
	if len(lines) < 10 {
		t.Fatalf("expected a QR block, got %d lines", len(lines))
	}
	if lines[len(lines)-1] != "https://example.com" {
		t.Fatalf("expected caption, got %q", lines[len(lines)-1])
	}
	if !strings.ContainsAny(out, "█▀▄") {
		t.Fatalf("expected half block glyphs")
	}
	if got := run(h, "qr").Text; got != "usage: qr <text>" {
		t.Fatalf("unexpected usage %q", got)
	}
}

func TestHelpListsEveryCommand(t *testing.T) {
	h := newTestHandler(t)
	help := run(h, "help").Text
	for _, name := range Names() {
		if name == "version" {
			continue
		}
		if !strings.Contains(help, name) {
			t.Fatalf("help does not mention %q", name)
		}
	}
}
