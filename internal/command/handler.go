package command

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mdp/qrterminal/v3"
	"pkt.systems/pslog"
	"pkt.systems/retroterm/core"
	"pkt.systems/retroterm/internal/version"
)

// HandlerConfig configures the shell.
type HandlerConfig struct {
	User     string
	Hostname string
	// Resolution reports the viewport for neofetch, e.g. "120x40".
	Resolution          func() string
	Now                 func() time.Time
	DisableAuditLogging bool
}

// Handler runs shell lines against a per-session filesystem. It is not safe
// for concurrent use; a core.Session serializes calls.
type Handler struct {
	cfg     HandlerConfig
	fs      *FS
	started time.Time
	log     pslog.Logger
}

type commandFunc func(h *Handler, cmd Command, req core.ExecRequest) core.CommandResult

var commands = map[string]commandFunc{
	"help":     (*Handler).help,
	"clear":    func(*Handler, Command, core.ExecRequest) core.CommandResult { return text(core.SentinelClearScreen) },
	"history":  (*Handler).history,
	"echo":     (*Handler).echo,
	"date":     (*Handler).date,
	"uptime":   (*Handler).uptime,
	"neofetch": (*Handler).neofetch,
	"uname":    (*Handler).uname,
	"whoami":   func(h *Handler, _ Command, _ core.ExecRequest) core.CommandResult { return text(h.cfg.User) },
	"ls":       (*Handler).ls,
	"ll":       (*Handler).ll,
	"cd":       (*Handler).cd,
	"pwd":      func(h *Handler, _ Command, _ core.ExecRequest) core.CommandResult { return text(h.fs.Pwd()) },
	"cat":      (*Handler).cat,
	"tree":     (*Handler).tree,
	"mkdir":    (*Handler).mkdir,
	"touch":    (*Handler).touch,
	"rm":       (*Handler).rm,
	"ln":       (*Handler).ln,
	"sudo":     (*Handler).sudo,
	"cowsay":   (*Handler).cowsay,
	"lolcat":   (*Handler).lolcat,
	"calc":     (*Handler).calc,
	"sl":       (*Handler).sl,
	"qr":       (*Handler).qr,
	"version": func(*Handler, Command, core.ExecRequest) core.CommandResult {
		return text(version.Banner())
	},
}

// Names returns every command name, sorted.
func Names() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewHandler constructs a shell for one session. The logger is taken from ctx.
func NewHandler(ctx context.Context, cfg HandlerConfig) *Handler {
	if cfg.User == "" {
		cfg.User = "guest"
	}
	if cfg.Hostname == "" {
		cfg.Hostname = "localhost"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Resolution == nil {
		cfg.Resolution = func() string { return "80x25" }
	}
	return &Handler{
		cfg:     cfg,
		fs:      NewFS(cfg.User, cfg.Hostname),
		started: cfg.Now(),
		log:     pslog.Ctx(ctx),
	}
}

// FS returns the session filesystem.
func (h *Handler) FS() *FS { return h.fs }

// WorkingDir returns the prompt form of the working directory.
func (h *Handler) WorkingDir() string { return h.fs.DisplayDir() }

// Execute runs one command line.
func (h *Handler) Execute(req core.ExecRequest) core.CommandResult {
	cmd, ok := Parse(req.Line)
	if !ok {
		return core.CommandResult{}
	}
	if !h.cfg.DisableAuditLogging {
		h.log.Debug("audit command", "command_type", "shell", "command", cmd.Raw, "workdir", h.fs.Pwd())
	}
	fn, ok := commands[cmd.Name]
	if !ok {
		h.log.Debug("command not found", "command", cmd.Name)
		return text("zsh: command not found: " + cmd.Name)
	}
	return fn(h, cmd, req)
}

func text(s string) core.CommandResult { return core.CommandResult{Text: s} }

func (h *Handler) help(Command, core.ExecRequest) core.CommandResult {
	return text(`Available commands:

System Info:
  uname       - System information
  uptime      - System uptime
  neofetch    - Detailed system info
  date        - Current date and time
  whoami      - Current user

File System:
  ls, ll      - List directory contents
  cd          - Change directory
  pwd         - Print working directory
  cat         - Display file contents
  tree        - Display directory tree
  mkdir       - Create directory
  touch       - Create empty file
  rm          - Remove files/directories
  ln          - Create symbolic links

Utilities:
  help        - This help
  clear       - Clear screen
  history     - Command history
  echo        - Display text
  cowsay      - ASCII cow with message
  sl          - Steam locomotive (-a -f -l -c)
  lolcat      - Rainbow text
  calc        - Calculator
  qr          - QR code for a link
  sudo        - Sudo access

Type ` + "`ls`" + `, then ` + "`cd projects`" + ` and ` + "`ls`" + ` again.`)
}

func (h *Handler) history(_ Command, req core.ExecRequest) core.CommandResult {
	if len(req.History) == 0 {
		return text("No commands in history yet.")
	}
	lines := make([]string, len(req.History))
	for i, entry := range req.History {
		lines[i] = fmt.Sprintf("  %d  %s", i+1, entry)
	}
	return text(strings.Join(lines, "\n"))
}

func (h *Handler) echo(cmd Command, _ core.ExecRequest) core.CommandResult {
	if len(cmd.Args) == 1 && cmd.Args[0] == "$USER" {
		return text(h.cfg.User)
	}
	return text(cmd.Remainder)
}

func (h *Handler) date(Command, core.ExecRequest) core.CommandResult {
	return text(h.cfg.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
}

func (h *Handler) uptime(Command, core.ExecRequest) core.CommandResult {
	return text(h.uptimeString())
}

func (h *Handler) uptimeString() string {
	total := int(h.cfg.Now().Sub(h.started) / time.Second)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02dh %02dm %02ds", total/3600, total%3600/60, total%60)
}

var neofetchArt = []string{
	`  .----------------.`,
	`  | .------------. |`,
	`  | |  >_        | |`,
	`  | |            | |`,
	`  | |            | |`,
	`  | '------------' |`,
	`  '-----.----.-----'`,
	`   .----'    '----.`,
	`  /  ::::::::::::  \`,
	` /  ::::::::::::::  \`,
	` '------------------'`,
}

func (h *Handler) neofetch(Command, core.ExecRequest) core.CommandResult {
	title := h.cfg.User + "@" + h.cfg.Hostname
	info := []string{
		title,
		strings.Repeat("-", len(title)),
		"OS: Retro Linux x86_64",
		"Host: retroterm " + version.Current(),
		"Kernel: 6.8.9-retro",
		"Uptime: " + h.uptimeString(),
		"Shell: zsh",
		"Resolution: " + h.cfg.Resolution(),
		"Terminal: retroterm",
		"Theme: Phosphor",
		"Memory: 640KiB / 640KiB",
	}
	var b strings.Builder
	for i, art := range neofetchArt {
		line := fmt.Sprintf("%-25s", art)
		if i < len(info) {
			line += info[i]
		}
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteByte('\n')
	}
	return text(strings.TrimRight(b.String(), "\n"))
}

func (h *Handler) uname(cmd Command, _ core.ExecRequest) core.CommandResult {
	if len(cmd.Args) == 0 || cmd.Args[0] == "-s" {
		return text("Linux")
	}
	if cmd.Args[0] == "-a" {
		return text(fmt.Sprintf("Linux %s 6.8.9-retro #1 SMP PREEMPT_DYNAMIC Mon Jan 1 12:00:00 UTC 2024 x86_64 GNU/Linux", h.cfg.Hostname))
	}
	return text("uname: invalid option")
}

func (h *Handler) ll(cmd Command, req core.ExecRequest) core.CommandResult {
	cmd.Args = append([]string{"-la"}, cmd.Args...)
	return h.ls(cmd, req)
}

func (h *Handler) ls(cmd Command, _ core.ExecRequest) core.CommandResult {
	var all, long bool
	target := ""
	for _, arg := range cmd.Args {
		if strings.HasPrefix(arg, "-") {
			for _, c := range arg[1:] {
				switch c {
				case 'a':
					all = true
				case 'l':
					long = true
				default:
					return text(fmt.Sprintf("ls: invalid option -- '%c'", c))
				}
			}
			continue
		}
		target = arg
	}
	path := h.fs.Cwd()
	if target != "" {
		path = h.fs.Normalize(target)
	}
	node, err := h.fs.Lookup(path)
	if err != nil {
		return text(fmt.Sprintf("ls: cannot access '%s': %v", displayTarget(target), err))
	}
	switch node.Kind {
	case NodeFile:
		return text(displayTarget(target))
	case NodeSymlink:
		return text("-> " + node.Target)
	}
	var out []string
	for _, entry := range sortedEntries(node) {
		if !all && strings.HasPrefix(entry.Name, ".") {
			continue
		}
		if long {
			out = append(out, fmt.Sprintf("%s 1 %s %s %8d Jan  1 12:00 %s",
				permString(entry.Node), entry.Node.Owner, entry.Node.Owner, entry.Node.Size(), entry.Name))
			continue
		}
		out = append(out, entry.DisplayName())
	}
	if long {
		return text(strings.Join(out, "\n"))
	}
	return text(strings.Join(out, "  "))
}

func displayTarget(target string) string {
	if target == "" {
		return "."
	}
	return target
}

// permString renders mode bits the way ls -l does, e.g. "drwxr-xr-x".
func permString(n *Node) string {
	kind := byte('-')
	switch n.Kind {
	case NodeDir:
		kind = 'd'
	case NodeSymlink:
		kind = 'l'
	}
	out := []byte{kind}
	const rwx = "rwxrwxrwx"
	for i := 0; i < 9; i++ {
		if n.Perm&(1<<uint(8-i)) != 0 {
			out = append(out, rwx[i])
		} else {
			out = append(out, '-')
		}
	}
	if n.Perm&0o1000 != 0 {
		if out[9] == 'x' {
			out[9] = 't'
		} else {
			out[9] = 'T'
		}
	}
	return string(out)
}

func (h *Handler) cd(cmd Command, _ core.ExecRequest) core.CommandResult {
	target := ""
	if len(cmd.Args) > 0 {
		target = cmd.Args[0]
	}
	if err := h.fs.Chdir(target); err != nil {
		return text(fmt.Sprintf("cd: %s: %v", target, err))
	}
	return core.CommandResult{DirectoryChanged: true}
}

func (h *Handler) cat(cmd Command, _ core.ExecRequest) core.CommandResult {
	if len(cmd.Args) == 0 {
		return text("cat: missing file operand")
	}
	parts := make([]string, 0, len(cmd.Args))
	for _, name := range cmd.Args {
		content, err := h.fs.ReadFile(name)
		if err != nil {
			parts = append(parts, fmt.Sprintf("cat: %s: %v", name, err))
			continue
		}
		parts = append(parts, content)
	}
	return text(strings.TrimRight(strings.Join(parts, "\n"), "\n "))
}

func (h *Handler) tree(cmd Command, _ core.ExecRequest) core.CommandResult {
	path := h.fs.Cwd()
	if len(cmd.Args) > 0 {
		path = h.fs.Normalize(cmd.Args[0])
	}
	node, err := h.fs.Lookup(path)
	if err != nil {
		return text("tree: No such file or directory")
	}
	name := "/"
	if len(path) > 0 {
		name = path[len(path)-1]
	}
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('\n')
	writeTree(&b, node, "")
	return text(strings.TrimRight(b.String(), "\n"))
}

func writeTree(b *strings.Builder, node *Node, prefix string) {
	if node.Kind != NodeDir {
		return
	}
	entries := sortedEntries(node)
	for i, entry := range entries {
		last := i == len(entries)-1
		connector, indent := "├── ", "│   "
		if last {
			connector, indent = "└── ", "    "
		}
		label := entry.DisplayName()
		if entry.Node.Kind == NodeSymlink {
			label = entry.Name + " -> " + entry.Node.Target
		}
		b.WriteString(prefix + connector + label + "\n")
		writeTree(b, entry.Node, prefix+indent)
	}
}

func (h *Handler) mkdir(cmd Command, _ core.ExecRequest) core.CommandResult {
	if len(cmd.Args) == 0 {
		return text("mkdir: missing operand")
	}
	for _, name := range cmd.Args {
		if err := h.fs.Mkdir(name); err != nil {
			return text(fmt.Sprintf("mkdir: cannot create directory '%s': %v", name, err))
		}
	}
	return core.CommandResult{}
}

func (h *Handler) touch(cmd Command, _ core.ExecRequest) core.CommandResult {
	if len(cmd.Args) == 0 {
		return text("touch: missing file operand")
	}
	for _, name := range cmd.Args {
		if err := h.fs.Touch(name); err != nil {
			return text(fmt.Sprintf("touch: cannot touch '%s': %v", name, err))
		}
	}
	return core.CommandResult{}
}

func (h *Handler) rm(cmd Command, _ core.ExecRequest) core.CommandResult {
	if len(cmd.Args) == 0 {
		return text("rm: missing operand")
	}
	var recursive, force bool
	var files []string
	for _, arg := range cmd.Args {
		if !strings.HasPrefix(arg, "-") {
			files = append(files, arg)
			continue
		}
		for _, c := range arg[1:] {
			switch c {
			case 'r', 'R':
				recursive = true
			case 'f':
				force = true
			default:
				return text(fmt.Sprintf("rm: invalid option -- '%c'", c))
			}
		}
	}
	if len(files) == 0 {
		return text("rm: missing operand")
	}
	for _, name := range files {
		err := h.fs.Remove(name, recursive)
		switch err {
		case nil:
		case errProtected, errNotOwner:
			return text(fmt.Sprintf("rm: cannot remove '%s': %v", name, err))
		default:
			if !force {
				return text(fmt.Sprintf("rm: cannot remove '%s': %v", name, err))
			}
		}
	}
	return core.CommandResult{}
}

func (h *Handler) ln(cmd Command, _ core.ExecRequest) core.CommandResult {
	if len(cmd.Args) < 2 {
		return text("ln: missing file operand")
	}
	if cmd.Args[0] != "-s" {
		return text("ln: hard links not supported in this filesystem")
	}
	if len(cmd.Args) < 3 {
		return text("ln: missing file operand")
	}
	if err := h.fs.Symlink(cmd.Args[1], cmd.Args[2]); err != nil {
		return text(fmt.Sprintf("ln: cannot create link '%s': %v", cmd.Args[2], err))
	}
	return core.CommandResult{}
}

func (h *Handler) sudo(cmd Command, _ core.ExecRequest) core.CommandResult {
	if core.ShouldPanic(cmd.Raw, h.fs.AtRoot()) {
		h.log.Info("command sudo panic", "command", cmd.Raw)
		return text(core.SentinelSystemPanic)
	}
	if len(cmd.Args) == 0 {
		return text("sudo: command required")
	}
	return text("Sudo access denied.")
}

func (h *Handler) cowsay(cmd Command, _ core.ExecRequest) core.CommandResult {
	message := "Hello from retroterm!"
	if len(cmd.Args) > 0 {
		message = strings.Join(cmd.Args, " ")
	}
	border := strings.Repeat("-", len([]rune(message))+2)
	return text(fmt.Sprintf(` %s
< %s >
 %s
        \   ^__^
         \  (oo)\_______
            (__)\       )\/\
                ||----w |
                ||     ||`, border, message, border))
}

func (h *Handler) lolcat(cmd Command, _ core.ExecRequest) core.CommandResult {
	if len(cmd.Args) == 0 {
		return text("Usage: lolcat <text>")
	}
	return text("🌈 " + strings.Join(cmd.Args, " ") + " 🌈")
}

func (h *Handler) calc(cmd Command, _ core.ExecRequest) core.CommandResult {
	if len(cmd.Args) == 0 {
		return text("Usage: calc <expression>\nExample: calc 2 + 2")
	}
	expr := strings.Join(cmd.Args, " ")
	result, ok := evaluate(cmd.Args)
	if !ok {
		return text(fmt.Sprintf("Error: Cannot evaluate '%s'", expr))
	}
	return text(fmt.Sprintf("%s = %s", expr, strconv.FormatFloat(result, 'f', -1, 64)))
}

// evaluate handles "a op b" with op one of + - * /.
func evaluate(parts []string) (float64, bool) {
	if len(parts) != 3 {
		return 0, false
	}
	a, errA := strconv.ParseFloat(parts[0], 64)
	b, errB := strconv.ParseFloat(parts[2], 64)
	if errA != nil || errB != nil {
		return 0, false
	}
	switch parts[1] {
	case "+":
		return a + b, true
	case "-":
		return a - b, true
	case "*":
		return a * b, true
	case "/":
		if b == 0 {
			return 0, false
		}
		return a / b, true
	}
	return 0, false
}

func (h *Handler) sl(cmd Command, _ core.ExecRequest) core.CommandResult {
	opts := core.ParseLocomotiveArgs(cmd.Args)
	return core.CommandResult{Locomotive: &opts}
}

func (h *Handler) qr(cmd Command, _ core.ExecRequest) core.CommandResult {
	if cmd.Remainder == "" {
		return text("usage: qr <text>")
	}
	var b strings.Builder
	qrterminal.GenerateHalfBlock(cmd.Remainder, qrterminal.L, &b)
	return text(strings.TrimRight(b.String(), "\n") + "\n" + cmd.Remainder)
}
