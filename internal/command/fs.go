package command

import (
	"fmt"
	"sort"
	"strings"
)

// NodeKind distinguishes filesystem entries.
type NodeKind int

const (
	NodeFile NodeKind = iota
	NodeDir
	NodeSymlink
)

// Node is one entry of the in-memory filesystem.
type Node struct {
	Kind      NodeKind
	Content   string
	Target    string
	Perm      uint32
	Owner     string
	Protected bool
	Children  map[string]*Node
}

// fsError carries the message a Unix tool would print.
type fsError string

func (e fsError) Error() string { return string(e) }

const (
	errNotFound     fsError = "No such file or directory"
	errNotDir       fsError = "Not a directory"
	errIsDir        fsError = "Is a directory"
	errExists       fsError = "File exists"
	errProtected    fsError = "Operation not permitted (protected system file)"
	errNotOwner     fsError = "Permission denied (not owner)"
	errPermission   fsError = "Permission denied"
	errSymlinkLoops fsError = "Too many levels of symbolic links"
)

func dir(owner string, perm uint32, protected bool, children map[string]*Node) *Node {
	if children == nil {
		children = map[string]*Node{}
	}
	return &Node{Kind: NodeDir, Perm: perm, Owner: owner, Protected: protected, Children: children}
}

func file(owner string, protected bool, content string) *Node {
	return &Node{Kind: NodeFile, Perm: 0o644, Owner: owner, Protected: protected, Content: content}
}

// Size returns the byte size ls reports.
func (n *Node) Size() int {
	switch n.Kind {
	case NodeDir:
		return 4096
	case NodeFile:
		return len(n.Content)
	}
	return 0
}

// FS is a per-session in-memory filesystem with a working directory.
// It is not safe for concurrent use; the owning session serializes access.
type FS struct {
	root *Node
	cwd  []string
	home []string
	user string
}

// NewFS returns the default tree with user's home as the working directory.
func NewFS(user, hostname string) *FS {
	home := dir(user, 0o755, true, map[string]*Node{
		"projects": dir(user, 0o755, true, map[string]*Node{
			"retroterm.md": file(user, true, "A retro terminal served over HTTP and SSH. Boot animations, a scrollback with clickable links and a steam locomotive.\n\nProject link: [https://github.com/pkt-systems/retroterm]\n\nStatus: Active development"),
			"wrapper.md":   file(user, true, "A word aware line wrapper used by the terminal renderer. Never drops a character, never emits an empty row.\n\nProject link: [https://pkg.go.dev/pkt.systems/retroterm/core]\n\nStatus: Completed"),
			"sl.md":        file(user, true, "The classic steam locomotive, redrawn one column every 40ms. Try `sl -a`, `sl -f`, `sl -l` or `sl -c`.\n\nStatus: Choo choo"),
		}),
		"about.txt":   file(user, true, fmt.Sprintf("Hi, I'm %s.\nThis is a terminal that never was.\n\nThings to try:\n\n- ls, cd projects, cat retroterm.md\n- tree /\n- sl\n- qr https://example.com", user)),
		"contact.txt": file(user, true, fmt.Sprintf("Mail: %s@%s\nWeb: [https://%s.example]\nResponse time: Eventually", user, hostname, hostname)),
		".bashrc":     file(user, false, "# ~/.bashrc\nexport PS1='\\u@\\h:\\w\\$ '\nalias ll='ls -la'"),
		"credits.txt": file(user, true, "Built with Go.\n\nSteam locomotive after sl by Toyoda Masashi.\n\nNo warranty, express or implied."),
	})
	root := dir("root", 0o755, true, map[string]*Node{
		"home": dir("root", 0o755, true, map[string]*Node{user: home}),
		"etc": dir("root", 0o755, true, map[string]*Node{
			"hostname": file("root", true, hostname),
			"passwd":   file("root", true, fmt.Sprintf("root:x:0:0:root:/root:/bin/zsh\n%s:x:1000:1000:%s:/home/%s:/bin/zsh\nnobody:x:65534:65534:nobody:/:/usr/bin/nologin", user, user, user)),
		}),
		"tmp": dir("root", 0o1777, false, map[string]*Node{
			"go.txt": file(user, false, "Did you know?\nGo was announced in November 2009.\nGo 1.0 shipped in March 2012."),
		}),
		"usr": dir("root", 0o755, true, map[string]*Node{
			"bin": dir("root", 0o755, true, nil),
		}),
		"var": dir("root", 0o755, true, map[string]*Node{
			"log": dir("root", 0o755, true, map[string]*Node{
				"boot.log": file("root", true, bootLog),
			}),
		}),
	})
	homePath := []string{"home", user}
	return &FS{
		root: root,
		cwd:  append([]string(nil), homePath...),
		home: homePath,
		user: user,
	}
}

const bootLog = `Loading Linux kernel version 6.8.9-retro-1...
Loading initial ramdisk (initramfs)...
Mounting root filesystem...
Mounting /home...
Starting systemd-journald.service...
Loading kernel modules: ext4 fuse...
Starting Network Manager...
Starting Login Service (systemd-logind)...
Starting Interface...`

// Normalize resolves p against the working directory. "~" expands to the
// home directory; "." and ".." are folded.
func (f *FS) Normalize(p string) []string {
	return f.normalizeFrom(f.cwd, p)
}

func (f *FS) normalizeFrom(cwd []string, p string) []string {
	var base []string
	switch {
	case strings.HasPrefix(p, "/"):
	case p == "~" || strings.HasPrefix(p, "~/"):
		base = append(base, f.home...)
		p = strings.TrimPrefix(p, "~")
	default:
		base = append(base, cwd...)
	}
	for _, part := range strings.Split(p, "/") {
		switch part {
		case "", ".":
		case "..":
			if len(base) > 0 {
				base = base[:len(base)-1]
			}
		default:
			base = append(base, part)
		}
	}
	return base
}

// Lookup returns the node at path without following a trailing symlink.
func (f *FS) Lookup(path []string) (*Node, error) {
	cur := f.root
	for _, part := range path {
		if cur.Kind != NodeDir {
			return nil, errNotDir
		}
		next, ok := cur.Children[part]
		if !ok {
			return nil, errNotFound
		}
		cur = next
	}
	return cur, nil
}

// resolve follows symlinks at path up to a small depth.
func (f *FS) resolve(path []string) ([]string, *Node, error) {
	for range 8 {
		node, err := f.Lookup(path)
		if err != nil {
			return nil, nil, err
		}
		if node.Kind != NodeSymlink {
			return path, node, nil
		}
		path = f.normalizeFrom(path[:len(path)-1], node.Target)
	}
	return nil, nil, errSymlinkLoops
}

// Cwd returns the working directory as path parts.
func (f *FS) Cwd() []string { return append([]string(nil), f.cwd...) }

// AtRoot reports whether the working directory is "/".
func (f *FS) AtRoot() bool { return len(f.cwd) == 0 }

// Pwd returns the absolute working directory.
func (f *FS) Pwd() string { return "/" + strings.Join(f.cwd, "/") }

// DisplayDir returns the working directory with the home prefix shown as "~".
func (f *FS) DisplayDir() string {
	if hasPathPrefix(f.cwd, f.home) {
		rest := f.cwd[len(f.home):]
		if len(rest) == 0 {
			return "~"
		}
		return "~/" + strings.Join(rest, "/")
	}
	return f.Pwd()
}

func hasPathPrefix(path, prefix []string) bool {
	if len(path) < len(prefix) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Chdir changes the working directory. An empty target goes home.
func (f *FS) Chdir(target string) error {
	if target == "" {
		f.cwd = append([]string(nil), f.home...)
		return nil
	}
	path, node, err := f.resolve(f.Normalize(target))
	if err != nil {
		return err
	}
	if node.Kind != NodeDir {
		return errNotDir
	}
	f.cwd = path
	return nil
}

// parent returns the directory that holds the last element of path.
func (f *FS) parent(path []string) (*Node, string, error) {
	if len(path) == 0 {
		return nil, "", errExists
	}
	node, err := f.Lookup(path[:len(path)-1])
	if err != nil {
		return nil, "", err
	}
	if node.Kind != NodeDir {
		return nil, "", errNotDir
	}
	return node, path[len(path)-1], nil
}

// Mkdir creates a directory owned by the session user.
func (f *FS) Mkdir(target string) error {
	dirNode, name, err := f.parent(f.Normalize(target))
	if err != nil {
		return err
	}
	if _, ok := dirNode.Children[name]; ok {
		return errExists
	}
	dirNode.Children[name] = dir(f.user, 0o755, false, nil)
	return nil
}

// Touch creates an empty file unless one exists.
func (f *FS) Touch(target string) error {
	path := f.Normalize(target)
	if len(path) == 0 {
		return nil
	}
	dirNode, name, err := f.parent(path)
	if err != nil {
		return err
	}
	if _, ok := dirNode.Children[name]; !ok {
		dirNode.Children[name] = file(f.user, false, "")
	}
	return nil
}

// Symlink creates a symbolic link at name pointing to target.
func (f *FS) Symlink(target, name string) error {
	dirNode, base, err := f.parent(f.Normalize(name))
	if err != nil {
		return err
	}
	if _, ok := dirNode.Children[base]; ok {
		return errExists
	}
	dirNode.Children[base] = &Node{Kind: NodeSymlink, Target: target, Owner: f.user, Perm: 0o777}
	return nil
}

// Remove deletes target. Directories need recursive. Protected nodes and
// nodes owned by someone else are refused.
func (f *FS) Remove(target string, recursive bool) error {
	path := f.Normalize(target)
	if len(path) == 0 {
		return errPermission
	}
	dirNode, name, err := f.parent(path)
	if err != nil {
		return err
	}
	node, ok := dirNode.Children[name]
	if !ok {
		return errNotFound
	}
	if node.Protected {
		return errProtected
	}
	if node.Owner != f.user && f.user != "root" {
		return errNotOwner
	}
	if node.Kind == NodeDir && !recursive {
		return errIsDir
	}
	delete(dirNode.Children, name)
	return nil
}

// ReadFile returns the content of the file at target, following symlinks.
func (f *FS) ReadFile(target string) (string, error) {
	_, node, err := f.resolve(f.Normalize(target))
	if err != nil {
		return "", err
	}
	if node.Kind == NodeDir {
		return "", errIsDir
	}
	return node.Content, nil
}

// Entry is a named child of a directory.
type Entry struct {
	Name string
	Node *Node
}

// List returns the sorted children of the directory at path.
func (f *FS) List(path []string) ([]Entry, error) {
	node, err := f.Lookup(path)
	if err != nil {
		return nil, err
	}
	if node.Kind != NodeDir {
		return nil, errNotDir
	}
	return sortedEntries(node), nil
}

func sortedEntries(node *Node) []Entry {
	entries := make([]Entry, 0, len(node.Children))
	for name, child := range node.Children {
		entries = append(entries, Entry{Name: name, Node: child})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// DisplayName returns name decorated the way ls prints it.
func (e Entry) DisplayName() string {
	switch e.Node.Kind {
	case NodeDir:
		return e.Name + "/"
	case NodeSymlink:
		return e.Name + "@"
	}
	return e.Name
}
