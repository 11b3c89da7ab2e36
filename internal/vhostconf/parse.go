// Package vhostconf reads and edits an Apache virtual-host file as a sequence
// of <VirtualHost> blocks separated by opaque text.
//
// The file is scanned line by line with explicit depth tracking. Lines whose
// first non-blank character is '#' never open or close a block. A nested
// <VirtualHost>, a stray </VirtualHost> or a block left open at end of file
// is reported as MALFORMED_CONFIG with the line number, and no edit is
// attempted on such a file.
//
// Edits are line-oriented: Add appends "\n" + block + "\n" at end of file and
// Remove excises a block together with one blank line on each side, so a
// block added and then removed leaves a newline-terminated file unchanged.
package vhostconf

import (
	"strconv"
	"strings"

	"github.com/ksyq12/devhost/internal/errors"
)

// Directive is one directive line inside a block, sections included.
type Directive struct {
	Name string
	Args []string
	Line int
}

// Block is one <VirtualHost ...> ... </VirtualHost> region.
type Block struct {
	StartLine     int         `json:"start_line"`
	EndLine       int         `json:"end_line"`
	Address       string      `json:"address"`
	ServerName    string      `json:"server_name"`
	ServerAliases []string    `json:"server_aliases,omitempty"`
	Raw           string      `json:"-"`
	Directives    []Directive `json:"-"`
}

// Names returns ServerName followed by every ServerAlias.
func (b *Block) Names() []string {
	var out []string
	if b.ServerName != "" {
		out = append(out, b.ServerName)
	}
	return append(out, b.ServerAliases...)
}

// Matches reports whether hostname equals the block's ServerName or one of
// its ServerAlias tokens, ignoring case. Tokens are compared whole.
func (b *Block) Matches(hostname string) bool {
	for _, n := range b.Names() {
		if strings.EqualFold(n, hostname) {
			return true
		}
	}
	return false
}

// Directive returns the first directive named name, or nil.
func (b *Block) Directive(name string) *Directive {
	for i := range b.Directives {
		if strings.EqualFold(b.Directives[i].Name, name) {
			return &b.Directives[i]
		}
	}
	return nil
}

// Value returns the first argument of the first directive named name.
func (b *Block) Value(name string) string {
	for _, d := range b.Directives {
		if strings.EqualFold(d.Name, name) && len(d.Args) > 0 {
			return d.Args[0]
		}
	}
	return ""
}

// Values returns the first argument of every directive named name.
func (b *Block) Values(name string) []string {
	var out []string
	for _, d := range b.Directives {
		if strings.EqualFold(d.Name, name) && len(d.Args) > 0 {
			out = append(out, d.Args[0])
		}
	}
	return out
}

// SSL reports whether the block turns SSLEngine on.
func (b *Block) SSL() bool {
	return strings.EqualFold(b.Value("SSLEngine"), "on")
}

// Document is a parsed vhost file.
type Document struct {
	Path   string
	Lines  []string
	Blocks []*Block
	// Terminated is true when the content ended with a newline.
	Terminated bool
}

// Parse scans content into blocks. path is used in error messages only.
func Parse(path, content string) (*Document, error) {
	doc := &Document{Path: path}
	if content != "" {
		doc.Lines = strings.Split(content, "\n")
		if doc.Lines[len(doc.Lines)-1] == "" {
			doc.Lines = doc.Lines[:len(doc.Lines)-1]
			doc.Terminated = true
		}
	}

	open := 0 // 1-based line of the unclosed opening tag
	for i, line := range doc.Lines {
		n := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		switch {
		case isOpenTag(trimmed):
			if open != 0 {
				return nil, errors.Malformed(path, n, "nested <VirtualHost> inside block opened at line "+strconv.Itoa(open))
			}
			open = n
			if containsCloseTag(trimmed) {
				doc.Blocks = append(doc.Blocks, doc.block(open, n))
				open = 0
			}
		case isCloseTag(trimmed):
			if open == 0 {
				return nil, errors.Malformed(path, n, "</VirtualHost> without matching <VirtualHost>")
			}
			doc.Blocks = append(doc.Blocks, doc.block(open, n))
			open = 0
		}
	}

	if open != 0 {
		return nil, errors.Malformed(path, open, "<VirtualHost> is never closed")
	}
	return doc, nil
}

// String serializes the document.
func (d *Document) String() string {
	if len(d.Lines) == 0 {
		return ""
	}
	s := strings.Join(d.Lines, "\n")
	if d.Terminated {
		s += "\n"
	}
	return s
}

// Find returns every block claiming hostname, in file order.
func (d *Document) Find(hostname string) []*Block {
	var out []*Block
	for _, b := range d.Blocks {
		if b.Matches(hostname) {
			out = append(out, b)
		}
	}
	return out
}

// Exists reports whether any block claims hostname.
func (d *Document) Exists(hostname string) bool {
	return len(d.Find(hostname)) > 0
}

// block builds the Block spanning lines start..end (1-based, inclusive).
func (d *Document) block(start, end int) *Block {
	lines := d.Lines[start-1 : end]
	b := &Block{
		StartLine: start,
		EndLine:   end,
		Address:   tagArgument(strings.TrimSpace(lines[0])),
		Raw:       strings.Join(lines, "\n") + "\n",
	}

	for i, line := range lines {
		if i == 0 || i == len(lines)-1 {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "<") {
			continue
		}
		fields := strings.Fields(trimmed)
		args := make([]string, 0, len(fields)-1)
		for _, f := range fields[1:] {
			args = append(args, strings.Trim(f, `"`))
		}
		b.Directives = append(b.Directives, Directive{Name: fields[0], Args: args, Line: start + i})
	}

	b.ServerName = normalizeServerName(b.Value("ServerName"))
	for _, d := range b.Directives {
		if strings.EqualFold(d.Name, "ServerAlias") {
			b.ServerAliases = append(b.ServerAliases, d.Args...)
		}
	}
	return b
}

// normalizeServerName strips a scheme and port: "https://dev.local:443"
// becomes "dev.local".
func normalizeServerName(v string) string {
	if i := strings.Index(v, "://"); i >= 0 {
		v = v[i+3:]
	}
	if strings.HasPrefix(v, "[") {
		if i := strings.Index(v, "]"); i >= 0 {
			return v[:i+1]
		}
	}
	if i := strings.LastIndex(v, ":"); i >= 0 {
		v = v[:i]
	}
	return v
}

func isOpenTag(trimmed string) bool {
	return hasTag(trimmed, "<virtualhost")
}

func isCloseTag(trimmed string) bool {
	return hasTag(trimmed, "</virtualhost")
}

func containsCloseTag(trimmed string) bool {
	return strings.Contains(strings.ToLower(trimmed), "</virtualhost")
}

// hasTag reports whether s starts with tag followed by whitespace or '>'.
func hasTag(s, tag string) bool {
	if len(s) <= len(tag) || !strings.EqualFold(s[:len(tag)], tag) {
		return false
	}
	switch s[len(tag)] {
	case ' ', '\t', '>':
		return true
	}
	return false
}

// tagArgument returns the text between "<VirtualHost" and ">".
func tagArgument(openLine string) string {
	rest := openLine[len("<VirtualHost"):]
	if i := strings.IndexByte(rest, '>'); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}
