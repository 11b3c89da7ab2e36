// Package hosts parses and edits the operating system's static hostname
// table (/etc/hosts, or drivers\etc\hosts on Windows).
//
// Only mapping lines are interpreted: a line is a mapping when its first
// whitespace-delimited token, before any '#', is an IPv4 or IPv6 literal.
// Every other line (comments, blanks, junk) is kept verbatim. Mapping lines
// that an edit does not touch are also kept verbatim; touched lines are
// rebuilt from their parts, preserving leading whitespace, the separator
// after the address and the trailing comment.
package hosts

import (
	"net/netip"
	"strings"
)

// Entry is one mapping line split into its parts.
type Entry struct {
	LeadingWhitespace string   `json:"-"`
	Address           string   `json:"address"`
	Separator         string   `json:"-"`
	Hostnames         []string `json:"hostnames"`
	Comment           string   `json:"comment,omitempty"`
}

// String rebuilds the line. Hostnames after the first are joined by single
// spaces.
func (e *Entry) String() string {
	var b strings.Builder
	b.WriteString(e.LeadingWhitespace)
	b.WriteString(e.Address)
	if len(e.Hostnames) > 0 {
		b.WriteString(e.Separator)
		b.WriteString(strings.Join(e.Hostnames, " "))
	}
	if e.Comment != "" {
		b.WriteString(" ")
		b.WriteString(e.Comment)
	}
	return b.String()
}

// Has reports whether the entry lists hostname, ignoring case.
func (e *Entry) Has(hostname string) bool {
	for _, h := range e.Hostnames {
		if strings.EqualFold(h, hostname) {
			return true
		}
	}
	return false
}

// remove drops every case-insensitive match of hostname and reports how many
// were dropped.
func (e *Entry) remove(hostname string) int {
	kept := e.Hostnames[:0]
	n := 0
	for _, h := range e.Hostnames {
		if strings.EqualFold(h, hostname) {
			n++
			continue
		}
		kept = append(kept, h)
	}
	e.Hostnames = kept
	return n
}

// Line is one physical line. Entry is nil for opaque lines.
type Line struct {
	Raw   string
	Entry *Entry
}

// File is a parsed hosts table.
type File struct {
	Lines   []Line
	Newline string
}

// Parse splits content into lines. CRLF files keep CRLF; anything else is
// written back with LF. Every line is terminated on output.
func Parse(content string) *File {
	f := &File{Newline: "\n"}
	if strings.Contains(content, "\r\n") {
		f.Newline = "\r\n"
	}
	if content == "" {
		return f
	}

	raw := strings.Split(content, "\n")
	if raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}
	for _, r := range raw {
		r = strings.TrimSuffix(r, "\r")
		f.Lines = append(f.Lines, Line{Raw: r, Entry: parseLine(r)})
	}
	return f
}

func parseLine(raw string) *Entry {
	content, comment := raw, ""
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		content, comment = raw[:i], raw[i:]
	}
	content = strings.TrimRight(content, " \t")

	body := strings.TrimLeft(content, " \t")
	lead := content[:len(content)-len(body)]
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil
	}
	if _, err := netip.ParseAddr(fields[0]); err != nil {
		return nil
	}

	rest := body[len(fields[0]):]
	sep := rest[:len(rest)-len(strings.TrimLeft(rest, " \t"))]
	if sep == "" {
		sep = "\t"
	}

	return &Entry{
		LeadingWhitespace: lead,
		Address:           fields[0],
		Separator:         sep,
		Hostnames:         fields[1:],
		Comment:           comment,
	}
}

// String serializes the file.
func (f *File) String() string {
	var b strings.Builder
	for _, l := range f.Lines {
		b.WriteString(l.Raw)
		b.WriteString(f.Newline)
	}
	return b.String()
}

// Entries returns the mapping lines in file order.
func (f *File) Entries() []*Entry {
	var out []*Entry
	for _, l := range f.Lines {
		if l.Entry != nil {
			out = append(out, l.Entry)
		}
	}
	return out
}

// Has reports whether any mapping line with exactly this address literal
// lists hostname. An empty address matches any line.
func (f *File) Has(hostname, address string) bool {
	for _, e := range f.Entries() {
		if (address == "" || e.Address == address) && e.Has(hostname) {
			return true
		}
	}
	return false
}

// Append adds a new "<address>\t<hostname>" line.
func (f *File) Append(hostname, address string) {
	e := &Entry{Address: address, Separator: "\t", Hostnames: []string{hostname}}
	f.Lines = append(f.Lines, Line{Raw: e.String(), Entry: e})
}

// Delete removes hostname from every eligible mapping line and drops lines
// left without hostnames, comment included. It returns the number of
// hostname occurrences removed.
func (f *File) Delete(hostname, address string) int {
	total := 0
	kept := f.Lines[:0]
	for _, l := range f.Lines {
		e := l.Entry
		if e == nil || (address != "" && e.Address != address) || !e.Has(hostname) {
			kept = append(kept, l)
			continue
		}
		total += e.remove(hostname)
		if len(e.Hostnames) == 0 {
			continue
		}
		l.Raw = e.String()
		kept = append(kept, l)
	}
	f.Lines = kept
	return total
}

// Lookup returns the addresses mapped to hostname, in file order.
func (f *File) Lookup(hostname string) []string {
	var out []string
	for _, e := range f.Entries() {
		if e.Has(hostname) {
			out = append(out, e.Address)
		}
	}
	return out
}
