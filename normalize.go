package ideas

import (
	"regexp"
	"strings"
)

var (
	headingLine = regexp.MustCompile(`^ {0,3}#{1,6}[ \t]`)
	listLine    = regexp.MustCompile(`^\s*(?:[-*+]|\d{1,9}[.)])(?:[ \t]|$)`)
	fenceLine   = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})(.*)$")

	// A heading marker of two to six hashes glued to preceding text.
	// Single hashes are left alone so names like C# survive.
	gluedHeading = regexp.MustCompile(`[^#](#{2,6} )`)

	gluedDash    = regexp.MustCompile(`[^\s-](- )`)
	gluedStar    = regexp.MustCompile(`[.:!?](\* )`)
	gluedOrdinal = regexp.MustCompile(`[^\d\s][.:!?)](\d{1,3}\. )`)

	// "short- and long-term" style suspended hyphens.
	suspendedHyphen = regexp.MustCompile(`^- (?:and|or|to) `)

	trailingSentinel = regexp.MustCompile(`(?:\s*\[DONE\])+\s*$`)
)

// maxPasses bounds the repair loop in Normalize. Real documents settle
// after one or two passes.
const maxPasses = 8

// Normalize repairs a possibly partial Markdown document so it renders
// without block structure fusing together. It is pure and idempotent:
// Normalize(Normalize(s)) == Normalize(s).
//
// Line breaks are unified to "\n" first, including a lone "\r". Then
// passes run in a fixed order over the whole document:
//
//  1. headings glued to text are split off and surrounded by blank lines
//  2. list markers glued to text start a new line
//  3. a heading line with a glued "- item" tail is split off its items
//  4. runs of three or more line breaks collapse to two
//  5. trailing [DONE] sentinels are stripped
//
// One pass can expose work for another, so the passes repeat until the
// document stops changing.
//
// Some glued markers are left alone on purpose. A single "#" glued to
// text is not a heading, so names like C# survive. A "*" is split off
// only after sentence punctuation, since mid-line it usually opens
// emphasis. An ordinal such as "2. " is split off only when glued to
// punctuation, never after a space, so prose like "in 2. " is kept.
//
// Lines inside fenced code blocks are never modified.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	for range maxPasses {
		next := normalizePass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func normalizePass(s string) string {
	lines := strings.Split(s, "\n")
	lines = eachProseLine(lines, SplitGluedHeadings)
	lines = separateHeadings(lines)
	lines = eachProseLine(lines, SplitGluedListMarkers)
	lines = eachProseLine(lines, SplitHeadingList)
	lines = collapseBlankLines(lines)
	return StripSentinel(strings.Join(lines, "\n"))
}

// SplitGluedHeadings splits a line wherever a heading marker is glued to
// the text before it.
func SplitGluedHeadings(line string) []string {
	return splitLine(line, func(s string) int {
		return firstSplit(s, gluedHeading, nil)
	})
}

// SplitGluedListMarkers splits a non-heading line wherever a list marker is
// glued to the text before it.
func SplitGluedListMarkers(line string) []string {
	if isHeading(line) {
		return []string{line}
	}
	return splitLine(line, func(s string) int {
		i := firstSplit(s, gluedDash, acceptDash)
		if j := firstSplit(s, gluedStar, acceptStar); j > 0 && (i < 0 || j < i) {
			i = j
		}
		if j := firstSplit(s, gluedOrdinal, nil); j > 0 && (i < 0 || j < i) {
			i = j
		}
		return i
	})
}

// SplitHeadingList splits "### Problem- item" into the heading and a
// separate list item. Items glued to each other in the tail are split too.
func SplitHeadingList(line string) []string {
	if !isHeading(line) {
		return []string{line}
	}
	i := firstSplit(line, gluedDash, acceptDash)
	if i <= 0 {
		return []string{line}
	}
	head := strings.TrimRight(line[:i], " \t")
	return append([]string{head}, SplitGluedListMarkers(line[i:])...)
}

// StripSentinel removes any trailing end-of-stream sentinels and the
// whitespace around them.
func StripSentinel(s string) string {
	return trailingSentinel.ReplaceAllString(s, "")
}

func acceptDash(line string, at int) bool {
	return !suspendedHyphen.MatchString(line[at:])
}

// acceptStar rejects a star that may close emphasis, i.e. when the text
// before it has an odd number of stars.
func acceptStar(line string, at int) bool {
	return strings.Count(line[:at], "*")%2 == 0
}

// firstSplit returns the index of the first acceptable marker matched by
// re's first group, or -1. A marker preceded only by whitespace is never a
// split point.
func firstSplit(line string, re *regexp.Regexp, accept func(string, int) bool) int {
	for _, m := range re.FindAllStringSubmatchIndex(line, -1) {
		at := m[2]
		if strings.TrimSpace(line[:at]) == "" {
			continue
		}
		if accept != nil && !accept(line, at) {
			continue
		}
		return at
	}
	return -1
}

// splitLine repeatedly cuts line at the index returned by find, trimming
// trailing blanks from each left part.
func splitLine(line string, find func(string) int) []string {
	var out []string
	for {
		i := find(line)
		if i <= 0 {
			return append(out, line)
		}
		out = append(out, strings.TrimRight(line[:i], " \t"))
		line = line[i:]
	}
}

// eachProseLine replaces every line outside fenced code with fn(line).
func eachProseLine(lines []string, fn func(string) []string) []string {
	code := codeMask(lines)
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if code[i] {
			out = append(out, line)
			continue
		}
		out = append(out, fn(line)...)
	}
	return out
}

// separateHeadings puts a blank line before every heading that lacks one
// and after every heading followed directly by a paragraph line.
func separateHeadings(lines []string) []string {
	code := codeMask(lines)
	out := make([]string, 0, len(lines)+4)
	for i, line := range lines {
		if code[i] || !isHeading(line) {
			out = append(out, line)
			continue
		}
		if len(out) > 0 && !isBlank(out[len(out)-1]) {
			out = append(out, "")
		}
		out = append(out, line)
		if i+1 < len(lines) {
			next := lines[i+1]
			if !isBlank(next) && !isHeading(next) && !isListItem(next) {
				out = append(out, "")
			}
		}
	}
	return out
}

// collapseBlankLines caps runs of empty prose lines so that no more than
// two consecutive line breaks remain.
func collapseBlankLines(lines []string) []string {
	code := codeMask(lines)
	n := len(lines)
	out := make([]string, 0, n)
	for i := 0; i < n; {
		if code[i] || lines[i] != "" {
			out = append(out, lines[i])
			i++
			continue
		}
		j := i
		for j < n && !code[j] && lines[j] == "" {
			j++
		}
		run := j - i
		// Line breaks spanned by the run depend on whether content
		// bounds it on each side.
		keep := 1
		switch {
		case i == 0 && j == n:
			keep = min(run, 3)
		case i == 0 || j == n:
			keep = min(run, 2)
		}
		for range keep {
			out = append(out, "")
		}
		i = j
	}
	return out
}

// codeMask marks fence lines and the lines between them. An unclosed fence
// extends to the end of the document.
func codeMask(lines []string) []bool {
	mask := make([]bool, len(lines))
	var open string
	for i, line := range lines {
		m := fenceLine.FindStringSubmatch(line)
		if open == "" {
			if m != nil && (m[1][0] != '`' || !strings.Contains(m[2], "`")) {
				open = m[1]
				mask[i] = true
			}
			continue
		}
		mask[i] = true
		if m != nil && m[1][0] == open[0] && len(m[1]) >= len(open) && strings.TrimSpace(m[2]) == "" {
			open = ""
		}
	}
	return mask
}

func isHeading(line string) bool { return headingLine.MatchString(line) }

func isListItem(line string) bool { return listLine.MatchString(line) }

func isBlank(line string) bool { return strings.TrimSpace(line) == "" }
