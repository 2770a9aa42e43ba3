package render

import (
	"strings"
)

type segmentKind int

const (
	segText segmentKind = iota
	segOutput
	segStatement
	segComment
	// segMarker stands in for a raw/endraw tag: it takes part in whitespace
	// control and is otherwise ignored.
	segMarker
)

type segment struct {
	kind      segmentKind
	body      string
	line      int
	trimLeft  bool
	trimRight bool
}

// lexOptions control whitespace handling around block tags.
type lexOptions struct {
	trimBlocks   bool
	lstripBlocks bool
}

var closers = map[byte]string{
	'{': "}}",
	'%': "%}",
	'#': "#}",
}

// lex splits src into text and tag segments and applies whitespace control.
func lex(name, src string, opts lexOptions) ([]segment, error) {
	var segs []segment
	pos, line := 0, 1

	emitText := func(text string, at int) {
		if text != "" {
			segs = append(segs, segment{kind: segText, body: text, line: at})
		}
	}

	for pos < len(src) {
		start := nextTag(src, pos)
		if start < 0 {
			emitText(src[pos:], line)
			break
		}
		emitText(src[pos:start], line)
		line += strings.Count(src[pos:start], "\n")

		open := src[start+1]
		closer := closers[open]
		end := findCloser(src, start+2, closer, open != '#')
		if end < 0 {
			return nil, newError(name, line, "unclosed tag, expected '%s'", closer)
		}
		body := src[start+2 : end]
		tagLine := line
		next := end + len(closer)

		seg := segment{line: tagLine}
		if strings.HasPrefix(body, "-") {
			seg.trimLeft = true
			body = body[1:]
		}
		if strings.HasSuffix(body, "-") {
			seg.trimRight = true
			body = body[:len(body)-1]
		}
		seg.body = strings.TrimSpace(body)

		switch open {
		case '{':
			seg.kind = segOutput
		case '#':
			seg.kind = segComment
		default:
			seg.kind = segStatement
		}
		line += strings.Count(src[start:next], "\n")

		if seg.kind == segStatement && seg.body == "raw" {
			seg.kind = segMarker
			segs = append(segs, seg)

			rawStart := next
			closeStart, closeEnd, closeSeg, ok := findEndRaw(src, rawStart)
			if !ok {
				return nil, newError(name, tagLine, "unclosed raw block, expected '{%% endraw %%}'")
			}
			emitText(src[rawStart:closeStart], line)
			line += strings.Count(src[rawStart:closeEnd], "\n")
			closeSeg.line = line
			segs = append(segs, closeSeg)
			pos = closeEnd
			continue
		}

		segs = append(segs, seg)
		pos = next
	}

	applyWhitespaceControl(segs, opts)
	return segs, nil
}

// nextTag returns the index of the next tag opener at or after pos.
func nextTag(src string, pos int) int {
	for i := pos; i+1 < len(src); i++ {
		if src[i] != '{' {
			continue
		}
		switch src[i+1] {
		case '{', '%', '#':
			return i
		}
	}
	return -1
}

// findCloser returns the index of closer at or after pos. When quoted is
// set, closers inside string literals are skipped. An unterminated literal
// falls back to the first closer so the expression parser reports it.
func findCloser(src string, pos int, closer string, quoted bool) int {
	plain := strings.Index(src[pos:], closer)
	if plain >= 0 {
		plain += pos
	}
	if !quoted {
		return plain
	}

	for i := pos; i < len(src); i++ {
		switch c := src[i]; {
		case c == '"' || c == '\'':
			j := i + 1
			for ; j < len(src) && src[j] != c; j++ {
				if src[j] == '\\' {
					j++
				}
			}
			if j >= len(src) {
				return plain
			}
			i = j
		case strings.HasPrefix(src[i:], closer):
			return i
		}
	}
	return -1
}

// findEndRaw locates the {% endraw %} tag that closes a raw block.
func findEndRaw(src string, pos int) (start, end int, seg segment, ok bool) {
	for {
		idx := strings.Index(src[pos:], "{%")
		if idx < 0 {
			return 0, 0, segment{}, false
		}
		start = pos + idx
		closeIdx := strings.Index(src[start+2:], "%}")
		if closeIdx < 0 {
			return 0, 0, segment{}, false
		}
		body := src[start+2 : start+2+closeIdx]
		end = start + 2 + closeIdx + 2

		seg = segment{kind: segMarker}
		if strings.HasPrefix(body, "-") {
			seg.trimLeft = true
			body = body[1:]
		}
		if strings.HasSuffix(body, "-") {
			seg.trimRight = true
			body = body[:len(body)-1]
		}
		if strings.TrimSpace(body) == "endraw" {
			seg.body = "endraw"
			return start, end, seg, true
		}
		pos = start + 2
	}
}

func isBlock(kind segmentKind) bool {
	return kind == segStatement || kind == segComment || kind == segMarker
}

// applyWhitespaceControl strips whitespace next to tags: explicit "-"
// modifiers on any tag, plus the optional trim/lstrip rules for block tags.
// Left sides are handled first so lstrip sees each line as written.
func applyWhitespaceControl(segs []segment, opts lexOptions) {
	for i := 1; i < len(segs); i++ {
		seg := segs[i]
		if seg.kind == segText || segs[i-1].kind != segText {
			continue
		}
		prev := &segs[i-1]
		switch {
		case seg.trimLeft:
			prev.body = strings.TrimRight(prev.body, " \t\r\n")
		case opts.lstripBlocks && isBlock(seg.kind):
			prev.body = lstripLine(prev.body, i-1 == 0)
		}
	}

	for i := 0; i+1 < len(segs); i++ {
		seg := segs[i]
		if seg.kind == segText || segs[i+1].kind != segText {
			continue
		}
		next := &segs[i+1]
		switch {
		case seg.trimRight:
			next.body = strings.TrimLeft(next.body, " \t\r\n")
		case opts.trimBlocks && isBlock(seg.kind):
			if strings.HasPrefix(next.body, "\r\n") {
				next.body = next.body[2:]
			} else if strings.HasPrefix(next.body, "\n") {
				next.body = next.body[1:]
			}
		}
	}
}

// lstripLine removes spaces and tabs between the last newline of text and
// the tag that follows it. atStart marks text that opens the template, where
// the tag sits on the first line.
func lstripLine(text string, atStart bool) string {
	idx := strings.LastIndexByte(text, '\n')
	tail := text[idx+1:]
	if strings.TrimLeft(tail, " \t") != "" {
		return text
	}
	if idx < 0 && !atStart {
		return text
	}
	return text[:idx+1]
}
