package torctl

import (
	"bufio"
	"io"
	"strings"
)

// readLine returns the next line of a CRLF- or LF-terminated stream with
// its terminator stripped. On clean end-of-stream it returns io.EOF —
// callers must not confuse that with an empty line, which is a valid
// (if unusual) reply fragment.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		// a partial line followed by EOF is still data the caller may
		// need to see as a malformed fragment, so only treat a wholly
		// empty read as clean end-of-stream.
		if err == io.EOF && line == "" {
			return "", io.EOF
		}
		if err != io.EOF {
			return "", err
		}
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

// writeLine appends CRLF and writes line to w.
func writeLine(w io.Writer, line string) error {
	_, err := io.WriteString(w, line+"\r\n")
	return err
}

// quote wraps s in double quotes, backslash-escaping '\\', '"', CR and LF.
// No other character is escaped.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '"':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// encodeDataBlock writes body (split on '\n') to w as a dot-stuffed data
// block terminated by a lone '.' line. A line beginning with '.' gets an
// extra leading '.'; bare CR endings are promoted to CRLF rather than
// doubled.
func encodeDataBlock(w io.Writer, body string) error {
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, ".") {
			line = "." + line
		}
		var err error
		if strings.HasSuffix(line, "\r") {
			_, err = io.WriteString(w, line+"\n")
		} else {
			_, err = io.WriteString(w, line+"\r\n")
		}
		if err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ".\r\n")
	return err
}

// decodeDataBlock reads lines from r until one equals ".", removing the
// dot-stuffed leading dot from lines that begin with one, and joins the
// result with '\n'. The terminating "." line is consumed but not
// included in the returned body. onLine, if non-nil, is called with the
// exact text of every line read (including the terminating dot), for
// the debug tap.
func decodeDataBlock(r *bufio.Reader, onLine func(string)) (string, error) {
	var lines []string
	for {
		line, err := readLine(r)
		if err != nil {
			return "", err
		}
		if onLine != nil {
			onLine(line)
		}
		if line == "." {
			return strings.Join(lines, "\n"), nil
		}
		if strings.HasPrefix(line, ".") {
			line = line[1:]
		}
		lines = append(lines, line)
	}
}
