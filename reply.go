package torctl

import (
	"bufio"
	"io"
)

// ReplyLine is one parsed line of a control-protocol reply.
type ReplyLine struct {
	Status  string // exactly 3 ASCII decimal digits
	Divider byte   // '-', '+', or ' '
	Message string // remainder of the line after the divider, CR stripped
	Data    string // decoded data body; only meaningful when HasData
	HasData bool
}

// Reply is the ordered, non-empty sequence of ReplyLines that makes up a
// complete response to one command, or a complete asynchronous event.
type Reply struct {
	Lines []ReplyLine
}

// Empty reports whether this is the clean-EOF sentinel reply (no lines
// were read before the stream ended).
func (r Reply) Empty() bool { return len(r.Lines) == 0 }

// First returns the reply's first line. Callers must not call this on an
// Empty reply.
func (r Reply) First() ReplyLine { return r.Lines[0] }

// IsEvent reports whether the first line's status class is 6xx.
func (r Reply) IsEvent() bool { return !r.Empty() && r.First().Status[0] == '6' }

// IsSuccess reports whether the first line's status class is 2xx.
func (r Reply) IsSuccess() bool { return !r.Empty() && r.First().Status[0] == '2' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// parseReply assembles one Reply by reading ReplyLines from r until a
// terminal line (divider == ' ') is seen. EOF before any line has been
// read yields the Empty sentinel reply with a nil error, which the Mux
// treats as a clean stream close. EOF after at least one line, or any
// other grammar violation, yields a *ProtocolError.
func parseReply(r *bufio.Reader, onLine func(string)) (Reply, error) {
	var lines []ReplyLine
	for {
		line, err := readLine(r)
		if err == io.EOF {
			if len(lines) == 0 {
				return Reply{}, nil
			}
			return Reply{}, &ProtocolError{Msg: "unexpected EOF mid-reply"}
		}
		if err != nil {
			return Reply{}, err
		}
		if onLine != nil {
			onLine(line)
		}
		if len(line) < 4 {
			return Reply{}, &ProtocolError{Msg: "line too short: " + line}
		}
		status := line[0:3]
		if !isDigit(status[0]) || !isDigit(status[1]) || !isDigit(status[2]) {
			return Reply{}, &ProtocolError{Msg: "non-digit status: " + status}
		}
		divider := line[3]
		rl := ReplyLine{Status: status, Divider: divider, Message: line[4:]}
		switch divider {
		case '+':
			data, derr := decodeDataBlock(r, onLine)
			if derr == io.EOF {
				return Reply{}, &ProtocolError{Msg: "unexpected EOF in data block"}
			}
			if derr != nil {
				return Reply{}, derr
			}
			rl.Data = data
			rl.HasData = true
		case '-', ' ':
			// no data body
		default:
			return Reply{}, &ProtocolError{Msg: "bad divider byte in line: " + line}
		}
		lines = append(lines, rl)
		if divider == ' ' {
			return Reply{Lines: lines}, nil
		}
	}
}
