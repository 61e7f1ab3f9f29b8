package torctl

// Recognized event names, upper-cased per spec §4.5.
const (
	EventCirc    = "CIRC"
	EventStream  = "STREAM"
	EventORConn  = "ORCONN"
	EventBW      = "BW"
	EventNewDesc = "NEWDESC"
	EventDebug   = "DEBUG"
	EventInfo    = "INFO"
	EventNotice  = "NOTICE"
	EventWarn    = "WARN"
	EventErr     = "ERR"
)

// KnownEventNames is the set of event names the Controller facade's
// SETEVENTS validates against before any bytes are sent.
var KnownEventNames = map[string]bool{
	"CIRC": true, "STREAM": true, "ORCONN": true, "BW": true,
	"NEWDESC": true, "DEBUG": true, "INFO": true, "NOTICE": true,
	"WARN": true, "ERR": true, "NEWCONSENSUS": true, "ADDRMAP": true,
	"AUTHDIR_NEWDESCS": true, "DESCCHANGED": true, "STATUS_GENERAL": true,
	"STATUS_CLIENT": true, "STATUS_SERVER": true, "GUARD": true,
	"NS": true, "STREAM_BW": true, "CLIENTS_SEEN": true,
	"BUILDTIMEOUT_SET": true, "SIGNAL": true, "CONF_CHANGED": true,
	"CIRC_MINOR": true, "TRANSPORT_LAUNCHED": true, "CONN_BW": true,
	"CELL_STATS": true, "TB_EMPTY": true, "HS_DESC": true,
	"HS_DESC_CONTENT": true, "NETWORK_LIVENESS": true,
}

var logSeverities = map[string]bool{
	EventDebug: true, EventInfo: true, EventNotice: true,
	EventWarn: true, EventErr: true,
}

// EventHandler receives decoded callbacks for recognized event kinds.
// Every method is optional to the implementer's needs; an
// EventHandler that only cares about one kind can no-op the rest.
type EventHandler interface {
	// Circ is called for a CIRC event. path is empty when the status is
	// LAUNCHED or when the path token is absent — preserved quirk from
	// the original control library.
	Circ(status, circID, path string)
	// Stream is called for a STREAM event.
	Stream(status, streamID, target string)
	// ORConn is called for an ORCONN event.
	ORConn(status, orName string)
	// BW is called for a BW event.
	BW(bytesRead, bytesWritten int64)
	// NewDesc is called for a NEWDESC event.
	NewDesc(serverIDs []string)
	// LogMessage is called for DEBUG/INFO/NOTICE/WARN/ERR events.
	LogMessage(severity, message string)
	// Unrecognized is called for any other event name.
	Unrecognized(eventName, rest string)
}

// RawListener receives every event, recognized or not, as the raw
// (eventName, rest) pair before any typed decoding.
type RawListener func(eventName, rest string)
