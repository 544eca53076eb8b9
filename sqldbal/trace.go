package sqldbal

import "log/slog"

// debugLogger receives one synchronous trace record per Exec and
// StmtPrepare call when a Connection was opened with FlagDebug; other
// operations are not traced. Records are logged at Info level. It defaults to the
// process-wide slog default so callers that never opt in pay no
// setup cost; SetDebugLogger lets a host program route traces through
// its own structured logger (for example one built via klog's
// zap-to-slog bridge).
var debugLogger = slog.Default()

// SetDebugLogger replaces the logger used for FlagDebug tracing.
func SetDebugLogger(l *slog.Logger) {
	if l != nil {
		debugLogger = l
	}
}

// trace writes one debug record for the call this Connection just
// made, synchronously on the calling goroutine, matching the
// single-threaded, fully-synchronous contract the rest of the
// package holds to.
func (c *Connection) trace(op, query string, st Status) {
	if c.flags&FlagDebug == 0 {
		return
	}
	debugLogger.Info("sqldbal",
		slog.String("op", op),
		slog.String("driver", c.tag.String()),
		slog.String("query", query),
		slog.String("status", st.String()),
	)
}
