package app

import "sgf/hal"

// errOnce logs an error the first time it is seen and stays quiet while the same error
// keeps repeating. A success or a different error re-arms it.
type errOnce struct {
	op   string
	last string
}

func (e *errOnce) report(l hal.Logger, err error) {
	if err == nil {
		e.last = ""
		return
	}
	msg := err.Error()
	if msg == e.last {
		return
	}
	e.last = msg
	l.WriteLineString("app: " + e.op + ": " + msg)
}
