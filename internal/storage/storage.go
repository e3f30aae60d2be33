// Package storage defines the recording backends a simulator run can be
// written to. Recordings are write-only: nothing loads them back.
package storage

import "github.com/Garsondee/Drone-Fleet/internal/model"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management. The session passed to StartSession is updated
	// in place (end time, tick count) before EndSession is called.
	StartSession(s *model.Session) error
	EndSession() error

	// Recording
	RecordTick(t *model.TickStat) error
	RecordDroneState(s *model.DroneState) error
	RecordEvent(e *model.FlightEvent) error
}

// Exporter is an optional interface for backends that produce a file at the
// end of a session.
type Exporter interface {
	ExportedFilePath() string
}
