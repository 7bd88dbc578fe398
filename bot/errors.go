package bot

import (
	"errors"
	"fmt"
)

// ErrNoActiveSession is returned by SendMessage when no live session is
// published. It is the only failure surfaced to external callers; everything
// else is absorbed by the supervisor's retry policy.
var ErrNoActiveSession = errors.New("no active live session")

// Stage names the supervisor step that produced a recoverable failure.
type Stage string

const (
	StageDetect Stage = "detect"
	StagePoll   Stage = "poll"
	StageSend   Stage = "send"
	StageEnd    Stage = "end-check"
)

// Failure wraps an underlying error with the stage it occurred in, so the
// supervisor can log and back off per stage without string matching.
type Failure struct {
	Stage Stage
	Err   error
}

func (f *Failure) Error() string { return fmt.Sprintf("%s: %v", f.Stage, f.Err) }

func (f *Failure) Unwrap() error { return f.Err }

func failAt(stage Stage, err error) error {
	return &Failure{Stage: stage, Err: err}
}

// FailureStage extracts the stage from a supervisor failure, or "" for
// foreign errors.
func FailureStage(err error) Stage {
	var f *Failure
	if errors.As(err, &f) {
		return f.Stage
	}
	return ""
}
