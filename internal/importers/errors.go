package importers

import "errors"

// ErrConnectionUnavailable aborts a run before anything is loaded or sent.
var ErrConnectionUnavailable = errors.New("destination store unavailable")

// ErrLoadFailure aborts a run whose input is unreadable or holds no links.
var ErrLoadFailure = errors.New("failed to load links")
