package simulation

import "errors"

// ErrUnknownSession indicates a session ID that does not exist or has
// expired. Expired sessions are indistinguishable from ones that never
// existed.
var ErrUnknownSession = errors.New("unknown session")
