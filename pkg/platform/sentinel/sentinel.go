package sentinel

import "errors"

// Infrastructure facts returned (optionally wrapped) by stores and adapters.
// Services translate them into coded domain errors.
//
//   - ErrNotFound: no row/entry for the requested key
//   - ErrAlreadyUsed: a unique key is already taken
//   - ErrUnavailable: backing service temporarily unreachable
//   - ErrTxDone: unit of work already committed or rolled back
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrUnavailable = errors.New("unavailable")
	ErrTxDone      = errors.New("transaction already finished")
)
