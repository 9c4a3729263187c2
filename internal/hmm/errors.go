package hmm

import "errors"

var errMismatchedKeys = errors.New("init, tran and emis do not share the same state set")

func errNotSquare(state string) error {
	return errors.New("tran[" + state + "] has a different key set than tran itself")
}
