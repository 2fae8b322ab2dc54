package assets

import "fmt"

// NetworkError is a transport-level failure for one remote asset. It is
// always contained to that asset: the synchronizer logs it and moves on.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("cannot fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
