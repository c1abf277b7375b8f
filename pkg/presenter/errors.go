package presenter

import "errors"

var (
	// ErrNotImplemented is returned by operations a presenter does not
	// provide. See UnimplementedQueue and friends.
	ErrNotImplemented = errors.New("presenter: operation not implemented")

	// ErrBusy is returned when an operation starts while another one on
	// the same presenter is still in flight. Callers must serialize
	// operations; this only reports the misuse.
	ErrBusy = errors.New("presenter: operation already in flight")

	// ErrDisposed is returned by operations on a disposed presenter.
	ErrDisposed = errors.New("presenter: disposed")
)
