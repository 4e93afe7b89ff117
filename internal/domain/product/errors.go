package product

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrEmptyResult is reported when the catalog answered with a valid page
// that holds no products.
var ErrEmptyResult = errors.New("no products")

// NetworkError indicates the catalog could not be reached or answered with
// a non-2xx status. The request may succeed when retried.
type NetworkError struct {
	URL string
	// StatusCode is zero for transport failures.
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("catalog %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError indicates the catalog response did not match the expected
// shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode catalog page: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
