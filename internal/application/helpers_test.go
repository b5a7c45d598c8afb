package application

import (
	"fmt"
	"time"

	"github.com/stretchr/testify/mock"
)

func mockAnyContext() interface{} {
	return mock.Anything
}

// remoteErr mimics a gateway error that carries a backend response.
type remoteErr struct {
	status int
	detail string
}

func (e remoteErr) Error() string {
	return fmt.Sprintf("status %d: %s", e.status, e.detail)
}

func (e remoteErr) StatusCode() int {
	return e.status
}

func (e remoteErr) ErrorDetail() string {
	return e.detail
}

const (
	testTimeout = 2 * time.Second
	testTick    = 5 * time.Millisecond
)
