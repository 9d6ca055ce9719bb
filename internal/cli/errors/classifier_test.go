package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tunedeck/tunedeck/internal/cli/errors"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		msg  string
		kind errors.ErrorKind
	}{
		{"daemon returned 401 Unauthorized for GET /api/tools", errors.ErrorKindAuth},
		{"dial tcp 127.0.0.1:6340: connection refused", errors.ErrorKindOffline},
		{"daemon returned 404 Not Found for GET /api/runs", errors.ErrorKindNotFound},
		{"http: unexpected EOF", errors.ErrorKindHTTP},
		{"something else entirely", errors.ErrorKindOther},
	}

	for _, tc := range cases {
		classified := errors.Classify(stderrors.New(tc.msg))
		assert.Equal(t, tc.kind, classified.Kind, tc.msg)
		assert.Equal(t, tc.msg, classified.Message)
	}

	// Offline errors point the user at the daemon.
	classified := errors.Classify(stderrors.New("connection refused"))
	assert.Contains(t, classified.Hint, "daemon")
}
