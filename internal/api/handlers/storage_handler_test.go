package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bucketkit/bucketkit/internal/fetch"
	"github.com/bucketkit/bucketkit/internal/objectstore"
)

func TestStatusForError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{objectstore.ErrNotConnected, http.StatusServiceUnavailable},
		{fmt.Errorf("stat object: %w", objectstore.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: %q", objectstore.ErrUnsupportedMethod, "PATCH"), http.StatusBadRequest},
		{fmt.Errorf("%w: dial tcp", objectstore.ErrConnectionFailed), http.StatusBadGateway},
		{fmt.Errorf("%w: unexpected status 404 Not Found", fetch.ErrFetchFailed), http.StatusBadGateway},
		{errors.New("something else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		require.Equalf(t, tc.want, statusForError(tc.err), "error %v", tc.err)
	}
}
