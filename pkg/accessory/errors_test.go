package accessory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nutriglow/nutriglow-go/pkg/command"
	"github.com/nutriglow/nutriglow-go/pkg/resolver"
	"github.com/nutriglow/nutriglow-go/pkg/transport"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		class error
		kind  string
	}{
		{"Unavailable", transport.ErrUnavailable, ErrUnavailable, "bluetooth unavailable"},
		{"SelectionCancelled", fmt.Errorf("chooser: %w", transport.ErrCancelled), ErrUserCancelled, "user cancelled"},
		{"NoDevice", transport.ErrNoDevice, ErrUserCancelled, "user cancelled"},
		{"ContextCancelled", context.Canceled, ErrUserCancelled, "user cancelled"},
		{"PermissionDenied", transport.ErrPermissionDenied, ErrPermissionDenied, "permission denied"},
		{"NoEndpoint", fmt.Errorf("resolve: %w", resolver.ErrNoEndpoint), ErrNoEndpointFound, "no usable endpoint found"},
		{"InvalidCode", command.ErrInvalidCode, ErrInvalidCommand, "invalid command"},
		{"Timeout", context.DeadlineExceeded, ErrConnectFailed, "connection failed"},
		{"Other", errors.New("hci: command disallowed"), ErrConnectFailed, "connection failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.ErrorIs(t, got, tt.class)
			assert.ErrorIs(t, got, tt.err)
			assert.Equal(t, tt.kind, ErrorKind(got))
			assert.Equal(t, tt.kind, ErrorKind(tt.err))
		})
	}
}

func TestClassifyKeepsClassifiedErrors(t *testing.T) {
	err := wrap(ErrWriteFailed, transport.ErrNotSupported)
	assert.Same(t, err, Classify(err))
	assert.Equal(t, "write failed", ErrorKind(err))

	assert.NoError(t, Classify(nil))
	assert.Empty(t, ErrorKind(nil))
	assert.Equal(t, ErrNotConnected, wrap(ErrNotConnected, nil))
}
