package rpc

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/storage"
)

// asConnectError maps domain errors onto Connect codes. Validation
// problems go back as invalid-argument for the client to fix; integrity
// violations are internal failures and are never softened.
func asConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	var validation *ledger.ValidationError
	if errors.As(err, &validation) {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}

	var integrity *ledger.DataIntegrityError
	if errors.As(err, &integrity) {
		return connect.NewError(connect.CodeInternal, err)
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, auth.ErrWeakPassword):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	}

	return connect.NewError(connect.CodeInternal, err)
}
