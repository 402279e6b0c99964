package session

import "errors"

var (
	// ErrStorageRead means the token store could not be read. The session is
	// treated as unauthenticated.
	ErrStorageRead = errors.New("session: token store read failed")
	// ErrStorageWrite means a token store write or removal failed.
	ErrStorageWrite = errors.New("session: token store write failed")
	// ErrEmptyToken is returned by Login for an empty token.
	ErrEmptyToken = errors.New("session: empty token")
	// ErrNotInitialized is returned by Login and Logout before Initialize finished.
	ErrNotInitialized = errors.New("session: not initialized")
	// ErrNotAuthenticated is returned by Token when no token is held.
	ErrNotAuthenticated = errors.New("session: not authenticated")
)
