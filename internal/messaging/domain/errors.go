package domain

import "errors"

// 錯誤分類: remote 失敗走 mirror fallback, NotFound 才往上拋
var (
	// ErrRemoteUnavailable network/backend failure on a remote store call.
	// Triggers the mirror fallback, never surfaced to callers.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrNotFound entity absent even in the fallback mirror.
	ErrNotFound = errors.New("entity not found")

	// ErrValidation rejected before any store call, no partial state change.
	ErrValidation = errors.New("validation failed")
)
