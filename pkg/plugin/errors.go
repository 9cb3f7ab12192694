package plugin

import "errors"

var (
	ErrAlreadyRegistered  = errors.New("plugin: already registered")
	ErrNotFound           = errors.New("plugin: not found")
	ErrInvalidTransition  = errors.New("plugin: invalid state transition")
	ErrNotActive          = errors.New("plugin: not active")
	ErrWaitTimeout        = errors.New("plugin: timed out waiting for plugins to idle")
	ErrUnknownPlugin      = errors.New("plugin: unknown plugin")
	ErrUnknownFunction    = errors.New("plugin: unknown function")
	ErrAmbiguousFunction  = errors.New("plugin: ambiguous function")
)
