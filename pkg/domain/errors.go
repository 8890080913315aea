package domain

import "errors"

// ErrInvalidState is returned when a textual lifecycle state cannot be parsed.
var ErrInvalidState = errors.New("invalid lifecycle state")

// ErrNodeNotFound is returned when a host has no node with the requested ID.
var ErrNodeNotFound = errors.New("node not found")

// ErrNodeExists is returned when a host already retains a node with the same ID.
var ErrNodeExists = errors.New("node already exists")

// ErrUnknownKind is returned when no factory is registered for a node kind.
var ErrUnknownKind = errors.New("unknown node kind")

// ErrExpectation is returned when an observed lifecycle does not match an expected one.
var ErrExpectation = errors.New("lifecycle expectation failed")

// ErrInvalidNode is returned when a node request is missing its ID or kind.
var ErrInvalidNode = errors.New("invalid node request")
