// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glink

import (
	"errors"
	"fmt"

	"github.com/gogpu/glink/driver"
)

// Program, reflection and binding errors.
var (
	// ErrNilContext is returned when a nil driver context is passed.
	ErrNilContext = errors.New("glink: nil driver context")

	// ErrInvalidStages is returned by Link for an empty stage set, a set
	// containing two stages of the same kind, or an unknown stage kind.
	ErrInvalidStages = errors.New("glink: invalid stage set")

	// ErrAlreadyLinked is returned by Link once the program has left the
	// undefined state. Link status is monotonic; retrying means creating
	// a new Program.
	ErrAlreadyLinked = errors.New("glink: program already linked")

	// ErrNotLinked is returned by operations that require a successfully
	// linked program.
	ErrNotLinked = errors.New("glink: program not successfully linked")

	// ErrReleased is returned for operations on a released program.
	ErrReleased = errors.New("glink: program released")

	// ErrNilReflection is returned when a nil reflection is passed.
	ErrNilReflection = errors.New("glink: nil reflection")

	// ErrInvalidSignature is returned by NewSignature for empty or
	// duplicate resource names, or an unknown resource kind.
	ErrInvalidSignature = errors.New("glink: invalid signature")

	// ErrLinkFailed matches any *LinkError via errors.Is.
	ErrLinkFailed = errors.New("glink: program link failed")

	// ErrBindingMismatch matches any *MismatchError via errors.Is.
	ErrBindingMismatch = errors.New("glink: binding kind mismatch")
)

// LinkError reports a failed program link together with the driver's
// diagnostic text. It matches ErrLinkFailed via errors.Is.
type LinkError struct {
	// Log is the driver's info log for the failed link.
	Log string
}

func (e *LinkError) Error() string {
	if e.Log == "" {
		return "glink: program link failed"
	}
	return "glink: program link failed: " + e.Log
}

func (e *LinkError) Unwrap() error { return ErrLinkFailed }

// MismatchError reports a reflected resource whose kind disagrees with
// the kind declared by the signature that claimed its name. It matches
// ErrBindingMismatch via errors.Is.
type MismatchError struct {
	// Name is the resource name both sides refer to.
	Name string

	// Signature is the label of the claiming signature.
	Signature string

	// Reflected is the kind the driver reported.
	Reflected driver.ResourceKind

	// Declared is the kind the signature declared.
	Declared driver.ResourceKind
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("glink: resource %q: reflected kind %s does not match kind %s declared by signature %q",
		e.Name, e.Reflected, e.Declared, e.Signature)
}

func (e *MismatchError) Unwrap() error { return ErrBindingMismatch }
