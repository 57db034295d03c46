// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glink

import (
	"fmt"

	"github.com/gogpu/glink/driver"
)

// SignatureEntry declares one named resource in a Signature.
type SignatureEntry struct {
	Name string
	Kind driver.ResourceKind
}

// sigEntry is the stored form of an entry: the declaration plus its
// index among entries of the same kind, assigned in declaration order.
type sigEntry struct {
	SignatureEntry
	localIndex uint32
}

// Signature is an externally authored resource layout: an ordered list
// of named resource declarations plus a base binding offset per
// resource kind.
//
// Final slots are additive. An entry's slot is the signature's base
// offset for its kind plus the entry's index among same-kind entries,
// so several signatures with disjoint base offsets flatten into one
// program's slot space without colliding.
//
// A Signature is immutable after construction and safe for concurrent
// use.
type Signature struct {
	name    string
	entries []sigEntry
	byName  map[string]int
	base    [driver.NumResourceKinds]uint32
}

// SignatureOption configures NewSignature.
type SignatureOption func(*Signature)

// WithBaseOffset sets the base binding offset for one resource kind.
// Unset kinds default to zero.
func WithBaseOffset(kind driver.ResourceKind, offset uint32) SignatureOption {
	return func(s *Signature) {
		if int(kind) < driver.NumResourceKinds {
			s.base[kind] = offset
		}
	}
}

// NewSignature builds a signature from entries in declaration order.
// The name labels the signature in diagnostics. Entry names must be
// non-empty and unique within the signature.
func NewSignature(name string, entries []SignatureEntry, opts ...SignatureOption) (*Signature, error) {
	s := &Signature{
		name:    name,
		entries: make([]sigEntry, 0, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	for _, o := range opts {
		o(s)
	}

	var perKind [driver.NumResourceKinds]uint32
	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("glink: signature %q: empty resource name: %w", name, ErrInvalidSignature)
		}
		if int(e.Kind) >= driver.NumResourceKinds {
			return nil, fmt.Errorf("glink: signature %q: resource %q: unknown kind %d: %w",
				name, e.Name, e.Kind, ErrInvalidSignature)
		}
		if _, dup := s.byName[e.Name]; dup {
			return nil, fmt.Errorf("glink: signature %q: duplicate resource %q: %w",
				name, e.Name, ErrInvalidSignature)
		}
		s.byName[e.Name] = len(s.entries)
		s.entries = append(s.entries, sigEntry{SignatureEntry: e, localIndex: perKind[e.Kind]})
		perKind[e.Kind]++
	}
	return s, nil
}

// Name returns the signature's diagnostic label.
func (s *Signature) Name() string { return s.name }

// Len returns the number of declared entries.
func (s *Signature) Len() int { return len(s.entries) }

// BaseOffset returns the base binding offset for kind.
func (s *Signature) BaseOffset(kind driver.ResourceKind) uint32 {
	if int(kind) >= driver.NumResourceKinds {
		return 0
	}
	return s.base[kind]
}

// SlotOf returns the final binding slot the signature assigns to its
// named entry, for callers laying out descriptor data to match. The
// second result is false when the signature does not declare the name.
func (s *Signature) SlotOf(name string) (uint32, bool) {
	i, ok := s.byName[name]
	if !ok {
		return 0, false
	}
	e := s.entries[i]
	return s.base[e.Kind] + e.localIndex, true
}

// lookup returns the stored entry for name.
func (s *Signature) lookup(name string) (sigEntry, bool) {
	i, ok := s.byName[name]
	if !ok {
		return sigEntry{}, false
	}
	return s.entries[i], true
}
