// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glink

import (
	"fmt"
	"runtime"

	"github.com/gogpu/glink/driver"
	"github.com/gogpu/glink/spin"
)

// LinkStatus describes where a program is in its link lifecycle.
//
// State machine:
//
//	Undefined --Link--> InProgress --observation--> Succeeded | Failed
//
// The status is monotonic. Terminal states never revert; retrying a
// failed link means creating a new Program.
type LinkStatus uint8

const (
	// LinkStatusUndefined means no link has been requested.
	LinkStatusUndefined LinkStatus = iota

	// LinkStatusInProgress means the driver may still be linking.
	LinkStatusInProgress

	// LinkStatusSucceeded means the program linked and is usable.
	LinkStatusSucceeded

	// LinkStatusFailed means the link failed; see Program.InfoLog.
	LinkStatusFailed
)

// String returns the string representation of LinkStatus.
func (s LinkStatus) String() string {
	switch s {
	case LinkStatusUndefined:
		return "undefined"
	case LinkStatusInProgress:
		return "in progress"
	case LinkStatusSucceeded:
		return "succeeded"
	case LinkStatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("LinkStatus(%d)", uint8(s))
	}
}

// Terminal reports whether s is one of the two final states.
func (s LinkStatus) Terminal() bool {
	return s == LinkStatusSucceeded || s == LinkStatusFailed
}

// StageRef references one compiled shader stage for linking. The
// referenced shader stays owned by the caller; a Program never deletes
// the shaders attached to it.
type StageRef struct {
	Kind   driver.StageKind
	Shader driver.ShaderID
}

// Program owns one driver program object and drives it through linking,
// reflection and resource binding.
//
// Lifecycle:
//
//	p, err := glink.NewProgram(ctx)
//	err = p.Link(stages, false)
//	st := p.Status(true) // or poll with Status(false)
//	r, err := p.LoadResources(q)
//	plan, err := p.ApplyBindings(r, sigs)
//	p.Release()
//
// Thread safety: all methods are safe for concurrent use. Shared state
// is guarded by a spin lock held only for a few loads and stores; the
// blocking operations — Status with wait=true, and Link on drivers
// without async link reporting — block on the driver, never on another
// goroutine's lock. Release must not race Link on the same program.
//
// A Program must not be copied.
type Program struct {
	ctx driver.Context

	mu        spin.Mutex
	handle    driver.ProgramID
	linking   bool // Link claimed, driver link not yet issued
	status    LinkStatus
	stages    []StageRef
	separable bool
	infoLog   string
	refl      reflectionCache
}

// NewProgram creates an empty program object on ctx.
func NewProgram(ctx driver.Context) (*Program, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	h, err := ctx.CreateProgram()
	if err != nil {
		return nil, fmt.Errorf("glink: create program: %w", err)
	}
	Logger().Debug("program created", "handle", uint64(h))
	return &Program{ctx: ctx, handle: h}, nil
}

// Link attaches stages and starts linking.
//
// The stage set must be non-empty and contain at most one stage of each
// kind; otherwise Link returns an error wrapping ErrInvalidStages and
// the program stays in LinkStatusUndefined. Stages are attached in the
// given order.
//
// On drivers that report link completion asynchronously, Link returns
// with the program in LinkStatusInProgress; the outcome is observed
// through Status. On other drivers Link blocks until the driver
// finishes and the program is in a terminal state when it returns. In
// both cases the link outcome — including failure — is reported by
// Status and InfoLog, not by Link's error value.
//
// Link can be called once per Program; later calls return
// ErrAlreadyLinked regardless of the first link's outcome.
func (p *Program) Link(stages []StageRef, separable bool) error {
	if err := validateStages(stages); err != nil {
		return err
	}

	p.mu.Lock()
	if p.handle == 0 {
		p.mu.Unlock()
		return ErrReleased
	}
	if p.linking || p.status != LinkStatusUndefined {
		p.mu.Unlock()
		return ErrAlreadyLinked
	}
	// Claim the link before issuing driver calls so a concurrent Link
	// fails fast. The status stays Undefined until the driver link is
	// actually in flight; observers must not poll a link that has not
	// been issued.
	p.linking = true
	p.stages = append([]StageRef(nil), stages...)
	p.separable = separable
	h := p.handle
	p.mu.Unlock()

	for _, s := range stages {
		p.ctx.AttachShader(h, s.Shader)
	}
	if separable {
		p.ctx.SetSeparable(h, true)
	}
	p.ctx.LinkProgram(h)

	p.mu.Lock()
	p.status = LinkStatusInProgress
	p.mu.Unlock()
	Logger().Info("program link started",
		"handle", uint64(h), "stages", len(stages), "separable", separable)

	if !p.ctx.Caps().AsyncLinkStatus {
		p.finishLink(h)
	}
	return nil
}

// validateStages rejects empty sets, unknown kinds and duplicate kinds.
func validateStages(stages []StageRef) error {
	if len(stages) == 0 {
		return fmt.Errorf("glink: link: empty stage set: %w", ErrInvalidStages)
	}
	var seen driver.StageMask
	for _, s := range stages {
		if int(s.Kind) >= driver.NumStageKinds {
			return fmt.Errorf("glink: link: unknown stage kind %d: %w", s.Kind, ErrInvalidStages)
		}
		m := s.Kind.Mask()
		if seen&m != 0 {
			return fmt.Errorf("glink: link: duplicate %s stage: %w", s.Kind, ErrInvalidStages)
		}
		seen |= m
	}
	return nil
}

// Status reports the link status, resolving completion with the driver
// while the program is in progress.
//
// With wait=false the call never blocks: it polls the driver's
// completion flag once and returns LinkStatusInProgress when the link
// has not finished. With wait=true it blocks until the driver reports
// completion, however long the driver takes. Once a terminal state has
// been recorded, Status returns it without touching the driver again.
func (p *Program) Status(wait bool) LinkStatus {
	p.mu.Lock()
	st, h := p.status, p.handle
	p.mu.Unlock()

	if st != LinkStatusInProgress || h == 0 {
		return st
	}

	if p.ctx.Caps().AsyncLinkStatus {
		if !wait {
			if !p.ctx.LinkComplete(h) {
				return LinkStatusInProgress
			}
		} else {
			for !p.ctx.LinkComplete(h) {
				runtime.Gosched()
			}
		}
	}
	return p.finishLink(h)
}

// finishLink reads the link outcome from the driver and records the
// terminal state. Concurrent observers may race into it; the first one
// to take the lock performs the transition and the rest adopt it.
func (p *Program) finishLink(h driver.ProgramID) LinkStatus {
	ok, log := p.ctx.LinkResult(h)

	p.mu.Lock()
	transitioned := false
	if p.status == LinkStatusInProgress {
		if ok {
			p.status = LinkStatusSucceeded
		} else {
			p.status = LinkStatusFailed
		}
		p.infoLog = log
		transitioned = true
	}
	st, lg := p.status, p.infoLog
	p.mu.Unlock()

	if transitioned {
		switch {
		case st == LinkStatusFailed:
			Logger().Warn("program link failed", "handle", uint64(h), "log", lg)
		case lg != "":
			Logger().Warn("program linked with warnings", "handle", uint64(h), "log", lg)
		default:
			Logger().Info("program linked", "handle", uint64(h))
		}
	}
	return st
}

// InfoLog returns the driver's link diagnostic text: the failure reason
// after a failed link, possibly warnings after a successful one, empty
// before a terminal state was observed.
func (p *Program) InfoLog() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.infoLog
}

// LinkErr returns nil when the program linked successfully and a
// *LinkError carrying the info log when the link failed. In the other
// states it returns ErrNotLinked. It never blocks; resolve the link
// with Status first.
func (p *Program) LinkErr() error {
	p.mu.Lock()
	st, lg := p.status, p.infoLog
	p.mu.Unlock()

	switch st {
	case LinkStatusSucceeded:
		return nil
	case LinkStatusFailed:
		return &LinkError{Log: lg}
	default:
		return fmt.Errorf("glink: status %s: %w", st, ErrNotLinked)
	}
}

// Handle returns the driver program handle, or zero after Release. The
// handle stays owned by the Program; callers must not delete it.
func (p *Program) Handle() driver.ProgramID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle
}

// Stages returns a copy of the stage set attached by Link, in attach
// order. Nil before Link.
func (p *Program) Stages() []StageRef {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stages == nil {
		return nil
	}
	return append([]StageRef(nil), p.stages...)
}

// Separable reports whether the program was linked as separable.
func (p *Program) Separable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.separable
}

// Release deletes the driver program object. Later operations return
// ErrReleased. Release is idempotent. Reflections already returned stay
// valid after Release.
func (p *Program) Release() {
	p.mu.Lock()
	h := p.handle
	p.handle = 0
	p.mu.Unlock()

	if h == 0 {
		return
	}
	p.ctx.DeleteProgram(h)
	Logger().Debug("program released", "handle", uint64(h))
}
