// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package drivertest provides a scripted, in-memory driver.Context for
// tests.
//
// The context performs no real graphics work. Tests script what the
// "driver" reports — the reflected resource list, link failure and its
// info log, how many completion polls a link takes — and afterwards
// inspect what the code under test asked of it: call counts, recorded
// binding calls, live object counts.
//
// Unlike a real OpenGL context, Context is safe for concurrent use from
// any goroutine, so tests can exercise the core's locking.
package drivertest

import (
	"sync"

	"github.com/gogpu/glink/driver"
)

// BindCall records one binding call issued to the driver.
type BindCall struct {
	Kind    driver.ResourceKind
	Program driver.ProgramID
	Natural uint32
	Slot    uint32
}

type programState struct {
	attached  []driver.ShaderID
	separable bool
	linked    bool
	pollsLeft int
}

// Context is a scripted driver.Context.
//
// The zero value is not ready for use; call New.
type Context struct {
	mu sync.Mutex

	caps driver.Caps

	nextShader  driver.ShaderID
	nextProgram driver.ProgramID
	shaders     map[driver.ShaderID]bool
	programs    map[driver.ProgramID]*programState

	// Scripts.
	resources  []driver.Resource
	linkPolls  int
	failLink   bool
	infoLog    string
	compileErr error
	reflectErr error
	handles    driver.NativeHandles

	// Observations.
	compileCalls int
	linkCalls    int
	resultCalls  int
	reflectCalls int
	lastQuery    driver.ResourceQuery
	bindCalls    []BindCall
}

var _ driver.Context = (*Context)(nil)

// New returns a Context that reports asynchronous link support, links on
// the first completion poll, succeeds every link and reflects an empty
// resource list. Scripting methods adjust that behavior per test.
func New() *Context {
	return &Context{
		caps:     driver.Caps{AsyncLinkStatus: true, SeparablePrograms: true},
		shaders:  make(map[driver.ShaderID]bool),
		programs: make(map[driver.ProgramID]*programState),
	}
}

// ===== Scripting =====

// SetCaps replaces the reported capabilities.
func (c *Context) SetCaps(caps driver.Caps) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.caps = caps
}

// ScriptResources sets the resource list ActiveResources reports. The
// list is returned verbatim, in order; the stub does not interpret the
// query.
func (c *Context) ScriptResources(rs []driver.Resource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources = append([]driver.Resource(nil), rs...)
}

// ScriptLinkFailure makes every subsequent link fail with the given info
// log.
func (c *Context) ScriptLinkFailure(infoLog string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failLink = true
	c.infoLog = infoLog
}

// ScriptInfoLog sets the info log reported alongside a successful link
// (drivers emit warnings there).
func (c *Context) ScriptInfoLog(infoLog string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.infoLog = infoLog
}

// ScriptLinkPolls makes each link report "not complete" for the first n
// LinkComplete calls. Applies to links started after the call.
func (c *Context) ScriptLinkPolls(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.linkPolls = n
}

// ScriptCompileError makes CompileShader fail with err.
func (c *Context) ScriptCompileError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compileErr = err
}

// ScriptReflectError makes ActiveResources fail with err.
func (c *Context) ScriptReflectError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reflectErr = err
}

// SetNativeHandles sets the handles NativeHandles reports.
func (c *Context) SetNativeHandles(nh driver.NativeHandles) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handles = nh
}

// ===== Observations =====

// CompileCalls returns the number of CompileShader calls.
func (c *Context) CompileCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compileCalls
}

// LinkCalls returns the number of LinkProgram calls.
func (c *Context) LinkCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.linkCalls
}

// ResultCalls returns the number of LinkResult calls.
func (c *Context) ResultCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resultCalls
}

// ReflectCalls returns the number of ActiveResources calls. The build-
// once reflection cache makes this the load-bearing counter: a second
// call for an unchanged query is a cache defect.
func (c *Context) ReflectCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reflectCalls
}

// LastQuery returns the query passed to the most recent ActiveResources
// call.
func (c *Context) LastQuery() driver.ResourceQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastQuery
}

// BindCalls returns a copy of all recorded binding calls in issue order.
func (c *Context) BindCalls() []BindCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]BindCall(nil), c.bindCalls...)
}

// LivePrograms returns the number of created, not yet deleted programs.
func (c *Context) LivePrograms() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.programs)
}

// LiveShaders returns the number of created, not yet deleted shaders.
func (c *Context) LiveShaders() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.shaders)
}

// Attached returns the shaders attached to p in attach order.
func (c *Context) Attached(p driver.ProgramID) []driver.ShaderID {
	c.mu.Lock()
	defer c.mu.Unlock()
	ps := c.programs[p]
	if ps == nil {
		return nil
	}
	return append([]driver.ShaderID(nil), ps.attached...)
}

// Separable reports whether SetSeparable(p, true) was called.
func (c *Context) Separable(p driver.ProgramID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ps := c.programs[p]
	return ps != nil && ps.separable
}

// ===== driver.Context =====

// Caps implements driver.Context.
func (c *Context) Caps() driver.Caps {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.caps
}

// CompileShader implements driver.Context.
func (c *Context) CompileShader(kind driver.StageKind, source string) (driver.ShaderID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compileCalls++
	if c.compileErr != nil {
		return 0, c.compileErr
	}
	c.nextShader++
	c.shaders[c.nextShader] = true
	return c.nextShader, nil
}

// DeleteShader implements driver.Context.
func (c *Context) DeleteShader(s driver.ShaderID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.shaders, s)
}

// CreateProgram implements driver.Context.
func (c *Context) CreateProgram() (driver.ProgramID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextProgram++
	c.programs[c.nextProgram] = &programState{}
	return c.nextProgram, nil
}

// DeleteProgram implements driver.Context.
func (c *Context) DeleteProgram(p driver.ProgramID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.programs, p)
}

// AttachShader implements driver.Context.
func (c *Context) AttachShader(p driver.ProgramID, s driver.ShaderID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ps := c.programs[p]; ps != nil {
		ps.attached = append(ps.attached, s)
	}
}

// SetSeparable implements driver.Context.
func (c *Context) SetSeparable(p driver.ProgramID, separable bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ps := c.programs[p]; ps != nil {
		ps.separable = separable
	}
}

// LinkProgram implements driver.Context.
func (c *Context) LinkProgram(p driver.ProgramID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.linkCalls++
	if ps := c.programs[p]; ps != nil {
		ps.linked = true
		ps.pollsLeft = c.linkPolls
	}
}

// LinkComplete implements driver.Context.
func (c *Context) LinkComplete(p driver.ProgramID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ps := c.programs[p]
	if ps == nil || !ps.linked {
		return false
	}
	if ps.pollsLeft > 0 {
		ps.pollsLeft--
		return false
	}
	return true
}

// LinkResult implements driver.Context. A real blocking driver would
// wait out an unfinished link here; the stub declares it finished.
func (c *Context) LinkResult(p driver.ProgramID) (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resultCalls++
	if ps := c.programs[p]; ps != nil {
		ps.pollsLeft = 0
	}
	return !c.failLink, c.infoLog
}

// ActiveResources implements driver.Context.
func (c *Context) ActiveResources(p driver.ProgramID, q driver.ResourceQuery) ([]driver.Resource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reflectCalls++
	c.lastQuery = q
	if c.reflectErr != nil {
		return nil, c.reflectErr
	}
	return append([]driver.Resource(nil), c.resources...), nil
}

// BindUniformBlock implements driver.Context.
func (c *Context) BindUniformBlock(p driver.ProgramID, natural, slot uint32) {
	c.recordBind(driver.ResourceUniformBuffer, p, natural, slot)
}

// BindStorageBlock implements driver.Context.
func (c *Context) BindStorageBlock(p driver.ProgramID, natural, slot uint32) {
	c.recordBind(driver.ResourceStorageBuffer, p, natural, slot)
}

// BindTexture implements driver.Context.
func (c *Context) BindTexture(p driver.ProgramID, natural, slot uint32) {
	c.recordBind(driver.ResourceTexture, p, natural, slot)
}

// BindImage implements driver.Context.
func (c *Context) BindImage(p driver.ProgramID, natural, slot uint32) {
	c.recordBind(driver.ResourceImage, p, natural, slot)
}

// BindSampler implements driver.Context.
func (c *Context) BindSampler(p driver.ProgramID, natural, slot uint32) {
	c.recordBind(driver.ResourceSampler, p, natural, slot)
}

func (c *Context) recordBind(kind driver.ResourceKind, p driver.ProgramID, natural, slot uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindCalls = append(c.bindCalls, BindCall{Kind: kind, Program: p, Natural: natural, Slot: slot})
}

// NativeHandles implements driver.Context.
func (c *Context) NativeHandles() driver.NativeHandles {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handles
}
