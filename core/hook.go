package core

import "sync"

// HookPos defines the enum of possible hooking positions
type HookPos struct {
	Name string
}

// HookCtx is the context that holds all the information about the site that a
// hook is triggered
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// Hookable defines an object that accept Hooks
type Hookable interface {
	// AcceptHook registers a hook
	AcceptHook(hook Hook)

	// DetachHook removes a previously registered hook
	DetachHook(hook Hook)
}

// HookPosBeforeEvent is a hook position that triggers before handling an event
var HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent is a hook position that triggers after handling an event
var HookPosAfterEvent = &HookPos{Name: "AfterEvent"}

// HookPosStateEmit is a hook position that triggers when a container emits a
// new state. The Item of the hook context is the emitted State.
var HookPosStateEmit = &HookPos{Name: "StateEmit"}

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// A HookableBase provides some utility function for other type that implement
// the Hookable interface. Hooks can be attached and detached while events are
// being processed, so the hook list is guarded by a lock.
type HookableBase struct {
	hookLock sync.RWMutex
	hooks    []Hook
}

// AcceptHook register a hook
func (h *HookableBase) AcceptHook(hook Hook) {
	h.hookLock.Lock()
	h.hooks = append(h.hooks, hook)
	h.hookLock.Unlock()
}

// DetachHook removes a hook. Detaching a hook that is not attached is a
// no-op.
func (h *HookableBase) DetachHook(hook Hook) {
	h.hookLock.Lock()
	defer h.hookLock.Unlock()

	for i, registered := range h.hooks {
		if registered == hook {
			h.hooks = append(h.hooks[:i], h.hooks[i+1:]...)
			return
		}
	}
}

// Hooks returns the hooks that are currently attached.
func (h *HookableBase) Hooks() []Hook {
	h.hookLock.RLock()
	defer h.hookLock.RUnlock()

	hooks := make([]Hook, len(h.hooks))
	copy(hooks, h.hooks)

	return hooks
}

// ClearHooks detaches all the hooks.
func (h *HookableBase) ClearHooks() {
	h.hookLock.Lock()
	h.hooks = nil
	h.hookLock.Unlock()
}

// InvokeHook triggers the registered Hooks in registration order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	h.hookLock.RLock()
	hooks := make([]Hook, len(h.hooks))
	copy(hooks, h.hooks)
	h.hookLock.RUnlock()

	for _, hook := range hooks {
		hook.Func(ctx)
	}
}

// NamedHookable represent something both have a name and can be hooked
type NamedHookable interface {
	Named
	Hookable
	InvokeHook(HookCtx)
}
