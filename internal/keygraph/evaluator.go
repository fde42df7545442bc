package keygraph

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrKeyNotAssigned is returned by Evaluate when no holder in scope
// binds the key and the key has no default value.
var ErrKeyNotAssigned = errors.New("key not assigned")

// ErrConcurrentEvaluation is returned when a second goroutine attempts
// to enter Evaluate while another evaluation is already active; nested
// (re-entrant) calls made from within that same call stack are allowed
// and counted instead of rejected.
var ErrConcurrentEvaluation = errors.New("another evaluation is already active")

type activationKey struct{}

type activation struct {
	depth int
}

// Evaluator runs the resolution algorithm over scopes built from a set
// of projects. It enforces the single-active-evaluator invariant: at
// most one call stack may be inside Evaluate at a time, though that
// call stack may re-enter freely (e.g. a binding that itself evaluates
// another key).
//
// Go has no stable OS-thread identity worth checking — goroutines are
// multiplexed across threads — so this substitutes "the same call
// stack" (tracked via context.Context propagation) for "the same
// thread", which is the idiomatic Go reading of the same invariant:
// nested evaluation from the call that is already active is fine,
// concurrent evaluation from an unrelated goroutine is not.
type Evaluator struct {
	scopes   *scopeCache
	listener Listener

	mu     sync.Mutex
	active *activation
}

// NewEvaluator creates an Evaluator with no listener installed.
func NewEvaluator() *Evaluator {
	return &Evaluator{scopes: newScopeCache(), listener: NullListener{}}
}

// SetListener installs l as the evaluator's sole listener, replacing
// any previous one.
func (e *Evaluator) SetListener(l Listener) {
	if l == nil {
		l = NullListener{}
	}
	e.listener = l
}

// CurrentListener returns the evaluator's installed listener, so that a
// binding with no direct listener access (BindingFunc carries only a
// *Scope) can still report its own Feature events through the same
// evaluation trace.
func (e *Evaluator) CurrentListener() Listener {
	return e.listener
}

// Layer layers configuration c over scope, returning the memoized
// result.
func (e *Evaluator) Layer(scope *Scope, c *Configuration) *Scope {
	return e.scopes.Layer(scope, c)
}

// Evaluate resolves key within scope, per spec.md §4.1's resolution
// algorithm, enforcing the single-active-evaluator invariant.
func (e *Evaluator) Evaluate(ctx context.Context, scope *Scope, key *Key) (any, error) {
	return e.EvaluateOrElse(ctx, scope, key, nil, false)
}

// EvaluateOrElse resolves key within scope; if no binding or default is
// found, it returns fallback when hasFallback is true instead of
// ErrKeyNotAssigned.
func (e *Evaluator) EvaluateOrElse(ctx context.Context, scope *Scope, key *Key, fallback any, hasFallback bool) (any, error) {
	act, done, err := e.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer done()
	ctx = context.WithValue(ctx, activationKey{}, act)

	e.listener.Started(scope, key)
	value, originScope, originHolder, err := e.resolve(scope, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotAssigned) {
			if hasFallback {
				e.listener.Succeeded(key, nil, nil, fallback)
				return fallback, nil
			}
			e.listener.FailedNoBinding(hasFallback, fallback)
			return nil, err
		}
		e.listener.FailedError(err, true)
		return nil, err
	}
	e.listener.Succeeded(key, originScope, originHolder, value)
	return value, nil
}

func (e *Evaluator) enter(ctx context.Context) (*activation, func(), error) {
	if act, ok := ctx.Value(activationKey{}).(*activation); ok {
		act.depth++
		return act, func() { act.depth-- }, nil
	}
	e.mu.Lock()
	if e.active != nil {
		e.mu.Unlock()
		return nil, nil, ErrConcurrentEvaluation
	}
	act := &activation{depth: 1}
	e.active = act
	e.mu.Unlock()
	return act, func() {
		e.mu.Lock()
		e.active = nil
		e.mu.Unlock()
	}, nil
}

// resolve implements the walk-outward-through-parents algorithm: at
// each scope, holders are checked most-significant first; modifiers
// seen along the way are pushed (newest first) and applied in
// outermost-last order once a binding (or the key's default) is found.
func (e *Evaluator) resolve(scope *Scope, key *Key) (any, *Scope, Holder, error) {
	// modifierGroups holds one slice per holder that declared
	// modifiers for this key, in discovery (most-significant-first)
	// order; within a group, declaration order is preserved.
	var modifierGroups [][]ModifierFunc

	// A layered scope's holder list repeats its parent's holders, so
	// each holder is consulted once, at its most significant position.
	visited := make(map[Holder]bool)
	for s := scope; s != nil; s = s.Parent {
		for _, h := range s.Holders {
			if visited[h] {
				continue
			}
			visited[h] = true
			if mods := h.modifiers(key.ID()); len(mods) > 0 {
				e.listener.HasModifiers(s, h, len(mods))
				modifierGroups = append(modifierGroups, mods)
			}
			if fn, ok := h.binding(key.ID()); ok {
				value, err := fn(scope)
				if err != nil {
					return nil, nil, nil, fmt.Errorf("evaluating %s: %w", key.Name, err)
				}
				value, err = applyModifiers(scope, modifierGroups, value)
				if err != nil {
					return nil, nil, nil, err
				}
				return value, s, h, nil
			}
		}
	}

	if key.HasDefault() {
		value, err := applyModifiers(scope, modifierGroups, key.Default())
		if err != nil {
			return nil, nil, nil, err
		}
		return value, nil, nil, nil
	}

	return nil, nil, nil, ErrKeyNotAssigned
}

// applyModifiers runs modifier groups in outermost-last order: groups
// collected later in the outward walk (less significant in scope) run
// first, so a modifier declared closer to the original scope observes —
// and can override — their result. Modifiers within the same group
// (same holder) run in declaration order.
func applyModifiers(scope *Scope, groups [][]ModifierFunc, value any) (any, error) {
	for g := len(groups) - 1; g >= 0; g-- {
		for _, fn := range groups[g] {
			var err error
			value, err = fn(scope, value)
			if err != nil {
				return nil, err
			}
		}
	}
	return value, nil
}
