package keygraph

// Listener receives strictly nested evaluation trace events: every
// Started is paired with exactly one terminating event (Succeeded,
// FailedNoBinding, or FailedError) at the same depth.
type Listener interface {
	Started(scope *Scope, key *Key)
	HasModifiers(scope *Scope, holder Holder, count int)
	Feature(tag string)
	Succeeded(key *Key, originScope *Scope, originHolder Holder, result any)
	FailedNoBinding(hasFallback bool, fallback any)
	FailedError(err error, fromBinding bool)
}

// NullListener discards every event; it is the default when no listener
// is installed.
type NullListener struct{}

func (NullListener) Started(*Scope, *Key)                         {}
func (NullListener) HasModifiers(*Scope, Holder, int)              {}
func (NullListener) Feature(string)                                {}
func (NullListener) Succeeded(*Key, *Scope, Holder, any)            {}
func (NullListener) FailedNoBinding(bool, any)                      {}
func (NullListener) FailedError(error, bool)                        {}
