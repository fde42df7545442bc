package keygraph

import "fmt"

// BindingFunc computes a key's value within scope.
type BindingFunc func(scope *Scope) (any, error)

// ModifierFunc transforms a value already produced for a key within
// scope — modifiers never originate a value, only reshape one.
type ModifierFunc func(scope *Scope, value any) (any, error)

// Holder is implemented by every kind of BindingHolder (Project,
// Configuration, Archetype, ConfigurationExtension, AnonymousConfiguration)
// so Scope can treat them uniformly during resolution.
type Holder interface {
	HolderName() string
	binding(keyID string) (BindingFunc, bool)
	modifiers(keyID string) []ModifierFunc
	extensionFor(configName string) *ConfigurationExtension
}

// BindingHolder is a write-only map from Key to BindingFunc, plus an
// ordered modifier list per key, plus a set of ConfigurationExtensions —
// building until Lock is called, after which every mutating method
// fails.
type BindingHolder struct {
	name       string
	locked     bool
	bindings   map[string]BindingFunc
	modList    map[string][]ModifierFunc
	extensions map[string]*ConfigurationExtension
}

func newBindingHolder(name string) *BindingHolder {
	return &BindingHolder{
		name:       name,
		bindings:   make(map[string]BindingFunc),
		modList:    make(map[string][]ModifierFunc),
		extensions: make(map[string]*ConfigurationExtension),
	}
}

// HolderName returns the holder's declared name (project, configuration,
// or archetype name).
func (h *BindingHolder) HolderName() string { return h.name }

// Locked reports whether this holder has been locked against further
// mutation.
func (h *BindingHolder) Locked() bool { return h.locked }

// Lock transitions the holder from building to locked. The transition
// is one-way.
func (h *BindingHolder) Lock() { h.locked = true }

// Set binds key to fn, replacing any prior binding. Fails if the holder
// is already locked.
func (h *BindingHolder) Set(key *Key, fn BindingFunc) error {
	if h.locked {
		return fmt.Errorf("holder %q is locked: cannot set %s", h.name, key.Name)
	}
	h.bindings[key.ID()] = fn
	return nil
}

// Modify appends fn to key's modifier list, declared order preserved.
// Fails if the holder is already locked.
func (h *BindingHolder) Modify(key *Key, fn ModifierFunc) error {
	if h.locked {
		return fmt.Errorf("holder %q is locked: cannot modify %s", h.name, key.Name)
	}
	h.modList[key.ID()] = append(h.modList[key.ID()], fn)
	return nil
}

// Extend registers a ConfigurationExtension under this holder, keyed by
// the configuration name it targets.
func (h *BindingHolder) Extend(ext *ConfigurationExtension) error {
	if h.locked {
		return fmt.Errorf("holder %q is locked: cannot add extension", h.name)
	}
	h.extensions[ext.TargetName] = ext
	return nil
}

func (h *BindingHolder) binding(keyID string) (BindingFunc, bool) {
	fn, ok := h.bindings[keyID]
	return fn, ok
}

func (h *BindingHolder) modifiers(keyID string) []ModifierFunc {
	return h.modList[keyID]
}

func (h *BindingHolder) extensionFor(configName string) *ConfigurationExtension {
	return h.extensions[configName]
}

// Project is a top-level BindingHolder naming an ordered list of
// Archetype ancestors, most specific first.
type Project struct {
	*BindingHolder
	RootPath   string
	Archetypes []*Archetype
}

// NewProject creates a building Project holder.
func NewProject(name, rootPath string, archetypes ...*Archetype) *Project {
	return &Project{BindingHolder: newBindingHolder(name), RootPath: rootPath, Archetypes: archetypes}
}

// BaseHolders returns the project's base scope holder order: the
// project itself, then each archetype and its own parent chain, most
// specific first.
func (p *Project) BaseHolders() []Holder {
	holders := []Holder{p}
	for _, a := range p.Archetypes {
		for c := a; c != nil; c = c.Parent {
			holders = append(holders, c)
		}
	}
	return holders
}

// Configuration is a named BindingHolder with an optional parent;
// bindings in a configuration shadow its parent's.
type Configuration struct {
	*BindingHolder
	Parent *Configuration
}

// NewConfiguration creates a building Configuration, optionally
// extending parent.
func NewConfiguration(name string, parent *Configuration) *Configuration {
	return &Configuration{BindingHolder: newBindingHolder(name), Parent: parent}
}

// Chain returns c and its ancestors, nearest first.
func (c *Configuration) Chain() []*Configuration {
	var out []*Configuration
	for cur := c; cur != nil; cur = cur.Parent {
		out = append(out, cur)
	}
	return out
}

// Archetype behaves like Configuration but is woven into every project
// that names it rather than addressed by a `cfg:` prefix.
type Archetype struct {
	*BindingHolder
	Parent *Archetype
}

// NewArchetype creates a building Archetype.
func NewArchetype(name string, parent *Archetype) *Archetype {
	return &Archetype{BindingHolder: newBindingHolder(name), Parent: parent}
}

// ConfigurationExtension is itself a BindingHolder; its bindings and
// modifiers become visible wherever TargetName already appears in a
// scope being layered.
type ConfigurationExtension struct {
	*BindingHolder
	TargetName string
}

// NewConfigurationExtension creates a building extension targeting the
// configuration named targetName.
func NewConfigurationExtension(name, targetName string) *ConfigurationExtension {
	return &ConfigurationExtension{BindingHolder: newBindingHolder(name), TargetName: targetName}
}

// AnonymousConfiguration is a Configuration with no stable name, used
// for ad hoc scopes (e.g. query input scopes) that must still behave
// like a first-class holder.
type AnonymousConfiguration struct {
	*Configuration
}

var anonCounter int

// NewAnonymousConfiguration creates an anonymous configuration layered
// over parent, if any.
func NewAnonymousConfiguration(parent *Configuration) *AnonymousConfiguration {
	anonCounter++
	return &AnonymousConfiguration{Configuration: NewConfiguration(fmt.Sprintf("anon$%d", anonCounter), parent)}
}
