package tvp

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// TableSchema is the resolved shape of one table-valued parameter position:
// the server-side table type name plus the record type's ordered column set.
type TableSchema struct {
	TypeName string
	GoType   reflect.Type
	Columns  []Column
}

// Procedure is the cached descriptor for one registered invocation target:
// its name and one table schema per declared table-valued parameter, in call
// order.
type Procedure struct {
	Name   string
	Tables []*TableSchema
}

// Registry maps (type sequence, procedure name) keys to procedure
// descriptors. Lookups are lock-free; insertion is exactly-once per key.
// Entries are never removed. Construct one registry per logical database or
// schema configuration.
type Registry struct {
	entries sync.Map // registration key -> *Procedure
	naming  Naming
	log     *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithNaming sets the registry's naming conventions.
func WithNaming(n Naming) Option {
	return func(r *Registry) { r.naming = n }
}

// WithLogger sets the registry's logger. Registrations log at Info,
// invocations at Debug.
func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultRegistry backs the package-level Register and Invoke helpers. It
// uses default naming and no logging.
var DefaultRegistry = NewRegistry()

// SetNaming replaces the registry's naming conventions. They are read at
// registration time only; intended to be set once at startup, and carrying
// no guard against mutation after concurrent use of the registry has begun.
func (r *Registry) SetNaming(n Naming) { r.naming = n }

// registrationKey builds the deterministic key for a (type sequence,
// procedure name) pair. Type order matters; the default key uses an empty
// procedure name.
func registrationKey(procName string, types []reflect.Type) string {
	var b strings.Builder
	for _, t := range types {
		b.WriteString(typeKey(t))
		b.WriteByte(';')
	}
	b.WriteString(procName)
	return b.String()
}

func typeKey(t reflect.Type) string {
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// Register creates the descriptor for procName over the ordered record
// types. typeNames overrides the derived table type name per position; a
// missing or blank entry keeps the convention-derived name.
//
// An empty procName derives it by convention, which is only legal for a
// single record type; the descriptor is then stored under the sequence's
// default key and a second default registration silently returns the
// existing descriptor. A named key, in contrast, may be registered exactly
// once: a duplicate fails with ErrAlreadyRegistered.
//
// When a default descriptor already exists for the exact type sequence, a
// named registration reuses its table schemas instead of re-deriving them,
// so procedures sharing a type sequence always see identical column layout.
func (r *Registry) Register(procName string, typeNames []string, types ...reflect.Type) (*Procedure, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("tvp: register: %w", ErrNoTypes)
	}
	for _, t := range types {
		if t == nil {
			return nil, fmt.Errorf("tvp: register: %w", ErrNilType)
		}
	}
	if len(typeNames) > len(types) {
		return nil, fmt.Errorf("tvp: register: %d table type names supplied for %d record types", len(typeNames), len(types))
	}

	if procName == "" {
		if len(types) > 1 {
			return nil, fmt.Errorf("tvp: register: a procedure name is required for %d record types", len(types))
		}
		return r.registerDefault(types[0], typeNames)
	}

	tables, err := r.tablesFor(types, typeNames)
	if err != nil {
		return nil, err
	}
	p := &Procedure{Name: procName, Tables: tables}
	if _, loaded := r.entries.LoadOrStore(registrationKey(procName, types), p); loaded {
		return nil, fmt.Errorf("tvp: %s: %w", procName, ErrAlreadyRegistered)
	}
	r.log.Info("registered procedure",
		zap.String("procedure", procName),
		zap.Int("tables", len(tables)))
	return p, nil
}

// registerDefault builds and stores the default descriptor for a single-type
// sequence. Losing the insertion race is not an error: the winner's
// descriptor serves both callers, so the loser re-reads and returns it.
func (r *Registry) registerDefault(t reflect.Type, typeNames []string) (*Procedure, error) {
	tables, err := r.tablesFor([]reflect.Type{t}, typeNames)
	if err != nil {
		return nil, err
	}
	p := &Procedure{Name: r.naming.ProcedureName(t), Tables: tables}
	if existing, loaded := r.entries.LoadOrStore(registrationKey("", []reflect.Type{t}), p); loaded {
		return existing.(*Procedure), nil
	}
	r.log.Info("registered procedure",
		zap.String("procedure", p.Name),
		zap.Int("tables", 1))
	return p, nil
}

// Resolve returns the descriptor for (procName, types): the exact key first,
// then the type sequence's default key, then auto-registration, which
// requires a single record type. Multi-type sequences must be registered
// explicitly before use.
func (r *Registry) Resolve(procName string, types ...reflect.Type) (*Procedure, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("tvp: resolve: %w", ErrNoTypes)
	}
	for _, t := range types {
		if t == nil {
			return nil, fmt.Errorf("tvp: resolve: %w", ErrNilType)
		}
	}
	if v, ok := r.entries.Load(registrationKey(procName, types)); ok {
		return v.(*Procedure), nil
	}
	if procName != "" {
		if v, ok := r.entries.Load(registrationKey("", types)); ok {
			return v.(*Procedure), nil
		}
	}
	if len(types) > 1 {
		return nil, fmt.Errorf("tvp: sequence of %d record types: %w", len(types), ErrNotRegistered)
	}
	return r.registerDefault(types[0], nil)
}

// tablesFor derives the table schemas for a type sequence. When the
// sequence's default descriptor exists its column sets are reused rather
// than re-derived; fresh schemas are built only for positions whose type
// name is overridden.
func (r *Registry) tablesFor(types []reflect.Type, typeNames []string) ([]*TableSchema, error) {
	if def, ok := r.entries.Load(registrationKey("", types)); ok {
		shared := def.(*Procedure).Tables
		if len(typeNames) == 0 {
			return shared, nil
		}
		tables := make([]*TableSchema, len(shared))
		for i, ts := range shared {
			name := ts.TypeName
			if i < len(typeNames) && typeNames[i] != "" {
				name = typeNames[i]
			}
			tables[i] = &TableSchema{TypeName: name, GoType: ts.GoType, Columns: ts.Columns}
		}
		return tables, nil
	}

	tables := make([]*TableSchema, len(types))
	for i, t := range types {
		cols, err := resolveColumns(t)
		if err != nil {
			return nil, err
		}
		name := r.naming.TableTypeName(t)
		if i < len(typeNames) && typeNames[i] != "" {
			name = typeNames[i]
		}
		tables[i] = &TableSchema{TypeName: name, GoType: t, Columns: cols}
	}
	return tables, nil
}

// Register registers a procedure in the DefaultRegistry.
func Register(procName string, typeNames []string, types ...reflect.Type) (*Procedure, error) {
	return DefaultRegistry.Register(procName, typeNames, types...)
}
