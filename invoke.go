package tvp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"
)

// Execer is the command-execution boundary. It is satisfied by *sql.DB,
// *sql.Tx, *sql.Conn, and any wrapper (such as the mssql adapter) that can
// run the composed EXEC with bound parameters.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InvokeContext resolves the procedure for (procName, types), converts the
// first len(types) arguments into table-valued parameters, binds the rest as
// scalars, executes
//
//	EXEC @Result = <procedure> @P0, @P1, ...
//
// and returns the procedure's integer return value. procName may be empty
// when the type sequence has a registered or derivable default. A nil scalar
// argument binds as SQL NULL. Execution failures are wrapped with the
// procedure name and returned; they are never retried here.
func (r *Registry) InvokeContext(ctx context.Context, db Execer, procName string, types []reflect.Type, args ...any) (int32, error) {
	if db == nil {
		return 0, errors.New("tvp: invoke: nil executor")
	}
	if len(args) == 0 {
		return 0, fmt.Errorf("tvp: invoke: %w", ErrNoArguments)
	}

	p, err := r.Resolve(procName, types...)
	if err != nil {
		return 0, err
	}

	var ret int32
	stmt, params, err := compose(p, procName, args, &ret)
	if err != nil {
		return 0, err
	}

	r.log.Debug("invoking procedure",
		zap.String("statement", stmt),
		zap.Int("parameters", len(params)))

	name := procName
	if name == "" {
		name = p.Name
	}
	if _, err := db.ExecContext(ctx, stmt, params...); err != nil {
		return 0, fmt.Errorf("tvp: executing %s: %w", name, err)
	}
	return ret, nil
}

// Invoke is InvokeContext with a background context.
func (r *Registry) Invoke(db Execer, procName string, types []reflect.Type, args ...any) (int32, error) {
	return r.InvokeContext(context.Background(), db, procName, types, args...)
}

// compose builds the statement text and the positionally bound parameter
// list: one @Pn per argument plus the trailing @Result output parameter.
// Binding is strictly positional; the composer never relies on server-side
// parameter names, so it is a contract with the procedure's declaration
// order (see the package documentation).
func compose(p *Procedure, procName string, args []any, ret *int32) (string, []any, error) {
	name := p.Name
	if procName != "" {
		name = procName
	}
	if len(p.Tables) > len(args) {
		return "", nil, fmt.Errorf("tvp: %s declares %d table parameters but only %d arguments were supplied",
			name, len(p.Tables), len(args))
	}

	params := make([]any, 0, len(args)+1)
	for i, ts := range p.Tables {
		rows, err := ts.Convert(args[i])
		if err != nil {
			return "", nil, fmt.Errorf("tvp: argument %d: %w", i, err)
		}
		params = append(params, sql.Named(fmt.Sprintf("P%d", i), rows))
	}
	// trailing scalars pass through; a nil value binds as SQL NULL since the
	// runtime type of a nil argument is unobservable
	for i := len(p.Tables); i < len(args); i++ {
		params = append(params, sql.Named(fmt.Sprintf("P%d", i), args[i]))
	}
	params = append(params, sql.Named("Result", sql.Out{Dest: ret}))

	var b strings.Builder
	b.WriteString("EXEC @Result = ")
	b.WriteString(name)
	for i := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, " @P%d", i)
	}
	return b.String(), params, nil
}

// InvokeContext invokes a procedure through the DefaultRegistry.
func InvokeContext(ctx context.Context, db Execer, procName string, types []reflect.Type, args ...any) (int32, error) {
	return DefaultRegistry.InvokeContext(ctx, db, procName, types, args...)
}

// Invoke invokes a procedure through the DefaultRegistry with a background
// context.
func Invoke(db Execer, procName string, types []reflect.Type, args ...any) (int32, error) {
	return DefaultRegistry.Invoke(db, procName, types, args...)
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// RegisterType registers a single record type under procName, or under the
// convention-derived name when procName is empty. typeName overrides the
// table type name; pass "" to keep the convention.
func RegisterType[T any](r *Registry, procName, typeName string) (*Procedure, error) {
	var names []string
	if typeName != "" {
		names = []string{typeName}
	}
	return r.Register(procName, names, typeOf[T]())
}

// Call invokes procName with records as its single table-valued parameter,
// followed by any trailing scalar arguments.
func Call[T any](ctx context.Context, db Execer, r *Registry, procName string, records []T, args ...any) (int32, error) {
	all := make([]any, 0, len(args)+1)
	all = append(all, records)
	all = append(all, args...)
	return r.InvokeContext(ctx, db, procName, []reflect.Type{typeOf[T]()}, all...)
}

// Save invokes the record type's default procedure (dbo.Save<Type>s by
// convention) with records as its single table-valued parameter.
func Save[T any](ctx context.Context, db Execer, r *Registry, records []T, args ...any) (int32, error) {
	return Call[T](ctx, db, r, "", records, args...)
}
