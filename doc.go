/*
Package tvp invokes SQL Server stored procedures whose inputs include
table-valued parameters, supplying only in-memory record slices. Procedure
names, table type names, and column layouts are derived by convention from
the record types and cached in a registry, so application code never builds
TVP plumbing by hand.

# Overview

A record type is any struct whose exported fields map onto the columns of a
server-side table type:

	type Contact struct {
	    ID    uuid.UUID
	    Name  string
	    Email string
	}

With no registration at all, the first call derives everything by convention
(table type dbo.Contact, procedure dbo.SaveContacts) and sends the slice as a
single table-valued argument:

	n, err := tvp.Save(ctx, db, tvp.DefaultRegistry, contacts)

Explicit registration covers procedures with several table parameters, custom
names, or trailing scalar arguments:

	reg := tvp.NewRegistry()
	_, err := reg.Register("dbo.MergeContacts", nil,
	    reflect.TypeOf(Contact{}), reflect.TypeOf(Address{}))
	n, err := reg.InvokeContext(ctx, db, "dbo.MergeContacts",
	    []reflect.Type{reflect.TypeOf(Contact{}), reflect.TypeOf(Address{})},
	    contacts, addresses, actorID)

Every invocation executes

	EXEC @Result = <procedure> @P0, @P1, ...

binding all parameters strictly by position and reading the procedure's
integer return value through a trailing output parameter. Positional binding
is a contract with the procedure's declaration order: a server-side signature
change that reorders parameters produces wrong bindings, not an error.

# Concurrency

A Registry is safe for concurrent use. Lookups are lock-free; two callers
racing to auto-register the same type sequence both succeed and the registry
keeps exactly one descriptor. Naming configuration is read at registration
time only and must not be mutated once concurrent use has begun.

# Drivers

The core composes statements and parameters against the Execer boundary
(satisfied by *sql.DB, *sql.Tx, *sql.Conn). The mssql subpackage adapts the
composed tabular parameters to github.com/microsoft/go-mssqldb.
*/
package tvp
