package tvp

import (
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Address struct {
	Street string
	City   string
}

var (
	contactType = reflect.TypeOf(Contact{})
	addressType = reflect.TypeOf(Address{})
)

func TestRegisterNamed(t *testing.T) {
	r := NewRegistry()

	p, err := r.Register("dbo.MergeContacts", nil, contactType)
	require.NoError(t, err)
	assert.Equal(t, "dbo.MergeContacts", p.Name)
	require.Len(t, p.Tables, 1)
	assert.Equal(t, "dbo.Contact", p.Tables[0].TypeName)
}

func TestRegisterDuplicateNamedFails(t *testing.T) {
	r := NewRegistry()

	_, err := r.Register("dbo.MergeContacts", nil, contactType)
	require.NoError(t, err)

	_, err = r.Register("dbo.MergeContacts", nil, contactType)
	require.Error(t, err)
	assert.True(t, IsAlreadyRegistered(err))
	assert.Contains(t, err.Error(), "dbo.MergeContacts")
}

func TestRegisterSameSequenceTwoNames(t *testing.T) {
	r := NewRegistry()

	p1, err := r.Register("dbo.MergeContacts", nil, contactType)
	require.NoError(t, err)
	p2, err := r.Register("dbo.PurgeContacts", nil, contactType)
	require.NoError(t, err)

	assert.Equal(t, p1.Tables[0].Columns, p2.Tables[0].Columns)
}

func TestRegisterUnnamedMultiTypeFails(t *testing.T) {
	r := NewRegistry()

	_, err := r.Register("", nil, contactType, addressType)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "procedure name is required")
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry()

	_, err := r.Register("dbo.P", nil)
	assert.ErrorIs(t, err, ErrNoTypes)

	_, err = r.Register("dbo.P", nil, nil)
	assert.ErrorIs(t, err, ErrNilType)

	_, err = r.Register("dbo.P", []string{"a", "b"}, contactType)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 table type names")
}

func TestRegisterDefaultIsIdempotent(t *testing.T) {
	r := NewRegistry()

	p1, err := r.Register("", nil, contactType)
	require.NoError(t, err)
	assert.Equal(t, "dbo.SaveContacts", p1.Name)

	// a second default registration silently returns the existing descriptor
	p2, err := r.Register("", nil, contactType)
	require.NoError(t, err)
	assert.Same(t, p1, p2)
}

func TestRegisterReusesDefaultSchemas(t *testing.T) {
	r := NewRegistry()

	def, err := r.Register("", nil, contactType)
	require.NoError(t, err)

	named, err := r.Register("dbo.MergeContacts", nil, contactType)
	require.NoError(t, err)
	assert.Same(t, def.Tables[0], named.Tables[0])

	// an explicit type name override builds a fresh schema around the same
	// column set
	overridden, err := r.Register("dbo.PurgeContacts", []string{"dbo.ContactList"}, contactType)
	require.NoError(t, err)
	assert.Equal(t, "dbo.ContactList", overridden.Tables[0].TypeName)
	assert.Equal(t, def.Tables[0].Columns, overridden.Tables[0].Columns)
}

func TestRegisterTypeNameOverrides(t *testing.T) {
	r := NewRegistry()

	p, err := r.Register("dbo.MergeBoth", []string{"", "dbo.AddressList"}, contactType, addressType)
	require.NoError(t, err)
	require.Len(t, p.Tables, 2)
	assert.Equal(t, "dbo.Contact", p.Tables[0].TypeName)
	assert.Equal(t, "dbo.AddressList", p.Tables[1].TypeName)
}

func TestRegisterWithNaming(t *testing.T) {
	r := NewRegistry(WithNaming(Naming{Schema: "crm.", Prefix: "TT_"}))

	p, err := r.Register("", nil, contactType)
	require.NoError(t, err)
	assert.Equal(t, "crm.SaveContacts", p.Name)
	assert.Equal(t, "crm.TT_Contact", p.Tables[0].TypeName)
}

func TestSetNaming(t *testing.T) {
	r := NewRegistry()
	r.SetNaming(Naming{Schema: "sales."})

	p, err := r.Register("", nil, addressType)
	require.NoError(t, err)
	assert.Equal(t, "sales.SaveAddresses", p.Name)
	assert.Equal(t, "sales.Address", p.Tables[0].TypeName)
}

func TestResolve(t *testing.T) {
	t.Run("exact key", func(t *testing.T) {
		r := NewRegistry()
		registered, err := r.Register("dbo.MergeContacts", nil, contactType)
		require.NoError(t, err)

		p, err := r.Resolve("dbo.MergeContacts", contactType)
		require.NoError(t, err)
		assert.Same(t, registered, p)
	})

	t.Run("falls back to default key", func(t *testing.T) {
		r := NewRegistry()
		def, err := r.Register("", nil, contactType)
		require.NoError(t, err)

		p, err := r.Resolve("dbo.Unregistered", contactType)
		require.NoError(t, err)
		assert.Same(t, def, p)
	})

	t.Run("auto-registers a single type", func(t *testing.T) {
		r := NewRegistry()

		p, err := r.Resolve("", contactType)
		require.NoError(t, err)
		assert.Equal(t, "dbo.SaveContacts", p.Name)

		again, err := r.Resolve("", contactType)
		require.NoError(t, err)
		assert.Same(t, p, again)
	})

	t.Run("multi-type sequences are never auto-registered", func(t *testing.T) {
		r := NewRegistry()

		_, err := r.Resolve("dbo.MergeBoth", contactType, addressType)
		require.Error(t, err)
		assert.True(t, IsNotRegistered(err))
	})

	t.Run("type order matters", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.Register("dbo.MergeBoth", nil, contactType, addressType)
		require.NoError(t, err)

		_, err = r.Resolve("dbo.MergeBoth", addressType, contactType)
		assert.True(t, IsNotRegistered(err))
	})
}

func TestResolveConcurrentAutoRegistration(t *testing.T) {
	r := NewRegistry()

	const callers = 32
	procs := make([]*Procedure, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := r.Resolve("", contactType)
			assert.NoError(t, err)
			procs[i] = p
		}(i)
	}
	wg.Wait()

	// every caller succeeded and saw the same descriptor
	for i := 1; i < callers; i++ {
		assert.Same(t, procs[0], procs[i])
	}

	// the registry holds exactly one entry for the sequence
	entries := 0
	r.entries.Range(func(key, _ any) bool {
		if strings.Contains(key.(string), "Contact") {
			entries++
		}
		return true
	})
	assert.Equal(t, 1, entries)
}
