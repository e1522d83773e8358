package tvp

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactStatus int

const (
	statusActive contactStatus = iota + 1
	statusArchived
)

type testContact struct {
	ID      uuid.UUID
	Name    string
	Email   string `tvp:"EmailAddress"`
	Age     int32
	Status  contactStatus
	Payload []byte
	Tags    []string          // collection-valued, skipped
	Extra   map[string]string // collection-valued, skipped
	Hidden  string            `tvp:"-"`
	secret  string            // unexported, skipped
}

func TestResolveColumns(t *testing.T) {
	cols, err := resolveColumns(reflect.TypeOf(testContact{}))
	require.NoError(t, err)

	names := make([]string, len(cols))
	kinds := make([]Kind, len(cols))
	for i, c := range cols {
		names[i] = c.Name
		kinds[i] = c.Kind
	}

	assert.Equal(t, []string{"ID", "Name", "EmailAddress", "Age", "Status", "Payload"}, names)
	assert.Equal(t, []Kind{
		KindUniqueIdentifier, KindString, KindString, KindInt32, KindInt32, KindBytes,
	}, kinds)
}

func TestResolveColumnsIdempotent(t *testing.T) {
	first, err := resolveColumns(reflect.TypeOf(testContact{}))
	require.NoError(t, err)
	second, err := resolveColumns(reflect.TypeOf(testContact{}))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResolveColumnsNilType(t *testing.T) {
	_, err := resolveColumns(nil)
	assert.ErrorIs(t, err, ErrNilType)
}

func TestResolveColumnsNonStruct(t *testing.T) {
	_, err := resolveColumns(reflect.TypeOf(42))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a struct type")
}

func TestResolveColumnsUnsupportedField(t *testing.T) {
	type inner struct{ A int }
	type outer struct {
		Name  string
		Inner inner
	}

	_, err := resolveColumns(reflect.TypeOf(outer{}))
	require.Error(t, err)
	assert.True(t, IsUnsupportedType(err))
	assert.Contains(t, err.Error(), "outer.Inner")
}

func TestColumnValue(t *testing.T) {
	cols, err := resolveColumns(reflect.TypeOf(testContact{}))
	require.NoError(t, err)

	rec := reflect.ValueOf(testContact{
		Name:   "Ada",
		Status: statusArchived,
	})

	byName := make(map[string]Column, len(cols))
	for _, c := range cols {
		byName[c.Name] = c
	}

	assert.Equal(t, "Ada", byName["Name"].Value(rec))
	// named integer types are sent as their 32-bit value
	assert.Equal(t, int32(2), byName["Status"].Value(rec))
}

func TestColumnValueDateTimeOffset(t *testing.T) {
	type event struct {
		At DateTimeOffset
	}
	cols, err := resolveColumns(reflect.TypeOf(event{}))
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, KindDateTimeOffset, cols[0].Kind)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	got := cols[0].Value(reflect.ValueOf(event{At: DateTimeOffset(at)}))
	assert.Equal(t, at, got)
}
