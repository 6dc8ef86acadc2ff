package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScopeAdmin(t *testing.T) {
	scope, err := ParseScope("admin")
	require.NoError(t, err)
	assert.True(t, scope.IsAdmin())

	_, ok := scope.Room()
	assert.False(t, ok)
	assert.Equal(t, "admin", scope.String())
}

func TestParseScopeRoom(t *testing.T) {
	scope, err := ParseScope("room-lounge")
	require.NoError(t, err)
	assert.False(t, scope.IsAdmin())

	room, ok := scope.Room()
	assert.True(t, ok)
	assert.Equal(t, "lounge", room)
	assert.Equal(t, "room-lounge", scope.String())
}

func TestParseScopeRejectsMalformedValues(t *testing.T) {
	for _, input := range []string{"", "root", "room-", "Admin", "room", "adminroom-x"} {
		_, err := ParseScope(input)
		assert.ErrorIs(t, err, ErrInvalidScope, "input %q", input)
	}
}

func TestScopeJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(RoomScope("lounge"))
	require.NoError(t, err)
	assert.Equal(t, `"room-lounge"`, string(data))

	var scope Scope
	require.NoError(t, json.Unmarshal(data, &scope))
	room, ok := scope.Room()
	assert.True(t, ok)
	assert.Equal(t, "lounge", room)
}

func TestNilScopeMarshalsAsNull(t *testing.T) {
	client := struct {
		Scope *Scope `json:"scope"`
	}{}
	data, err := json.Marshal(client)
	require.NoError(t, err)
	assert.JSONEq(t, `{"scope":null}`, string(data))
}

func TestValidClientID(t *testing.T) {
	assert.True(t, ValidClientID("ABCD"))
	assert.False(t, ValidClientID("abcd"))
	assert.False(t, ValidClientID("ABC"))
	assert.False(t, ValidClientID("ABCDE"))
	assert.False(t, ValidClientID("AB1D"))
}

func TestValidPlayerID(t *testing.T) {
	assert.True(t, ValidPlayerID("04AF9B"))
	assert.False(t, ValidPlayerID("04af9b"))
	assert.False(t, ValidPlayerID("04AF9"))
	assert.False(t, ValidPlayerID("04AF9G"))
}

func TestValidToken(t *testing.T) {
	assert.True(t, ValidToken("123e4567-e89b-12d3-a456-426614174000"))
	assert.False(t, ValidToken("123E4567-E89B-12D3-A456-426614174000"))
	assert.False(t, ValidToken("not-a-token"))
	assert.False(t, ValidToken(""))
}
