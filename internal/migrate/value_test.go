package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		present bool
		kind    ValueKind
	}{
		{name: "missing", present: false, kind: Missing},
		{name: "json array", data: `[1,2]`, present: true, kind: Parsed},
		{name: "json string", data: `"group"`, present: true, kind: Parsed},
		{name: "json bool", data: `true`, present: true, kind: Parsed},
		{name: "plain text", data: `group`, present: true, kind: Raw},
		{name: "broken json", data: `{"a":`, present: true, kind: Raw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, Decode([]byte(tt.data), tt.present).Kind)
		})
	}
}

func TestValueAccessors(t *testing.T) {
	s, ok := Decode([]byte(`"group"`), true).Text()
	assert.True(t, ok)
	assert.Equal(t, "group", s)

	s, ok = Decode([]byte(`group`), true).Text()
	assert.True(t, ok)
	assert.Equal(t, "group", s)

	_, ok = Decode([]byte(`[1]`), true).Text()
	assert.False(t, ok)

	n, ok := Decode([]byte(`"42.5"`), true).Number()
	assert.True(t, ok)
	assert.InDelta(t, 42.5, n, 0)

	_, ok = Decode([]byte(`loud`), true).Number()
	assert.False(t, ok)

	assert.True(t, Decode([]byte(`true`), true).Truthy())
	assert.True(t, Decode([]byte(`"TRUE"`), true).Truthy())
	assert.True(t, Decode([]byte(`false`), true).Falsy())
	assert.False(t, Decode([]byte(`1`), true).Truthy())
}

func TestValueBackupIsVerbatim(t *testing.T) {
	assert.JSONEq(t, `{"a":[1,2]}`, string(Decode([]byte(`{"a":[1,2]}`), true).Backup()))
	assert.JSONEq(t, `"not {json"`, string(Decode([]byte(`not {json`), true).Backup()))
}

func TestIDString(t *testing.T) {
	id, ok := idString(float64(3))
	assert.True(t, ok)
	assert.Equal(t, "3", id)

	_, ok = idString("  ")
	assert.False(t, ok)

	_, ok = idString(map[string]any{})
	assert.False(t, ok)
}
