package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mpm/internal/core/domain"
)

func TestInternedString(t *testing.T) {
	a := domain.NewInternedString("left-pad")
	b := domain.NewInternedString("left-pad")

	assert.Equal(t, a.Value(), b.Value())
	assert.Equal(t, "left-pad", a.String())
	assert.Empty(t, domain.InternedString{}.String())
}

func TestInternedStringJSON(t *testing.T) {
	type entry struct {
		Name domain.InternedString `json:"name"`
	}

	data, err := json.Marshal(entry{Name: domain.NewInternedString("@types/node")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"@types/node"}`, string(data))

	var decoded entry
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "@types/node", decoded.Name.String())
}
