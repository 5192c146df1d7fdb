package types

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapDecode(t *testing.T) {
	var m Map
	assert.NoError(t, m.Decode(`{"env":"prod","team":"events"}`))
	assert.Equal(t, Map{"env": "prod", "team": "events"}, m)

	assert.NoError(t, m.Decode("env=dev, team = events ,"))
	assert.Equal(t, Map{"env": "dev", "team": "events"}, m)

	assert.EqualError(t, m.Decode("env"), "invalid map entry 'env'")
}

func TestPassword(t *testing.T) {
	b, err := json.Marshal(struct {
		Password Password `json:"password"`
		Empty    Password `json:"empty"`
	}{Password: "secret"})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"password":"******","empty":""}`, string(b))
	assert.Equal(t, "******", fmt.Sprint(Password("secret")))
	assert.Equal(t, "secret", string(Password("secret")))
}
