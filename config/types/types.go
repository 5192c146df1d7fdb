package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Config is a configuration section.
type Config interface {
	Validate() error
	PostProcess() error
}

// Map is a string map settable from the environment either as a JSON object
// or as comma-separated key=value pairs.
type Map map[string]string

func (m *Map) Decode(value string) error {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "{") {
		return json.Unmarshal([]byte(value), m)
	}
	out := make(Map)
	for _, pair := range strings.Split(value, ",") {
		if pair = strings.TrimSpace(pair); pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid map entry '%s'", pair)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	*m = out
	return nil
}

// Password is a secret that never appears in dumps or logs.
type Password string

const masked = "******"

func (p Password) MarshalJSON() ([]byte, error) {
	if p == "" {
		return json.Marshal("")
	}
	return json.Marshal(masked)
}

func (p Password) String() string {
	if p == "" {
		return ""
	}
	return masked
}
