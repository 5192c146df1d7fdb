package health

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	status, results := Run(nil)
	assert.Equal(t, StatusUp, status)
	assert.Empty(t, results)

	status, results = Run([]*Indicator{
		{Name: "db", Check: func() error { return nil }},
		{Name: "redis", Check: func() error { return errors.New("connection refused") }},
	})
	assert.Equal(t, StatusDown, status)
	assert.Equal(t, StatusUp, results["db"].Status)
	assert.Equal(t, StatusDown, results["redis"].Status)
	assert.Equal(t, "connection refused", *results["redis"].Error)
}

func TestRunTimeout(t *testing.T) {
	old := CheckTimeout
	CheckTimeout = 10 * time.Millisecond
	defer func() { CheckTimeout = old }()

	status, results := Run([]*Indicator{
		{Name: "slow", Check: func() error { time.Sleep(time.Second); return nil }},
	})
	assert.Equal(t, StatusDown, status)
	assert.Equal(t, "timeout", *results["slow"].Error)
}
