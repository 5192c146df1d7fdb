// Package health runs the readiness checks reported by the status server.
package health

import (
	"sync"
	"time"
)

type Status string

const (
	StatusUp   Status = "UP"
	StatusDown Status = "DOWN"
)

// CheckTimeout bounds a single indicator. A check still running when it
// expires is reported DOWN.
var CheckTimeout = 3 * time.Second

type Indicator struct {
	Name  string
	Check func() error
}

type Result struct {
	Status Status  `json:"status"`
	Error  *string `json:"error,omitempty"`
}

func down(msg string) Result {
	return Result{Status: StatusDown, Error: &msg}
}

func (i *Indicator) run() Result {
	done := make(chan error, 1)
	go func() { done <- i.Check() }()

	select {
	case err := <-done:
		if err != nil {
			return down(err.Error())
		}
		return Result{Status: StatusUp}
	case <-time.After(CheckTimeout):
		return down("timeout")
	}
}

// Run checks every indicator concurrently. The overall status is DOWN when
// any indicator is.
func Run(indicators []*Indicator) (Status, map[string]Result) {
	var (
		wg      sync.WaitGroup
		mux     sync.Mutex
		status  = StatusUp
		results = make(map[string]Result, len(indicators))
	)
	for _, indicator := range indicators {
		wg.Add(1)
		go func(i *Indicator) {
			defer wg.Done()
			res := i.run()
			mux.Lock()
			defer mux.Unlock()
			results[i.Name] = res
			if res.Status != StatusUp {
				status = StatusDown
			}
		}(indicator)
	}
	wg.Wait()
	return status, results
}
