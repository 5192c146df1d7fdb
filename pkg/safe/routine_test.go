package safe

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoRecovers(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	Go(func() {
		defer wg.Done()
		panic("boom")
	})
	wg.Wait()

	result := make(chan int)
	Go(func() { result <- 1 })
	assert.Equal(t, 1, <-result)
}
