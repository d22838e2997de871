package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type scratch struct {
	buf []byte
}

func TestPoolResetsOnPut(t *testing.T) {
	p := New(
		func() *scratch { return &scratch{buf: make([]byte, 0, 16)} },
		func(s *scratch) { s.buf = s.buf[:0] },
	)

	s := p.Get()
	s.buf = append(s.buf, "hello"...)
	p.Put(s)

	allocated, inUse, gets, puts := p.Stats()
	assert.Equal(t, int64(1), allocated)
	assert.Equal(t, int64(0), inUse)
	assert.Equal(t, int64(1), gets)
	assert.Equal(t, int64(1), puts)
	assert.Empty(t, s.buf)
}

func TestPoolConcurrentUse(t *testing.T) {
	p := New(func() *scratch { return &scratch{} }, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := p.Get()
				s.buf = append(s.buf[:0], byte(j))
				p.Put(s)
			}
		}()
	}
	wg.Wait()

	_, inUse, gets, puts := p.Stats()
	assert.Equal(t, int64(0), inUse)
	assert.Equal(t, int64(800), gets)
	assert.Equal(t, int64(800), puts)
}
