// Package array provides Buffer, a generic growable sequence with an
// explicit growth policy.
//
// A Buffer starts with no storage. The first growth allocates
// Policy.InitialCapacity slots and each later growth multiplies the capacity
// by GrowthNumerator/GrowthDenominator. Contents are contiguous and valid for
// indices [0, Len()). Capacity never shrinks except through Free.
//
// A Policy may carry a MaxCapacity. Growth past it fails with an
// ErrorTypeOutOfMemory error and leaves the buffer untouched, which is how
// allocation failure surfaces to callers.
package array

import (
	"go.uber.org/zap"

	"github.com/nathangeffen/libuseful/pkg/errors"
	"github.com/nathangeffen/libuseful/pkg/logger"
	"github.com/nathangeffen/libuseful/pkg/metrics"
)

const (
	// InitialCapacity is the capacity allocated by the first growth.
	InitialCapacity = 10
	// GrowthNumerator and GrowthDenominator give the default factor of 1.5.
	GrowthNumerator   = 3
	GrowthDenominator = 2
)

// Policy controls how a Buffer grows.
type Policy struct {
	InitialCapacity   int `yaml:"initial_capacity" json:"initial_capacity" mapstructure:"initial_capacity"`
	GrowthNumerator   int `yaml:"growth_numerator" json:"growth_numerator" mapstructure:"growth_numerator"`
	GrowthDenominator int `yaml:"growth_denominator" json:"growth_denominator" mapstructure:"growth_denominator"`
	// MaxCapacity caps the number of slots. Zero means unlimited.
	MaxCapacity int `yaml:"max_capacity" json:"max_capacity" mapstructure:"max_capacity"`
}

// DefaultPolicy returns the 10 then x1.5 policy with no capacity limit.
func DefaultPolicy() Policy {
	return Policy{
		InitialCapacity:   InitialCapacity,
		GrowthNumerator:   GrowthNumerator,
		GrowthDenominator: GrowthDenominator,
	}
}

// Validate checks that the policy describes a growth factor above one.
func (p Policy) Validate() error {
	if p.InitialCapacity < 1 {
		return errors.New(errors.ErrorTypeInvalidArgument, "initial capacity must be at least 1")
	}
	if p.GrowthDenominator < 1 {
		return errors.New(errors.ErrorTypeInvalidArgument, "growth denominator must be at least 1")
	}
	if p.GrowthNumerator <= p.GrowthDenominator {
		return errors.New(errors.ErrorTypeInvalidArgument, "growth factor must be greater than 1")
	}
	if p.MaxCapacity < 0 {
		return errors.New(errors.ErrorTypeInvalidArgument, "max capacity must not be negative")
	}
	return nil
}

// orDefault fills a zero Policy with the defaults so that a zero Buffer is usable.
func (p Policy) orDefault() Policy {
	if p == (Policy{}) {
		return DefaultPolicy()
	}
	return p
}

// next returns the capacity that follows current.
func (p Policy) next(current int) int {
	n := current * p.GrowthNumerator / p.GrowthDenominator
	if n < p.InitialCapacity {
		n = p.InitialCapacity
	}
	if n <= current {
		n = current + 1
	}
	return n
}

// Buffer is a growable sequence of T. The zero value is an empty buffer
// using DefaultPolicy.
type Buffer[T any] struct {
	data   []T
	length int
	policy Policy
}

// New returns an empty buffer with the default policy.
func New[T any]() *Buffer[T] {
	return &Buffer[T]{policy: DefaultPolicy()}
}

// NewWithPolicy returns an empty buffer that grows according to p.
func NewWithPolicy[T any](p Policy) (*Buffer[T], error) {
	p = p.orDefault()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Buffer[T]{policy: p}, nil
}

// Policy returns the buffer's growth policy.
func (b *Buffer[T]) Policy() Policy {
	return b.policy.orDefault()
}

// Len returns the number of occupied slots.
func (b *Buffer[T]) Len() int { return b.length }

// Cap returns the number of allocated slots.
func (b *Buffer[T]) Cap() int { return len(b.data) }

// GrowIfFull reallocates when the buffer is full and returns the resulting
// capacity. When a MaxCapacity forbids growth it returns 0 and an
// ErrorTypeOutOfMemory error; the contents are not modified in that case.
func (b *Buffer[T]) GrowIfFull() (int, error) {
	if b.length < len(b.data) {
		return len(b.data), nil
	}

	p := b.Policy()
	newCap := p.next(len(b.data))
	if p.MaxCapacity > 0 && newCap > p.MaxCapacity {
		if len(b.data) >= p.MaxCapacity {
			return 0, b.outOfMemory(newCap)
		}
		newCap = p.MaxCapacity
	}

	b.realloc(newCap)
	return newCap, nil
}

// Reserve ensures capacity for at least n slots, reallocating to exactly n
// when the buffer is smaller.
func (b *Buffer[T]) Reserve(n int) error {
	if n < 0 {
		return errors.Newf(errors.ErrorTypeInvalidArgument, "cannot reserve %d slots", n)
	}
	if n <= len(b.data) {
		return nil
	}
	if max := b.Policy().MaxCapacity; max > 0 && n > max {
		return b.outOfMemory(n)
	}
	b.realloc(n)
	return nil
}

func (b *Buffer[T]) realloc(n int) {
	data := make([]T, n)
	copy(data, b.data[:b.length])
	b.data = data
	metrics.BufferGrowths.Inc()
}

func (b *Buffer[T]) outOfMemory(requested int) error {
	metrics.BufferGrowthFailures.Inc()
	logger.Error("buffer growth refused",
		zap.Int("capacity", len(b.data)),
		zap.Int("requested", requested),
		zap.Int("max_capacity", b.Policy().MaxCapacity))
	return errors.New(errors.ErrorTypeOutOfMemory, "buffer cannot grow").
		WithDetail("capacity", len(b.data)).
		WithDetail("requested", requested)
}

// Push appends v, growing the buffer first when it is full.
func (b *Buffer[T]) Push(v T) error {
	if _, err := b.GrowIfFull(); err != nil {
		return err
	}
	b.data[b.length] = v
	b.length++
	return nil
}

// Pop removes and returns the last element.
func (b *Buffer[T]) Pop() (T, error) {
	var zero T
	if b.length == 0 {
		return zero, errors.New(errors.ErrorTypeInvalidArgument, "pop from empty buffer")
	}
	b.length--
	v := b.data[b.length]
	b.data[b.length] = zero
	return v, nil
}

// At returns the element at i.
func (b *Buffer[T]) At(i int) (T, error) {
	if i < 0 || i >= b.length {
		var zero T
		return zero, errors.IndexOutOfRange("buffer", i, b.length)
	}
	return b.data[i], nil
}

// Set replaces the element at i.
func (b *Buffer[T]) Set(i int, v T) error {
	if i < 0 || i >= b.length {
		return errors.IndexOutOfRange("buffer", i, b.length)
	}
	b.data[i] = v
	return nil
}

// Truncate shortens the buffer to n elements. Capacity is kept.
func (b *Buffer[T]) Truncate(n int) error {
	if n < 0 || n > b.length {
		return errors.IndexOutOfRange("truncate", n, b.length+1)
	}
	var zero T
	for i := n; i < b.length; i++ {
		b.data[i] = zero
	}
	b.length = n
	return nil
}

// Reset empties the buffer without releasing storage.
func (b *Buffer[T]) Reset() {
	_ = b.Truncate(0)
}

// Slice returns the occupied elements. The slice aliases the buffer's
// storage and is invalidated by the next growth.
func (b *Buffer[T]) Slice() []T {
	return b.data[:b.length:b.length]
}

// FindFunc returns the index of the first element for which match returns
// true, or Len() when there is none.
func (b *Buffer[T]) FindFunc(match func(T) bool) int {
	for i := 0; i < b.length; i++ {
		if match(b.data[i]) {
			return i
		}
	}
	return b.length
}

// Free releases the storage. The buffer can be reused afterwards.
func (b *Buffer[T]) Free() {
	b.data = nil
	b.length = 0
}

// Find returns the index of the first element equal to key, or b.Len()
// when key is absent.
func Find[T comparable](b *Buffer[T], key T) int {
	return b.FindFunc(func(v T) bool { return v == key })
}

// From returns a buffer holding a copy of items.
func From[T any](items []T) *Buffer[T] {
	b := New[T]()
	if len(items) > 0 {
		b.realloc(len(items))
		copy(b.data, items)
		b.length = len(items)
	}
	return b
}
