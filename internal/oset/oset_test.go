package oset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Set_PreservesInsertionOrder(t *testing.T) {
	assert := assert.New(t)

	s := NewSet[string]()
	s.Add("c")
	s.Add("a")
	s.Add("b")
	s.Add("a") // duplicate, no reorder

	assert.Equal([]string{"c", "a", "b"}, s.Elements())
	assert.Equal(3, s.Len())
	assert.True(s.Has("a"))
	assert.False(s.Has("z"))
}

func Test_Set_Remove(t *testing.T) {
	assert := assert.New(t)

	s := NewSet[int]()
	s.Add(1)
	s.Add(2)
	s.Remove(1)

	assert.Equal([]int{2}, s.Elements())
	assert.True(s.Empty() == false)
}

func Test_Map_PreservesInsertionOrderOfKeys(t *testing.T) {
	assert := assert.New(t)

	m := NewMap[string, int]()
	m.Set("z", 1)
	m.Set("a", 2)
	m.Set("z", 99)

	assert.Equal([]string{"z", "a"}, m.Keys())
	v, ok := m.Get("z")
	assert.True(ok)
	assert.Equal(99, v)

	_, ok = m.Get("missing")
	assert.False(ok)
}
