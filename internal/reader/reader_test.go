package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Reader_NextAdvancesLineAndColumn(t *testing.T) {
	assert := assert.New(t)

	r := NewFromString("ab\ncd")

	c, ok := r.Next()
	assert.True(ok)
	assert.Equal('a', c)
	assert.Equal(1, r.Line())
	assert.Equal(2, r.Column())

	c, ok = r.Next()
	assert.True(ok)
	assert.Equal('b', c)
	assert.Equal(3, r.Column())

	c, ok = r.Next()
	assert.True(ok)
	assert.Equal('\n', c)
	assert.Equal(2, r.Line())
	assert.Equal(1, r.Column())

	c, ok = r.Next()
	assert.True(ok)
	assert.Equal('c', c)
}

func Test_Reader_CRLFCountsAsOneLine(t *testing.T) {
	assert := assert.New(t)

	r := NewFromString("a\r\nb")
	r.Next() // 'a'
	r.Next() // '\r'
	assert.Equal(1, r.Line(), "the \\r of a \\r\\n pair must not advance the line before the paired \\n is seen")
	r.Next() // '\n'
	assert.Equal(2, r.Line())
}

func Test_Reader_LoneCRAdvancesLine(t *testing.T) {
	assert := assert.New(t)

	r := NewFromString("a\rb")
	r.Next()
	r.Next()
	assert.Equal(2, r.Line())
}

func Test_Reader_MarkAndRestore(t *testing.T) {
	assert := assert.New(t)

	r := NewFromString("hello")
	mark := r.Mark()

	r.Next()
	r.Next()
	mid := r.Mark()
	r.Next()

	assert.Equal("hel", r.Slice(mark, r.Mark()))

	r.Restore(mark)
	c, ok := r.Next()
	assert.True(ok)
	assert.Equal('h', c)

	r.Restore(mid)
	c, ok = r.Next()
	assert.True(ok)
	assert.Equal('l', c)
}

func Test_Reader_AtEnd(t *testing.T) {
	assert := assert.New(t)

	r := NewFromString("x")
	assert.False(r.AtEnd())
	r.Next()
	assert.True(r.AtEnd())

	_, ok := r.Next()
	assert.False(ok)
}

func Test_Reader_Peek_DoesNotConsume(t *testing.T) {
	assert := assert.New(t)

	r := NewFromString("zz")
	c, ok := r.Peek()
	assert.True(ok)
	assert.Equal('z', c)

	c, ok = r.Peek()
	assert.True(ok)
	assert.Equal('z', c)
	assert.Equal(1, r.Line())
}
