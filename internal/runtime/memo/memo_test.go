package memo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Table_StoreAndLookup(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tbl := New()
	key := Key{Rule: "R", Pos: 3}

	require.Nil(tbl.Lookup(key))

	tbl.Store(key, "v", 5)
	e := tbl.Lookup(key)
	require.NotNil(e)
	assert.Equal("v", e.Result)
	assert.Equal(5, e.End)
	assert.False(e.Failed)
}

func Test_Table_StoreFailure(t *testing.T) {
	require := require.New(t)

	tbl := New()
	key := Key{Rule: "R", Pos: 0}
	tbl.StoreFailure(key)

	e := tbl.Lookup(key)
	require.NotNil(e)
	require.True(e.Failed)
}

func Test_Table_Delete_RemovesEntry(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tbl := New()
	key := Key{Rule: "B", Pos: 0}
	tbl.Store(key, "cached", 2)
	require.NotNil(tbl.Lookup(key))

	tbl.Delete(key)
	assert.Nil(tbl.Lookup(key))
}

func Test_Table_Delete_MissingKeyIsNoop(t *testing.T) {
	assert := assert.New(t)

	tbl := New()
	tbl.Delete(Key{Rule: "nope", Pos: 9})
	assert.Equal(0, tbl.Len())
}

func Test_Table_Update_OverwritesInPlace(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tbl := New()
	key := Key{Rule: "E", Pos: 0}
	tbl.StoreSeed(key, 0)

	tbl.Update(key, "seeded", 1)
	e := tbl.Lookup(key)
	require.NotNil(e)
	assert.Equal("seeded", e.Result)
	assert.Equal(1, e.End)
	assert.False(e.Failed)

	tbl.Update(key, "grown", 3)
	e = tbl.Lookup(key)
	require.NotNil(e)
	assert.Equal("grown", e.Result)
	assert.Equal(3, e.End)
}
