package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	rdb, err := Open(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, rdb)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb, err = Open(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	require.NotNil(t, rdb)
	defer rdb.Close()
	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	assert.True(t, mr.Exists("k"))

	_, err = Open(context.Background(), "not a url")
	assert.Error(t, err)

	addr := mr.Addr()
	mr.Close()
	_, err = Open(context.Background(), "redis://"+addr)
	assert.Error(t, err)
}
