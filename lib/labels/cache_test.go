package labels

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	values map[string][]byte
	ttl    time.Duration
	err    error
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	value, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(value), nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.values[key] = value.([]byte)
	f.ttl = expiration
	return redis.NewStatusResult("OK", nil)
}

func Test_RedisCache_MissThenHit(t *testing.T) {
	//Arrange
	client := &fakeRedis{values: map[string][]byte{}}
	cache := NewRedisCache(client, time.Hour)
	ctx := context.Background()

	//Act
	_, found, err := cache.Get(ctx, "pdf:abc")
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, "pdf:abc", []byte("artifact")))
	artifact, hit, err := cache.Get(ctx, "pdf:abc")

	//Assert
	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, hit)
	assert.Equal(t, []byte("artifact"), artifact)
	assert.Contains(t, client.values, "inventory:labels:pdf:abc")
	assert.Equal(t, time.Hour, client.ttl)
}

func Test_RedisCache_PropagatesErrors(t *testing.T) {
	cache := NewRedisCache(&fakeRedis{err: errors.New("dial tcp: refused")}, time.Minute)

	_, _, err := cache.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, cache.Set(context.Background(), "k", []byte("v")))
}

func Test_Fingerprint_DependsOnFormatAndContent(t *testing.T) {
	sheet := &Sheet{Paper: PaperA4, Columns: 1, Rows: 1, Labels: 1, Pages: [][]*Label{{{ItemID: 1, Name: "Nut", Quantity: 2, Unit: DefaultUnit}}}}

	pdfKey, err := Fingerprint(formatPDF, sheet)
	require.NoError(t, err)
	pngKey, err := Fingerprint(formatPNG, sheet)
	require.NoError(t, err)
	again, err := Fingerprint(formatPDF, sheet)
	require.NoError(t, err)
	sheet.Pages[0][0].Quantity = 3
	changed, err := Fingerprint(formatPDF, sheet)
	require.NoError(t, err)

	assert.Equal(t, pdfKey, again)
	assert.NotEqual(t, pdfKey, pngKey)
	assert.NotEqual(t, pdfKey, changed)
}
