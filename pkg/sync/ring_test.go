package sync

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing_Consistency(t *testing.T) {
	r := newRing(64, 200)

	for i := 0; i < 256; i++ {
		key := []byte(fmt.Sprintf("key%d", i))
		shard := r.shard(key)
		require.True(t, shard >= 0 && shard < 64)

		for j := 0; j < 16; j++ {
			assert.Equal(t, shard, r.shard(key))
		}
	}
}

func TestRing_Distribution(t *testing.T) {
	shards := 5
	iterations := 100000
	marginOfError := 0.15
	expected := iterations / shards

	r := newRing(shards, 200)

	hits := make(map[int]int)
	for i := 0; i < iterations; i++ {
		hits[r.shard([]byte(fmt.Sprintf("key%d", i)))]++
	}

	assert.Len(t, hits, shards)
	for shard, count := range hits {
		assert.True(t, math.Abs(float64(count-expected)) <= marginOfError*float64(expected), "shard %d: %d", shard, count)
	}
}

func TestRing_SingleShard(t *testing.T) {
	r := newRing(1, 1)
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0, r.shard([]byte(fmt.Sprintf("key%d", i))))
	}
}
