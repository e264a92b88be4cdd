package sync

import (
	"encoding/binary"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring consistently maps keys onto shard indexes [0, shards).
type ring struct {
	points *treemap.Map

	// Shard owning the smallest point, where hashes past the last point
	// wrap around to.
	first int
}

func newRing(shards, replicas int) *ring {
	points := treemap.NewWith(utils.Int64Comparator)

	replica := make([]byte, 8)
	for shard := 0; shard < shards; shard++ {
		for i := 0; i < replicas; i++ {
			binary.LittleEndian.PutUint32(replica[:4], uint32(shard))
			binary.LittleEndian.PutUint32(replica[4:], uint32(i))
			points.Put(int64(murmur3.Sum64(replica)), shard)
		}
	}

	r := &ring{points: points}
	if _, first := points.Min(); first != nil {
		r.first = first.(int)
	}
	return r
}

func (r *ring) shard(key []byte) int {
	_, shard := r.points.Ceiling(int64(murmur3.Sum64(key)))
	if shard == nil {
		return r.first
	}
	return shard.(int)
}
