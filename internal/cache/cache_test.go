// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cache

import (
	"slices"
	"testing"
)

type evictLog struct {
	keys []int
}

func (l *evictLog) record(k int, _ string) { l.keys = append(l.keys, k) }

func TestCacheGetSet(t *testing.T) {
	c := New[int, string](0, nil)
	c.Set(1, "one")
	c.Set(2, "two")

	if v, ok := c.Get(1); !ok || v != "one" {
		t.Errorf("Get(1) = %q, %v", v, ok)
	}
	if _, ok := c.Get(3); ok {
		t.Error("Get(3) found a missing key")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	var log evictLog
	c := New[int, string](2, log.record)
	c.Set(1, "one")
	c.Set(2, "two")
	c.Get(1) // 2 is now the oldest
	c.Set(3, "three")

	if !slices.Equal(log.keys, []int{2}) {
		t.Errorf("evicted %v, want [2]", log.keys)
	}
	if _, ok := c.Get(2); ok {
		t.Error("evicted key still present")
	}
	if c.Len() != 2 || c.Limit() != 2 {
		t.Errorf("Len() = %d, Limit() = %d", c.Len(), c.Limit())
	}
}

func TestCacheSetReplacesAndEvictsOld(t *testing.T) {
	var log evictLog
	c := New[int, string](0, log.record)
	c.Set(1, "a")
	c.Set(1, "b")

	if v, _ := c.Get(1); v != "b" {
		t.Errorf("Get(1) = %q, want b", v)
	}
	if !slices.Equal(log.keys, []int{1}) {
		t.Errorf("evicted %v, want [1]", log.keys)
	}
}

func TestCacheRemove(t *testing.T) {
	var log evictLog
	c := New[int, string](0, log.record)
	for i := range 6 {
		c.Set(i, "v")
	}

	if !c.Remove(0) || c.Remove(0) {
		t.Error("Remove(0) should succeed exactly once")
	}
	if n := c.RemoveFunc(func(k int) bool { return k%2 == 1 }); n != 3 {
		t.Errorf("RemoveFunc removed %d, want 3", n)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear", c.Len())
	}
	slices.Sort(log.keys)
	if !slices.Equal(log.keys, []int{0, 1, 2, 3, 4, 5}) {
		t.Errorf("evicted %v, want every key once", log.keys)
	}
}
