package ratelimit

import (
    "testing"
    "time"
)

func TestAllowBurstThenDeny(t *testing.T) {
    l := New()
    for i := 0; i < 3; i++ {
        if !l.Allow("ai:gold-trades", 3, 0.1) {
            t.Fatalf("request %d should be within capacity", i)
        }
    }
    if l.Allow("ai:gold-trades", 3, 0.1) {
        t.Fatal("bucket should be empty after burst")
    }
}

func TestAllowRefills(t *testing.T) {
    l := New()
    if !l.Allow("k", 1, 100) {
        t.Fatal("first request should pass")
    }
    if l.Allow("k", 1, 100) {
        t.Fatal("bucket should be exhausted")
    }
    time.Sleep(30 * time.Millisecond)
    if !l.Allow("k", 1, 100) {
        t.Fatal("token should have refilled")
    }
}

func TestAllowKeysIndependent(t *testing.T) {
    l := New()
    if !l.Allow("ai:forex-exotics", 1, 0.1) {
        t.Fatal("first key should pass")
    }
    if l.Allow("ai:forex-exotics", 1, 0.1) {
        t.Fatal("first key should be exhausted")
    }
    if !l.Allow("ai:vip-scalps", 1, 0.1) {
        t.Fatal("second key should have its own bucket")
    }
}
