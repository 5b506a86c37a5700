package evmasm

import "testing"

func TestCache_GetPutRoundTrip(t *testing.T) {
	c, err := NewCache(4)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatal("Get on empty cache should miss")
	}

	p, err := LoadBytes([]byte{0x00}, 0)
	if err != nil {
		t.Fatal(err)
	}
	translated := &Translated{Program: p}
	c.Put(p.Fingerprint, translated)

	got, ok := c.Get(p.Fingerprint)
	if !ok || got != translated {
		t.Fatalf("Get after Put = %v, %v", got, ok)
	}
}

func TestCache_Purge(t *testing.T) {
	c, err := NewCache(4)
	if err != nil {
		t.Fatal(err)
	}
	p, _ := LoadBytes([]byte{0x00}, 0)
	c.Put(p.Fingerprint, &Translated{Program: p})
	c.Purge()

	if _, ok := c.Get(p.Fingerprint); ok {
		t.Fatal("expected cache to be empty after Purge")
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewCache(1)
	if err != nil {
		t.Fatal(err)
	}
	p1, _ := LoadBytes([]byte{0x00}, 0)
	p2, _ := LoadBytes([]byte{0x01}, 0)

	c.Put(p1.Fingerprint, &Translated{Program: p1})
	c.Put(p2.Fingerprint, &Translated{Program: p2})

	if _, ok := c.Get(p1.Fingerprint); ok {
		t.Fatal("p1 should have been evicted once capacity 1 was exceeded")
	}
	if _, ok := c.Get(p2.Fingerprint); !ok {
		t.Fatal("p2 should still be cached")
	}
}

func TestTranslate_UsesCacheOnSecondCall(t *testing.T) {
	c, err := NewCache(4)
	if err != nil {
		t.Fatal(err)
	}
	p, _ := LoadBytes([]byte{0x60, 0x00, 0x00}, 0)

	first := Translate(p, c)
	second := Translate(p, c)

	if first != second {
		t.Fatal("expected the second Translate call to return the cached *Translated")
	}
}

func TestTranslate_NilCacheDisablesCaching(t *testing.T) {
	p, _ := LoadBytes([]byte{0x60, 0x00, 0x00}, 0)
	first := Translate(p, nil)
	second := Translate(p, nil)

	if first == second {
		t.Fatal("expected distinct *Translated values when no cache is supplied")
	}
}
