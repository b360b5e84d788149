package multiindex

// Proxy is the scoped edit handle returned by MultiIndex.Edit for a unique
// primary: it buffers a copy of (key, payload), lets the caller mutate the
// payload in place, and on Commit (explicit, or implicit via Drop on an
// uncommitted proxy) performs an emplace-or-replace against the owning
// container.
//
// The original's operator[] records its outcome in a thread-local or static
// bool — described in spec.md §9 as "an observational channel, not a
// reliable commit-status interface". Go has no idiomatic thread-local
// storage, so that diagnostic lives on the Proxy value itself instead of
// anywhere global; Commit's own bool return remains the interface
// callers should actually use.
type Proxy[K comparable, P any] struct {
	mi           *MultiIndex[K, P]
	key          K
	payload      P
	existed      bool
	committed    bool
	lastCommitOK bool
}

// Edit opens a Proxy for key. If a record already exists for key — live or
// dead — its payload is copied into the proxy as the starting point, so a
// partial edit of a tombstoned record doesn't silently drop every field the
// caller didn't touch; otherwise the proxy starts from payload's zero
// value. Edit panics if the container's primary isn't unique, matching the
// original's restriction of operator[] to unique primaries.
func (mi *MultiIndex[K, P]) Edit(key K) *Proxy[K, P] {
	if !mi.primaryUnique {
		panic("multiindex: Edit requires a unique primary")
	}
	p := &Proxy[K, P]{mi: mi, key: key}
	if h, ok := mi.primary.find(key); ok {
		p.payload = h.Payload()
		p.existed = true
	}
	return p
}

// Payload returns a pointer to the proxy's buffered payload for in-place
// editing.
func (p *Proxy[K, P]) Payload() *P { return &p.payload }

// Commit performs an emplace-or-replace of the buffered (key, payload)
// against the owning container and records the outcome. It is safe to call
// more than once; only the first call has any effect.
func (p *Proxy[K, P]) Commit() bool {
	if p.committed {
		return p.lastCommitOK
	}
	p.committed = true
	if p.existed {
		// Raw lookup, live or dead: Replace dispatches to Modify, which
		// revives a dead record (see DESIGN.md's Open Question decision on
		// Modify-revives-dead), so this correctly resurrects a tombstoned key
		// instead of silently failing the way a tombstone-aware Find would.
		h, ok := p.mi.primary.find(p.key)
		p.lastCommitOK = ok && p.mi.Replace(h, p.payload)
	} else {
		_, ok := p.mi.Emplace(p.key, p.payload)
		p.lastCommitOK = ok
	}
	return p.lastCommitOK
}

// Drop releases the proxy, committing it first if the caller never called
// Commit explicitly — the scoped acquire/release discipline spec.md §5
// requires ("commit-or-abort on every exit path").
func (p *Proxy[K, P]) Drop() {
	if !p.committed {
		p.Commit()
	}
}

// LastCommitOK reports the outcome of the most recent Commit (explicit or
// implicit via Drop). It is diagnostic only; prefer Commit's own return
// value in code that needs to act on the result.
func (p *Proxy[K, P]) LastCommitOK() bool { return p.lastCommitOK }
