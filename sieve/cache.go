// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sieve

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/primegap/primegapd/numeral"
)

const (
	basisExpiry  = 30 * time.Minute
	basisCleanup = 10 * time.Minute
)

// Loader - fetch a gap stream and the number its first gap is measured from
type Loader func(name string) (stream string, origin uint64, err error)

// BasisCache - decoded prime bases shared by all workers
//
// each basis is decoded once up to the limit given at creation and
// reused until it expires
type BasisCache struct {
	sync.Mutex
	codec  *numeral.Codec
	limit  uint64
	loader Loader
	bases  *cache.Cache
}

// NewBasisCache - cache holding primes up to √limit
func NewBasisCache(codec *numeral.Codec, limit uint64, loader Loader) *BasisCache {
	return &BasisCache{
		codec:  codec,
		limit:  isqrt(limit),
		loader: loader,
		bases:  cache.New(basisExpiry, basisCleanup),
	}
}

// Get - basis decoded from the named block
func (c *BasisCache) Get(name string) (*Basis, error) {
	if b, found := c.bases.Get(name); found {
		return b.(*Basis), nil
	}

	// serialise decoding so concurrent workers do not repeat it
	c.Lock()
	defer c.Unlock()

	if b, found := c.bases.Get(name); found {
		return b.(*Basis), nil
	}

	stream, origin, err := c.loader(name)
	if nil != err {
		return nil, err
	}
	basis, err := DecodeBasis(c.codec, stream, origin, c.limit)
	if nil != err {
		return nil, err
	}
	c.bases.SetDefault(name, basis)
	return basis, nil
}

// Forget - drop a cached basis
func (c *BasisCache) Forget(name string) {
	c.bases.Delete(name)
}
