// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2024 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Digest - hex SHA-256 of an encoded stream
func Digest(stream string) string {
	d := sha256.Sum256([]byte(stream))
	return hex.EncodeToString(d[:])
}

// shared zstd state, both are safe for concurrent EncodeAll/DecodeAll
var codec struct {
	once    sync.Once
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	err     error
}

func zstdCodec() (*zstd.Encoder, *zstd.Decoder, error) {
	codec.once.Do(func() {
		codec.encoder, codec.err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if nil != codec.err {
			return
		}
		codec.decoder, codec.err = zstd.NewReader(nil)
	})
	return codec.encoder, codec.decoder, codec.err
}

// Compress - zstd frame of some data
func Compress(data []byte) ([]byte, error) {
	encoder, _, err := zstdCodec()
	if nil != err {
		return nil, err
	}
	return encoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// Decompress - data from a zstd frame
func Decompress(data []byte) ([]byte, error) {
	_, decoder, err := zstdCodec()
	if nil != err {
		return nil, err
	}
	return decoder.DecodeAll(data, nil)
}

// CompressedSize - bytes needed to hold a stream compressed
func CompressedSize(stream string) (int, error) {
	compressed, err := Compress([]byte(stream))
	if nil != err {
		return 0, err
	}
	return len(compressed), nil
}
