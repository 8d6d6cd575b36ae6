// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	testPrivateKey = PrivateKey{
		32, 241, 118, 222, 210, 13, 164, 128, 3, 18,
		109, 215, 176, 215, 168, 171, 194, 181, 4, 11,
		253, 199, 173, 240, 107, 148, 127, 190, 48, 164,
		12, 48, 115, 50, 124, 153, 59, 53, 196, 150, 168,
		143, 151, 235, 222, 128, 136, 161, 9, 40, 139, 85,
		182, 153, 68, 135, 62, 166, 45, 235, 251, 246, 69, 7,
	}
	testPublicKey = PublicKey{
		115, 50, 124, 153, 59, 53, 196, 150, 168, 143, 151, 235,
		222, 128, 136, 161, 9, 40, 139, 85, 182, 153, 68, 135,
		62, 166, 45, 235, 251, 246, 69, 7,
	}
)

func TestGeneratePrivateKey(t *testing.T) {
	require := require.New(t)
	seen := make(map[PrivateKey]struct{})
	for i := 0; i < 10; i++ {
		priv, err := GeneratePrivateKey()
		require.NoError(err)
		require.NotEqual(EmptyPrivateKey, priv)
		require.NotContains(seen, priv)
		seen[priv] = struct{}{}
	}
}

func TestPublicKey(t *testing.T) {
	require.Equal(t, testPublicKey, testPrivateKey.PublicKey())
}

func TestSignVerify(t *testing.T) {
	require := require.New(t)

	msg := []byte("msg")
	sig := Sign(msg, testPrivateKey)
	require.Equal(Signature(ed25519.Sign(testPrivateKey[:], msg)), sig)
	require.True(Verify(msg, testPublicKey, sig))
	require.False(Verify([]byte("diff msg"), testPublicKey, sig))
}

func TestHexRoundTrip(t *testing.T) {
	require := require.New(t)

	parsed, err := PrivateKeyFromHex("0x" + testPrivateKey.Hex() + "\n")
	require.NoError(err)
	require.Equal(testPrivateKey, parsed)

	_, err = PrivateKeyFromHex("zz")
	require.ErrorIs(err, ErrInvalidPrivateKey)
	_, err = PrivateKeyFromHex(testPublicKey.Hex())
	require.ErrorIs(err, ErrInvalidPrivateKey)

	path := filepath.Join(t.TempDir(), "key")
	require.NoError(testPrivateKey.Save(path))
	loaded, err := LoadKey(path)
	require.NoError(err)
	require.Equal(testPrivateKey, loaded)
}

func newBatch(t *testing.T, n int, corrupt int) *Batch {
	require := require.New(t)
	bv := NewBatch(n)
	for i := 0; i < n; i++ {
		priv, err := GeneratePrivateKey()
		require.NoError(err)
		msg := make([]byte, 128)
		_, err = rand.Read(msg)
		require.NoError(err)
		sig := Sign(msg, priv)
		if i == corrupt {
			sig[0]++
		}
		bv.Add(msg, priv.PublicKey(), sig)
	}
	return bv
}

func TestBatchVerify(t *testing.T) {
	require.NoError(t, newBatch(t, 1024, -1).Verify())
	require.ErrorIs(t, newBatch(t, 1024, 10).Verify(), ErrInvalidSignature)
}

func BenchmarkBatchVerify(b *testing.B) {
	for _, n := range []int{MinBatchSize, 64, 1024} {
		bv := NewBatch(n)
		for i := 0; i < n; i++ {
			priv, err := GeneratePrivateKey()
			if err != nil {
				b.Fatal(err)
			}
			msg := []byte{byte(i), byte(i >> 8)}
			bv.Add(msg, priv.PublicKey(), Sign(msg, priv))
		}
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if err := bv.Verify(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
