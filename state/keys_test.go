// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPermissions(t *testing.T) {
	tests := []struct {
		name     string
		perm     Permissions
		canRead  bool
		canAlloc bool
		canWrite bool
	}{
		{
			name:    "read",
			perm:    Read,
			canRead: true,
		},
		{
			name:     "read write",
			perm:     Read | Write,
			canRead:  true,
			canWrite: true,
		},
		{
			name:     "allocate",
			perm:     Allocate,
			canRead:  true,
			canAlloc: true,
		},
		{
			name:     "all",
			perm:     All,
			canRead:  true,
			canAlloc: true,
			canWrite: true,
		},
		{
			name: "none",
			perm: None,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			require.Equal(tt.canRead, tt.perm.Has(Read))
			require.Equal(tt.canAlloc, tt.perm.Has(Allocate))
			require.Equal(tt.canWrite, tt.perm.Has(Write))
		})
	}
}

func TestKeysAddUnion(t *testing.T) {
	require := require.New(t)
	k := Keys{}
	k.Add("a", Read)
	k.Add("a", Write)
	k.Add("a", Read)
	require.Equal(Read|Write, k["a"])
	require.False(k["a"].Has(Allocate))
}

func TestPermissionsString(t *testing.T) {
	require := require.New(t)
	require.Equal("none", None.String())
	require.Equal("read", Read.String())
	require.Equal("read|write", Write.String())
	require.Equal("read|allocate|write", All.String())
}
