// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import "strings"

// Permissions is a bitmask of what an action may do with a key. Allocate
// and Write imply Read.
type Permissions byte

const (
	None Permissions = 0
	Read Permissions = 1

	Allocate = Read | 1<<1
	Write    = Read | 1<<2
	All      = Allocate | Write
)

// Has is true if [p] grants everything in [required].
func (p Permissions) Has(required Permissions) bool {
	return required&^p == 0
}

func (p Permissions) String() string {
	if p == None {
		return "none"
	}
	var names []string
	for _, n := range []struct {
		bit  Permissions
		name string
	}{{Read, "read"}, {1 << 1, "allocate"}, {1 << 2, "write"}} {
		if p&n.bit != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// Keys are the permissions needed per key. Use [Keys.Add] so a later
// declaration never narrows an earlier one.
type Keys map[string]Permissions

func (k Keys) Add(name string, permission Permissions) {
	k[name] |= permission
}
