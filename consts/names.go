// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	Name = "weightedvm"
	HRP  = "weighted"

	// Address type ids
	ED25519ID uint8 = 0
	PDAID     uint8 = 16
	ProgramID uint8 = 32
)

// Action type ids
const (
	InitializeVaultID uint8 = iota
	DepositID
	WithdrawID
	InitializePoolID
	SwapID
	SwapExactOutID
	AddLiquidityID
	RemoveLiquidityID
	TransferID
	JoinPoolID
	ExitPoolID
)

// Program ids are base58 encoded 32 byte keys.
const (
	VaultProgram = "CsSfsxZcni7DTeLvxTvzbFsLa3PdvyQCKmakzmXeM2fz"
	PoolProgram  = "DD3HQQHjNnAKqq9eX7RyNW84hnRyBMrzsoc8AxkuvNzZ"
	TokenProgram = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
)
