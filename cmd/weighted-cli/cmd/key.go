// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/weightedvm/auth"
	"github.com/ava-labs/weightedvm/authority"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
	"github.com/ava-labs/weightedvm/crypto/ed25519"
)

var ErrKeyExists = errors.New("key file already exists")

type keyReply struct {
	Address string `json:"address"`
	Hex     string `json:"hex"`
	Vault   string `json:"vault"`
}

func keyInfo(priv ed25519.PrivateKey) (*keyReply, error) {
	addr := auth.NewED25519Address(priv.PublicKey())
	v, err := deriveAddress(authority.VaultStateSeed, addr)
	if err != nil {
		return nil, err
	}
	return &keyReply{
		Address: codec.MustAddressBech32(consts.HRP, addr),
		Hex:     addr.String(),
		Vault:   codec.MustAddressBech32(consts.HRP, v),
	}, nil
}

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage ed25519 signing keys",
}

var keyGenerateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Generate a key and write it to [path]",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrKeyExists, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		priv, err := ed25519.GeneratePrivateKey()
		if err != nil {
			return err
		}
		if err := priv.Save(path); err != nil {
			return err
		}
		info, err := keyInfo(priv)
		if err != nil {
			return err
		}
		log.Info("generated key",
			zap.String("path", path),
			zap.String("address", info.Address),
		)
		return printJSON(cmd.OutOrStdout(), info)
	},
}

var keyAddressCmd = &cobra.Command{
	Use:   "address [path]",
	Short: "Print the address and vault of the key at [path]",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		priv, err := ed25519.LoadKey(args[0])
		if err != nil {
			return err
		}
		info, err := keyInfo(priv)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), info)
	},
}

func init() {
	keyCmd.AddCommand(keyGenerateCmd, keyAddressCmd)
}
