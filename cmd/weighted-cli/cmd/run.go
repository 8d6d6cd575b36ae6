// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/rpc"
	"github.com/ava-labs/weightedvm/utils"
)

// Response is printed for every step of a plan.
type Response struct {
	ID          int           `json:"id"`
	Description string        `json:"description,omitempty"`
	TxID        ids.ID        `json:"txId"`
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	Outputs     []codec.Typed `json:"outputs,omitempty"`
}

var runCmd = &cobra.Command{
	Use:   "run [plan.yaml]",
	Short: "Execute the steps of a plan against the local database",
	Long:  `Execute the steps of a plan against the local database. Use "-" to read the plan from stdin.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			b   []byte
			dir string
			err error
		)
		if args[0] == "-" {
			b, err = io.ReadAll(cmd.InOrStdin())
			dir = "."
		} else {
			b, err = os.ReadFile(args[0])
			dir = filepath.Dir(args[0])
		}
		if err != nil {
			return err
		}
		plan, err := unmarshalPlan(b)
		if err != nil {
			return err
		}
		if err := plan.Verify(); err != nil {
			return err
		}

		n, err := openNode(log, cfg)
		if err != nil {
			return err
		}
		defer n.Close()
		return runPlan(cmd.Context(), cmd.OutOrStdout(), n, plan, dir)
	},
}

// runPlan executes each step as one transaction and prints its response.
// Steps are not retried; a failed requirement stops the plan.
func runPlan(ctx context.Context, w io.Writer, n *node, plan *Plan, dir string) error {
	submitter := rpc.NewProcessorSubmitter(n.processor, n.actionRegistry, n.authRegistry, nil)
	return executePlan(ctx, w, n, submitter, plan, dir)
}

func executePlan(ctx context.Context, w io.Writer, n *node, submitter rpc.Submitter, plan *Plan, dir string) error {
	r := newResolver(dir, plan.Keys)
	n.log.Info("running plan",
		zap.String("name", plan.Name),
		zap.Int("steps", len(plan.Steps)),
	)
	for i, step := range plan.Steps {
		acts := make([]chain.Action, 0, len(step.Actions))
		for _, a := range step.Actions {
			action, err := a.build(r)
			if err != nil {
				return fmt.Errorf("%w %d: %w", ErrInvalidStep, i, err)
			}
			acts = append(acts, action)
		}
		factory, err := r.factory(step.Signer)
		if err != nil {
			return err
		}
		base := &chain.Base{
			Timestamp: utils.UnixRMilli(-1, n.window),
			ChainID:   n.chainID,
		}
		tx, err := chain.NewTx(base, acts).Sign(factory, n.actionRegistry, n.authRegistry)
		if err != nil {
			return err
		}
		results, err := submitter.Submit(ctx, []*chain.Transaction{tx})
		if err != nil {
			return err
		}
		if len(results) != 1 {
			return fmt.Errorf("%w for step %d: %d", ErrUnexpectedResults, i, len(results))
		}
		result := results[0]
		n.log.Debug("executed step",
			zap.Int("step", i),
			zap.Stringer("txID", result.TxID),
			zap.Bool("success", result.Success),
		)
		if err := printJSON(w, &Response{
			ID:          i,
			Description: step.Description,
			TxID:        result.TxID,
			Success:     result.Success,
			Error:       result.Error,
			Outputs:     result.Outputs,
		}); err != nil {
			return err
		}
		if req := step.Require; req != nil {
			if req.Success != result.Success || !strings.Contains(result.Error, req.Error) {
				return fmt.Errorf("%w %d: success=%t error=%q", ErrRequirementFailed, i, result.Success, result.Error)
			}
		}
	}
	return nil
}
