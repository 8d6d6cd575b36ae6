// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import "errors"

var (
	ErrInvalidPlan        = errors.New("invalid plan")
	ErrInvalidStep        = errors.New("invalid step")
	ErrUnknownAction      = errors.New("unknown action type")
	ErrUnknownKey         = errors.New("unknown key")
	ErrRequirementFailed  = errors.New("step requirement failed")
	ErrMissingAddress     = errors.New("missing address")
	ErrRecursiveReference = errors.New("reference nests too deep")
	ErrUnexpectedResults  = errors.New("unexpected number of results")
)
