package mcts

import "github.com/pkg/errors"

var (
	errTotalBudgetNotPositive = errors.New("mcts: total game time budget must be positive")
	errFloorNegative          = errors.New("mcts: per-move time floor must not be negative")
	errFloorExceedsBudget     = errors.New("mcts: per-move time floor exceeds total game time budget")
)
