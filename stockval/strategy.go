// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockval

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

const (
	StrategyBreakRetest = "break_retest"
	StrategyMACrossover = "ma_crossover"
)

// StrategyParams select the signal source of the analysis service.
type StrategyParams struct {
	Name      string  `yaml:"name"`
	Lookback  int     `yaml:"lookback"`
	Tolerance float64 `yaml:"tolerance"`
	Confirm   int     `yaml:"confirm"`
}

func DefaultStrategyParams() StrategyParams {
	return StrategyParams{
		Name:      StrategyBreakRetest,
		Lookback:  20,
		Tolerance: 0.003,
		Confirm:   1,
	}
}

func (s StrategyParams) Validate() error {
	switch s.Name {
	case StrategyBreakRetest, StrategyMACrossover:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, s.Name)
	}
	if s.Lookback < 1 || s.Confirm < 0 || s.Tolerance < 0 {
		return fmt.Errorf("invalid parameters for strategy %s", s.Name)
	}
	return nil
}

// QueryValues returns the strategy parameters as query string values.
func (s StrategyParams) QueryValues() map[string]string {
	return map[string]string{
		"strategy":      s.Name,
		"brk_lookback":  strconv.Itoa(s.Lookback),
		"brk_tolerance": strconv.FormatFloat(s.Tolerance, 'f', -1, 64),
		"brk_confirm":   strconv.Itoa(s.Confirm),
	}
}

func (s StrategyParams) String() string {
	return fmt.Sprintf("%s(%d,%g,%d)", s.Name, s.Lookback, s.Tolerance, s.Confirm)
}
