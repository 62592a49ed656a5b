// Package trading implements the buy/sell services and the position
// lifecycle monitor.
package trading

import (
	"fmt"
	"time"

	"solana-meme-trader/internal/domain"
)

// ExitSignal is a sell decision produced by an exit rule.
type ExitSignal struct {
	RuleID  string
	Reason  string // exit reason code written to the trade
	Detail  string
	GainPct float64
}

// ExitDecision is one rule's verdict. A nil Signal with Halt set suppresses
// every later rule for this cycle.
type ExitDecision struct {
	Signal *ExitSignal
	Halt   bool
}

// ExitRule evaluates one exit condition for an open position.
type ExitRule interface {
	ID() string
	Evaluate(t *domain.Trade, gainPct float64, now time.Time) ExitDecision
}

// ExitConfig carries the exit rule thresholds.
type ExitConfig struct {
	TimeoutHours    float64
	MegaProfitPct   float64
	MinHoldHours    float64 // profit-target and stop-loss are inert before this
	ProfitTargetPct float64
	StopLossPct     float64 // negative
}

// DefaultExitConfig returns the production thresholds.
func DefaultExitConfig() ExitConfig {
	return ExitConfig{
		TimeoutHours:    24,
		MegaProfitPct:   50,
		MinHoldHours:    2,
		ProfitTargetPct: 20,
		StopLossPct:     -10,
	}
}

// DefaultExitRules returns the rule chain in evaluation priority order:
// timeout overrides everything, mega-profit bypasses the hold gate, the
// hold gate suppresses the ordinary profit-target and stop-loss until the
// position has aged past the minimum hold.
func DefaultExitRules(cfg ExitConfig) []ExitRule {
	return []ExitRule{
		&timeoutRule{hours: cfg.TimeoutHours},
		&megaProfitRule{threshold: cfg.MegaProfitPct},
		&minHoldGate{hours: cfg.MinHoldHours},
		&profitTargetRule{threshold: cfg.ProfitTargetPct},
		&stopLossRule{threshold: cfg.StopLossPct},
	}
}

// EvaluateExit runs the rule chain and returns the first sell signal, or
// nil when the position should be held.
func EvaluateExit(rules []ExitRule, t *domain.Trade, currentPrice float64, now time.Time) *ExitSignal {
	gainPct := t.GainPct(currentPrice)
	for _, rule := range rules {
		d := rule.Evaluate(t, gainPct, now)
		if d.Signal != nil {
			return d.Signal
		}
		if d.Halt {
			return nil
		}
	}
	return nil
}

type timeoutRule struct {
	hours float64
}

func (r *timeoutRule) ID() string { return "timeout" }

func (r *timeoutRule) Evaluate(t *domain.Trade, gainPct float64, now time.Time) ExitDecision {
	held := t.HoursHeld(now)
	if held < r.hours {
		return ExitDecision{}
	}
	return ExitDecision{Signal: &ExitSignal{
		RuleID:  r.ID(),
		Reason:  domain.ExitReasonTimeout,
		Detail:  fmt.Sprintf("held %.1fh >= %.0fh", held, r.hours),
		GainPct: gainPct,
	}}
}

type megaProfitRule struct {
	threshold float64
}

func (r *megaProfitRule) ID() string { return "mega_profit" }

func (r *megaProfitRule) Evaluate(_ *domain.Trade, gainPct float64, _ time.Time) ExitDecision {
	if gainPct < r.threshold {
		return ExitDecision{}
	}
	return ExitDecision{Signal: &ExitSignal{
		RuleID:  r.ID(),
		Reason:  domain.ExitReasonMegaProfit,
		Detail:  fmt.Sprintf("gain %.1f%% >= %.0f%%", gainPct, r.threshold),
		GainPct: gainPct,
	}}
}

// minHoldGate suppresses the ordinary exits for freshly opened positions so
// normal entry volatility does not shake them out.
type minHoldGate struct {
	hours float64
}

func (r *minHoldGate) ID() string { return "min_hold" }

func (r *minHoldGate) Evaluate(t *domain.Trade, _ float64, now time.Time) ExitDecision {
	return ExitDecision{Halt: t.HoursHeld(now) < r.hours}
}

type profitTargetRule struct {
	threshold float64
}

func (r *profitTargetRule) ID() string { return "profit_target" }

func (r *profitTargetRule) Evaluate(_ *domain.Trade, gainPct float64, _ time.Time) ExitDecision {
	if gainPct < r.threshold {
		return ExitDecision{}
	}
	return ExitDecision{Signal: &ExitSignal{
		RuleID:  r.ID(),
		Reason:  domain.ExitReasonProfitTarget,
		Detail:  fmt.Sprintf("gain %.1f%% >= %.0f%%", gainPct, r.threshold),
		GainPct: gainPct,
	}}
}

type stopLossRule struct {
	threshold float64 // negative
}

func (r *stopLossRule) ID() string { return "stop_loss" }

func (r *stopLossRule) Evaluate(_ *domain.Trade, gainPct float64, _ time.Time) ExitDecision {
	if gainPct > r.threshold {
		return ExitDecision{}
	}
	return ExitDecision{Signal: &ExitSignal{
		RuleID:  r.ID(),
		Reason:  domain.ExitReasonStopLoss,
		Detail:  fmt.Sprintf("loss %.1f%% <= %.0f%%", gainPct, r.threshold),
		GainPct: gainPct,
	}}
}
