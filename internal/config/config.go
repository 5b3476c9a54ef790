// Package config loads optional table-rule settings from a JSON file.
// Every field has a safe default so the engines run without any file.
package config

import (
	"encoding/json"
	"os"
	"sync"
)

// BlackjackRules are the configurable blackjack table rules.
type BlackjackRules struct {
	DeckCount        int    `json:"deck_count"`
	DealerHitsSoft17 bool   `json:"dealer_hits_soft_17"`
	DoubleDownRules  string `json:"double_down_rules"`
	SplitRules       string `json:"split_rules"`
	Payout           string `json:"blackjack_payout"` // 3:2 or 6:5
	StartingChips    int    `json:"starting_chips"`
}

// CanastaRules are the configurable canasta table rules.
type CanastaRules struct {
	MinimumMeldScore     int `json:"minimum_meld_score"`
	WildcardLimitPerMeld int `json:"wildcard_limit_per_meld"`
	WinningScore         int `json:"winning_score"`
}

// BridgeRules are the configurable bridge table rules.
type BridgeRules struct {
	BiddingSystem string `json:"bidding_system"`
}

// Thresholds are the session end scores of the point-race games.
type Thresholds struct {
	HeartsLoseScore  int `json:"hearts_lose_score"`
	CribbageWinScore int `json:"cribbage_win_score"`
	PinochleWinScore int `json:"pinochle_win_score"`
}

// Rules bundles every game's table settings.
type Rules struct {
	Blackjack  BlackjackRules `json:"blackjack"`
	Canasta    CanastaRules   `json:"canasta"`
	Bridge     BridgeRules    `json:"bridge"`
	Thresholds Thresholds     `json:"thresholds"`
}

// Default returns the stock rule set.
func Default() Rules {
	return Rules{
		Blackjack: BlackjackRules{
			DeckCount:        6,
			DealerHitsSoft17: true,
			DoubleDownRules:  "any_two_cards",
			SplitRules:       "once",
			Payout:           "3:2",
			StartingChips:    1000,
		},
		Canasta: CanastaRules{
			MinimumMeldScore:     50,
			WildcardLimitPerMeld: 2,
			WinningScore:         5000,
		},
		Bridge: BridgeRules{
			BiddingSystem: "standard_american",
		},
		Thresholds: Thresholds{
			HeartsLoseScore:  100,
			CribbageWinScore: 121,
			PinochleWinScore: 150,
		},
	}
}

var (
	loadOnce sync.Once
	loaded   Rules
)

// Load reads the rule file at path once per process. Missing or
// malformed files fall back to Default.
func Load(path string) Rules {
	loadOnce.Do(func() {
		loaded = Default()
		if path == "" {
			return
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return
		}
		var r Rules
		if err := json.Unmarshal(data, &r); err != nil {
			return
		}
		loaded = merge(loaded, r)
	})
	return loaded
}

// merge overlays non-zero file values on the defaults.
func merge(base, over Rules) Rules {
	out := base
	if over.Blackjack.DeckCount > 0 {
		out.Blackjack.DeckCount = over.Blackjack.DeckCount
	}
	out.Blackjack.DealerHitsSoft17 = over.Blackjack.DealerHitsSoft17
	if over.Blackjack.DoubleDownRules != "" {
		out.Blackjack.DoubleDownRules = over.Blackjack.DoubleDownRules
	}
	if over.Blackjack.SplitRules != "" {
		out.Blackjack.SplitRules = over.Blackjack.SplitRules
	}
	if over.Blackjack.Payout != "" {
		out.Blackjack.Payout = over.Blackjack.Payout
	}
	if over.Blackjack.StartingChips > 0 {
		out.Blackjack.StartingChips = over.Blackjack.StartingChips
	}
	if over.Canasta.MinimumMeldScore > 0 {
		out.Canasta.MinimumMeldScore = over.Canasta.MinimumMeldScore
	}
	if over.Canasta.WildcardLimitPerMeld > 0 {
		out.Canasta.WildcardLimitPerMeld = over.Canasta.WildcardLimitPerMeld
	}
	if over.Canasta.WinningScore > 0 {
		out.Canasta.WinningScore = over.Canasta.WinningScore
	}
	if over.Bridge.BiddingSystem != "" {
		out.Bridge.BiddingSystem = over.Bridge.BiddingSystem
	}
	if over.Thresholds.HeartsLoseScore > 0 {
		out.Thresholds.HeartsLoseScore = over.Thresholds.HeartsLoseScore
	}
	if over.Thresholds.CribbageWinScore > 0 {
		out.Thresholds.CribbageWinScore = over.Thresholds.CribbageWinScore
	}
	if over.Thresholds.PinochleWinScore > 0 {
		out.Thresholds.PinochleWinScore = over.Thresholds.PinochleWinScore
	}
	return out
}
