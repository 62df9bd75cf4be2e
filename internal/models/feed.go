package models

import "time"

// MarketOdds is one market's priced outcomes at one bookmaker.
type MarketOdds struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// BookmakerOdds is one bookmaker's listing for one event.
type BookmakerOdds struct {
	Key        string       `json:"key"`
	LastUpdate time.Time    `json:"last_update"`
	Markets    []MarketOdds `json:"markets"`
}
