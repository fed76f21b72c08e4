package models

// Quote is a single price observation for a watched symbol.
type Quote struct {
	Symbol      string  `json:"symbol"`
	Price       float64 `json:"price"`
	TradingDate string  `json:"trading_date"`
	IsLive      bool    `json:"is_live"`
}
