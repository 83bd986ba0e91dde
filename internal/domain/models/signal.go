package models

// Direction is the trade side of a parsed signal.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// ExpiryType encodes how long a signal stays valid.
type ExpiryType string

const (
	ExpiryDayEnd   ExpiryType = "day_end"
	ExpiryWeekEnd  ExpiryType = "week_end"
	ExpiryMonthEnd ExpiryType = "month_end"
	ExpiryNone     ExpiryType = "no_expiry"
)

// ValidExpiry reports whether s is one of the four expiry values.
func ValidExpiry(s string) bool {
	switch ExpiryType(s) {
	case ExpiryDayEnd, ExpiryWeekEnd, ExpiryMonthEnd, ExpiryNone:
		return true
	}
	return false
}

// ChannelType classifies a chat channel by the instruments it trades.
type ChannelType string

const (
	ChannelGold        ChannelType = "gold"
	ChannelOil         ChannelType = "oil"
	ChannelForexExotic ChannelType = "forex-exotic"
	ChannelCrypto      ChannelType = "crypto"
	ChannelIndices     ChannelType = "indices"
	ChannelStock       ChannelType = "stock"
	ChannelOTTrade     ChannelType = "ot-trade"
	ChannelAlt         ChannelType = "alt"
	ChannelGeneric     ChannelType = "generic"
)

// ParsedSignal is the structured trade instruction extracted from a chat
// message. It is a pure value: built once by a parsing strategy and never
// mutated afterwards.
type ParsedSignal struct {
	Instrument  string     `json:"instrument" validate:"required"`
	Direction   Direction  `json:"direction" validate:"required,oneof=long short"`
	Limits      []float64  `json:"limits" validate:"required,min=1,dive,gt=0"`
	StopLoss    float64    `json:"stop_loss" validate:"required,gt=0"`
	ExpiryType  ExpiryType `json:"expiry_type" validate:"required,oneof=day_end week_end month_end no_expiry"`
	Keywords    []string   `json:"keywords,omitempty"`
	RawText     string     `json:"raw_text"`
	ParseMethod string     `json:"parse_method" validate:"required"`
	ChannelName string     `json:"channel_name,omitempty"`
	Scalp       bool       `json:"scalp"`
}

// HasKeyword reports whether the keyword set contains kw.
func (s *ParsedSignal) HasKeyword(kw string) bool {
	for _, k := range s.Keywords {
		if k == kw {
			return true
		}
	}
	return false
}

// SymbolMatch is one hit from the external symbol directory.
type SymbolMatch struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
}

// PriceUpdate is a tick from the market stream, used to track instruments
// that currently have open signals.
type PriceUpdate struct {
	Symbol    string
	Price     float64
	Volume    float64
	Timestamp int64
}
