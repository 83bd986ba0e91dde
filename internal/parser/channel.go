package parser

import (
	"strings"

	"SigPull/internal/domain/models"
)

// channel keyword table; order matters, first substring match wins
var channelTypeKeywords = []struct {
	kw string
	ct models.ChannelType
}{
	{"gold", models.ChannelGold},
	{"xau", models.ChannelGold},
	{"oil", models.ChannelOil},
	{"exotic", models.ChannelForexExotic},
	{"crypto", models.ChannelCrypto},
	{"indice", models.ChannelIndices},
	{"index", models.ChannelIndices},
	{"stock", models.ChannelStock},
	{"equit", models.ChannelStock},
	{"ot-trade", models.ChannelOTTrade},
	{"ot-call", models.ChannelOTTrade},
	{"alt", models.ChannelAlt},
}

// DetectChannelType classifies a channel name by case-insensitive
// substring matching. Unknown names are generic.
func DetectChannelType(channelName string) models.ChannelType {
	lower := strings.ToLower(channelName)
	for _, e := range channelTypeKeywords {
		if strings.Contains(lower, e.kw) {
			return e.ct
		}
	}
	return models.ChannelGeneric
}

// ContextProvider turns a channel name into the context pattern parsers
// need: channel classification plus configured defaults. The settings map
// is loaded once from config and read-only afterwards.
type ContextProvider struct {
	channels map[string]models.ChannelSettings
}

// NewContextProvider builds a provider over the configured channel map.
func NewContextProvider(channels map[string]models.ChannelSettings) *ContextProvider {
	if channels == nil {
		channels = map[string]models.ChannelSettings{}
	}
	return &ContextProvider{channels: channels}
}

// Context resolves defaults for channelName. Unconfigured channels still
// get a classification and type-level defaults (gold channels imply
// XAUUSD even without any settings entry).
func (p *ContextProvider) Context(channelName string) models.ChannelContext {
	ctx := models.ChannelContext{
		Name: channelName,
		Type: DetectChannelType(channelName),
	}

	if s, ok := p.channels[channelName]; ok {
		ctx.DefaultInstrument = s.DefaultInstrument
		ctx.Scalp = s.Scalp
		if models.ValidExpiry(s.DefaultExpiry) {
			ctx.DefaultExpiry = models.ExpiryType(s.DefaultExpiry)
		}
	}

	if ctx.DefaultInstrument == "" {
		switch ctx.Type {
		case models.ChannelGold:
			ctx.DefaultInstrument = "XAUUSD"
		case models.ChannelOil:
			ctx.DefaultInstrument = "USOILSPOT"
		}
	}
	if ctx.DefaultExpiry == "" {
		ctx.DefaultExpiry = models.ExpiryDayEnd
	}
	return ctx
}
