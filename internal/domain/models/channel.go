package models

// ChannelSettings is the externally loaded per-channel configuration.
// Read-only to the parser core.
type ChannelSettings struct {
	DefaultInstrument string `yaml:"default_instrument"`
	DefaultExpiry     string `yaml:"default_expiry"`
	Scalp             bool   `yaml:"scalp"`
}

// ChannelContext is what a pattern parser knows about the channel a
// message came from: its classification plus configured defaults.
type ChannelContext struct {
	Name              string
	Type              ChannelType
	DefaultInstrument string
	DefaultExpiry     ExpiryType
	Scalp             bool
}
