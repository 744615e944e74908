package config

// RuntimeConfig defines the subset of the configuration that can be
// safely modified at runtime through the web API. Pin assignments and
// logging stay out of reach.
type RuntimeConfig struct {
	Dimmer DimmerConfig `yaml:"Dimmer" json:"Dimmer"`
}
