package server

// AgentServerConfig controls the background reconciliation agent
type AgentServerConfig struct {
	CleanInterval string   `mapstructure:"clean_interval" yaml:"clean_interval"`
	Watch         []string `mapstructure:"watch"          yaml:"watch"`
	Debounce      string   `mapstructure:"debounce"       yaml:"debounce"`
	Prune         bool     `mapstructure:"prune"          yaml:"prune"`
}
