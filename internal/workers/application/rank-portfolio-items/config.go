// internal/workers/application/rank-portfolio-items/config.go
package rankportfolioitems

import "time"

type Config struct {
	MaxItems int
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MaxItems: 10,
		Timeout:  5 * time.Second,
	}
}
