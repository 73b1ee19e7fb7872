// internal/workers/application/send-notification/config.go
package sendnotification

import "time"

type Config struct {
	// RetryOnFailure fails the job with NOTIFICATION_SEND_FAILED instead of
	// completing it with status "failed".
	RetryOnFailure bool
	Timeout        time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
