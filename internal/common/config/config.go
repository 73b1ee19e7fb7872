package config

import (
	"fmt"
	"time"
)

// Config is the complete builder-manager configuration.
type Config struct {
	App          AppConfig               `mapstructure:"app"`
	Server       ServerConfig            `mapstructure:"server"`
	Camunda      CamundaConfig           `mapstructure:"camunda"`
	Database     DatabaseConfig          `mapstructure:"database"`
	Messaging    MessagingConfig         `mapstructure:"messaging"`
	Builder      BuilderConfig           `mapstructure:"builder"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	Integrations IntegrationConfig       `mapstructure:"integrations"`
	Logging      LoggingConfig           `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ReadTimeout     int `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // milliseconds
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	// SubmittedProcessID is the BPMN process started for every submitted
	// application. Empty disables the start.
	SubmittedProcessID string `mapstructure:"submitted_process_id"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	JobsIndex string   `mapstructure:"jobs_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MessagingConfig struct {
	AMQP struct {
		Enabled    bool   `mapstructure:"enabled"`
		URL        string `mapstructure:"url"`
		Exchange   string `mapstructure:"exchange"`
		RoutingKey string `mapstructure:"routing_key"`
	} `mapstructure:"amqp"`
}

// BuilderConfig drives the wizard sessions and their collaborators.
type BuilderConfig struct {
	SessionTTL  int    `mapstructure:"session_ttl"`   // seconds
	JobCacheTTL int    `mapstructure:"job_cache_ttl"` // seconds
	StoreDriver string `mapstructure:"store_driver"`  // redis | memory
	// SubmissionMode selects the submission collaborator: "record" writes
	// the application row directly, "api" calls the remote service.
	SubmissionMode string `mapstructure:"submission_mode"`
	SubmissionAPI  struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"submission_api"`
	RegistryPath string `mapstructure:"registry_path"`
}

func (b BuilderConfig) SessionTTLDuration() time.Duration {
	return time.Duration(b.SessionTTL) * time.Second
}

func (b BuilderConfig) JobCacheTTLDuration() time.Duration {
	return time.Duration(b.JobCacheTTL) * time.Second
}

type WorkerConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	MaxJobsActive  int  `mapstructure:"max_jobs_active"`
	Timeout        int  `mapstructure:"timeout"` // milliseconds
	MaxRetries     int  `mapstructure:"max_retries"`
	// RetryOnFailure fails the job for an engine retry instead of completing
	// it with a failure status, for workers that support both.
	RetryOnFailure bool `mapstructure:"retry_on_failure"`
}

type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled            bool   `mapstructure:"enabled"`
			DefaultSMSSenderID string `mapstructure:"default_sms_sender_id"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
