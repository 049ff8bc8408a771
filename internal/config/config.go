package config

type AppConfig struct {
	APIPort string `env:"PORT,required" envDefault:"12222"`
	APIKey  string `env:"API_KEY,required"`
}

type StoreConfig struct {
	Host            string `env:"WARMUP_POSTGRES_HOST,required"`
	Port            string `env:"WARMUP_POSTGRES_PORT,required"`
	User            string `env:"WARMUP_POSTGRES_USER,required"`
	DBName          string `env:"WARMUP_POSTGRES_DB_NAME,required"`
	Password        string `env:"WARMUP_POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"WARMUP_POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"WARMUP_POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"WARMUP_POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"WARMUP_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"WARMUP_POSTGRES_SSL_MODE" envDefault:"require"`
}

// WarmupConfig holds the tunables spec.md §6 calls out: the random delay
// window between one lead's cycle and the next, the IMAP subscription's wait
// budget and fallback poll interval, and the reply pacing window used
// when a lead account composes a reply.
type WarmupConfig struct {
	MinDelayMs           int `env:"MIN_DELAY_MS" envDefault:"180000"`
	MaxDelayMs           int `env:"MAX_DELAY_MS" envDefault:"300000"`
	ImapWaitTimeoutMs    int `env:"IMAP_WAIT_TIMEOUT_MS" envDefault:"600000"`
	ImapPollIntervalMs   int `env:"IMAP_POLL_INTERVAL_MS" envDefault:"30000"`
	ReplyHumanDelayMinMs int `env:"REPLY_HUMAN_DELAY_MIN_MS" envDefault:"180000"`
	ReplyHumanDelayMaxMs int `env:"REPLY_HUMAN_DELAY_MAX_MS" envDefault:"300000"`
	MaxReconnectAttempts int `env:"IMAP_MAX_RECONNECT_ATTEMPTS" envDefault:"5"`
	ReconnectBackoffMs   int `env:"IMAP_RECONNECT_BACKOFF_MS" envDefault:"5000"`
	SkipDelaySeconds     int `env:"SKIP_DELAY_SECONDS" envDefault:"10"`
}

// CredentialsConfig carries the encryption key consumed only by the
// out-of-scope account-CRUD collaborator. Declared here because the
// core's config loader is one struct; nothing in this module reads it.
type CredentialsConfig struct {
	EncryptionKey string `env:"CREDENTIALS_ENCRYPTION_KEY"`
}

type TextGenConfig struct {
	Endpoint string `env:"TEXTGEN_ENDPOINT"`
	APIKey   string `env:"TEXTGEN_API_KEY"`
	Static   bool   `env:"TEXTGEN_STATIC" envDefault:"true"`
}

type EventsConfig struct {
	RabbitMQURL string `env:"RABBITMQ_URL"`
}

type CronConfig struct {
	StaleSessionCensusSchedule string `env:"CRON_STALE_SESSION_CENSUS" envDefault:"0 */15 * * * *"`
	LeaderElectionEnabled      bool   `env:"CRON_LEADER_ELECTION_ENABLED" envDefault:"false"`
	LeaderElectionNamespace    string `env:"CRON_LEADER_ELECTION_NAMESPACE" envDefault:"default"`
	LeaderElectionLockName     string `env:"CRON_LEADER_ELECTION_LOCK_NAME" envDefault:"warmupd-cron-leader"`
}
