package config

import (
	"encoding/json"
	"os"
)

type Config struct {
	Server       ServerConfig       `json:"server"`
	Database     DatabaseConfig     `json:"database"`
	Redis        RedisConfig        `json:"redis"`
	RabbitMQ     RabbitMQConfig     `json:"rabbitmq"`
	Cache        CacheConfig        `json:"cache"`
	Notification NotificationConfig `json:"notification"`
}

type ServerConfig struct {
	Port string `json:"port"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type RabbitMQConfig struct {
	URL string `json:"url"`
}

type CacheConfig struct {
	TTLSeconds int `json:"ttl_seconds"`
}

type NotificationConfig struct {
	Workers   int        `json:"workers"`
	QueueSize int        `json:"queue_size"`
	SMTP      SMTPConfig `json:"smtp"`
	SMS       SMSConfig  `json:"sms"`
}

type SMTPConfig struct {
	Addr     string `json:"addr"`
	Host     string `json:"host"`
	From     string `json:"from"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type SMSConfig struct {
	APIURL   string `json:"api_url"`
	APIKey   string `json:"api_key"`
	SenderID string `json:"sender_id"`
}

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	config.applyEnv()
	return &config, nil
}

// applyEnv lets secrets and per-environment endpoints override the
// checked-in config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		c.RabbitMQ.URL = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.Notification.SMTP.Password = v
	}
	if v := os.Getenv("SMS_API_KEY"); v != "" {
		c.Notification.SMS.APIKey = v
	}
}
