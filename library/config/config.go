package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/digital-library/pkg/auth"
	"github.com/Astemirdum/digital-library/pkg/kafka"
	"github.com/Astemirdum/digital-library/pkg/logger"
	"github.com/Astemirdum/digital-library/pkg/postgres"
	"github.com/Astemirdum/digital-library/pkg/redis"
	"github.com/kelseyhightower/envconfig"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"HTTP_PORT" default:"5000"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE"`
}

// Lending holds the loan period and the daily overdue fine.
type Lending struct {
	LoanPeriod time.Duration `yaml:"loanPeriod" envconfig:"LOAN_PERIOD" default:"336h"`
	FinePerDay float64       `yaml:"finePerDay" envconfig:"FINE_PER_DAY" default:"1.00"`
}

// Admin is the account ensured on startup.
type Admin struct {
	Email    string `yaml:"email" envconfig:"ADMIN_EMAIL" default:"admin@library.com"`
	Password string `yaml:"password" envconfig:"ADMIN_PASSWORD" default:"admin123" json:"-"`
	Name     string `yaml:"name" envconfig:"ADMIN_NAME" default:"Library Admin"`
}

type Config struct {
	Server   HTTPServer   `yaml:"server"`
	Database postgres.DB  `yaml:"db"`
	Auth     auth.Config  `yaml:"auth"`
	Lending  Lending      `yaml:"lending"`
	Admin    Admin        `yaml:"admin"`
	Kafka    kafka.Config `yaml:"kafka"`
	Redis    redis.Config `yaml:"redis"`
	Log      logger.Log   `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment. Options set fallbacks for
// fields without a default; the environment still wins.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = &config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
