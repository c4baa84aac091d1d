package config

import (
	"fmt"
	"log"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/davecgh/go-spew/spew"
)

// ConfigStruct is the glue for all configuration sections
type ConfigStruct struct {
	Common   Common   `toml:"common"`
	Database Database `toml:"database"`
	Queue    Queue    `toml:"queue"`
}

// Common is the data required for all services
type Common struct {
	DataDir string `toml:"data_dir"`
	Debug   bool   `toml:"debug"`
}

// Database is the data required to establish a PostgreSQL connection
type Database struct {
	DBname  string `toml:"dbname"`
	Host    string `toml:"host"`
	SSLmode string `toml:"sslmode"`
	User    string `toml:"user"`
}

// String returns a DSN with all information from the struct
func (d Database) String() string {
	return fmt.Sprintf("sslmode=%s host=%s user=%s dbname=%s", d.SSLmode, d.Host, d.User, d.DBname)
}

// Queue configures the execution dispatch broker
type Queue struct {
	URL  string `toml:"url"`
	Name string `toml:"name"`

	ConnectRetries    int `toml:"connect_retries"`
	RetryDelaySeconds int `toml:"retry_delay_seconds"`
}

func (q Queue) RetryDelay() time.Duration {
	return time.Duration(q.RetryDelaySeconds) * time.Second
}

// C represents the loaded config
var C ConfigStruct

func Load(path string) error {
	md, err := toml.DecodeFile(path, &C)
	if len(md.Undecoded()) > 0 {
		log.Println("NOTE: There were a few undecoded keys")
		spew.Dump(md.Undecoded())
	}
	return err
}
