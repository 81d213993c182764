package main

import "time"

type Config struct {
	Host           string        `env:"HOST,default=localhost"`
	Port           int           `env:"PORT,default=8080"`
	LogLevel       string        `env:"LOG_LEVEL,default=info"`
	BadgerFilepath string        `env:"BADGER_FILEPATH,required=true"`
	SigningKey     string        `env:"REALTIME_SIGNING_KEY,required=true"`
	GrantTTL       time.Duration `env:"GRANT_TTL,default=1h"`
	PushTimeout    time.Duration `env:"PUSH_TIMEOUT,default=5s"`
}
