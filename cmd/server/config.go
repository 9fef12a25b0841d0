package main

import "time"

type Config struct {
	Host string `env:"HOST,default=localhost"`
	Port int    `env:"PORT,default=8080"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=info"`

	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	PresenceBufferSize   int           `env:"PRESENCE_BUFFER_SIZE,default=256"`
	MaxFrameBytes        int           `env:"MAX_FRAME_BYTES,default=4096"`
	MaxContentLength     int           `env:"MAX_CONTENT_LENGTH,default=500"`
	SearchLimit          int           `env:"SEARCH_LIMIT,default=20"`
	AllowedOrigin        string        `env:"ALLOWED_ORIGIN"`
	PersistTimeout       time.Duration `env:"PERSIST_TIMEOUT,default=5s"`
	DeliveryTimeout      time.Duration `env:"DELIVERY_TIMEOUT,default=1s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	HeartbeatInterval    time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`
	StorageGCInterval    time.Duration `env:"STORAGE_GC_INTERVAL,default=5m"`
	CensoredMask         string        `env:"CENSORED_MASK,default=*"`
}
