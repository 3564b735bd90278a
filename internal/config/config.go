package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string         `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Presence PresenceConfig `yaml:"presence"`
	Peer     PeerConfig     `yaml:"peer"`
	WebRTC   WebRTCConfig   `yaml:"webrtc"`
}

type HTTPConfig struct {
	Address     string `yaml:"address" env:"HTTP_ADDRESS" env-default:""`
	TLSCertFile string `yaml:"tls_cert_file" env:"TLS_CERT_FILE"`
	TLSKeyFile  string `yaml:"tls_key_file" env:"TLS_KEY_FILE"`
}

type PresenceConfig struct {
	// GraceWindow is how long a disconnected participant may stay absent
	// before it is considered truly gone.
	GraceWindow time.Duration `yaml:"grace_window" env:"PRESENCE_GRACE_WINDOW"`
}

// PeerConfig points clients at the external peer-connection broker. The
// value is passed through to clients, never used by the server itself.
type PeerConfig struct {
	Host string `yaml:"host" env:"PEER_HOST_URL" env-default:"localhost"`
}

type WebRTCConfig struct {
	STUNServers  []string `yaml:"stun_servers" env:"STUN_SERVERS"`
	TURNServer   string   `yaml:"turn_server" env:"TURN_SERVER_URL"`
	TURNUsername string   `yaml:"turn_username" env:"TURN_USERNAME"`
	TURNPassword string   `yaml:"turn_password" env:"TURN_PASSWORD"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	cfg.setDefaults()

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}

func (c *Config) setDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":3000"
	}
	if c.Presence.GraceWindow <= 0 {
		c.Presence.GraceWindow = 15 * time.Second
	}
	if len(c.WebRTC.STUNServers) == 0 {
		c.WebRTC.STUNServers = []string{
			"stun:stun.l.google.com:19302",
			"stun:stun1.l.google.com:19302",
		}
	}
}
