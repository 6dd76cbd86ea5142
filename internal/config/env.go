package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Note: the master password is prompted at runtime and stored in memory - use GetMasterPasswordBytes()
type Config struct {
	Port               string `envconfig:"PORT" default:"8080"`
	DatabasePath       string `envconfig:"DATABASE_PATH" default:"friend-vault.db"`
	SolanaRPCURL       string `envconfig:"SOLANA_RPC_URL" default:"https://api.mainnet-beta.solana.com"`
	MinNativeReserve   string `envconfig:"MIN_NATIVE_RESERVE" default:"1"`
	RedisAddr          string `envconfig:"REDIS_ADDR"`
	LockExpirySeconds  int    `envconfig:"LOCK_EXPIRY_SECONDS" default:"30"`
	LogLevel           string `envconfig:"LOG_LEVEL" default:"info"`
	ScryptCostLog2     int    `envconfig:"SCRYPT_COST_LOG2" default:"18"`
	FiatCurrency       string `envconfig:"FIAT_CURRENCY"`
	CoinGeckoURL       string `envconfig:"COINGECKO_URL" default:"https://api.coingecko.com/api/v3"`
	MasterPasswordFile string `envconfig:"MASTER_PASSWORD_FILE"`
	// IdentityRegistration exposes POST /identities. Identities are normally
	// issued by the platform; enable only behind its authentication.
	IdentityRegistration bool `envconfig:"IDENTITY_REGISTRATION_ENABLED" default:"false"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c, err := Load()
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// Load reads and validates configuration without touching the global instance.
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if c.LockExpirySeconds <= 0 {
		return nil, errors.New("LOCK_EXPIRY_SECONDS must be greater than zero")
	}
	if c.ScryptCostLog2 < 10 || c.ScryptCostLog2 > 22 {
		return nil, errors.New("SCRYPT_COST_LOG2 must be between 10 and 22")
	}
	return c, nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetDatabasePath returns the SQLite database path
func GetDatabasePath() string {
	return Get().DatabasePath
}

// GetSolanaRPCURL returns Solana RPC URL from configuration
func GetSolanaRPCURL() string {
	return Get().SolanaRPCURL
}

// GetMinNativeReserve returns the native balance every vault must keep
func GetMinNativeReserve() string {
	return Get().MinNativeReserve
}

// GetRedisAddr returns the Redis address; empty means in-process locking
func GetRedisAddr() string {
	return Get().RedisAddr
}

// GetLockExpiry returns how long a request lock may be held
func GetLockExpiry() time.Duration {
	return time.Duration(Get().LockExpirySeconds) * time.Second
}

// GetLogLevel returns the log level name
func GetLogLevel() string {
	return Get().LogLevel
}

// GetScryptCostLog2 returns log2 of the scrypt N parameter
func GetScryptCostLog2() int {
	return Get().ScryptCostLog2
}

// GetFiatCurrency returns the fiat currency for valuations; empty disables them
func GetFiatCurrency() string {
	return Get().FiatCurrency
}

// GetIdentityRegistration reports whether identities may be registered over HTTP
func GetIdentityRegistration() bool {
	return Get().IdentityRegistration
}

// GetCoinGeckoURL returns the CoinGecko API base URL
func GetCoinGeckoURL() string {
	return Get().CoinGeckoURL
}

var passwordBytes []byte

// LoadMasterPassword fills the in-memory master password, from MASTER_PASSWORD_FILE
// when configured, otherwise by prompting on the terminal.
func LoadMasterPassword() error {
	if path := Get().MasterPasswordFile; path != "" {
		return ReadPasswordFile(path)
	}
	return PromptForPassword("Enter master password: ")
}

// ReadPasswordFile loads the master password from a file (container secrets).
// A single trailing newline is ignored.
func ReadPasswordFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read password file: %w", err)
	}
	defer clear(raw)

	trimmed := bytes.TrimRight(raw, "\r\n")
	return setPassword(trimmed)
}

// PromptForPassword prompts the user for the master password in the terminal.
// The password is read without echoing (hidden input) and stored in memory.
// Call this at startup before the server begins handling requests.
func PromptForPassword(prompt string) error {
	raw, err := ReadPassword(prompt)
	if err != nil {
		return err
	}
	defer clear(raw)
	return setPassword(raw)
}

// ReadPassword reads one hidden line from the terminal.
// Caller must zero the returned slice after use.
func ReadPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	return raw, nil
}

func setPassword(raw []byte) error {
	if len(raw) == 0 {
		return errors.New("password cannot be empty")
	}
	clear(passwordBytes)
	passwordBytes = make([]byte, len(raw))
	copy(passwordBytes, raw)
	return nil
}

// GetMasterPasswordBytes returns the password stored in memory (from LoadMasterPassword).
// Returns an error if the password was not set.
// Caller must zero the returned slice after use for security.
func GetMasterPasswordBytes() ([]byte, error) {
	if len(passwordBytes) == 0 {
		return nil, errors.New("password not set: call LoadMasterPassword at startup")
	}
	out := make([]byte, len(passwordBytes))
	copy(out, passwordBytes)
	return out, nil
}
