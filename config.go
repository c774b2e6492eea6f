package smpplib

import (
	"time"

	"github.com/caarlos0/env/v7"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/niksabaldun/smpplib/pdu"
	"github.com/niksabaldun/smpplib/session"
)

// BindMode mirrors session.BindMode at the public API boundary, so
// callers configuring a Client never need to import the session
// package directly.
type BindMode = session.BindMode

const (
	BindTX  = session.BindTX
	BindRX  = session.BindRX
	BindTRX = session.BindTRX
)

// Config is the full set of parameters an ESME client needs (spec.md
// §6). Every timing field has a default supplied by DefaultConfig (and
// by the envDefault tags for ConfigFromEnv); Validate only checks the
// validate tags and fills in nothing. This follows the flat, tag-annotated config
// struct convention the rest of the pack's services use for
// environment-driven configuration.
type Config struct {
	SmscHost string `env:"SMPP_SMSC_HOST" validate:"required"`
	SmscPort int    `env:"SMPP_SMSC_PORT" envDefault:"2775" validate:"required,gt=0,lt=65536"`

	SystemID   string `env:"SMPP_SYSTEM_ID" validate:"required"`
	Password   string `env:"SMPP_PASSWORD"`
	SystemType string `env:"SMPP_SYSTEM_TYPE"`

	BindMode         BindMode
	InterfaceVersion byte
	AddrTON          pdu.TON
	AddrNPI          pdu.NPI
	AddressRange     string `env:"SMPP_ADDRESS_RANGE"`

	EnquireLinkInterval time.Duration `env:"SMPP_ENQUIRE_LINK_INTERVAL" envDefault:"55s"`
	RequestTimeout      time.Duration `env:"SMPP_REQUEST_TIMEOUT" envDefault:"20s"`
	BindTimeout         time.Duration `env:"SMPP_BIND_TIMEOUT" envDefault:"15s"`
	ReconnectInitial    time.Duration `env:"SMPP_RECONNECT_INITIAL" envDefault:"1s"`
	ReconnectMax        time.Duration `env:"SMPP_RECONNECT_MAX" envDefault:"60s"`
	ThrottleInitial     time.Duration `env:"SMPP_THROTTLE_INITIAL" envDefault:"1s"`
	ThrottleMax         time.Duration `env:"SMPP_THROTTLE_MAX" envDefault:"30s"`
	MaxInFlight         int           `env:"SMPP_MAX_IN_FLIGHT" envDefault:"10" validate:"gt=0"`
	MaxPduSize          uint32        `env:"SMPP_MAX_PDU_SIZE" envDefault:"262144" validate:"gt=0"`

	// DefaultEncoding is the gsm7.Encoding SubmitSM falls back to when
	// the caller doesn't request a specific one (spec.md §6).
	DefaultEncoding int

	ClientID string `env:"SMPP_CLIENT_ID"`
}

// DefaultConfig returns a Config with every field at the value
// spec.md §6 names as the default, and a freshly generated ClientID.
func DefaultConfig() Config {
	return Config{
		SmscPort:            2775,
		BindMode:            BindTRX,
		InterfaceVersion:    pdu.InterfaceVersion,
		AddrTON:             pdu.TONUnknown,
		AddrNPI:             pdu.NPIUnknown,
		EnquireLinkInterval: 55 * time.Second,
		RequestTimeout:      20 * time.Second,
		BindTimeout:         15 * time.Second,
		ReconnectInitial:    time.Second,
		ReconnectMax:        60 * time.Second,
		ThrottleInitial:     time.Second,
		ThrottleMax:         30 * time.Second,
		MaxInFlight:         10,
		MaxPduSize:          256 * 1024,
		ClientID:            uuid.NewString(),
	}
}

// Option customizes a Config built by NewConfig, the functional-option
// idiom used throughout the pack's service constructors.
type Option func(*Config)

// WithBind sets the host/port/credentials/mode bind parameters.
func WithBind(host string, port int, systemID, password string, mode BindMode) Option {
	return func(c *Config) {
		c.SmscHost = host
		c.SmscPort = port
		c.SystemID = systemID
		c.Password = password
		c.BindMode = mode
	}
}

// WithAddress sets the ESME's own TON/NPI/address_range.
func WithAddress(ton pdu.TON, npi pdu.NPI, addressRange string) Option {
	return func(c *Config) {
		c.AddrTON = ton
		c.AddrNPI = npi
		c.AddressRange = addressRange
	}
}

// WithMaxInFlight overrides the window's max_in_flight capacity.
func WithMaxInFlight(n int) Option {
	return func(c *Config) { c.MaxInFlight = n }
}

// WithClientID overrides the generated client_id.
func WithClientID(id string) Option {
	return func(c *Config) { c.ClientID = id }
}

// NewConfig builds a Config from DefaultConfig plus opts.
func NewConfig(opts ...Option) Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ConfigFromEnv loads a Config from the process environment (the
// SMPP_* variables documented on each field), starting from
// DefaultConfig's values as fallback defaults.
func ConfigFromEnv() (Config, error) {
	c := DefaultConfig()
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	if c.ClientID == "" {
		c.ClientID = uuid.NewString()
	}
	return c, nil
}

var validate = validator.New()

// Validate checks the struct-tag invariants declared on Config.
func (c Config) Validate() error {
	return validate.Struct(c)
}

func (c Config) toSessionConfig() session.Config {
	return session.Config{
		Host:                c.SmscHost,
		Port:                c.SmscPort,
		SystemID:            c.SystemID,
		Password:            c.Password,
		SystemType:          c.SystemType,
		BindMode:            c.BindMode,
		InterfaceVersion:    c.InterfaceVersion,
		AddrTON:             c.AddrTON,
		AddrNPI:             c.AddrNPI,
		AddressRange:        c.AddressRange,
		EnquireLinkInterval: c.EnquireLinkInterval,
		RequestTimeout:      c.RequestTimeout,
		BindTimeout:         c.BindTimeout,
		ReconnectInitial:    c.ReconnectInitial,
		ReconnectMax:        c.ReconnectMax,
		ThrottleInitial:     c.ThrottleInitial,
		ThrottleMax:         c.ThrottleMax,
		MaxInFlight:         c.MaxInFlight,
		MaxPduSize:          c.MaxPduSize,
		ClientID:            c.ClientID,
	}
}
