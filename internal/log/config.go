package log

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type Format string

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatConsole Format = "console" // colourised text for interactive terminals
)

type Config struct {
	Level  Level  `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Format Format `mapstructure:"log_format" validate:"omitempty,oneof=text json console"`
}

func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Format: FormatText,
	}
}
