package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

// Command действие над схемой
type Command string

const (
	CommandUp     Command = "up"
	CommandDown   Command = "down"
	CommandStatus Command = "status"
)

// Run применяет встроенные миграции через goose
func Run(db *sql.DB, command Command) error {
	goose.SetBaseFS(FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	switch command {
	case CommandUp:
		return goose.Up(db, ".")
	case CommandDown:
		return goose.Down(db, ".")
	case CommandStatus:
		return goose.Status(db, ".")
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
}
