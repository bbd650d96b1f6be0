package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	got := dsn(Config{User: "health", Pass: "s3cret", Host: "db", Port: "3306", Name: "healthlog"})
	assert.Equal(t,
		"health:s3cret@tcp(db:3306)/healthlog?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
		got)
}

func TestDSNOmitsEmptyPassword(t *testing.T) {
	got := dsn(Config{User: "health", Host: "db", Port: "3306", Name: "healthlog"})
	assert.True(t, strings.HasPrefix(got, "health@tcp("), got)
}

// The repositories treat RowsAffected == 0 as "row missing or not owned".
// Without found-rows semantics a no-op update to an existing row would
// also report zero and turn into a spurious not-found.
func TestDSNUsesFoundRowsSemantics(t *testing.T) {
	got := dsn(Config{User: "health", Host: "db", Port: "3306", Name: "healthlog"})
	assert.Contains(t, got, "clientFoundRows=true")
}
