package database

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDSN(t *testing.T) {
	dsn, err := normalizeDSN("shop:secret@tcp(127.0.0.1:3306)/axoshard")
	require.NoError(t, err)

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.True(t, parsed.ParseTime)
	assert.True(t, parsed.ClientFoundRows)
	assert.Equal(t, "axoshard", parsed.DBName)
	assert.Equal(t, "127.0.0.1:3306", parsed.Addr)
}

func TestNormalizeDSNRejectsGarbage(t *testing.T) {
	_, err := normalizeDSN("not a dsn")
	assert.Error(t, err)
}
