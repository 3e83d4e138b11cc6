package app

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/admin-security/internal/config"
	"github.com/jwalitptl/admin-security/internal/policy"
	"github.com/jwalitptl/admin-security/pkg/logger"
	"github.com/jwalitptl/admin-security/pkg/messaging"
)

func TestOpenRepositoriesInMemory(t *testing.T) {
	repos, err := OpenRepositories(config.DatabaseConfig{}, logger.Nop())
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	require.NoError(t, repos.Parameters.Update(ctx, "password_minimum_length", "8"))
	p, err := repos.Parameters.FindByKey(ctx, "password_minimum_length")
	require.NoError(t, err)
	assert.Equal(t, "8", p.Value)
	assert.Nil(t, repos.Ping)
}

func TestOpenBrokerInMemory(t *testing.T) {
	broker, err := OpenBroker(config.RedisConfig{}, logger.Nop())
	require.NoError(t, err)
	defer broker.Close()
	assert.IsType(t, &messaging.MemoryBroker{}, broker)
}

func TestNewEngine(t *testing.T) {
	e := NewEngine()
	snap := policy.NewSnapshot(map[policy.Key]string{
		policy.KeyFormatRequired:      "true",
		policy.KeyEncryptionEnabled:   "true",
		policy.KeyEncryptionAlgorithm: "SHA-256",
	})

	assert.False(t, e.CheckFormat("lowercase", snap))
	encoded, err := e.EncodePassword(snap, "abc")
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", encoded)
}

func TestNewLoggerInstallsGlobal(t *testing.T) {
	NewLogger(config.LogConfig{Level: "debug", JSON: true}, "test")
	assert.Equal(t, zerolog.DebugLevel, log.Logger.GetLevel())
}
