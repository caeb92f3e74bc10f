package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-combat/internal/config"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) TestDefaults() {
	cfg, err := config.Load()
	s.Require().NoError(err)

	s.Equal(50051, cfg.GRPCPort)
	s.Equal(50, cfg.MaxConcurrent)
	s.Equal(30*time.Second, cfg.JobTimeout)
	s.Equal(20*time.Second, cfg.IntentTimeout)
	s.Equal(3, cfg.AIConcurrency)
	s.Equal(5, cfg.BatchMin)
	s.Equal(100, cfg.BatchMax)
	s.Equal(200, cfg.BatchDivisor)
	s.Equal(500, cfg.BackpressureThreshold)
	s.Equal(int64(10), cfg.CheckpointEvery)
	s.Equal(uint(3), cfg.RetryMaxTries)
	s.Zero(cfg.ResultRetention)
	s.Empty(cfg.OTELEndpoint)
	s.Equal(slog.LevelInfo, cfg.SlogLevel())
}

func (s *ConfigTestSuite) TestOverrides() {
	s.T().Setenv("RPG_COMBAT_GRPC_PORT", "6000")
	s.T().Setenv("RPG_COMBAT_INTENT_TIMEOUT", "5s")
	s.T().Setenv("RPG_COMBAT_RESULT_RETENTION", "10m")
	s.T().Setenv("RPG_COMBAT_LOG_LEVEL", "DEBUG")

	cfg, err := config.Load()
	s.Require().NoError(err)
	s.Equal(6000, cfg.GRPCPort)
	s.Equal(5*time.Second, cfg.IntentTimeout)
	s.Equal(10*time.Minute, cfg.ResultRetention)
	s.Equal(slog.LevelDebug, cfg.SlogLevel())
}

func (s *ConfigTestSuite) TestInvalid() {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unparseable duration", key: "RPG_COMBAT_JOB_TIMEOUT", value: "soon"},
		{name: "port out of range", key: "RPG_COMBAT_GRPC_PORT", value: "70000"},
		{name: "batch max below min", key: "RPG_COMBAT_BATCH_MAX", value: "2"},
		{name: "unknown log level", key: "RPG_COMBAT_LOG_LEVEL", value: "loud"},
		{name: "zero ai concurrency", key: "RPG_COMBAT_AI_CONCURRENCY", value: "0"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.T().Setenv(tc.key, tc.value)
			_, err := config.Load()
			s.Require().Error(err)
			s.True(errors.IsInvalidArgument(err))
		})
	}
}
