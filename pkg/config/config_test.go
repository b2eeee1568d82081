package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ReadsPrefixedEnvironment(t *testing.T) {
	t.Setenv("ENV_FILE", t.TempDir()+"/missing.env")
	t.Setenv("TESTSVC_SERVICE_PORT", "9090")
	t.Setenv("TESTSVC_KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("TESTSVC_LOCK_TIMEOUT", "750ms")
	t.Setenv("TESTSVC_MAX_STAY_NIGHTS", "-3")

	v, err := Load("TESTSVC")
	require.NoError(t, err)

	assert.Equal(t, ":9090", GetServicePort(v, "SERVICE_PORT"))
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, LoadKafkaConfig(v).Brokers)
	assert.Equal(t, 750*time.Millisecond, GetDuration(v, "LOCK_TIMEOUT", time.Second))
	assert.Equal(t, 30, GetInt(v, "MAX_STAY_NIGHTS", 30))
	assert.Equal(t, "development", GetAppEnv(v))
}

func TestGetDuration_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("ENV_FILE", t.TempDir()+"/missing.env")
	t.Setenv("TESTSVC_LOCK_TIMEOUT", "soon")

	v, err := Load("TESTSVC")
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, GetDuration(v, "LOCK_TIMEOUT", 3*time.Second))
}
