package redis

import (
	"testing"

	"github.com/mossy-p/peer-matchmaking/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Connect_Unreachable(t *testing.T) {
	// Port 1 refuses connections, so the ping fails fast
	err := Connect(config.RedisConfig{Host: "127.0.0.1", Port: "1"})
	require.Error(t, err)

	// Callers nil-check GetClient to decide whether Redis is usable;
	// a failed connect must not leave a half-initialized client behind
	assert.Nil(t, GetClient())
}
