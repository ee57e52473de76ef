package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortID(t *testing.T) {
	assert.Equal(t, "short", ShortID("short"))
	assert.Equal(t, "123456789012345", ShortID("123456789012345"))
	assert.Equal(t, "abcdef...uvwxyz", ShortID("abcdefghijklmnopqrstuvwxyz"))
}

func TestParseDurationOrDefault(t *testing.T) {
	assert.Equal(t, 30*time.Second, ParseDurationOrDefault("", 30*time.Second))
	assert.Equal(t, 30*time.Second, ParseDurationOrDefault("nonsense", 30*time.Second))
	assert.Equal(t, 30*time.Second, ParseDurationOrDefault("-5s", 30*time.Second))
	assert.Equal(t, 90*time.Second, ParseDurationOrDefault("1m30s", 30*time.Second))
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	type payload struct {
		Name  string   `json:"name"`
		Items []string `json:"items"`
	}

	in := payload{Name: "gw", Items: []string{"a", "b"}}
	data, err := Marshal(in)
	require.NoError(t, err)

	var out payload
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestUnmarshalConfig(t *testing.T) {
	type redisConfig struct {
		Host string `json:"host"`
		Port int    `json:"port"`
	}

	raw := map[string]interface{}{"host": "localhost", "port": 6379}

	var cfg redisConfig
	require.NoError(t, UnmarshalConfig(raw, &cfg))
	assert.Equal(t, redisConfig{Host: "localhost", Port: 6379}, cfg)
}

func TestUnmarshalConfigNil(t *testing.T) {
	var cfg struct{}
	assert.Error(t, UnmarshalConfig(nil, &cfg))
}

func TestBytesToString(t *testing.T) {
	assert.Equal(t, "", BytesToString(nil))
	assert.Equal(t, "hello", BytesToString([]byte("hello")))
}
