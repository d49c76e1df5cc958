// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T, yamlDoc string) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v, defaultConfig())
	if yamlDoc != "" {
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(strings.NewReader(yamlDoc)))
	}
	return v
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, validateConfig(defaultConfig()))
}

func TestLoadConfig_Defaults(t *testing.T) {
	got, err := loadConfig(newTestViper(t, ""))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), got)
}

func TestLoadConfig_File(t *testing.T) {
	got, err := loadConfig(newTestViper(t, `
db_path: /tmp/radar.db
categories: [cs.CL]
enrich:
  timeout: 30s
  concurrency: 3
  extract: true
  ai:
    model: test-model
feed:
  default_limit: 10
  timezone: Europe/Berlin
server:
  addr: ":9090"
`))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/radar.db", got.DBPath)
	assert.Equal(t, []string{"cs.CL"}, got.Categories)
	assert.Equal(t, 30*time.Second, got.Enrich.Timeout)
	assert.Equal(t, 3, got.Enrich.Concurrency)
	assert.True(t, got.Enrich.Extract)
	assert.True(t, got.Enrich.Readme, "unset keys keep their defaults")
	assert.Equal(t, "test-model", got.Enrich.AI.Model)
	assert.Equal(t, 10, got.Feed.DefaultLimit)
	assert.Equal(t, ":9090", got.Server.Addr)
	assert.Equal(t, defaultConfig().Scoring, got.Scoring)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := loadConfig(newTestViper(t, `
enrich:
  concurrency: 9
feed:
  default_limit: 500
  timezone: Mars/Olympus
scoring:
  weights:
    recency: 0.9
`))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "enrich.concurrency")
	assert.Contains(t, msg, "feed.default_limit")
	assert.Contains(t, msg, "feed.timezone")
	assert.Contains(t, msg, "weights must sum to 1")
}

func TestValidateConfig_EmptyDBPath(t *testing.T) {
	c := defaultConfig()
	c.DBPath = ""
	assert.ErrorContains(t, validateConfig(c), "db_path")
}

func TestLocation(t *testing.T) {
	c := defaultConfig()
	loc, err := location(c.Feed)
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	c.Feed.Timezone = "Asia/Tokyo"
	loc, err = location(c.Feed)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())
}

func TestWriteOutput(t *testing.T) {
	v := map[string]int{"processed": 2}

	var js bytes.Buffer
	require.NoError(t, writeOutput(&js, "json", v))
	assert.JSONEq(t, `{"processed": 2}`, js.String())

	var ym bytes.Buffer
	require.NoError(t, writeOutput(&ym, "yaml", v))
	assert.Equal(t, "processed: 2\n", ym.String())

	assert.Error(t, writeOutput(&js, "xml", v))
}
