package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 5*time.Minute, cfg.Agenda.CacheTTL)
	assert.Equal(t, "monday", cfg.Agenda.WeekStart)
	assert.Equal(t, "dev_secret", cfg.Agenda.FeedSecret, "feed secret falls back to the JWT secret")
	assert.Equal(t, 90*24*time.Hour, cfg.Agenda.FeedTTL)
	assert.Equal(t, "06:00", cfg.Layout.DayWindowStart)
	assert.InDelta(t, 1.5, cfg.Layout.PixelsPerMinute, 1e-9)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("AGENDA_WEEK_START", " Sunday ")
	v.Set("AGENDA_CACHE_TTL", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	v.Set("AGENDA_FEED_SECRET", "feeds")

	cfg := fromViper(v)
	assert.Equal(t, "sunday", cfg.Agenda.WeekStart)
	assert.Equal(t, 5*time.Minute, cfg.Agenda.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "feeds", cfg.Agenda.FeedSecret)
}
