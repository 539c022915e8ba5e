package main

import (
	"fmt"
	"time"

	"liseplanning/internal/planning"
	"liseplanning/internal/scrapers/lise"
)

type PortalConfig struct {
	BaseUrl           string  `json:"base_url"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

type Config struct {
	Port                int          `json:"port"`
	Portal              PortalConfig `json:"portal"`
	DescriptionLanguage string       `json:"description_language"`
}

func (c Config) sessionOptions() lise.SessionOptions {
	return lise.SessionOptions{
		BaseUrl:           c.Portal.BaseUrl,
		Timeout:           time.Duration(c.Portal.TimeoutSeconds) * time.Second,
		RequestsPerSecond: c.Portal.RequestsPerSecond,
	}
}

func (c Config) validate() (planning.Language, error) {
	if c.Port <= 0 || c.Port > 65535 {
		return 0, fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Portal.TimeoutSeconds < 0 {
		return 0, fmt.Errorf("invalid portal timeout %d", c.Portal.TimeoutSeconds)
	}
	return planning.ParseLanguage(c.DescriptionLanguage)
}
