package app

import (
	"github.com/sahanw/arogya-backend/internal/clients/classifier"
	"github.com/sahanw/arogya-backend/internal/clients/rediscache"
	"github.com/sahanw/arogya-backend/internal/clients/textgen"
	"github.com/sahanw/arogya-backend/internal/platform/logger"
)

// Clients holds the external collaborators. Each is optional: a failed
// init logs a warning and the dependent feature degrades instead of the
// whole process refusing to start.
type Clients struct {
	Classifier classifier.Client
	TextGen    textgen.Client
	Cache      rediscache.Cache
}

func wireClients(log *logger.Logger) Clients {
	log.Info("Wiring clients...")
	var clients Clients

	if c, err := classifier.NewClient(log); err != nil {
		log.Warn("Stage classifier unavailable, falling back to local stage estimates", "error", err)
	} else {
		clients.Classifier = c
	}

	if c, err := textgen.NewClient(log); err != nil {
		log.Warn("Text generation unavailable, plans will use fallback phases", "error", err)
	} else {
		clients.TextGen = c
	}

	if c, err := rediscache.New(log); err != nil {
		log.Warn("Redis cache unavailable, scoring will be uncached", "error", err)
	} else {
		clients.Cache = c
	}

	return clients
}
