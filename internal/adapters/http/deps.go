package http

import (
	"github.com/nats-io/nats.go"

	"github.com/Tom-Shanks/FireSight-AI/internal/adapters/postgres"
	"github.com/Tom-Shanks/FireSight-AI/internal/adapters/valkey"
	"github.com/Tom-Shanks/FireSight-AI/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Spread     *usecases.SpreadService
	Risk       *usecases.RiskService
	Damage     *usecases.DamageService
	Detections *usecases.DetectionService
	NATS       *nats.Conn
	DB         *postgres.DB
	Cache      *valkey.Cache
}
