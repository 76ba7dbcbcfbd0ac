package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
	"github.com/Tom-Shanks/FireSight-AI/internal/core/usecases"
)

var validate = validator.New()

// spreadRequestBody is the JSON body of POST /v1/simulate/spread.
type spreadRequestBody struct {
	Ignitions        []domain.IgnitionPoint `json:"ignitions" validate:"required,min=1,dive"`
	SimulationHours  int                    `json:"simulation_hours" validate:"omitempty,min=1,max=72"`
	ResolutionMeters int                    `json:"resolution_meters" validate:"omitempty,min=100,max=1000"`
	Seed             *uint64                `json:"seed"`
}

// SimulateSpreadHandler runs a fire-spread simulation and returns
// time-keyed perimeters, intensity grids, and run metadata.
func SimulateSpreadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body spreadRequestBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid JSON body: "+err.Error())
		}
		if err := validate.Struct(&body); err != nil {
			return errUnprocessable(c, err.Error())
		}

		res, err := deps.Spread.Simulate(c.UserContext(), usecases.SpreadRequest{
			Ignitions:        body.Ignitions,
			SimulationHours:  body.SimulationHours,
			ResolutionMeters: body.ResolutionMeters,
			Seed:             body.Seed,
		})
		if err != nil {
			if errors.Is(err, usecases.ErrInvalidRequest) {
				return errUnprocessable(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		return c.JSON(res)
	}
}

// riskRequestBody is the JSON body of POST /v1/predict/risk.
type riskRequestBody struct {
	Location domain.GeoPoint `json:"location" validate:"required"`
	RadiusKm float64         `json:"radius_km" validate:"omitempty,gt=0,lte=100"`
}

// PredictRiskHandler scores wildfire risk at a location.
func PredictRiskHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body riskRequestBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid JSON body: "+err.Error())
		}
		if err := validate.Struct(&body); err != nil {
			return errUnprocessable(c, err.Error())
		}

		assessment, err := deps.Risk.Predict(c.UserContext(), body.Location, body.RadiusKm)
		if err != nil {
			if errors.Is(err, usecases.ErrInvalidRequest) {
				return errUnprocessable(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		return c.JSON(assessment)
	}
}

// damageRequestBody is the JSON body of POST /v1/assess/damage.
type damageRequestBody struct {
	FireArea     []domain.GeoPoint `json:"fire_area" validate:"required,min=3,dive"`
	PreFireDate  string            `json:"pre_fire_date" validate:"required"`
	PostFireDate string            `json:"post_fire_date" validate:"required"`
}

// AssessDamageHandler estimates post-fire damage for a burned perimeter.
func AssessDamageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body damageRequestBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid JSON body: "+err.Error())
		}
		if err := validate.Struct(&body); err != nil {
			return errUnprocessable(c, err.Error())
		}

		report, err := deps.Damage.Assess(c.UserContext(), body.FireArea, body.PreFireDate, body.PostFireDate)
		if err != nil {
			if errors.Is(err, usecases.ErrInvalidRequest) {
				return errUnprocessable(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		return c.JSON(report)
	}
}

// RecentFiresHandler lists recent satellite fire detections. The window is
// given either as ?hours=[1,168] or ?days=[1,30]; days wins when both are set.
func RecentFiresHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hours := c.QueryInt("hours", 24)
		if hours < 1 || hours > 168 {
			return errBadRequest(c, "hours must be between 1 and 168")
		}
		if days := c.QueryInt("days", 0); days != 0 {
			if days < 1 || days > 30 {
				return errBadRequest(c, "days must be between 1 and 30")
			}
			hours = days * 24
		}

		limit := c.QueryInt("limit", 200)
		offset := c.QueryInt("offset", 0)
		if limit <= 0 || limit > 1000 {
			limit = 200
		}
		if offset < 0 {
			offset = 0
		}

		fires, err := deps.Detections.RecentFires(c.UserContext(), hours, 1000)
		if err != nil {
			return errInternal(c, err.Error())
		}

		total := len(fires)
		if offset >= total {
			fires = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			fires = fires[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: fires, Pagination: pg})
	}
}

// HighRiskAreasHandler lists the areas with the highest current risk scores,
// optionally filtered to scores at or above ?threshold=[0,1].
func HighRiskAreasHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 20)
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		threshold := c.QueryFloat("threshold", 0)
		if threshold < 0 || threshold > 1 {
			return errBadRequest(c, "threshold must be between 0 and 1")
		}

		areas, err := deps.Detections.HighRiskAreas(c.UserContext(), limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		if threshold > 0 {
			filtered := areas[:0]
			for _, a := range areas {
				if a.RiskScore >= threshold {
					filtered = append(filtered, a)
				}
			}
			areas = filtered
		}

		return c.JSON(areas)
	}
}

// DataStats holds row counts from the detection tables.
type DataStats struct {
	Detections  int    `json:"detections"`
	RiskAreas   int    `json:"risk_areas"`
	LastMeasure string `json:"last_ingest,omitempty"`
}

// DataStatsHandler returns row counts from the database.
func DataStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats DataStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM fire_detections),
				(SELECT count(*) FROM risk_areas),
				COALESCE((SELECT max(created_at)::text FROM fire_detections), '')
		`)
		if err := row.Scan(&stats.Detections, &stats.RiskAreas, &stats.LastMeasure); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}
