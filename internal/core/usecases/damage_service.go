package usecases

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
	"github.com/Tom-Shanks/FireSight-AI/internal/pkg/geospatial"
)

// Land-cover split and per-type recovery assumptions for the assessed areas.
// These stand in for a land-cover map until one is wired in.
const (
	forestShare    = 0.6
	shrublandShare = 0.3
	grasslandShare = 0.1

	forestRecoveryMonths    = 60
	shrublandRecoveryMonths = 24
	grasslandRecoveryMonths = 6

	buildingsPerSqKm = 2.0
	roadsKmPerSqKm   = 1.0
	powerKmPerSqKm   = 0.5
)

// DamageService estimates wildfire damage over a fire perimeter. Burn
// severity is synthesized until pre/post imagery differencing is wired in.
type DamageService struct {
	rng *rand.Rand
}

// NewDamageService creates a new DamageService. The rng drives synthetic
// burn-severity sampling; pass a seeded source for reproducible output.
func NewDamageService(rng *rand.Rand) *DamageService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), 0))
	}
	return &DamageService{rng: rng}
}

// Assess estimates damage within the given fire perimeter between the two
// dates. The perimeter must have at least 3 points; the post-fire date must
// not precede the pre-fire date.
func (s *DamageService) Assess(_ context.Context, fireArea []domain.GeoPoint, preFireDate, postFireDate string) (*domain.DamageReport, error) {
	if len(fireArea) < 3 {
		return nil, fmt.Errorf("%w: fire area must have at least 3 points, got %d", ErrInvalidRequest, len(fireArea))
	}
	pre, err := time.Parse("2006-01-02", preFireDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid pre_fire_date: %v", ErrInvalidRequest, err)
	}
	post, err := time.Parse("2006-01-02", postFireDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid post_fire_date: %v", ErrInvalidRequest, err)
	}
	if post.Before(pre) {
		return nil, fmt.Errorf("%w: post_fire_date precedes pre_fire_date", ErrInvalidRequest)
	}

	areaSqKm := geospatial.PolygonAreaSqKm(fireArea)
	if areaSqKm <= 0 {
		return nil, fmt.Errorf("%w: fire area polygon is degenerate", ErrInvalidRequest)
	}

	// Fraction of the perimeter that actually burned. Fires rarely consume
	// their whole footprint.
	burnedProportion := 0.4 + s.rng.Float64()*0.35
	burnedSqKm := areaSqKm * burnedProportion

	forest := burnedSqKm * forestShare
	shrubland := burnedSqKm * shrublandShare
	grassland := burnedSqKm * grasslandShare

	recovery := (forest*forestRecoveryMonths +
		shrubland*shrublandRecoveryMonths +
		grassland*grasslandRecoveryMonths) / burnedSqKm

	return &domain.DamageReport{
		BurnedAreaSqKm: round2(burnedSqKm),
		VegetationDamage: map[string]float64{
			"forest":    round2(forest),
			"shrubland": round2(shrubland),
			"grassland": round2(grassland),
		},
		InfrastructureImpact: map[string]int{
			"buildings":      int(areaSqKm * buildingsPerSqKm * burnedProportion),
			"roads_km":       int(areaSqKm * roadsKmPerSqKm * burnedProportion),
			"power_lines_km": int(areaSqKm * powerKmPerSqKm * burnedProportion),
		},
		RecoveryEstimateMonths: round1(recovery),
	}, nil
}

func round1(v float64) float64 { return float64(int(v*10+0.5)) / 10 }
func round2(v float64) float64 { return float64(int(v*100+0.5)) / 100 }
