package usecases_test

import (
	"context"
	"testing"
	"time"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
	"github.com/Tom-Shanks/FireSight-AI/internal/core/usecases"
)

// --- Mock DetectionRepository ---

type mockDetectionRepo struct {
	insertBatchFn func(ctx context.Context, detections []domain.FireDetection) (int, error)
	recentSinceFn func(ctx context.Context, since time.Time, limit int) ([]domain.FireDetection, error)
}

func (m *mockDetectionRepo) InsertBatch(ctx context.Context, detections []domain.FireDetection) (int, error) {
	if m.insertBatchFn != nil {
		return m.insertBatchFn(ctx, detections)
	}
	return len(detections), nil
}

func (m *mockDetectionRepo) RecentSince(ctx context.Context, since time.Time, limit int) ([]domain.FireDetection, error) {
	if m.recentSinceFn != nil {
		return m.recentSinceFn(ctx, since, limit)
	}
	return nil, nil
}

func (m *mockDetectionRepo) WithinBounds(ctx context.Context, bounds domain.Bounds, since time.Time, limit int) ([]domain.FireDetection, error) {
	return nil, nil
}

func (m *mockDetectionRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

// --- Mock RiskAreaRepository ---

type mockRiskAreaRepo struct {
	topByScoreFn func(ctx context.Context, limit int) ([]domain.RiskArea, error)
}

func (m *mockRiskAreaRepo) UpsertBatch(ctx context.Context, areas []domain.RiskArea) error {
	return nil
}

func (m *mockRiskAreaRepo) TopByScore(ctx context.Context, limit int) ([]domain.RiskArea, error) {
	if m.topByScoreFn != nil {
		return m.topByScoreFn(ctx, limit)
	}
	return nil, nil
}

// --- Tests ---

func TestDetectionService_RecentFires(t *testing.T) {
	now := time.Now().UTC()
	repo := &mockDetectionRepo{
		recentSinceFn: func(ctx context.Context, since time.Time, limit int) ([]domain.FireDetection, error) {
			if elapsed := now.Sub(since); elapsed < 23*time.Hour || elapsed > 25*time.Hour {
				t.Errorf("expected a 24h window, got %v", elapsed)
			}
			return []domain.FireDetection{
				{ID: "a", Source: "VIIRS", FRP: 12.5},
				{ID: "b", Source: "MODIS", FRP: 8.1},
			}, nil
		},
	}

	svc := usecases.NewDetectionService(repo, &mockRiskAreaRepo{}, nil)
	fires, err := svc.RecentFires(context.Background(), 24, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fires) != 2 {
		t.Fatalf("expected 2 detections, got %d", len(fires))
	}
	if fires[0].Source != "VIIRS" {
		t.Errorf("expected VIIRS first, got %s", fires[0].Source)
	}
}

func TestDetectionService_ClampsArguments(t *testing.T) {
	repo := &mockDetectionRepo{
		recentSinceFn: func(ctx context.Context, since time.Time, limit int) ([]domain.FireDetection, error) {
			if limit != 200 {
				t.Errorf("expected limit clamped to default 200, got %d", limit)
			}
			return nil, nil
		},
	}

	svc := usecases.NewDetectionService(repo, &mockRiskAreaRepo{}, nil)
	if _, err := svc.RecentFires(context.Background(), -5, 99999); err != nil {
		t.Fatal(err)
	}
}

func TestDetectionService_RecentFiresCached(t *testing.T) {
	calls := 0
	repo := &mockDetectionRepo{
		recentSinceFn: func(ctx context.Context, since time.Time, limit int) ([]domain.FireDetection, error) {
			calls++
			return []domain.FireDetection{{ID: "a"}}, nil
		},
	}

	svc := usecases.NewDetectionService(repo, &mockRiskAreaRepo{}, newMockCache())
	for i := 0; i < 3; i++ {
		if _, err := svc.RecentFires(context.Background(), 24, 100); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 repository call with a warm cache, got %d", calls)
	}
}

func TestDetectionService_HighRiskAreas(t *testing.T) {
	repo := &mockRiskAreaRepo{
		topByScoreFn: func(ctx context.Context, limit int) ([]domain.RiskArea, error) {
			return []domain.RiskArea{
				{ID: "1", Name: "Sonoma Hills", RiskScore: 0.91},
				{ID: "2", Name: "Napa Ridge", RiskScore: 0.84},
			}, nil
		},
	}

	svc := usecases.NewDetectionService(&mockDetectionRepo{}, repo, nil)
	areas, err := svc.HighRiskAreas(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(areas) != 2 || areas[0].RiskScore < areas[1].RiskScore {
		t.Errorf("unexpected areas: %+v", areas)
	}
}

func TestDetectionService_Ingest(t *testing.T) {
	repo := &mockDetectionRepo{}
	pub := &mockPublisher{}
	svc := usecases.NewDetectionService(repo, &mockRiskAreaRepo{}, nil)

	detections := []domain.FireDetection{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	inserted, err := svc.Ingest(context.Background(), detections, pub)
	if err != nil {
		t.Fatal(err)
	}
	if inserted != 3 {
		t.Errorf("expected 3 inserted, got %d", inserted)
	}
	if pub.detections != 3 {
		t.Errorf("expected 3 published detections, got %d", pub.detections)
	}
}
