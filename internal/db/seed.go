package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed inserts demo slots across all channels so a fresh database has
// something to book against.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	type seedSlot struct {
		channel  string
		subPage  string
		position string
		width    int
		height   int
		price    int64
	}

	slots := []seedSlot{
		{"website", "home", "hero", 1200, 300, 250000},
		{"website", "home", "sidebar", 300, 600, 120000},
		{"website", "news", "leaderboard", 970, 90, 90000},
		{"website", "sports", "leaderboard", 970, 90, 80000},
		{"mobile", "", "splash", 1080, 1920, 180000},
		{"mobile", "", "banner", 640, 100, 60000},
		{"magazine", "", "back-cover", 0, 0, 500000},
		{"magazine", "", "inner-full", 0, 0, 300000},
		{"email", "", "newsletter", 600, 200, 40000},
		{"whatsapp", "", "broadcast", 0, 0, 30000},
	}

	for i, s := range slots {
		_, err := pool.Exec(ctx, `
INSERT INTO slots (id, channel, sub_page, position, width_px, height_px, price, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,'available',now(),now()) ON CONFLICT DO NOTHING`,
			i+1, s.channel, s.subPage, s.position, s.width, s.height, s.price)
		if err != nil {
			return fmt.Errorf("seed slot %d: %w", i+1, err)
		}
	}
	// keep the sequence ahead of the fixed ids
	_, err := pool.Exec(ctx, `SELECT setval('slots_id_seq', (SELECT MAX(id) FROM slots))`)
	return err
}
