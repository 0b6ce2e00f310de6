package db

import (
	"context"
	"fmt"
	"time"

	"drivon-backend/internal/models"
)

const queryTimeout = 10 * time.Second

// ActiveServices returns the public listing of enabled services ordered by
// name. base_price is selected as text so decimals stay lossless.
func (d *DB) ActiveServices(ctx context.Context) ([]models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
	SELECT id, name, COALESCE(description, ''), duration_minutes, base_price::text
	FROM services
	WHERE is_active = TRUE
	ORDER BY name ASC`

	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		var s models.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.DurationMinutes, &s.BasePrice); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read services: %w", err)
	}
	return services, nil
}
