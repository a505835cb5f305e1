package helpers

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SetupTestDB creates a test database connection. The integration tests skip
// when no database URL is configured so the package suite still runs in
// plain CI.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL must be set for integration tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sertifikat_templates (
			id UUID PRIMARY KEY,
			merchant_id TEXT NOT NULL,
			name TEXT NOT NULL,
			background_image TEXT NOT NULL DEFAULT '',
			elements JSONB NOT NULL DEFAULT '[]',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		t.Fatalf("Failed to ensure test schema: %v", err)
	}

	return pool
}

// CleanupTestDB cleans up test data
func CleanupTestDB(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()
	_, err := pool.Exec(ctx, "DELETE FROM sertifikat_templates WHERE merchant_id LIKE 'test-merchant-%'")
	if err != nil {
		t.Logf("Warning: failed to cleanup test data: %v", err)
	}
	pool.Close()
}

// MockTemplatePayload creates a template creation body
func MockTemplatePayload(name string) []byte {
	return []byte(fmt.Sprintf(`{"name": "%s", "backgroundImage": ""}`, name))
}

// MockElementPayload creates an element body for the add-element endpoint,
// the way the editor sends a freshly dropped element.
func MockElementPayload(elementType string) []byte {
	payload := ""

	switch elementType {
	case "text":
		payload = `{
			"type": "text",
			"x": 100, "y": 260,
			"placeholderType": "name",
			"fontSize": 36,
			"fontFamily": "poppins-poppins",
			"textAlign": "center",
			"color": "#111111"
		}`

	case "shape":
		payload = `{
			"type": "shape",
			"x": 50, "y": 50,
			"width": 120, "height": 80,
			"shapeType": "star",
			"fillColor": "#f59e0b",
			"opacity": 0.9
		}`

	case "qrcode":
		payload = `{
			"type": "qrcode",
			"x": 700, "y": 480,
			"width": 90, "height": 90
		}`
	}

	return []byte(payload)
}
