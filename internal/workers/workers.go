package workers

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StartCleanupWorker starts a background routine that removes uploaded
// certificate images no template references anymore. An upload that was
// never attached to a template (the user cancelled, or the element was
// deleted) would otherwise sit in the storage directory forever.
func StartCleanupWorker(db *pgxpool.Pool, storageDir string) {
	ticker := time.NewTicker(1 * time.Hour)

	go func() {
		for range ticker.C {
			cleanupOrphanedUploads(db, storageDir)
		}
	}()
}

func cleanupOrphanedUploads(db *pgxpool.Pool, storageDir string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	log.Println("Starting cleanup of orphaned certificate uploads...")

	// Every referenced file appears somewhere in the template row: the
	// background_image column or an element's imageUrl inside the JSONB
	// column. A substring check against the file name is enough because
	// upload names are UUIDs.
	rows, err := db.Query(ctx, `SELECT background_image, elements::text FROM sertifikat_templates`)
	if err != nil {
		log.Printf("Error querying templates for cleanup: %v", err)
		return
	}
	defer rows.Close()

	var referenced []string
	for rows.Next() {
		var background, elements string
		if err := rows.Scan(&background, &elements); err != nil {
			continue
		}
		referenced = append(referenced, background, elements)
	}
	if rows.Err() != nil {
		log.Printf("Error reading templates for cleanup: %v", rows.Err())
		return
	}

	root := filepath.Join(storageDir, "certificates")
	cutoff := time.Now().Add(-24 * time.Hour)
	removed := 0

	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		// Grace period so an upload from an in-progress edit session is
		// never deleted before the template is saved.
		if info.ModTime().After(cutoff) {
			return nil
		}
		name := filepath.Base(path)
		for _, ref := range referenced {
			if strings.Contains(ref, name) {
				return nil
			}
		}
		if err := os.Remove(path); err != nil {
			log.Printf("Error removing orphaned upload %s: %v", name, err)
			return nil
		}
		removed++
		return nil
	})

	log.Printf("Cleanup complete, removed %d orphaned uploads", removed)
}
