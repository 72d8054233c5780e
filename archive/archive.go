// Package archive keeps a SQLite history of pipeline runs.
package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/setanarut/imgcluster"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TEXT NOT NULL,
	device_context TEXT NOT NULL,
	images INTEGER NOT NULL,
	image_clusters INTEGER NOT NULL,
	image_clusters_db INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS run_images (
	run_id INTEGER NOT NULL REFERENCES runs(id),
	position INTEGER NOT NULL,
	path TEXT NOT NULL,
	km_label INTEGER NOT NULL,
	db_label INTEGER NOT NULL,
	dominant_color TEXT,
	PRIMARY KEY (run_id, position)
);`

var ErrNoRuns = errors.New("archive: no runs recorded")

type Run struct {
	ID              int64
	CreatedAt       time.Time
	DeviceContext   string
	Images          int
	ImageClusters   int
	ImageClustersDB int
}

type Archive struct {
	db *sql.DB
}

func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error { return a.db.Close() }

// Record stores the summary of r and one row per image in a single
// transaction and returns the new run id.
func (a *Archive) Record(r *imgcluster.Results) (int64, error) {
	n := len(r.ImagesFilenameList)
	if len(r.KMLabels) != n || len(r.DBLabels) != n {
		return 0, fmt.Errorf("archive: %d images but %d/%d labels", n, len(r.KMLabels), len(r.DBLabels))
	}
	tx, err := a.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (created_at, device_context, images, image_clusters, image_clusters_db) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), r.DeviceContext, n, r.ImageClusters, r.ImageClustersDB,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`INSERT INTO run_images (run_id, position, path, km_label, db_label, dominant_color) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for i, path := range r.ImagesFilenameList {
		var color sql.NullString
		if i < len(r.DominantColors) {
			color = sql.NullString{String: r.DominantColors[i], Valid: true}
		}
		if _, err := stmt.Exec(id, i, path, r.KMLabels[i], r.DBLabels[i], color); err != nil {
			return 0, fmt.Errorf("insert image %s: %w", path, err)
		}
	}
	return id, tx.Commit()
}

// Latest returns the most recently recorded run.
func (a *Archive) Latest() (*Run, error) {
	row := a.db.QueryRow(`SELECT id, created_at, device_context, images, image_clusters, image_clusters_db FROM runs ORDER BY id DESC LIMIT 1`)
	var (
		run     Run
		created string
	)
	err := row.Scan(&run.ID, &created, &run.DeviceContext, &run.Images, &run.ImageClusters, &run.ImageClustersDB)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, err
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, err
	}
	return &run, nil
}

// Labels returns the KMeans and DBSCAN labels of a run in image order.
func (a *Archive) Labels(runID int64) (km, db []int, err error) {
	rows, err := a.db.Query(`SELECT km_label, db_label FROM run_images WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var k, d int
		if err := rows.Scan(&k, &d); err != nil {
			return nil, nil, err
		}
		km = append(km, k)
		db = append(db, d)
	}
	return km, db, rows.Err()
}
