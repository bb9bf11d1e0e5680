package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rejaad/rearchive/internal/tree"
	"github.com/rejaad/rearchive/pkg/models"
)

// topLevelLimit caps the folder breakdown in a summary
const topLevelLimit = 10

// Catalog is a throwaway DuckDB table holding one archive's tree for aggregation
type Catalog struct {
	conn  *sql.Conn
	table string
}

// NewCatalog loads every node under root into a fresh temp table
func NewCatalog(ctx context.Context, root *tree.Node) (*Catalog, error) {
	database, err := GetDB()
	if err != nil {
		return nil, err
	}

	conn, err := database.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire DuckDB connection: %w", err)
	}

	c := &Catalog{
		conn:  conn,
		table: "entries_" + strings.ReplaceAll(uuid.New().String(), "-", ""),
	}

	create := fmt.Sprintf(`
		CREATE TEMP TABLE %s (
			path VARCHAR,
			top VARCHAR,
			is_dir BOOLEAN,
			size BIGINT,
			modified TIMESTAMP
		)`, c.table)
	if _, err := conn.ExecContext(ctx, create); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create catalog table: %w", err)
	}

	if err := c.load(ctx, root); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Catalog) load(ctx context.Context, root *tree.Node) error {
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin catalog load: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (path, top, is_dir, size, modified) VALUES (?, ?, ?, ?, ?)", c.table))
	if err != nil {
		return fmt.Errorf("failed to prepare catalog insert: %w", err)
	}
	defer stmt.Close()

	var insertErr error
	tree.Walk(root, func(n *tree.Node) bool {
		if n == root {
			return true
		}
		var modified sql.NullTime
		if !n.Modified.IsZero() {
			modified = sql.NullTime{Time: n.Modified, Valid: true}
		}
		_, insertErr = stmt.ExecContext(ctx, n.Path, topLevelName(root, n), n.IsDir(), int64(n.Size), modified)
		return insertErr == nil
	})
	if insertErr != nil {
		return fmt.Errorf("failed to insert catalog row: %w", insertErr)
	}

	return tx.Commit()
}

// topLevelName returns the name of the top-level folder holding n, "" for root files
func topLevelName(root, n *tree.Node) string {
	if n.Parent() == root {
		if n.IsDir() {
			return n.Name
		}
		return ""
	}
	for n.Parent() != nil && n.Parent() != root {
		n = n.Parent()
	}
	return n.Name
}

// Summarize aggregates the catalog into an ArchiveSummary
func (c *Catalog) Summarize(ctx context.Context, archivePath string) (*models.ArchiveSummary, error) {
	summary := &models.ArchiveSummary{ArchivePath: archivePath}

	totals := fmt.Sprintf(`
		SELECT
			COUNT(*) FILTER (WHERE NOT is_dir),
			COUNT(*) FILTER (WHERE is_dir),
			CAST(COALESCE(SUM(size) FILTER (WHERE NOT is_dir), 0) AS BIGINT),
			MAX(modified) FILTER (WHERE NOT is_dir)
		FROM %s`, c.table)

	var newest sql.NullTime
	err := c.conn.QueryRowContext(ctx, totals).Scan(
		&summary.FileCount,
		&summary.DirCount,
		&summary.TotalBytes,
		&newest,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize archive: %w", err)
	}
	if newest.Valid {
		summary.Newest = newest.Time.UTC()
	}

	usage, err := c.topLevel(ctx)
	if err != nil {
		return nil, err
	}
	summary.TopLevel = usage
	return summary, nil
}

func (c *Catalog) topLevel(ctx context.Context) ([]models.FolderUsage, error) {
	query := fmt.Sprintf(`
		SELECT top, COUNT(*), CAST(SUM(size) AS BIGINT) AS bytes
		FROM %s
		WHERE NOT is_dir
		GROUP BY top
		ORDER BY bytes DESC, top ASC
		LIMIT %d`, c.table, topLevelLimit)

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := c.conn.QueryContext(queryCtx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query folder usage: %w", err)
	}
	defer rows.Close()

	var usage []models.FolderUsage
	for rows.Next() {
		var u models.FolderUsage
		if err := rows.Scan(&u.Name, &u.FileCount, &u.Bytes); err != nil {
			return nil, fmt.Errorf("failed to scan folder usage: %w", err)
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// Close drops the temp table and returns the connection to the pool
func (c *Catalog) Close() error {
	_, dropErr := c.conn.ExecContext(context.Background(), "DROP TABLE IF EXISTS "+c.table)
	if err := c.conn.Close(); err != nil {
		return err
	}
	return dropErr
}

// SummarizeTree is a one-shot NewCatalog, Summarize, Close
func SummarizeTree(ctx context.Context, archivePath string, root *tree.Node) (*models.ArchiveSummary, error) {
	catalog, err := NewCatalog(ctx, root)
	if err != nil {
		return nil, err
	}
	defer catalog.Close()

	return catalog.Summarize(ctx, archivePath)
}
