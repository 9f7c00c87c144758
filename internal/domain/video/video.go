// Package video recommends curated, verified videos by keyword overlap with
// the user's query. The catalog is seeded once from a YAML file and never
// updated by this service afterward.
package video

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/naviai/naviai/pkg/uuid"
)

// DefaultLimit is the number of video suggestions attached to a chat turn.
const DefaultLimit = 2

// minTokenLen filters out very short query words ("o", "de", "um").
const minTokenLen = 2

// TrustedVideo is one curated catalog entry.
type TrustedVideo struct {
	ID          string `json:"-"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	ChannelName string `json:"channel_name"`
	Category    string `json:"category"`
	Keywords    string `json:"-"`
	IsVerified  bool   `json:"-"`
}

// seedEntry is the YAML shape of one record in the seed file.
type seedEntry struct {
	Title       string `yaml:"title"`
	URL         string `yaml:"url"`
	ChannelName string `yaml:"channel_name"`
	Category    string `yaml:"category"`
	Keywords    string `yaml:"keywords"`
	IsVerified  *bool  `yaml:"is_verified"`
}

// Service loads the seed catalog and answers keyword searches.
type Service struct {
	db *sql.DB
}

// NewService creates a video Service backed by the given DB.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// LoadSeed loads videos from the YAML seed file into the database.
// Skips loading when the trusted_videos table already contains rows, making
// it safe to call on every startup.
func (s *Service) LoadSeed(ctx context.Context, path string) error {
	var existing int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trusted_videos").Scan(&existing); err != nil {
		return fmt.Errorf("video: check existing: %w", err)
	}
	if existing > 0 {
		log.Printf("video: trusted videos already loaded; skipping seed")
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("video: seed file not found: %s", path)
			return nil
		}
		return fmt.Errorf("video: read seed %q: %w", path, err)
	}

	var entries []seedEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("video: parse seed %q: %w", path, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("video: begin seed transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, e := range entries {
		verified := true // seed entries are verified unless flagged otherwise
		if e.IsVerified != nil {
			verified = *e.IsVerified
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO trusted_videos (id, title, url, channel_name, category, keywords, is_verified, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, uuid.NewV7().String(), e.Title, e.URL, e.ChannelName, e.Category, e.Keywords, verified, now); err != nil {
			return fmt.Errorf("video: insert %q: %w", e.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("video: commit seed: %w", err)
	}
	log.Printf("video: loaded %d trusted videos from %s", len(entries), path)
	return nil
}

// Search ranks verified videos by keyword overlap with the query.
//
// Score = exact token-set intersection count + substring-pair count (a query
// token contained in a video keyword or vice versa). The substring term
// double-counts exact matches on purpose: it biases ranking toward videos
// with rich keyword overlap. Zero-score videos are excluded.
func (s *Service) Search(ctx context.Context, query string, limit int) []TrustedVideo {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	videos, err := s.verifiedVideos(ctx)
	if err != nil {
		log.Printf("video: search failed: %v", err)
		return nil
	}

	type scoredVideo struct {
		score int
		video TrustedVideo
	}
	var scored []scoredVideo

	for _, v := range videos {
		keywords := keywordSet(v)

		score := 0
		for qw := range queryTokens {
			if keywords[qw] {
				score++
			}
			for vk := range keywords {
				if strings.Contains(vk, qw) || strings.Contains(qw, vk) {
					score++
				}
			}
		}

		if score > 0 {
			scored = append(scored, scoredVideo{score: score, video: v})
		}
	}

	// Stable sort preserves catalog order among equal scores
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	if len(scored) > limit {
		scored = scored[:limit]
	}
	results := make([]TrustedVideo, 0, len(scored))
	for _, sv := range scored {
		results = append(results, sv.video)
	}
	return results
}

// verifiedVideos fetches all verified catalog entries.
func (s *Service) verifiedVideos(ctx context.Context) ([]TrustedVideo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, url, channel_name, category, keywords, is_verified
		FROM trusted_videos
		WHERE is_verified = 1
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []TrustedVideo
	for rows.Next() {
		var v TrustedVideo
		if err := rows.Scan(&v.ID, &v.Title, &v.URL, &v.ChannelName, &v.Category, &v.Keywords, &v.IsVerified); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// keywordSet builds a video's match set: its comma-separated keywords, its
// title words longer than minTokenLen, and its category, all case-folded.
func keywordSet(v TrustedVideo) map[string]bool {
	set := make(map[string]bool)
	for _, kw := range strings.Split(v.Keywords, ",") {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			set[kw] = true
		}
	}
	for _, w := range strings.Fields(v.Title) {
		if len(w) > minTokenLen {
			set[strings.ToLower(w)] = true
		}
	}
	if v.Category != "" {
		set[strings.ToLower(v.Category)] = true
	}
	return set
}

// tokenize builds the query token set: whitespace-split words longer than
// minTokenLen, case-folded.
func tokenize(query string) map[string]bool {
	tokens := make(map[string]bool)
	for _, w := range strings.Fields(query) {
		if w = strings.ToLower(strings.TrimSpace(w)); len(w) > minTokenLen {
			tokens[w] = true
		}
	}
	return tokens
}
