package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ratehub/database"
	"ratehub/internal/config"
	"ratehub/internal/http-api/models"
)

// Bulk loader for seed data. Files are loaded in dependency order so that
// foreign keys resolve: taxonomy and users first, then titles, then the
// join table, reviews and comments.
//
// Source rows reference users by numeric id while the live schema keys
// users by UUID, so the loader keeps an id translation map while it runs.

type row map[string]string

func main() {
	dataDir := flag.String("data", "data", "directory containing the CSV files")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	imp := &importer{db: db, logger: logger, userIDs: make(map[string]string)}

	steps := []struct {
		file string
		load func(row) error
	}{
		{"category.csv", imp.loadCategory},
		{"genre.csv", imp.loadGenre},
		{"users.csv", imp.loadUser},
		{"titles.csv", imp.loadTitle},
		{"genre_title.csv", imp.loadGenreTitle},
		{"review.csv", imp.loadReview},
		{"comments.csv", imp.loadComment},
	}

	for _, step := range steps {
		path := filepath.Join(*dataDir, step.file)
		n, err := loadFile(path, step.load)
		if err != nil {
			log.Fatalf("importing %s: %v", step.file, err)
		}
		logger.Info("imported", "file", step.file, "rows", n)
	}
}

func loadFile(path string, load func(row) error) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("reading header: %w", err)
	}

	count := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, fmt.Errorf("row %d: %w", count+2, err)
		}
		rec := make(row, len(header))
		for i, name := range header {
			if i < len(record) {
				rec[name] = record[i]
			}
		}
		if err := load(rec); err != nil {
			return count, fmt.Errorf("row %d: %w", count+2, err)
		}
		count++
	}
	return count, nil
}

type importer struct {
	db     *gorm.DB
	logger *slog.Logger

	// userIDs maps the numeric user id found in the CSV files to the
	// UUID the user was stored under.
	userIDs map[string]string
}

func (imp *importer) loadCategory(r row) error {
	id, err := strconv.ParseInt(r["id"], 10, 64)
	if err != nil {
		return fmt.Errorf("bad category id %q: %w", r["id"], err)
	}
	category := models.Category{ID: id, Name: r["name"], Slug: r["slug"]}
	return imp.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "slug"}),
	}).Create(&category).Error
}

func (imp *importer) loadGenre(r row) error {
	id, err := strconv.ParseInt(r["id"], 10, 64)
	if err != nil {
		return fmt.Errorf("bad genre id %q: %w", r["id"], err)
	}
	genre := models.Genre{ID: id, Name: r["name"], Slug: r["slug"]}
	return imp.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "slug"}),
	}).Create(&genre).Error
}

func (imp *importer) loadUser(r row) error {
	if err := models.ValidateUsername(r["username"]); err != nil {
		return fmt.Errorf("user %q: %w", r["username"], err)
	}
	role := r["role"]
	if role == "" {
		role = string(models.RoleUser)
	}
	if !models.ValidRole(role) {
		return fmt.Errorf("user %q: unknown role %q", r["username"], role)
	}

	var existing models.User
	err := imp.db.Where("username = ?", r["username"]).First(&existing).Error
	switch {
	case err == nil:
		imp.userIDs[r["id"]] = existing.ID
		return nil
	case err != gorm.ErrRecordNotFound:
		return err
	}

	user := models.User{
		Username:  r["username"],
		Email:     r["email"],
		Role:      models.Role(role),
		Bio:       r["bio"],
		FirstName: r["first_name"],
		LastName:  r["last_name"],
	}
	if err := imp.db.Create(&user).Error; err != nil {
		return err
	}
	imp.userIDs[r["id"]] = user.ID
	return nil
}

func (imp *importer) loadTitle(r row) error {
	id, err := strconv.ParseInt(r["id"], 10, 64)
	if err != nil {
		return fmt.Errorf("bad title id %q: %w", r["id"], err)
	}
	year, err := strconv.Atoi(r["year"])
	if err != nil {
		return fmt.Errorf("bad year %q: %w", r["year"], err)
	}

	title := models.Title{ID: id, Name: r["name"], Year: year}
	if r["category"] != "" {
		categoryID, err := strconv.ParseInt(r["category"], 10, 64)
		if err != nil {
			return fmt.Errorf("bad category ref %q: %w", r["category"], err)
		}
		title.CategoryID = &categoryID
	}
	return imp.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "year", "category_id"}),
	}).Create(&title).Error
}

func (imp *importer) loadGenreTitle(r row) error {
	titleID, err := strconv.ParseInt(r["title_id"], 10, 64)
	if err != nil {
		return fmt.Errorf("bad title ref %q: %w", r["title_id"], err)
	}
	genreID, err := strconv.ParseInt(r["genre_id"], 10, 64)
	if err != nil {
		return fmt.Errorf("bad genre ref %q: %w", r["genre_id"], err)
	}
	link := map[string]any{"title_id": titleID, "genre_id": genreID}
	return imp.db.Table("genre_titles").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(link).Error
}

func (imp *importer) loadReview(r row) error {
	id, err := strconv.ParseInt(r["id"], 10, 64)
	if err != nil {
		return fmt.Errorf("bad review id %q: %w", r["id"], err)
	}
	titleID, err := strconv.ParseInt(r["title_id"], 10, 64)
	if err != nil {
		return fmt.Errorf("bad title ref %q: %w", r["title_id"], err)
	}
	score, err := strconv.Atoi(r["score"])
	if err != nil {
		return fmt.Errorf("bad score %q: %w", r["score"], err)
	}
	authorID, ok := imp.userIDs[r["author"]]
	if !ok {
		return fmt.Errorf("unknown author %q", r["author"])
	}

	review := models.Review{
		ID:        id,
		TitleID:   titleID,
		AuthorID:  authorID,
		Text:      r["text"],
		Score:     score,
		CreatedAt: parseTimestamp(r["pub_date"]),
	}
	return imp.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"text", "score"}),
	}).Create(&review).Error
}

func (imp *importer) loadComment(r row) error {
	id, err := strconv.ParseInt(r["id"], 10, 64)
	if err != nil {
		return fmt.Errorf("bad comment id %q: %w", r["id"], err)
	}
	reviewID, err := strconv.ParseInt(r["review_id"], 10, 64)
	if err != nil {
		return fmt.Errorf("bad review ref %q: %w", r["review_id"], err)
	}
	authorID, ok := imp.userIDs[r["author"]]
	if !ok {
		return fmt.Errorf("unknown author %q", r["author"])
	}

	comment := models.Comment{
		ID:        id,
		ReviewID:  reviewID,
		AuthorID:  authorID,
		Text:      r["text"],
		CreatedAt: parseTimestamp(r["pub_date"]),
	}
	return imp.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"text"}),
	}).Create(&comment).Error
}

func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Now()
}
