// cmd/seed/main.go
// Seeds the database with demo users for local development

package main

import (
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/finlove/finlove-backend/internal/common/database"
	"github.com/finlove/finlove-backend/internal/config"
)

type seedUser struct {
	Username  string
	Email     string
	FirstName string
	Gender    string
	Age       int
	Faculty   string
	Program   string
	StudyYear int
	About     string
}

var seedUsers = []seedUser{
	{"anna_fin", "anna@edu.fa.ru", "Anna", "female", 19, "Finance", "Corporate Finance", 2, "Coffee, ceramics and long walks"},
	{"maria_it", "maria@edu.fa.ru", "Maria", "female", 20, "IT", "Business Informatics", 3, "I debug other people's code for fun"},
	{"kate_law", "kate@edu.fa.ru", "Ekaterina", "female", 21, "Law", "Financial Law", 4, "Moot court champion"},
	{"dasha_econ", "dasha@edu.fa.ru", "Daria", "female", 18, "Economics", "World Economy", 1, "First year, big plans"},
	{"ivan_fin", "ivan@edu.fa.ru", "Ivan", "male", 20, "Finance", "Banking", 3, "Chess and basketball"},
	{"petr_it", "petr@edu.fa.ru", "Petr", "male", 19, "IT", "Applied Informatics", 2, "Building a startup between lectures"},
	{"sergey_mgmt", "sergey@edu.fa.ru", "Sergey", "male", 22, "Management", "Project Management", 4, "Ask me about hiking"},
	{"alex_econ", "alex@fa.ru", "Alexander", "male", 21, "Economics", "Financial Markets", 3, "Guitar player"},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (%v), using environment variables", err)
	}

	cfg := config.Load()

	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := seed(db); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	if err := seedReactions(db); err != nil {
		log.Fatalf("failed to seed reactions: %v", err)
	}

	log.Println("Seeding completed.")
}

func seed(db *sqlx.DB) error {
	query := `
		INSERT INTO users (username, email, first_name, gender, age, faculty, program, study_year, about, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)
		ON CONFLICT (email) DO NOTHING`

	for _, u := range seedUsers {
		if _, err := db.Exec(query,
			u.Username, u.Email, u.FirstName, u.Gender, u.Age,
			u.Faculty, u.Program, u.StudyYear, u.About,
		); err != nil {
			return err
		}
		log.Printf("seeded user %s", u.Username)
	}

	return nil
}

// seedReactions writes a small reaction history: some one-sided likes, one
// dislike, and two guaranteed mutual pairs (with their match rows), so the
// matches screen has content out of the box
func seedReactions(db *sqlx.DB) error {
	reactions := []struct {
		liker, target string
		isLike        bool
	}{
		// mutual pair: anna + ivan
		{"anna@edu.fa.ru", "ivan@edu.fa.ru", true},
		{"ivan@edu.fa.ru", "anna@edu.fa.ru", true},
		// mutual pair: maria + petr
		{"maria@edu.fa.ru", "petr@edu.fa.ru", true},
		{"petr@edu.fa.ru", "maria@edu.fa.ru", true},
		// one-sided
		{"sergey@edu.fa.ru", "kate@edu.fa.ru", true},
		{"alex@fa.ru", "dasha@edu.fa.ru", true},
		// a dislike
		{"kate@edu.fa.ru", "alex@fa.ru", false},
	}

	reactionQuery := `
		INSERT INTO reactions (liker_id, target_id, is_like)
		SELECT l.id, t.id, $3
		FROM users l, users t
		WHERE l.email = $1 AND t.email = $2`

	for _, r := range reactions {
		if _, err := db.Exec(reactionQuery, r.liker, r.target, r.isLike); err != nil {
			return err
		}
	}

	matchQuery := `
		INSERT INTO matches (user1_id, user2_id)
		SELECT LEAST(a.id, b.id), GREATEST(a.id, b.id)
		FROM users a, users b
		WHERE a.email = $1 AND b.email = $2
		ON CONFLICT (user1_id, user2_id) DO NOTHING`

	mutualPairs := [][2]string{
		{"anna@edu.fa.ru", "ivan@edu.fa.ru"},
		{"maria@edu.fa.ru", "petr@edu.fa.ru"},
	}

	for _, pair := range mutualPairs {
		if _, err := db.Exec(matchQuery, pair[0], pair[1]); err != nil {
			return err
		}
		log.Printf("seeded match %s + %s", pair[0], pair[1])
	}

	return nil
}
