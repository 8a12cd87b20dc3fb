// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"skillmesh/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	// NumUsers is the total user count including the base roster.
	NumUsers    int
	ShouldClean bool
}

// baseUsers is the fixed demo roster. Keeping it stable makes local API
// exploration reproducible.
var baseUsers = []models.User{
	{Name: "Alice", Score: 10, Skills: []string{"React", "Node.js"}},
	{Name: "Bob", Score: 15, Skills: []string{"Express", "MongoDB"}},
	{Name: "Charlie", Score: 12, Skills: []string{"HTML", "CSS"}},
	{Name: "Dave", Score: 18, Skills: []string{"JavaScript", "Node.js"}},
	{Name: "Eve", Score: 8, Skills: []string{"Python", "Django"}},
}

var skillPool = []string{
	"React", "Node.js", "Express", "MongoDB", "HTML", "CSS", "JavaScript",
	"TypeScript", "Python", "Django", "Go", "Rust", "Postgres", "Redis",
	"Docker", "Kubernetes", "GraphQL", "Vue", "Svelte", "Tailwind",
	"Terraform", "Kafka", "gRPC", "Elixir", "Swift", "Kotlin",
}

// Seed populates the database with demo users.
func Seed(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())

	log.Printf("Seeding database with %d users...", opts.NumUsers)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("Seeded %d users", len(users))

	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE messages, users RESTART IDENTITY CASCADE;`).Error
	}
	if err := db.Exec(`DELETE FROM messages`).Error; err != nil {
		return err
	}
	return db.Exec(`DELETE FROM users`).Error
}

func createUsers(db *gorm.DB, count int) ([]models.User, error) {
	users := make([]models.User, 0, count)

	for _, base := range baseUsers {
		user := base
		user.Connections = []uint{}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
		if len(users) >= count && count > 0 {
			return users, nil
		}
	}

	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := len(users); i < count; i++ {
		user := models.User{
			Name:        gofakeit.Name(),
			Score:       randomScore(r),
			Skills:      randomSkills(r),
			Connections: []uint{},
		}
		if err := db.Create(&user).Error; err != nil {
			log.Printf("Failed to create user %s: %v", user.Name, err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	return users, nil
}

// randomScore clusters most users in the low range so the level-based
// recommendation windows have interesting neighborhoods.
func randomScore(r *rand.Rand) float64 {
	score := math.Abs(r.NormFloat64()) * 12
	return math.Round(score*10) / 10
}

func randomSkills(r *rand.Rand) []string {
	n := 1 + r.Intn(4)
	picked := make([]string, 0, n)
	seen := make(map[int]struct{}, n)
	for len(picked) < n {
		idx := r.Intn(len(skillPool))
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		picked = append(picked, skillPool[idx])
	}
	return picked
}
