package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/safehaven/backend/internal/logger"
	"github.com/safehaven/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

type seedEntry struct {
	authorName   string
	authorEmail  string
	category     models.Category
	title        string
	description  string
	neighborhood string
	latitude     float64
	longitude    float64
}

// The fixed set of community posts inserted on first start.
var seedPosts = []seedEntry{
	{
		authorName:   "Sarah Johnson",
		authorEmail:  "sarah.johnson@example.com",
		category:     models.CategorySafety,
		title:        "Suspicious Activity on Oak Street",
		description:  "Saw someone trying car door handles around 2 AM last night. Already reported to police. Everyone please lock your cars!",
		neighborhood: "Downtown",
		latitude:     40.7128,
		longitude:    -74.0060,
	},
	{
		authorName:   "Mike Chen",
		authorEmail:  "mike.chen@example.com",
		category:     models.CategoryLostPet,
		title:        "Lost Cat - Orange Tabby",
		description:  "Our cat Whiskers went missing yesterday evening. Orange tabby with white paws. Very friendly. Please call if you see him!",
		neighborhood: "Downtown",
		latitude:     40.7138,
		longitude:    -74.0070,
	},
	{
		authorName:   "Lisa Martinez",
		authorEmail:  "lisa.martinez@example.com",
		category:     models.CategoryEvent,
		title:        "Community BBQ This Saturday",
		description:  "Join us for our annual neighborhood BBQ at the park! Starts at noon. Bring your favorite dish to share.",
		neighborhood: "Downtown",
		latitude:     40.7118,
		longitude:    -74.0050,
	},
	{
		authorName:   "John Smith",
		authorEmail:  "john.smith@example.com",
		category:     models.CategoryQuestion,
		title:        "Recommendations for Local Plumber?",
		description:  "Need a reliable plumber for a leak repair. Any recommendations?",
		neighborhood: "Downtown",
		latitude:     40.7108,
		longitude:    -74.0080,
	},
	{
		authorName:   "Emma Wilson",
		authorEmail:  "emma.wilson@example.com",
		category:     models.CategoryAccessibility,
		title:        "Broken Wheelchair Ramp",
		description:  "The wheelchair ramp at Main Street library has a large crack. Needs repair urgently.",
		neighborhood: "Downtown",
		latitude:     40.7148,
		longitude:    -74.0040,
	},
}

// SeedInitial inserts the fixed community posts once, when the posts table is
// empty. It runs on every server start and is a no-op afterwards.
func (s *Seeder) SeedInitial() error {
	var count int64
	if err := s.db.Model(&models.Post{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count posts: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, entry := range seedPosts {
		user, err := s.ensureUser(entry.authorEmail, entry.authorName, entry.neighborhood)
		if err != nil {
			return err
		}

		lat := entry.latitude
		lng := entry.longitude
		post := models.Post{
			UserID:       user.ID,
			AuthorName:   entry.authorName,
			Category:     entry.category,
			Title:        entry.title,
			Description:  entry.description,
			Neighborhood: entry.neighborhood,
			Latitude:     &lat,
			Longitude:    &lng,
		}
		if err := s.db.Create(&post).Error; err != nil {
			return fmt.Errorf("failed to create seed post %q: %w", entry.title, err)
		}
	}

	logger.Log.Info("Seed posts inserted", zap.Int("count", len(seedPosts)))
	return nil
}

// SeedDemo fills the database with generated residents, posts and comments
// for local development. Counts scale from the number of users requested.
func (s *Seeder) SeedDemo(userCount int) error {
	if userCount <= 0 {
		userCount = 20
	}

	logger.Log.Info("Creating demo users...", zap.Int("count", userCount))
	users, err := s.seedUsers(userCount)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	postCount := userCount * 3
	logger.Log.Info("Creating demo posts...", zap.Int("count", postCount))
	posts, err := s.seedPosts(users, postCount)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	commentCount := postCount * 2
	logger.Log.Info("Creating demo comments...", zap.Int("count", commentCount))
	if err := s.seedComments(users, posts, commentCount); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	return nil
}

func (s *Seeder) ensureUser(email, name, neighborhood string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user = models.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hashed),
		Neighborhood: neighborhood,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create seed user %s: %w", email, err)
	}
	return &user, nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	// One shared hash keeps demo seeding fast; every demo login is password123
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		user := models.User{
			Email:        fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			Name:         gofakeit.Name(),
			PasswordHash: string(hashed),
			Neighborhood: models.DefaultNeighborhood,
			Phone:        gofakeit.Phone(),
			Address:      gofakeit.Street(),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedPosts(users []models.User, count int) ([]models.Post, error) {
	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		category := models.Categories[rand.Intn(len(models.Categories))]

		// Scatter coordinates around the seed neighborhood
		lat := 40.7128 + (rand.Float64()-0.5)*0.05
		lng := -74.0060 + (rand.Float64()-0.5)*0.05

		post := models.Post{
			UserID:       author.ID,
			AuthorName:   author.Name,
			Category:     category,
			Title:        gofakeit.Sentence(5),
			Description:  gofakeit.Paragraph(1, 3, 12, " "),
			Neighborhood: author.Neighborhood,
			Latitude:     &lat,
			Longitude:    &lng,
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) seedComments(users []models.User, posts []models.Post, count int) error {
	if len(posts) == 0 {
		return nil
	}
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		post := posts[rand.Intn(len(posts))]

		comment := models.Comment{
			PostID:     post.ID,
			UserID:     author.ID,
			AuthorName: author.Name,
			Text:       gofakeit.Sentence(10),
		}
		if err := s.db.Create(&comment).Error; err != nil {
			return err
		}
	}
	return nil
}

// Clean removes all seeded data. Destructive; only reachable from the admin CLI.
func (s *Seeder) Clean() error {
	for _, model := range []interface{}{
		&models.Comment{},
		&models.Image{},
		&models.Post{},
		&models.User{},
	} {
		if err := s.db.Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("failed to clean seed data: %w", err)
		}
	}
	return nil
}
