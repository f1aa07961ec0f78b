// Package seed provides helpers to create demo data for development and
// tests. Nothing here is reachable from the HTTP surface.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"potluck/internal/middleware"
	"potluck/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "potluck2024"

// Factory builds domain entities and persists them to the database.
// In DryRun mode nothing is written and ids are synthetic.
type Factory struct {
	db     *gorm.DB
	opts   Options
	faker  *gofakeit.Faker
	rng    *rand.Rand
	hash   string
	nextID uint
}

// NewFactory creates a Factory bound to db. Options.RandSeed makes the
// generated content reproducible; zero seeds from the clock.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		db:     db,
		opts:   opts,
		faker:  gofakeit.New(seed),
		rng:    rand.New(rand.NewSource(seed)), // #nosec G404: demo data
		nextID: 1000,
	}
}

func (f *Factory) passwordHash() (string, error) {
	if f.hash != "" {
		return f.hash, nil
	}
	cost := bcrypt.DefaultCost
	if f.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return "", fmt.Errorf("hash demo password: %w", err)
	}
	f.hash = string(h)
	return f.hash, nil
}

func (f *Factory) assignID() uint {
	f.nextID++
	return f.nextID
}

// createdAt spreads timestamps over the last MaxDays days.
func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

// CreateUser constructs and persists a user. Usernames carry a numeric suffix
// so repeated runs rarely collide.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, err
	}

	name := strings.ToLower(f.faker.Username())
	name = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			return r
		}
		return -1
	}, name)
	if name == "" {
		name = "cook"
	}
	name = fmt.Sprintf("%s%d", name, f.faker.Number(100, 99999))
	if len(name) > 50 {
		name = name[len(name)-50:]
	}

	user := &models.User{
		Username: name,
		Email:    name + "@example.com",
		Password: hash,
	}
	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		user.ID = f.assignID()
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post in category for user without persisting it.
func (f *Factory) BuildPost(user *models.User, category models.Category, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		UserID:    user.ID,
		Category:  category,
		CreatedAt: f.createdAt(),
	}

	switch category {
	case models.CategoryRecipes:
		dish := f.faker.Dinner()
		post.Title = dish
		post.Content = fmt.Sprintf("Ingredients: %s, %s and %s.\n\n%s",
			f.faker.Vegetable(), f.faker.Vegetable(), f.faker.Fruit(), f.faker.Paragraph(1, 3, 12, " "))
		post.Tags = ptr(strings.Join([]string{"recipe", strings.ToLower(f.faker.Vegetable())}, ", "))
	case models.CategoryOrganizations:
		post.Title = f.faker.Company() + " community kitchen"
		post.Content = f.faker.Paragraph(2, 3, 10, "\n\n")
		post.Location = ptr(f.faker.City())
		post.Tags = ptr("volunteer, community")
	case models.CategoryOffers:
		post.Title = fmt.Sprintf("Free %s to give away", strings.ToLower(f.faker.Fruit()))
		post.Content = f.faker.Sentence(14)
		post.Location = ptr(f.faker.Street() + ", " + f.faker.City())
	default:
		post.Category = models.CategoryWeeklyMenu
		post.Title = "Menu for the week of " + post.CreatedAt.Format("Jan 2")
		days := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
		lines := make([]string, len(days))
		for i, d := range days {
			lines[i] = d + ": " + f.faker.Dinner()
		}
		post.Content = strings.Join(lines, "\n")
		post.Tags = ptr("menu, weekly")
	}
	post.UpdatedAt = post.CreatedAt

	if f.rng.Float32() < 0.4 {
		post.ImageURL = ptr(fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID()))
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists posts in batches of Options.BatchSize.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			p.ID = f.assignID()
		}
		middleware.Logger.Info("dry-run: skipped post insert", "count", len(posts))
		return nil
	}
	size := f.opts.BatchSize
	if size <= 0 {
		size = 100
	}
	return f.db.CreateInBatches(posts, size).Error
}

// CreateComment persists a comment by user on post.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		UserID: user.ID,
		PostID: post.ID,
		Body:   f.faker.Sentence(f.faker.Number(3, 16)),
	}
	for _, override := range overrides {
		override(comment)
	}
	if f.opts.DryRun {
		comment.ID = f.assignID()
		return comment, nil
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like by user on post. An existing like is kept.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	like := &models.Like{UserID: user.ID, PostID: post.ID}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

// CreateShare persists a share of post by user.
func (f *Factory) CreateShare(user *models.User, post *models.Post) (*models.Share, error) {
	targets := []string{"email", "facebook", "whatsapp", "link"}
	share := &models.Share{
		UserID:   user.ID,
		PostID:   post.ID,
		SharedTo: ptr(targets[f.rng.Intn(len(targets))]),
	}
	if f.opts.DryRun {
		share.ID = f.assignID()
		return share, nil
	}
	if err := f.db.Create(share).Error; err != nil {
		return nil, err
	}
	return share, nil
}

func ptr(s string) *string { return &s }
