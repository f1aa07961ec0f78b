package seed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"potluck/internal/middleware"
	"potluck/internal/models"

	"gorm.io/gorm"
)

// Options configure a seeding run.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	DryRun      bool
	// SkipBcrypt hashes the demo password at the minimum cost.
	SkipBcrypt bool
	MaxDays    int
	BatchSize  int
	RandSeed   int64
	// Distribution weights post categories. Nil uses DefaultDistribution.
	Distribution Distribution
}

// Distribution maps each category to a relative weight.
type Distribution map[models.Category]int

// DefaultDistribution favors recipes, the bulk of a real feed.
var DefaultDistribution = Distribution{
	models.CategoryRecipes:       4,
	models.CategoryOrganizations: 2,
	models.CategoryOffers:        2,
	models.CategoryWeeklyMenu:    2,
}

// Summary counts what a run created.
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Likes    int
	Shares   int
}

// computeCounts splits total across categories by weight using largest
// remainders. Ties go to the category listed first in models.Categories.
func computeCounts(total int, d Distribution) map[models.Category]int {
	counts := make(map[models.Category]int, len(models.Categories))
	weightSum := 0
	for _, c := range models.Categories {
		if w := d[c]; w > 0 {
			weightSum += w
		}
	}
	if total <= 0 || weightSum == 0 {
		return counts
	}

	type rem struct {
		cat   models.Category
		frac  int
		order int
	}
	rems := make([]rem, 0, len(models.Categories))
	assigned := 0
	for i, c := range models.Categories {
		w := max(d[c], 0)
		counts[c] = total * w / weightSum
		assigned += counts[c]
		if w > 0 {
			rems = append(rems, rem{cat: c, frac: total * w % weightSum, order: i})
		}
	}
	sort.SliceStable(rems, func(i, j int) bool {
		if rems[i].frac != rems[j].frac {
			return rems[i].frac > rems[j].frac
		}
		return rems[i].order < rems[j].order
	})
	for i := 0; assigned < total; i++ {
		counts[rems[i%len(rems)].cat]++
		assigned++
	}
	return counts
}

// Seed populates db with users, posts and engagement.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	log := middleware.Logger.With(slog.String("component", "seed"))
	log.InfoContext(ctx, "seeding started",
		slog.Int("users", opts.NumUsers),
		slog.Int("posts", opts.NumPosts),
		slog.Bool("dry_run", opts.DryRun),
	)

	if opts.NumUsers <= 0 {
		return nil, fmt.Errorf("seed needs at least one user, got %d", opts.NumUsers)
	}
	if !opts.DryRun {
		db = db.WithContext(ctx)
	}

	if opts.ShouldClean && !opts.DryRun {
		if err := ClearAll(db); err != nil {
			return nil, fmt.Errorf("clear existing data: %w", err)
		}
	}

	f := NewFactory(db, opts)
	summary := &Summary{}

	users := make([]*models.User, 0, opts.NumUsers)
	for range opts.NumUsers {
		u, err := f.CreateUser()
		if err != nil {
			return summary, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	summary.Users = len(users)
	log.InfoContext(ctx, "users created", slog.Int("count", summary.Users))

	dist := opts.Distribution
	if dist == nil {
		dist = DefaultDistribution
	}
	var posts []*models.Post
	for _, cat := range models.Categories {
		for range computeCounts(opts.NumPosts, dist)[cat] {
			author := users[f.rng.Intn(len(users))]
			posts = append(posts, f.BuildPost(author, cat))
		}
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return summary, fmt.Errorf("create posts: %w", err)
	}
	summary.Posts = len(posts)
	log.InfoContext(ctx, "posts created", slog.Int("count", summary.Posts))

	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := seedEngagement(f, users, post, summary); err != nil {
			return summary, err
		}
	}

	log.InfoContext(ctx, "seeding completed",
		slog.Int("comments", summary.Comments),
		slog.Int("likes", summary.Likes),
		slog.Int("shares", summary.Shares),
	)
	return summary, nil
}

// seedEngagement gives post likes from distinct users plus a few comments and
// shares.
func seedEngagement(f *Factory, users []*models.User, post *models.Post, summary *Summary) error {
	order := f.rng.Perm(len(users))
	likes := f.rng.Intn(min(len(users), 6) + 1)
	for _, i := range order[:likes] {
		if err := f.CreateLike(users[i], post); err != nil {
			return fmt.Errorf("create like: %w", err)
		}
		summary.Likes++
	}

	for range f.rng.Intn(4) {
		if _, err := f.CreateComment(users[f.rng.Intn(len(users))], post); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		summary.Comments++
	}

	if f.rng.Float32() < 0.3 {
		if _, err := f.CreateShare(users[f.rng.Intn(len(users))], post); err != nil {
			return fmt.Errorf("create share: %w", err)
		}
		summary.Shares++
	}
	return nil
}

// ClearAll removes every seeded row, children first.
func ClearAll(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE shares, likes, comments, posts, users RESTART IDENTITY CASCADE`).Error
	}
	for _, model := range []any{&models.Share{}, &models.Like{}, &models.Comment{}, &models.Post{}, &models.User{}} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
