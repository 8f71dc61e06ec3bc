// ABOUTME: Admin overview assembled from several admin endpoints at once
// ABOUTME: Stats, the head of the moderation queue and the user list load concurrently

package overview

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/materialhub/materialhub-cli/internal/client"
	"github.com/materialhub/materialhub-cli/internal/models"
)

// QueuePreview is how many pending materials the overview shows
const QueuePreview = 5

// Source is the part of the admin API the overview reads
type Source interface {
	Stats(ctx context.Context) (*models.AdminStats, error)
	PendingMaterials(ctx context.Context, p client.PageParams) (*models.MaterialPage, error)
	Users(ctx context.Context, p client.PageParams) ([]models.AdminUser, error)
}

// Overview is the admin dashboard payload
type Overview struct {
	Stats   models.AdminStats
	Pending []models.Material
	Users   []models.AdminUser
}

// ApprovalRate returns approved/total materials in percent
func (o *Overview) ApprovalRate() float64 {
	if o.Stats.TotalMaterials == 0 {
		return 0
	}
	return float64(o.Stats.ApprovedMaterials) * 100 / float64(o.Stats.TotalMaterials)
}

// AdminCount returns how many listed users are admins
func (o *Overview) AdminCount() int {
	n := 0
	for _, u := range o.Users {
		if u.IsAdmin {
			n++
		}
	}
	return n
}

// Load fetches the three parts in parallel. The first error cancels the rest.
func Load(ctx context.Context, src Source) (*Overview, error) {
	var (
		out     Overview
		stats   *models.AdminStats
		pending *models.MaterialPage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = src.Stats(gctx)
		return err
	})
	g.Go(func() (err error) {
		pending, err = src.PendingMaterials(gctx, client.PageParams{Page: 1, Size: QueuePreview})
		return err
	})
	g.Go(func() (err error) {
		out.Users, err = src.Users(gctx, client.PageParams{Page: 1, Size: 100})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.Stats = *stats
	out.Pending = pending.Materials
	return &out, nil
}
