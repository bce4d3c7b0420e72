// Package membership is the single place that decides what a viewer may
// see inside a community. Every gating call site resolves through here;
// nothing else is allowed to re-derive the subscriber predicate.
package membership

import (
	"context"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"
)

// Finder looks up the subscription row for a (user, community) pair.
// A missing row is (nil, nil), not an error.
type Finder interface {
	Find(ctx context.Context, userID uint64, communityID uint64) (*model.Subscriptions, error)
}

type Membership struct {
	IsOwner            bool
	IsActiveSubscriber bool
}

func (m Membership) CanViewGated() bool {
	return m.IsOwner || m.IsActiveSubscriber
}

// Resolve computes the viewer's relationship to a community. A nil viewer
// is an anonymous request and resolves to the zero Membership. Only a
// subscription row whose status is active counts; cancelled and expired
// rows grant nothing.
func Resolve(ctx context.Context, finder Finder, viewer *model.Users, community model.Communities) (Membership, error) {
	if viewer == nil {
		return Membership{}, nil
	}

	if viewer.ID == community.ArtistID {
		return Membership{IsOwner: true}, nil
	}

	sub, err := finder.Find(ctx, viewer.ID, community.ID)

	if err != nil {
		return Membership{}, err
	}

	return Membership{
		IsActiveSubscriber: sub != nil && sub.IsActive(),
	}, nil
}

// FilterPosts returns the posts the membership may see, in the order they
// were given. Owners and active subscribers see everything; everyone else
// gets the public subset. The input slice is never mutated.
func FilterPosts(posts []model.Posts, m Membership) []model.Posts {
	if m.CanViewGated() {
		return posts
	}

	visible := make([]model.Posts, 0, len(posts))

	for _, post := range posts {
		if post.IsPublic {
			visible = append(visible, post)
		}
	}

	return visible
}
