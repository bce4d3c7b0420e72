package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"
	"github.com/fanbase-app/fanbase-api/membership"
	"github.com/fanbase-app/fanbase-api/security_helpers"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
)

const (
	TypeNewPostFanout = "post:fanout"
)

type NewPostFanoutPayload struct {
	PostID      uint64
	CommunityID uint64
}

func NewPostFanoutTask(postId uint64, communityId uint64) (*asynq.Task, error) {
	payload, err := json.Marshal(NewPostFanoutPayload{PostID: postId, CommunityID: communityId})

	slog.Info("Scheduling new post fanout")

	if err != nil {
		slog.Error("Unable to schedule post fanout")
		slog.Error(err.Error())

		return nil, err
	}

	return asynq.NewTask(TypeNewPostFanout, payload), nil
}

// HandleNewPostFanoutTask emails every active subscriber of the post's
// community. Owners publishing into their own community don't get a copy.
// Each recipient becomes its own email:deliver task, so one bad address
// can't stall the rest of the batch.
func HandleNewPostFanoutTask(ctx context.Context, t *asynq.Task, db *sqlx.DB, subs *membership.Store, queue *asynq.Client) error {
	slog.Info("Fanning out new post ✅")

	var p NewPostFanoutPayload

	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		slog.Error("Could not fan out post")
		slog.Error(err.Error())

		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	var post model.Posts

	err := db.GetContext(ctx, &post, "SELECT * FROM posts WHERE id = ? LIMIT 1", p.PostID)

	if err != nil {
		slog.Error("Couldn't find post for fanout 💀")
		slog.Error(err.Error())

		return fmt.Errorf("post lookup failed: %v: %w", err, asynq.SkipRetry)
	}

	var community model.Communities

	err = db.GetContext(ctx, &community, "SELECT * FROM communities WHERE id = ? LIMIT 1", p.CommunityID)

	if err != nil {
		slog.Error("Couldn't find community for fanout 💀")
		slog.Error(err.Error())

		return fmt.Errorf("community lookup failed: %v: %w", err, asynq.SkipRetry)
	}

	emails, err := subs.ActiveSubscriberEmails(ctx, community.ID)

	if err != nil {
		slog.Error("Couldn't load subscriber emails 💀")
		slog.Error(err.Error())

		return err
	}

	postId := security_helpers.Encode(post.ID, model.POSTS_TYPE, post.Salt)

	from := os.Getenv("EMAIL_FROM")
	postUrl := os.Getenv("WEB_URL") + "/p/" + postId

	enqueued := 0

	for _, to := range emails {
		if to == "" {
			continue
		}

		task, err := NewEmailDeliveryTask("new-post", from, to, map[string]interface{}{
			"community_name": community.Name,
			"post_title":     post.Title.String,
			"post_url":       postUrl,
		})

		if err != nil {
			continue
		}

		if _, err := queue.Enqueue(task, asynq.Queue("low")); err != nil {
			slog.Warn("Couldn't enqueue subscriber email 💀",
				slog.String("to", to),
				slog.String("error", err.Error()))

			continue
		}

		enqueued += 1
	}

	slog.Info("Fanned out new post ✅",
		slog.Int("subscribers", len(emails)),
		slog.Int("enqueued", enqueued))

	return nil
}
