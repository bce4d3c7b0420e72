package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fanbase-app/fanbase-api/db/fanbase_db/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cloudflare/cloudflare-go"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

func tempDir() string {
	if dir := os.Getenv("UPLOADS_TMP_DIR"); dir != "" {
		return dir
	}

	return os.TempDir()
}

// CreateUpload stores a media file and returns the location a post should
// reference in media_url, plus the media kind it was classified as. Video
// goes to Cloudflare Stream, everything else to R2. The gating core never
// sees any of this; it only ever stores the resulting reference.
func CreateUpload(c *fiber.Ctx, ctx context.Context) error {
	slog.Info("Starting upload ✅")

	user := Viewer(c)

	if user == nil {
		return NotAllowed(c)
	}

	file, err := c.FormFile("file")

	if err != nil {
		slog.Warn("Upload without a file 💀")

		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Please attach a file.",
			}},
		})
	}

	contentType := file.Header.Get("Content-Type")

	var mediaType string

	switch {
	case strings.Contains(contentType, "image"):
		mediaType = model.MediaTypeImage
	case strings.Contains(contentType, "video"):
		mediaType = model.MediaTypeVideo
	case strings.Contains(contentType, "audio"):
		mediaType = model.MediaTypeAudio
	default:
		return c.Status(fiber.StatusBadRequest).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Only image, video and audio uploads are supported.",
			}},
		})
	}

	filename := fmt.Sprintf("%d-%s-%s", user.ID, uuid.New().String(), Truncate(file.Filename, 128))

	handleUploadError := func(err error) error {
		slog.Error("Couldn't upload file 💀",
			slog.String("error", err.Error()))

		return c.Status(fiber.StatusInternalServerError).JSON(&fiber.Map{
			"errors": []fiber.Map{{
				"message": "Couldn't upload file.",
			}},
		})
	}

	if mediaType == model.MediaTypeVideo {
		tempFile := fmt.Sprintf("%s/%s", tempDir(), filename)

		if err := c.SaveFile(file, tempFile); err != nil {
			return handleUploadError(err)
		}

		defer os.Remove(tempFile)

		cf, err := cloudflare.NewWithAPIToken(os.Getenv("CLOUDFLARE_API_TOKEN"))

		if err != nil {
			return handleUploadError(err)
		}

		video, err := cf.StreamUploadVideoFile(ctx, cloudflare.StreamUploadFileParameters{
			AccountID: os.Getenv("CLOUDFLARE_ACCOUNT_IDENTIFIER"),
			FilePath:  tempFile,
		})

		if err != nil {
			return handleUploadError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(&fiber.Map{
			"media_url":  video.UID,
			"media_type": mediaType,
			"thumbnail":  video.Thumbnail,
		})
	}

	bucketName := os.Getenv("CLOUDFLARE_BUCKET_NAME")
	accountId := os.Getenv("CLOUDFLARE_ACCOUNT_IDENTIFIER")
	accessKeyId := os.Getenv("CLOUDFLARE_R2_KEY_ID")
	accessKeySecret := os.Getenv("CLOUDFLARE_R2_ACCESS_SECRET")

	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:               fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountId),
			HostnameImmutable: true,
			Source:            aws.EndpointSourceCustom,
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyId, accessKeySecret, "")),
		config.WithRegion("auto"),
	)

	if err != nil {
		return handleUploadError(err)
	}

	client := s3.NewFromConfig(cfg)

	uploader := manager.NewUploader(client)

	body, err := file.Open()

	if err != nil {
		return handleUploadError(err)
	}

	defer body.Close()

	start := time.Now()

	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(filename),
		Body:   body,
	})

	if err != nil {
		return handleUploadError(err)
	}

	slog.Info("Upload stored ✅",
		slog.String("key", filename),
		slog.Int64("bytes", file.Size),
		slog.String("took", time.Since(start).String()))

	return c.Status(fiber.StatusCreated).JSON(&fiber.Map{
		"media_url":  filename,
		"media_type": mediaType,
	})
}
