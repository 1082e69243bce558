package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Upload stores body under key. Bodies that fit in one part go through a
// single PutObject; larger ones use a multipart upload that is aborted if
// any part fails.
func (c *Client) Upload(ctx context.Context, key string, body io.Reader, partSizeBytes int64) error {
	if partSizeBytes < MinPartSizeBytes {
		partSizeBytes = MinPartSizeBytes
	}
	buf := make([]byte, partSizeBytes)
	n, err := io.ReadFull(body, buf)
	switch err {
	case nil:
		return c.uploadMultipart(ctx, key, buf, n, body)
	case io.EOF, io.ErrUnexpectedEOF:
		return c.PutObject(ctx, key, bytes.NewReader(buf[:n]), int64(n))
	default:
		return fmt.Errorf("read %s: %w", key, err)
	}
}

func (c *Client) uploadMultipart(ctx context.Context, key string, buf []byte, n int, rest io.Reader) error {
	fullKey := c.Key(key)
	createOut, err := c.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		return fmt.Errorf("create multipart upload %s: %w", fullKey, err)
	}
	uploadID := createOut.UploadId
	completedOK := false
	defer func() {
		if completedOK {
			return
		}
		// The caller's context may already be done.
		abortCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, _ = c.client.AbortMultipartUpload(abortCtx, &s3.AbortMultipartUploadInput{
			Bucket:   aws.String(c.bucket),
			Key:      aws.String(fullKey),
			UploadId: uploadID,
		})
	}()

	var completed []types.CompletedPart
	for partNumber := int32(1); n > 0; partNumber++ {
		out, err := c.client.UploadPart(ctx, &s3.UploadPartInput{
			Bucket:        aws.String(c.bucket),
			Key:           aws.String(fullKey),
			UploadId:      uploadID,
			PartNumber:    aws.Int32(partNumber),
			Body:          bytes.NewReader(buf[:n]),
			ContentLength: aws.Int64(int64(n)),
		})
		if err != nil {
			return fmt.Errorf("upload part %d of %s: %w", partNumber, fullKey, err)
		}
		completed = append(completed, types.CompletedPart{
			ETag:       out.ETag,
			PartNumber: aws.Int32(partNumber),
		})

		var readErr error
		n, readErr = io.ReadFull(rest, buf)
		if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
			return fmt.Errorf("read part %d of %s: %w", partNumber+1, fullKey, readErr)
		}
	}

	_, err = c.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(c.bucket),
		Key:             aws.String(fullKey),
		UploadId:        uploadID,
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	if err != nil {
		return fmt.Errorf("complete multipart upload %s: %w", fullKey, err)
	}
	completedOK = true
	return nil
}
