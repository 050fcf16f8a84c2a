package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/IDD-NAJ/ulster-delt-sub000/models"
	"github.com/IDD-NAJ/ulster-delt-sub000/utils"
)

// ObjectUploader is the slice of the object-store client the archiver
// needs. Satisfied by minio.Client.
type ObjectUploader interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// SnapshotArchiver copies snapshots into object storage for retention
// beyond the backend's TTL window. Failures are logged, never fatal.
type SnapshotArchiver struct {
	client ObjectUploader
	bucket string
}

func NewSnapshotArchiver(client ObjectUploader, bucket string) *SnapshotArchiver {
	return &SnapshotArchiver{client: client, bucket: bucket}
}

// Archive uploads the snapshot as JSON under a timestamped object name.
func (a *SnapshotArchiver) Archive(ctx context.Context, snapshot *models.MetricSnapshot) {
	log := utils.Logger("archiver")

	payload, err := json.Marshal(snapshot)
	if err != nil {
		log.WithError(err).Error("failed to encode snapshot for archive")
		return
	}

	objectName := fmt.Sprintf("snapshots/%s.json", snapshot.Timestamp.UTC().Format(time.RFC3339))
	_, err = a.client.PutObject(
		ctx,
		a.bucket,
		objectName,
		bytes.NewReader(payload),
		int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		log.WithError(err).WithField("object", objectName).Error("failed to archive snapshot")
		return
	}
	log.WithField("object", objectName).Debug("snapshot archived")
}
