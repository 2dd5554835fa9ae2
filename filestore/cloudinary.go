package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const cloudinaryFolder = "photoshare/photos"

// CloudinaryStorage uploads photos to a Cloudinary folder. The recorded file
// name doubles as the public id inside that folder.
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
	now func() time.Time
}

func NewCloudinaryStorage(url string) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary configuration error: %w", err)
	}
	return &CloudinaryStorage{cld: cld, now: time.Now}, nil
}

var _ Storage = (*CloudinaryStorage)(nil)

func publicID(fileName string) string {
	return cloudinaryFolder + "/" + strings.TrimSuffix(fileName, path.Ext(fileName))
}

func (s *CloudinaryStorage) Save(ctx context.Context, originalName string, data []byte) (string, error) {
	name := uniqueName(s.now(), originalName)

	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:       publicID(name),
		Transformation: "c_limit,w_1600,h_1600,q_auto",
	})
	if err != nil {
		return "", fmt.Errorf("upload photo to cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return "", errors.New("upload photo to cloudinary: " + res.Error.Message)
	}
	return name, nil
}

func (s *CloudinaryStorage) Remove(ctx context.Context, fileName string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID(fileName)})
	if err != nil {
		return fmt.Errorf("destroy cloudinary asset: %w", err)
	}
	return nil
}
