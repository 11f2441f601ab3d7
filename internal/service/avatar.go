package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/google/uuid"
)

const avatarCacheControl = "max-age=3600"

// avatarPreferences is the slice of PreferencesService the avatar flow needs
type avatarPreferences interface {
	SetAvatarURL(ctx context.Context, userID uuid.UUID, url string) error
}

type AvatarService struct {
	store ObjectStore
	prefs avatarPreferences
}

func NewAvatarService(store ObjectStore, prefs avatarPreferences) *AvatarService {
	return &AvatarService{store: store, prefs: prefs}
}

// ReplaceAvatar clears the user's folder, uploads <userId>/avatar.<ext> and
// records its public URL in preferences.
func (s *AvatarService) ReplaceAvatar(ctx context.Context, userID uuid.UUID, filename, contentType string, body io.Reader) (string, error) {
	if s.store == nil {
		return "", ErrStorageNotAvailable
	}

	folder := userID.String()

	existing, err := s.store.List(ctx, folder)
	if err != nil {
		return "", fmt.Errorf("failed to list existing avatars: %w", err)
	}
	if len(existing) > 0 {
		paths := make([]string, len(existing))
		for i, name := range existing {
			paths[i] = folder + "/" + name
		}
		if err := s.store.Remove(ctx, paths); err != nil {
			return "", fmt.Errorf("failed to remove existing avatars: %w", err)
		}
		log.Printf("[AvatarService] Removed %d old avatar(s) for %s", len(paths), userID)
	}

	objectPath := folder + "/avatar" + avatarExt(filename)
	err = s.store.Upload(ctx, objectPath, body, UploadOptions{
		Upsert:       true,
		ContentType:  contentType,
		CacheControl: avatarCacheControl,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	url := s.store.PublicURL(objectPath)
	if url == "" {
		return "", fmt.Errorf("failed to get public URL for avatar")
	}

	if err := s.prefs.SetAvatarURL(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}

// avatarExt keeps the uploaded file's extension, lower-cased
func avatarExt(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" || ext == "." {
		return ""
	}
	return ext
}
