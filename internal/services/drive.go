// Google Drive implementation of [StorageService]
//
// Drive API response types come from google.golang.org/api/drive/v3; see
// https://developers.google.com/drive/api/reference/rest/v3
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/drivebox/internal/auth"
	"github.com/desertthunder/drivebox/internal/models"
	"github.com/desertthunder/drivebox/internal/shared"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveService implements [StorageService] against the Google Drive v3 API.
//
// A fresh API client is built per call from the credential store's current
// grant, so every request observes the latest grant and refreshed tokens are
// written back through [auth.NotifySource].
type DriveService struct {
	config      *oauth2.Config
	store       auth.Store
	defaultMime string
	clientOpts  []option.ClientOption
}

// NewDriveService creates a Drive gateway reading grants from store.
//
// Extra client options are appended when building the API client; tests use
// option.WithEndpoint to stand in a local server for the Drive API.
func NewDriveService(config *oauth2.Config, store auth.Store, defaultMime string, opts ...option.ClientOption) *DriveService {
	if defaultMime == "" {
		defaultMime = DefaultMimeType
	}
	return &DriveService{
		config:      config,
		store:       store,
		defaultMime: defaultMime,
		clientOpts:  opts,
	}
}

func (s *DriveService) Name() string {
	return "Google Drive"
}

// client builds an authorized Drive client, failing fast when no grant is stored.
func (s *DriveService) client(ctx context.Context) (*drive.Service, error) {
	token, err := s.store.Token()
	if err != nil {
		return nil, err
	}

	src := auth.NotifySource(s.store, s.config.TokenSource(ctx, token), token)
	opts := append([]option.ClientOption{option.WithTokenSource(src)}, s.clientOpts...)

	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build drive client: %v", shared.ErrServiceUnavailable, err)
	}
	return srv, nil
}

// Upload creates a file on Drive with inferred MIME type and returns its remote id.
func (s *DriveService) Upload(ctx context.Context, name string, content []byte) (*models.RemoteFile, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: file name is required", shared.ErrInvalidInput)
	}

	srv, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	mimeType := InferMimeType(name, s.defaultMime)
	meta := &drive.File{Name: name}

	created, err := srv.Files.Create(meta).
		Media(bytes.NewReader(content), googleapi.ContentType(mimeType)).
		Fields("id", "name").
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapRemoteError(err, shared.ErrUploadFailed)
	}

	remoteName := created.Name
	if remoteName == "" {
		remoteName = name
	}

	return &models.RemoteFile{ID: created.Id, Name: remoteName}, nil
}

// List retrieves files matching the MIME-type filter, following nextPageToken
// across all pages. Remote order is preserved; nothing is sorted locally.
func (s *DriveService) List(ctx context.Context, mimeTypes ...string) ([]models.RemoteFile, error) {
	srv, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	if len(mimeTypes) == 0 {
		mimeTypes = ListedMimeTypes
	}

	terms := make([]string, 0, len(mimeTypes))
	for _, mt := range mimeTypes {
		terms = append(terms, fmt.Sprintf("mimeType='%s'", mt))
	}

	var files []models.RemoteFile
	err = srv.Files.List().
		Q(strings.Join(terms, " or ")).
		Fields("nextPageToken", "files(id, name)").
		Context(ctx).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				files = append(files, models.RemoteFile{ID: f.Id, Name: f.Name})
			}
			return nil
		})
	if err != nil {
		return nil, mapRemoteError(err, shared.ErrAPIRequest)
	}

	return files, nil
}

// Download streams the file's raw media content.
//
// The request context is threaded into the remote call, so a caller that
// goes away cancels the underlying read instead of fetching bytes nobody
// will receive.
func (s *DriveService) Download(ctx context.Context, fileID string) (*models.FileStream, error) {
	if fileID == "" {
		return nil, fmt.Errorf("%w: file id is required", shared.ErrInvalidInput)
	}

	srv, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := srv.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, mapRemoteError(err, shared.ErrDownloadFailed)
	}

	return &models.FileStream{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}, nil
}

// mapRemoteError translates provider failures into the service's error taxonomy.
//
// Expired or invalid grants become ErrTokenExpired so the caller can restart
// the authorization flow; everything else wraps the operation sentinel.
func mapRemoteError(err error, sentinel error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: remote rejected the grant", shared.ErrTokenExpired)
		case http.StatusForbidden:
			return fmt.Errorf("%w: status %d: %s", sentinel, gerr.Code, gerr.Message)
		case http.StatusNotFound:
			return fmt.Errorf("%w: remote file does not exist", shared.ErrFileNotFound)
		default:
			return fmt.Errorf("%w: status %d: %s", sentinel, gerr.Code, gerr.Message)
		}
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return fmt.Errorf("%w: token refresh rejected", shared.ErrTokenExpired)
	}

	return fmt.Errorf("%w: %v", sentinel, err)
}
