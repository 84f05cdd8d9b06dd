// Package files uploads and downloads files stored by the backend
package files

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/avi3tal/noxus-go/internal/transport"
)

// SourceType is where a stored file came from
type SourceType string

const (
	SourceDocument    SourceType = "Document"
	SourceGoogleDrive SourceType = "Google Drive"
	SourceNotion      SourceType = "Notion"
	SourceWebsite     SourceType = "Website"
	SourceOneDrive    SourceType = "OneDrive"
	SourceSlack       SourceType = "Slack"
	SourceLinear      SourceType = "Linear"
	SourceGithub      SourceType = "Github"
	SourceTeams       SourceType = "Teams"
	SourceSharepoint  SourceType = "Sharepoint"
	SourceCustom      SourceType = "Custom"
)

var sourceTypes = []SourceType{
	SourceDocument, SourceGoogleDrive, SourceNotion, SourceWebsite, SourceOneDrive,
	SourceSlack, SourceLinear, SourceGithub, SourceTeams, SourceSharepoint, SourceCustom,
}

// ParseSourceType returns the source type whose wire value is s
func ParseSourceType(s string) (SourceType, error) {
	for _, st := range sourceTypes {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("no source type with value %q", s)
}

type File struct {
	ID             string         `json:"id"`
	URI            string         `json:"uri"`
	Size           float64        `json:"size"`
	GroupID        string         `json:"group_id,omitempty"`
	Filename       string         `json:"filename"`
	ContentType    string         `json:"content_type"`
	SourceType     SourceType     `json:"source_type"`
	SourceMetadata map[string]any `json:"source_metadata"`
	CreatedAt      *time.Time     `json:"created_at,omitempty"`
}

type Service struct {
	requester *transport.Requester
	logger    *slog.Logger
}

func NewService(r *transport.Requester, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{requester: r, logger: logger}
}

// Save uploads the content of r under name
func (s *Service) Save(ctx context.Context, name string, r io.Reader) (*File, error) {
	var f File
	if err := s.requester.Upload(ctx, "/v1/file", "file", name, r, &f); err != nil {
		return nil, errors.Wrapf(err, "failed to upload %s", name)
	}
	s.logger.Info("File uploaded.", "file_id", f.ID, "filename", f.Filename, "size", f.Size)
	return &f, nil
}

// Get downloads the content of a stored file
func (s *Service) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := s.requester.GetBytes(ctx, "/v1/file/"+id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to download file %s", id)
	}
	return data, nil
}
