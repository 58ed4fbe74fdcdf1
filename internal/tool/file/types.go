package file

import (
	"github.com/Cyclone1070/kestrel/internal/config"
)

// -- Read File --

type ReadFileRequest struct {
	FilePath string `json:"filePath"`
}

func (r *ReadFileRequest) Validate(cfg *config.Config) error {
	if r.FilePath == "" {
		return ErrPathRequired
	}
	return nil
}

// -- Write File --

type WriteFileRequest struct {
	FilePath string `json:"filePath"`
	Content  string `json:"content"`
}

func (r *WriteFileRequest) Validate(cfg *config.Config) error {
	if r.FilePath == "" {
		return ErrPathRequired
	}
	if int64(len(r.Content)) > cfg.Tools.MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// -- Edit File --

// EditFileRequest replaces the first literal occurrence of Search with Replace.
type EditFileRequest struct {
	FilePath string `json:"filePath"`
	Search   string `json:"search"`
	Replace  string `json:"replace"`
}

func (r *EditFileRequest) Validate(cfg *config.Config) error {
	if r.FilePath == "" {
		return ErrPathRequired
	}
	if r.Search == "" {
		return ErrSearchRequired
	}
	return nil
}
