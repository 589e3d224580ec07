package domain

import "errors"

var (
	ErrUnsupportedPlatform = errors.New("unsupported operating system")
	ErrUnsupportedFormat   = errors.New("unsupported archive format")
	ErrDownload            = errors.New("download failed")
	ErrTargetDirNotSet     = errors.New("geckodriver target directory not set")
	ErrNotADirectory       = errors.New("target path is not a directory")
	ErrDriverNotFound      = errors.New("geckodriver binary not found")
)
