// Package dto provides data transfer objects shared by the store backends and the web layer.
package dto

import "time"

// Bucket represents an S3 bucket.
type Bucket struct {
	Name         string    `json:"name"`
	CreationDate time.Time `json:"creationDate"`
}

// DirStats summarizes one listed prefix.
type DirStats struct {
	NumDirs       int   `json:"numdirs"`
	NumFiles      int   `json:"numfiles"`
	TotalFileSize int64 `json:"total_filesize"`
}
